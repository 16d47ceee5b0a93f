// Package auth implements Discord-federated session authentication: the
// OAuth2 code exchange, the guild membership gate and HMAC-signed session
// tokens.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hibikineko/airona-cult/internal/config"
)

// Discord API endpoints.
const (
	discordAPIBase    = "https://discord.com/api/v10"
	discordAuthorize  = "https://discord.com/oauth2/authorize"
	discordTokenURL   = "https://discord.com/api/oauth2/token"
	discordCDNAvatars = "https://cdn.discordapp.com/avatars"
)

// ErrExchangeFailed is returned when Discord rejects the OAuth2 code.
var ErrExchangeFailed = errors.New("discord code exchange failed")

// DiscordUser is the identity returned by the code exchange.
type DiscordUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// AvatarURL builds the CDN URL for the user's avatar, empty if unset.
func (u DiscordUser) AvatarURL() string {
	if u.Avatar == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s/%s.png", discordCDNAvatars, u.ID, u.Avatar)
}

// DiscordClient talks to the Discord OAuth2 and guild APIs.
type DiscordClient struct {
	cfg  *config.DiscordConfig
	http *http.Client
}

// NewDiscordClient creates a new DiscordClient instance.
func NewDiscordClient(cfg *config.DiscordConfig) *DiscordClient {
	return &DiscordClient{
		cfg:  cfg,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// LoginURL builds the authorization URL the browser is redirected to.
func (c *DiscordClient) LoginURL(state string) string {
	q := url.Values{}
	q.Set("client_id", c.cfg.ClientID)
	q.Set("redirect_uri", c.cfg.RedirectURL)
	q.Set("response_type", "code")
	q.Set("scope", "identify")
	q.Set("state", state)
	return discordAuthorize + "?" + q.Encode()
}

// Exchange trades an authorization code for the Discord user behind it.
func (c *DiscordClient) Exchange(ctx context.Context, code string) (*DiscordUser, error) {
	form := url.Values{}
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", c.cfg.RedirectURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, discordTokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrExchangeFailed, resp.StatusCode)
	}

	var token struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	return c.fetchUser(ctx, token.AccessToken)
}

// fetchUser resolves the authenticated user's profile.
func (c *DiscordClient) fetchUser(ctx context.Context, accessToken string) (*DiscordUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, discordAPIBase+"/users/@me", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build user request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("user request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: user fetch status %d", ErrExchangeFailed, resp.StatusCode)
	}

	var user DiscordUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user response: %w", err)
	}
	return &user, nil
}

// IsGuildMember checks whether a Discord user belongs to the configured
// guild, using the bot credential. An unset guild ID disables the gate.
func (c *DiscordClient) IsGuildMember(ctx context.Context, discordID string) (bool, error) {
	if c.cfg.GuildID == "" {
		return true, nil
	}

	endpoint := fmt.Sprintf("%s/guilds/%s/members/%s", discordAPIBase, c.cfg.GuildID, discordID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("failed to build member request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.cfg.BotToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("member request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected guild member status %d", resp.StatusCode)
	}
}
