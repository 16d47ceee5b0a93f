package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/hibikineko/airona-cult/internal/auth"
	"github.com/hibikineko/airona-cult/internal/config"
	"github.com/hibikineko/airona-cult/internal/server"
)

// AuthHandler implements the Discord OAuth2 login flow.
type AuthHandler struct {
	discord  *auth.DiscordClient
	sessions *auth.SessionManager
	states   *auth.StateStore
	cfg      *config.Config
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(discord *auth.DiscordClient, sessions *auth.SessionManager, states *auth.StateStore, cfg *config.Config) *AuthHandler {
	return &AuthHandler{discord: discord, sessions: sessions, states: states, cfg: cfg}
}

// Register mounts the auth routes.
func (h *AuthHandler) Register(api *gin.RouterGroup) {
	grp := api.Group("/auth")
	grp.GET("/login", h.login)
	grp.GET("/callback", h.callback)
	grp.POST("/logout", h.logout)
	grp.GET("/me", server.RequireSession(h.sessions), h.me)
}

// login redirects the browser to Discord's consent screen.
func (h *AuthHandler) login(c *gin.Context) {
	state, err := h.states.Create(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, h.discord.LoginURL(state))
}

// callback finishes the OAuth2 dance and sets the session cookie.
func (h *AuthHandler) callback(c *gin.Context) {
	if err := h.states.Consume(c.Request.Context(), c.Query("state")); err != nil {
		server.Fail(c, http.StatusBadRequest, "invalid oauth state")
		return
	}

	code := c.Query("code")
	if code == "" {
		server.Fail(c, http.StatusBadRequest, "missing authorization code")
		return
	}

	user, err := h.discord.Exchange(c.Request.Context(), code)
	if err != nil {
		log.Warn().Err(err).Msg("Discord code exchange failed")
		server.Fail(c, http.StatusUnauthorized, "discord authentication failed")
		return
	}

	token, err := h.sessions.Issue(user.ID, user.Username)
	if err != nil {
		respondError(c, err)
		return
	}

	c.SetCookie(server.SessionCookie, token, int(h.sessions.TTL().Seconds()), "/", "", false, true)
	server.OK(c, gin.H{
		"discordId": user.ID,
		"username":  user.Username,
		"avatarUrl": user.AvatarURL(),
	})
}

// logout clears the session cookie. Tokens are stateless, so the cookie is
// all there is to revoke.
func (h *AuthHandler) logout(c *gin.Context) {
	c.SetCookie(server.SessionCookie, "", -1, "/", "", false, true)
	server.OK(c, nil)
}

// me reports the caller's identity and capabilities.
func (h *AuthHandler) me(c *gin.Context) {
	id := server.CallerID(c)
	server.OK(c, gin.H{
		"discordId": id,
		"username":  server.CallerUsername(c),
		"isAdmin":   h.cfg.IsAdmin(id),
		"isOwner":   h.cfg.IsOwner(id),
	})
}
