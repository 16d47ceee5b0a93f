package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hibikineko/airona-cult/internal/model"
	"github.com/hibikineko/airona-cult/internal/repository"
)

// Validation errors for the application flow.
var (
	ErrDisplayNameRequired = errors.New("display name is required")
	ErrNotGuildMember      = errors.New("applicant is not a member of the Discord guild")
)

// GuildChecker reports whether a Discord user belongs to the guild. The
// Discord OAuth client implements it; tests stub it.
type GuildChecker interface {
	IsGuildMember(ctx context.Context, discordID string) (bool, error)
}

// MemberService handles the guild roster and the Discord-gated application
// flow.
type MemberService struct {
	members *repository.MemberRepository
	guild   GuildChecker
}

// NewMemberService creates a new MemberService instance.
func NewMemberService(members *repository.MemberRepository, guild GuildChecker) *MemberService {
	return &MemberService{members: members, guild: guild}
}

// Apply submits a membership application. The applicant must already be in
// the Discord guild; approval is a separate admin step.
func (s *MemberService) Apply(ctx context.Context, discordID, displayName, message string) (*model.Member, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, ErrDisplayNameRequired
	}

	inGuild, err := s.guild.IsGuildMember(ctx, discordID)
	if err != nil {
		return nil, err
	}
	if !inGuild {
		return nil, ErrNotGuildMember
	}

	member, err := s.members.Apply(ctx, discordID, displayName, strings.TrimSpace(message))
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("discord_id", discordID).
		Str("display_name", displayName).
		Msg("Membership application submitted")

	return member, nil
}

// Get returns one member's roster entry.
func (s *MemberService) Get(ctx context.Context, discordID string) (*model.Member, error) {
	return s.members.GetByID(ctx, discordID)
}

// List returns one page of the roster. Non-admin callers only see approved
// members.
func (s *MemberService) List(ctx context.Context, includePending bool, page, pageSize int) ([]model.Member, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 50
	}
	return s.members.List(ctx, !includePending, pageSize, (page-1)*pageSize)
}

// Approve marks an application approved or rejected.
func (s *MemberService) Approve(ctx context.Context, discordID string, approved bool) error {
	return s.members.SetApproved(ctx, discordID, approved)
}

// Remove soft-deletes a roster entry.
func (s *MemberService) Remove(ctx context.Context, discordID string) error {
	return s.members.Deactivate(ctx, discordID)
}
