package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hibikineko/airona-cult/internal/model"
)

// ErrAlreadyApplied is returned when a user submits a second membership
// application.
var ErrAlreadyApplied = errors.New("membership application already exists")

// MemberRepository handles the guild roster and application flow.
type MemberRepository struct {
	q Querier
}

// NewMemberRepository creates a new MemberRepository instance.
func NewMemberRepository(q Querier) *MemberRepository {
	return &MemberRepository{q: q}
}

const memberColumns = "discord_id, display_name, role, message, is_approved, is_active, joined_at"

func scanMember(row pgx.Row) (*model.Member, error) {
	var m model.Member
	err := row.Scan(
		&m.DiscordID, &m.DisplayName, &m.Role, &m.Message,
		&m.IsApproved, &m.IsActive, &m.JoinedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Apply inserts a pending membership application.
// Returns ErrAlreadyApplied if the user already has a roster entry.
func (r *MemberRepository) Apply(ctx context.Context, discordID, displayName, message string) (*model.Member, error) {
	const query = `
		INSERT INTO members (discord_id, display_name, role, message, is_approved, is_active, joined_at)
		VALUES ($1, $2, 'member', $3, FALSE, TRUE, NOW())
		ON CONFLICT (discord_id) DO NOTHING
		RETURNING ` + memberColumns

	m, err := scanMember(r.q.QueryRow(ctx, query, discordID, displayName, message))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAlreadyApplied
		}
		return nil, fmt.Errorf("failed to create application: %w", err)
	}
	return m, nil
}

// GetByID retrieves a roster entry.
// Returns ErrMemberNotFound if the member does not exist.
func (r *MemberRepository) GetByID(ctx context.Context, discordID string) (*model.Member, error) {
	const query = `SELECT ` + memberColumns + ` FROM members WHERE discord_id = $1`

	m, err := scanMember(r.q.QueryRow(ctx, query, discordID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return m, nil
}

// List returns a page of the roster. When approvedOnly is set, pending
// applications are excluded.
func (r *MemberRepository) List(ctx context.Context, approvedOnly bool, limit, offset int) ([]model.Member, error) {
	const query = `
		SELECT ` + memberColumns + `
		FROM members
		WHERE is_active = TRUE AND (NOT $1 OR is_approved)
		ORDER BY joined_at ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.q.Query(ctx, query, approvedOnly, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []model.Member
	for rows.Next() {
		var m model.Member
		err := rows.Scan(
			&m.DiscordID, &m.DisplayName, &m.Role, &m.Message,
			&m.IsApproved, &m.IsActive, &m.JoinedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating members: %w", err)
	}

	return members, nil
}

// SetApproved marks an application approved or rejected.
func (r *MemberRepository) SetApproved(ctx context.Context, discordID string, approved bool) error {
	const query = `UPDATE members SET is_approved = $2 WHERE discord_id = $1`

	result, err := r.q.Exec(ctx, query, discordID, approved)
	if err != nil {
		return fmt.Errorf("failed to set approval: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}

// Deactivate soft-deletes a roster entry.
func (r *MemberRepository) Deactivate(ctx context.Context, discordID string) error {
	const query = `UPDATE members SET is_active = FALSE WHERE discord_id = $1`

	result, err := r.q.Exec(ctx, query, discordID)
	if err != nil {
		return fmt.Errorf("failed to deactivate member: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}
