package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// stubGuild is a canned GuildChecker for validation tests.
type stubGuild struct {
	inGuild bool
	err     error
}

func (s stubGuild) IsGuildMember(ctx context.Context, discordID string) (bool, error) {
	return s.inGuild, s.err
}

func TestApplyRequiresDisplayName(t *testing.T) {
	svc := NewMemberService(nil, stubGuild{inGuild: true})

	for _, name := range []string{"", "   ", "\t"} {
		_, err := svc.Apply(context.Background(), "123", name, "")
		assert.ErrorIs(t, err, ErrDisplayNameRequired)
	}
}

func TestApplyRequiresGuildMembership(t *testing.T) {
	svc := NewMemberService(nil, stubGuild{inGuild: false})

	_, err := svc.Apply(context.Background(), "123", "Hibiki", "hello")
	assert.ErrorIs(t, err, ErrNotGuildMember)
}

func TestRecordResultsValidation(t *testing.T) {
	svc := &HalloweenService{}

	tests := []struct {
		name string
		top3 []int64
	}{
		{"too few", []int64{1, 2}},
		{"too many", []int64{1, 2, 3, 4}},
		{"duplicate first and second", []int64{1, 1, 2}},
		{"duplicate first and third", []int64{1, 2, 1}},
		{"duplicate second and third", []int64{1, 2, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, svc.RecordResults(context.Background(), tt.top3), ErrBadPlacement)
		})
	}
}

func TestGalleryAddValidation(t *testing.T) {
	svc := NewGalleryService(nil)

	_, err := svc.Add(context.Background(), "  ", "https://cdn.example/img.png", "123")
	assert.ErrorIs(t, err, ErrTitleRequired)

	_, err = svc.Add(context.Background(), "Airona fanart", "", "123")
	assert.ErrorIs(t, err, ErrImageURLRequired)
}
