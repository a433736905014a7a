package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTournamentStatus(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	winner := "alice"

	tests := []struct {
		name       string
		tournament Tournament
		want       TournamentStatus
	}{
		{
			name: "open while capacity and time remain",
			tournament: Tournament{
				StartingTime:    now.Add(time.Hour),
				MaxParticipants: 4,
				NumParticipants: 2,
			},
			want: StatusOpen,
		},
		{
			name: "closed when full",
			tournament: Tournament{
				StartingTime:    now.Add(time.Hour),
				MaxParticipants: 4,
				NumParticipants: 4,
			},
			want: StatusClosed,
		},
		{
			name: "closed once started",
			tournament: Tournament{
				StartingTime:    now.Add(-time.Minute),
				MaxParticipants: 4,
				NumParticipants: 1,
			},
			want: StatusClosed,
		},
		{
			name: "closed exactly at starting time",
			tournament: Tournament{
				StartingTime:    now,
				MaxParticipants: 4,
			},
			want: StatusClosed,
		},
		{
			name: "resolved wins over closed",
			tournament: Tournament{
				StartingTime:    now.Add(-time.Hour),
				MaxParticipants: 4,
				NumParticipants: 4,
				Winner:          &winner,
			},
			want: StatusResolved,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tournament.Status(now))
		})
	}
}

func TestRegistrationClosed(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	open := Tournament{StartingTime: now.Add(time.Hour), MaxParticipants: 2, NumParticipants: 1}
	assert.False(t, open.RegistrationClosed(now))

	full := Tournament{StartingTime: now.Add(time.Hour), MaxParticipants: 2, NumParticipants: 2}
	assert.True(t, full.RegistrationClosed(now))
}

func TestAllowsRegistration(t *testing.T) {
	private := Tournament{
		Visibility: VisibilityPrivate,
		Allowed:    []string{"alice", "bob"},
	}
	assert.True(t, private.AllowsRegistration("alice"))
	assert.False(t, private.AllowsRegistration("carol"))

	public := Tournament{Visibility: VisibilityPublic}
	assert.True(t, public.AllowsRegistration("anyone"))

	invite := Tournament{Visibility: VisibilityInvite}
	assert.True(t, invite.AllowsRegistration("anyone"))
}
