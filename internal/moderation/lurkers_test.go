package moderation_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/edgard/recapbot/internal/moderation"
)

func TestFindLurkers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		senders      moderation.IDSet
		participants moderation.IDSet
		want         []string
	}{
		{
			name:         "difference",
			senders:      moderation.NewIDSet("1", "2"),
			participants: moderation.NewIDSet("1", "2", "3", "4"),
			want:         []string{"3", "4"},
		},
		{
			name:         "senders outside participants are ignored",
			senders:      moderation.NewIDSet("1", "9"),
			participants: moderation.NewIDSet("1", "2"),
			want:         []string{"2"},
		},
		{
			name:         "no participants",
			senders:      moderation.NewIDSet("1"),
			participants: moderation.NewIDSet(),
			want:         []string{},
		},
		{
			name:         "no senders",
			senders:      moderation.NewIDSet(),
			participants: moderation.NewIDSet("5", "6"),
			want:         []string{"5", "6"},
		},
		{
			name:         "everyone spoke",
			senders:      moderation.NewIDSet("5", "6"),
			participants: moderation.NewIDSet("5", "6"),
			want:         []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := moderation.FindLurkers(tt.senders, tt.participants).Sorted()
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FindLurkers() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFindLurkers_Subset(t *testing.T) {
	t.Parallel()

	senders := moderation.NewIDSet("1", "3", "7")
	participants := moderation.NewIDSet("1", "2", "3", "4")
	for id := range moderation.FindLurkers(senders, participants) {
		if !participants.Has(id) || senders.Has(id) {
			t.Errorf("lurker %s must be a participant and not a sender", id)
		}
	}
}

func TestUserID(t *testing.T) {
	t.Parallel()

	if got := moderation.UserID(-100123); got != "-100123" {
		t.Errorf("UserID() = %q", got)
	}
}
