package imposter

import (
	"errors"
	"testing"
)

// votingSession returns a session advanced through setup and reveal.
func votingSession(t *testing.T, players int, imposters int, intn func(int) int) *Session {
	t.Helper()

	s := setupSession(t, players, "", imposters, "lighthouse", intn)
	for s.Stage == StageRevealing {
		if _, err := s.RequestShow(); err != nil {
			t.Fatalf("RequestShow: %v", err)
		}
		if err := s.RequestNext(); err != nil {
			t.Fatalf("RequestNext: %v", err)
		}
	}

	return s
}

func TestSelectTargetLastSelectionWins(t *testing.T) {
	s := votingSession(t, 3, 1, nil)

	for _, target := range []int{0, 2, 1} {
		if err := s.SelectTarget(target); err != nil {
			t.Fatalf("SelectTarget(%d): %v", target, err)
		}
	}

	if s.Votes[0] != 1 {
		t.Fatalf("want last selection 1 recorded, got %d", s.Votes[0])
	}

	if err := s.ConfirmVote(); err != nil {
		t.Fatalf("ConfirmVote: %v", err)
	}
	if s.Votes[0] != 1 {
		t.Fatalf("confirmation changed the vote to %d", s.Votes[0])
	}
}

func TestSelectTargetBounds(t *testing.T) {
	cases := []struct {
		name    string
		target  int
		wantErr error
	}{
		{name: "first player", target: 0},
		{name: "self vote allowed", target: 0},
		{name: "last player", target: 2},
		{name: "negative", target: -1, wantErr: ErrInvalidTarget},
		{name: "past the end", target: 3, wantErr: ErrInvalidTarget},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := votingSession(t, 3, 1, nil)

			err := s.SelectTarget(tc.target)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("want %v, got %v", tc.wantErr, err)
				}
				if s.Votes[0] != -1 {
					t.Fatalf("rejected selection recorded: %d", s.Votes[0])
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
		})
	}
}

func TestConfirmVoteWithoutSelection(t *testing.T) {
	s := votingSession(t, 3, 1, nil)

	if err := s.ConfirmVote(); !errors.Is(err, ErrNoSelection) {
		t.Fatalf("want ErrNoSelection, got %v", err)
	}
	if s.VoterIndex != 0 {
		t.Fatalf("rejected confirmation advanced voter cursor to %d", s.VoterIndex)
	}
}

func TestEachBallotIsIndependent(t *testing.T) {
	s := votingSession(t, 3, 1, nil)

	if err := s.SelectTarget(2); err != nil {
		t.Fatalf("SelectTarget: %v", err)
	}
	if err := s.ConfirmVote(); err != nil {
		t.Fatalf("ConfirmVote: %v", err)
	}

	// The next voter starts with no selection, regardless of the previous
	// ballot.
	if s.VoterIndex != 1 {
		t.Fatalf("want voter 1, got %d", s.VoterIndex)
	}
	if s.Votes[1] != -1 {
		t.Fatalf("new voter inherited selection %d", s.Votes[1])
	}
	if err := s.ConfirmVote(); !errors.Is(err, ErrNoSelection) {
		t.Fatalf("want ErrNoSelection for fresh ballot, got %v", err)
	}
}

func TestVotingCompletesIntoFinished(t *testing.T) {
	s := votingSession(t, 4, 1, nil)

	last := -1
	for i := 0; i < 4; i++ {
		if s.VoterIndex < last {
			t.Fatalf("voter cursor went backwards: %d after %d", s.VoterIndex, last)
		}
		if s.VoterIndex > s.PlayerCount-1 {
			t.Fatalf("voter cursor %d exceeds last index %d", s.VoterIndex, s.PlayerCount-1)
		}
		last = s.VoterIndex

		if err := s.SelectTarget(0); err != nil {
			t.Fatalf("SelectTarget: %v", err)
		}
		if err := s.ConfirmVote(); err != nil {
			t.Fatalf("ConfirmVote: %v", err)
		}
	}

	if s.Stage != StageFinished {
		t.Fatalf("want stage %v, got %v", StageFinished, s.Stage)
	}
}
