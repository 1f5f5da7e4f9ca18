package imposter

import (
	"errors"
	"testing"
)

func TestRevealSequence(t *testing.T) {
	s := setupSession(t, 3, "Ada, Grace, Edsger", 1, "lighthouse", nil)

	for i := 0; i < 3; i++ {
		current, err := s.CurrentReveal()
		if err != nil {
			t.Fatalf("CurrentReveal: %v", err)
		}
		if current.Index != i {
			t.Fatalf("want reveal index %d, got %d", i, current.Index)
		}

		// Advancing before viewing must be rejected without moving the cursor.
		if err := s.RequestNext(); !errors.Is(err, ErrNotYetRevealed) {
			t.Fatalf("premature next: want ErrNotYetRevealed, got %v", err)
		}
		if s.RevealIndex != i {
			t.Fatalf("rejected next moved cursor to %d", s.RevealIndex)
		}

		shown, err := s.RequestShow()
		if err != nil {
			t.Fatalf("RequestShow: %v", err)
		}
		if shown != s.Assignments[i] {
			t.Fatalf("shown %+v, want %+v", shown, s.Assignments[i])
		}

		// A second view request is re-acknowledged, not granted anew.
		again, err := s.RequestShow()
		if !errors.Is(err, ErrAlreadyRevealed) {
			t.Fatalf("double show: want ErrAlreadyRevealed, got %v", err)
		}
		if again != shown {
			t.Fatalf("double show returned %+v, want %+v", again, shown)
		}

		if err := s.RequestNext(); err != nil {
			t.Fatalf("RequestNext: %v", err)
		}
	}

	if s.Stage != StageVoting {
		t.Fatalf("want stage %v after last reveal, got %v", StageVoting, s.Stage)
	}
	if s.VoterIndex != 0 {
		t.Fatalf("voter cursor not reset, got %d", s.VoterIndex)
	}
}

func TestRevealCursorNeverExceedsPlayerCount(t *testing.T) {
	s := setupSession(t, 4, "", 1, "lighthouse", nil)

	last := -1
	for s.Stage == StageRevealing {
		if s.RevealIndex < last {
			t.Fatalf("reveal cursor went backwards: %d after %d", s.RevealIndex, last)
		}
		if s.RevealIndex > s.PlayerCount-1 {
			t.Fatalf("reveal cursor %d exceeds last index %d", s.RevealIndex, s.PlayerCount-1)
		}
		last = s.RevealIndex

		if _, err := s.RequestShow(); err != nil {
			t.Fatalf("RequestShow: %v", err)
		}
		if err := s.RequestNext(); err != nil {
			t.Fatalf("RequestNext: %v", err)
		}
	}
}

func TestRevealActionsRejectedOutsideRevealing(t *testing.T) {
	s := NewSession()

	if _, err := s.RequestShow(); !errors.Is(err, ErrStageMismatch) {
		t.Fatalf("show during setup: want ErrStageMismatch, got %v", err)
	}
	if err := s.RequestNext(); !errors.Is(err, ErrStageMismatch) {
		t.Fatalf("next during setup: want ErrStageMismatch, got %v", err)
	}
	if _, err := s.CurrentReveal(); !errors.Is(err, ErrStageMismatch) {
		t.Fatalf("CurrentReveal during setup: want ErrStageMismatch, got %v", err)
	}
}
