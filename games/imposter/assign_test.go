package imposter

import "testing"

func TestAssignExactImposterCount(t *testing.T) {
	for players := MinPlayers; players <= MaxPlayers; players++ {
		for imposters := MinImposters; imposters <= players-1; imposters++ {
			s := setupSession(t, players, "", imposters, "lighthouse", nil)

			got := 0
			for _, a := range s.Assignments {
				if a.IsImposter {
					got++
				}
			}

			if got != imposters {
				t.Fatalf("players=%d imposters=%d: got %d imposter assignments", players, imposters, got)
			}
		}
	}
}

func TestAssignWordRoundTrip(t *testing.T) {
	s := setupSession(t, 5, "", 2, "lighthouse", nil)

	if s.SelectedWord != "lighthouse" {
		t.Fatalf("want selected word %q, got %q", "lighthouse", s.SelectedWord)
	}

	for _, a := range s.Assignments {
		if a.IsImposter && a.Word != "" {
			t.Fatalf("imposter %d received word %q", a.Index, a.Word)
		}
		if !a.IsImposter && a.Word != s.SelectedWord {
			t.Fatalf("player %d got word %q, want %q", a.Index, a.Word, s.SelectedWord)
		}
	}
}

func TestAssignRejectionSamplingRedrawsDuplicates(t *testing.T) {
	// The stub returns index 1 three times before yielding 2; the loop must
	// keep redrawing until it has two distinct indices.
	s := setupSession(t, 4, "", 2, "lighthouse", sequenceIntn(1, 1, 1, 2))

	if !s.Assignments[1].IsImposter || !s.Assignments[2].IsImposter {
		t.Fatalf("want imposters at 1 and 2, got %+v", s.Assignments)
	}
	if s.Assignments[0].IsImposter || s.Assignments[3].IsImposter {
		t.Fatalf("unexpected imposters, got %+v", s.Assignments)
	}
}

func TestAssignInitializesCursorsAndBallot(t *testing.T) {
	s := setupSession(t, 3, "Ada, Grace, Edsger", 1, "lighthouse", nil)

	if s.RevealIndex != 0 || s.WordRevealed || s.VoterIndex != 0 {
		t.Fatalf("cursors not reset: reveal=%d revealed=%v voter=%d", s.RevealIndex, s.WordRevealed, s.VoterIndex)
	}

	for i, v := range s.Votes {
		if v != -1 {
			t.Fatalf("vote slot %d initialized to %d, want -1", i, v)
		}
	}

	for i, a := range s.Assignments {
		if a.Index != i {
			t.Fatalf("assignment %d has index %d", i, a.Index)
		}
	}

	if s.Assignments[0].Name != "Ada" || s.Assignments[2].Name != "Edsger" {
		t.Fatalf("assignment order does not match name order: %+v", s.Assignments)
	}
}
