package imposter

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
)

// sequenceIntn returns an intn stub that replays vals, falling back to 0.
func sequenceIntn(vals ...int) func(int) int {
	i := 0
	return func(n int) int {
		if i < len(vals) {
			v := vals[i]
			i++
			return v % n
		}
		return 0
	}
}

// setupSession walks a fresh session through the whole setup phase.
func setupSession(t *testing.T, players int, names string, imposters int, word string, intn func(int) int) *Session {
	t.Helper()

	s := NewSession()
	if intn != nil {
		s.intn = intn
	}

	if err := s.SetPlayerCount(players); err != nil {
		t.Fatalf("SetPlayerCount(%d): %v", players, err)
	}
	if err := s.SetNames(names); err != nil {
		t.Fatalf("SetNames(%q): %v", names, err)
	}
	if err := s.SetImposterCount(imposters, word); err != nil {
		t.Fatalf("SetImposterCount(%d): %v", imposters, err)
	}

	return s
}

func TestSetPlayerCountBounds(t *testing.T) {
	cases := []struct {
		name    string
		count   int
		wantErr error
	}{
		{name: "below minimum", count: 2, wantErr: ErrOutOfRange},
		{name: "at minimum", count: 3},
		{name: "at maximum", count: 12},
		{name: "above maximum", count: 13, wantErr: ErrOutOfRange},
		{name: "zero", count: 0, wantErr: ErrOutOfRange},
		{name: "negative", count: -1, wantErr: ErrOutOfRange},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewSession()
			err := s.SetPlayerCount(tc.count)

			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("want %v, got %v", tc.wantErr, err)
				}
				if s.Stage != StageAwaitingPlayerCount {
					t.Fatalf("rejected input advanced stage to %v", s.Stage)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if s.Stage != StageAwaitingNames {
				t.Fatalf("want stage %v, got %v", StageAwaitingNames, s.Stage)
			}
			if len(s.PlayerNames) != tc.count {
				t.Fatalf("want %d names, got %d", tc.count, len(s.PlayerNames))
			}
		})
	}
}

func TestAssignmentLengthForEveryValidPlayerCount(t *testing.T) {
	for n := MinPlayers; n <= MaxPlayers; n++ {
		t.Run(fmt.Sprintf("players_%d", n), func(t *testing.T) {
			s := setupSession(t, n, "", 1, "lighthouse", nil)

			if len(s.Assignments) != n {
				t.Fatalf("want %d assignments, got %d", n, len(s.Assignments))
			}
			if len(s.Votes) != n {
				t.Fatalf("want %d vote slots, got %d", n, len(s.Votes))
			}
		})
	}
}

func TestSetNames(t *testing.T) {
	cases := []struct {
		name  string
		count int
		input string
		want  []string
	}{
		{
			name:  "comma separated",
			count: 3,
			input: "Ada, Grace, Edsger",
			want:  []string{"Ada", "Grace", "Edsger"},
		},
		{
			name:  "newline separated",
			count: 3,
			input: "Ada\nGrace\nEdsger",
			want:  []string{"Ada", "Grace", "Edsger"},
		},
		{
			name:  "short list padded with defaults",
			count: 4,
			input: "Ada, Grace",
			want:  []string{"Ada", "Grace", "Player 3", "Player 4"},
		},
		{
			name:  "long list truncated",
			count: 3,
			input: "Ada, Grace, Edsger, Donald",
			want:  []string{"Ada", "Grace", "Edsger"},
		},
		{
			name:  "empty input keeps defaults",
			count: 3,
			input: "",
			want:  []string{"Player 1", "Player 2", "Player 3"},
		},
		{
			name:  "whitespace and empty tokens dropped",
			count: 3,
			input: " Ada ,, \n  Grace  ",
			want:  []string{"Ada", "Grace", "Player 3"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewSession()
			if err := s.SetPlayerCount(tc.count); err != nil {
				t.Fatalf("SetPlayerCount: %v", err)
			}
			if err := s.SetNames(tc.input); err != nil {
				t.Fatalf("SetNames: %v", err)
			}

			if !reflect.DeepEqual(s.PlayerNames, tc.want) {
				t.Fatalf("want %q, got %q", tc.want, s.PlayerNames)
			}
			if s.Stage != StageAwaitingImposterCount {
				t.Fatalf("want stage %v, got %v", StageAwaitingImposterCount, s.Stage)
			}
		})
	}
}

func TestSetImposterCountBounds(t *testing.T) {
	cases := []struct {
		name      string
		players   int
		imposters int
		wantErr   error
	}{
		{name: "one imposter", players: 3, imposters: 1},
		{name: "all but one", players: 5, imposters: 4},
		{name: "zero imposters", players: 3, imposters: 0, wantErr: ErrOutOfRange},
		{name: "everyone an imposter", players: 3, imposters: 3, wantErr: ErrOutOfRange},
		{name: "more imposters than players", players: 3, imposters: 4, wantErr: ErrOutOfRange},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewSession()
			if err := s.SetPlayerCount(tc.players); err != nil {
				t.Fatalf("SetPlayerCount: %v", err)
			}
			if err := s.SetNames(""); err != nil {
				t.Fatalf("SetNames: %v", err)
			}

			err := s.SetImposterCount(tc.imposters, "lighthouse")

			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("want %v, got %v", tc.wantErr, err)
				}
				if s.Stage != StageAwaitingImposterCount {
					t.Fatalf("rejected input advanced stage to %v", s.Stage)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if s.Stage != StageRevealing {
				t.Fatalf("want stage %v, got %v", StageRevealing, s.Stage)
			}
		})
	}
}

func TestSetupRejectsOutOfStageInputs(t *testing.T) {
	s := setupSession(t, 3, "Ada, Grace, Edsger", 1, "lighthouse", nil)

	if err := s.SetPlayerCount(4); !errors.Is(err, ErrStageMismatch) {
		t.Fatalf("SetPlayerCount during reveal: want ErrStageMismatch, got %v", err)
	}
	if err := s.SetNames("Donald"); !errors.Is(err, ErrStageMismatch) {
		t.Fatalf("SetNames during reveal: want ErrStageMismatch, got %v", err)
	}
	if err := s.SetImposterCount(2, "atlas"); !errors.Is(err, ErrStageMismatch) {
		t.Fatalf("SetImposterCount during reveal: want ErrStageMismatch, got %v", err)
	}
	if err := s.SelectTarget(0); !errors.Is(err, ErrStageMismatch) {
		t.Fatalf("SelectTarget during reveal: want ErrStageMismatch, got %v", err)
	}
	if err := s.ConfirmVote(); !errors.Is(err, ErrStageMismatch) {
		t.Fatalf("ConfirmVote during reveal: want ErrStageMismatch, got %v", err)
	}
}
