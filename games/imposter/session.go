// Imposter game core.
//
// One session is one game, played on a single shared device (or a single
// Telegram chat). All but a handful of players receive the same secret word;
// the rest ("imposters") receive nothing and must blend in. Players view
// their word privately one at a time, discuss, then vote in turn.
//
// The session is a plain state machine: every operation is valid only in one
// stage, and a rejected operation never mutates the session. The transports
// (web client, Telegram bot) are thin adapters over this package.

package imposter

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
)

const (
	// MinPlayers is the minimum number of players in a game
	MinPlayers = 3

	// MaxPlayers is the maximum number of players in a game
	MaxPlayers = 12

	// MinImposters is the minimum number of imposters in a game
	MinImposters = 1
)

var (
	ErrOutOfRange      = errors.New("value out of range")
	ErrAlreadyRevealed = errors.New("word already revealed")
	ErrNotYetRevealed  = errors.New("word not yet revealed")
	ErrInvalidTarget   = errors.New("invalid vote target")
	ErrNoSelection     = errors.New("no vote selected")
	ErrStageMismatch   = errors.New("action not valid in current stage")
)

// Stage is the phase a session currently occupies. It decides which
// operations are accepted; everything else fails with ErrStageMismatch.
type Stage int

const (
	StageAwaitingPlayerCount Stage = iota
	StageAwaitingNames
	StageAwaitingImposterCount
	StageRevealing
	StageVoting
	StageFinished
)

func (s Stage) String() string {
	switch s {
	case StageAwaitingPlayerCount:
		return "awaiting_player_count"
	case StageAwaitingNames:
		return "awaiting_names"
	case StageAwaitingImposterCount:
		return "awaiting_imposter_count"
	case StageRevealing:
		return "revealing"
	case StageVoting:
		return "voting"
	case StageFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Assignment is one player's slot in the game. Built once per game and
// immutable afterwards. Word is empty for imposters.
type Assignment struct {
	Index      int    `json:"index"`
	Name       string `json:"name"`
	IsImposter bool   `json:"isImposter"`
	Word       string `json:"word,omitempty"`
}

// Session holds the complete state of one game, from setup through result.
// It is not safe for concurrent use; whoever owns it (a web hub, a chat
// handler) serializes access.
type Session struct {
	Stage         Stage
	PlayerCount   int
	PlayerNames   []string
	ImposterCount int
	Assignments   []Assignment
	SelectedWord  string
	RevealIndex   int
	WordRevealed  bool
	VoterIndex    int
	Votes         []int // -1 until the voter has selected a target

	intn func(n int) int
}

// NewSession returns a fresh session awaiting its player count. Starting a
// new game means dropping the old session and calling this again.
func NewSession() *Session {
	return &Session{
		Stage: StageAwaitingPlayerCount,
		intn:  rand.Intn,
	}
}

// SetPlayerCount handles the first setup input. Existing names are kept by
// position when the count changes.
func (s *Session) SetPlayerCount(n int) error {
	if s.Stage != StageAwaitingPlayerCount {
		return ErrStageMismatch
	}

	if n < MinPlayers || n > MaxPlayers {
		return fmt.Errorf("%w: player count must be between %d and %d", ErrOutOfRange, MinPlayers, MaxPlayers)
	}

	s.PlayerCount = n
	s.PlayerNames = padNames(s.PlayerNames, n)
	s.Stage = StageAwaitingNames

	return nil
}

// SetNames handles the free-text name input: zero or more names separated by
// commas or newlines. An empty input keeps the previous (default) names.
// This operation cannot fail validation; it always advances.
func (s *Session) SetNames(text string) error {
	if s.Stage != StageAwaitingNames {
		return ErrStageMismatch
	}

	if names := SplitNames(text); len(names) > 0 {
		s.PlayerNames = names
	}
	s.PlayerNames = padNames(s.PlayerNames, s.PlayerCount)
	s.Stage = StageAwaitingImposterCount

	return nil
}

// SetImposterCount handles the final setup input, then assigns roles using
// word as the shared secret. At least one non-imposter must remain.
func (s *Session) SetImposterCount(n int, word string) error {
	if s.Stage != StageAwaitingImposterCount {
		return ErrStageMismatch
	}

	if n < MinImposters || n > s.PlayerCount-1 {
		return fmt.Errorf("%w: imposter count must be between %d and %d", ErrOutOfRange, MinImposters, s.PlayerCount-1)
	}

	s.ImposterCount = n
	s.assign(word)
	s.Stage = StageRevealing

	return nil
}

// SplitNames tokenizes a free-text name list on commas and newlines,
// trimming whitespace and dropping empty tokens.
func SplitNames(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})

	names := make([]string, 0, len(fields))
	for _, f := range fields {
		if name := strings.TrimSpace(f); name != "" {
			names = append(names, name)
		}
	}

	return names
}

// padNames resizes names to exactly n entries, keeping existing entries by
// position and filling gaps with "Player N" defaults.
func padNames(names []string, n int) []string {
	padded := make([]string, n)
	for i := range padded {
		if i < len(names) && strings.TrimSpace(names[i]) != "" {
			padded[i] = strings.TrimSpace(names[i])
		} else {
			padded[i] = fmt.Sprintf("Player %d", i+1)
		}
	}

	return padded
}
