package imposter

// Result is the final tally of a finished game. It reports the numbers only;
// deciding who "won" is up to the group (and whatever argument follows).
type Result struct {
	Imposters   []string `json:"imposters"`
	Word        string   `json:"word"`
	Names       []string `json:"names"`  // player names, same order as Counts
	Counts      []int    `json:"counts"` // votes received, by player index
	MaxVotes    int      `json:"maxVotes"`
	MostAccused []string `json:"mostAccused"`
}

// Results computes the tally of a finished session: per-player vote counts,
// the highest count, and every player tied at that count.
func (s *Session) Results() (Result, error) {
	if s.Stage != StageFinished {
		return Result{}, ErrStageMismatch
	}

	r := Result{
		Word:   s.SelectedWord,
		Names:  append([]string(nil), s.PlayerNames...),
		Counts: make([]int, s.PlayerCount),
	}

	for _, target := range s.Votes {
		if target >= 0 && target < s.PlayerCount {
			r.Counts[target]++
		}
	}

	for _, count := range r.Counts {
		if count > r.MaxVotes {
			r.MaxVotes = count
		}
	}

	for i, a := range s.Assignments {
		if a.IsImposter {
			r.Imposters = append(r.Imposters, a.Name)
		}
		if r.MaxVotes > 0 && r.Counts[i] == r.MaxVotes {
			r.MostAccused = append(r.MostAccused, a.Name)
		}
	}

	return r, nil
}
