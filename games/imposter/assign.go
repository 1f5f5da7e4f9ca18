package imposter

// assign builds the per-player assignments for a new game: ImposterCount
// distinct indices are drawn by rejection sampling (redraw on collision,
// which terminates since ImposterCount < PlayerCount), everyone else shares
// the single secret word. Also resets both phase cursors and the ballot.
func (s *Session) assign(word string) {
	imposters := make(map[int]bool, s.ImposterCount)
	for len(imposters) < s.ImposterCount {
		imposters[s.intn(s.PlayerCount)] = true
	}

	s.SelectedWord = word
	s.Assignments = make([]Assignment, s.PlayerCount)
	s.Votes = make([]int, s.PlayerCount)

	for i := range s.Assignments {
		a := Assignment{
			Index: i,
			Name:  s.PlayerNames[i],
		}

		if imposters[i] {
			a.IsImposter = true
		} else {
			a.Word = word
		}

		s.Assignments[i] = a
		s.Votes[i] = -1
	}

	s.RevealIndex = 0
	s.WordRevealed = false
	s.VoterIndex = 0
}
