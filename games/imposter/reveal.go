package imposter

// CurrentReveal returns the assignment whose turn it is to view their word.
func (s *Session) CurrentReveal() (Assignment, error) {
	if s.Stage != StageRevealing {
		return Assignment{}, ErrStageMismatch
	}

	return s.Assignments[s.RevealIndex], nil
}

// RequestShow marks the current player's word as revealed and returns their
// assignment for rendering. Asking again while already revealed fails with
// ErrAlreadyRevealed; callers re-acknowledge rather than treat it as fatal.
func (s *Session) RequestShow() (Assignment, error) {
	if s.Stage != StageRevealing {
		return Assignment{}, ErrStageMismatch
	}

	if s.WordRevealed {
		return s.Assignments[s.RevealIndex], ErrAlreadyRevealed
	}

	s.WordRevealed = true

	return s.Assignments[s.RevealIndex], nil
}

// RequestNext passes the device to the next player, requiring that the
// current player has viewed their word first. After the last player the
// session moves to voting.
func (s *Session) RequestNext() error {
	if s.Stage != StageRevealing {
		return ErrStageMismatch
	}

	if !s.WordRevealed {
		return ErrNotYetRevealed
	}

	if s.RevealIndex == s.PlayerCount-1 {
		s.Stage = StageVoting
		s.VoterIndex = 0

		return nil
	}

	s.RevealIndex++
	s.WordRevealed = false

	return nil
}
