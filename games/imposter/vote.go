package imposter

// CurrentVoter returns the assignment whose turn it is to vote.
func (s *Session) CurrentVoter() (Assignment, error) {
	if s.Stage != StageVoting {
		return Assignment{}, ErrStageMismatch
	}

	return s.Assignments[s.VoterIndex], nil
}

// SelectTarget records a tentative vote by the current voter. Reselecting
// before confirmation simply overwrites; the last selection wins. Voting for
// yourself is allowed.
func (s *Session) SelectTarget(target int) error {
	if s.Stage != StageVoting {
		return ErrStageMismatch
	}

	if target < 0 || target >= s.PlayerCount {
		return ErrInvalidTarget
	}

	s.Votes[s.VoterIndex] = target

	return nil
}

// ConfirmVote locks in the current voter's selection and passes the ballot
// to the next player. After the last voter the session is finished and the
// tally can be read with Results.
func (s *Session) ConfirmVote() error {
	if s.Stage != StageVoting {
		return ErrStageMismatch
	}

	if s.Votes[s.VoterIndex] == -1 {
		return ErrNoSelection
	}

	if s.VoterIndex == s.PlayerCount-1 {
		s.Stage = StageFinished

		return nil
	}

	s.VoterIndex++

	return nil
}
