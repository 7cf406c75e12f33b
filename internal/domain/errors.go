package domain

import "errors"

// Domain errors
var (
	ErrNoDocument        = errors.New("no document loaded")
	ErrEmptyQuestion     = errors.New("question cannot be empty")
	ErrEmptyAnswer       = errors.New("answer cannot be empty")
	ErrNoActiveQuestion  = errors.New("no active challenge question")
	ErrCannotSkip        = errors.New("cannot skip the last question")
	ErrChallengeComplete = errors.New("challenge already complete")
	ErrAlreadyAnswered   = errors.New("question already answered")
	ErrNotAnswered       = errors.New("question not answered yet")
	ErrUnknownMode       = errors.New("unknown mode")
)
