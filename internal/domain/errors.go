package domain

import "errors"

var (
	// ErrTokenAcquisition is returned when a session token could not be
	// fetched from the trivia provider. Fatal to starting a session.
	ErrTokenAcquisition = errors.New("trivia: token acquisition failed")
	// ErrTokenExpired signals the provider reported an exhausted or expired
	// session token (response_code 4). Recoverable exactly once per fetch.
	ErrTokenExpired = errors.New("trivia: session token expired")
	// ErrQuestionFetch covers any other failed question fetch: non-zero
	// non-4 response codes, network errors, malformed payloads.
	ErrQuestionFetch = errors.New("trivia: question fetch failed")
	// ErrLeaderboardSubmit is returned when the final score could not be
	// posted; the local quiz result remains valid.
	ErrLeaderboardSubmit = errors.New("leaderboard: score submission failed")
	// ErrUnknownAlternative indicates an answer that is not among the
	// current question's alternatives. Programming error, not recoverable.
	ErrUnknownAlternative = errors.New("quiz: alternative not in current question")
	// ErrSessionClosed is returned when operating on a torn-down session.
	ErrSessionClosed = errors.New("quiz: session closed")
)
