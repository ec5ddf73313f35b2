package domain

import "errors"

var (
	// ErrUnauthenticated is returned when the API answers 401 or no valid token is stored.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidCredentials indicates the login endpoint rejected username or password.
	ErrInvalidCredentials = errors.New("incorrect username or password")
	// ErrInvalidParams indicates a navigation parameter blob could not be decoded.
	ErrInvalidParams = errors.New("invalid navigation parameters")
	// ErrTokenNotFound is returned by token stores when no value is stored under a key.
	ErrTokenNotFound = errors.New("token not found")
	// ErrInvalidName is wrapped by player name validation failures.
	ErrInvalidName = errors.New("invalid player name")
	// ErrTopicNotFound indicates a topic ID the API does not offer.
	ErrTopicNotFound = errors.New("topic not found")
	// ErrDifficultyNotOffered indicates a difficulty the chosen topic has no questions for.
	ErrDifficultyNotOffered = errors.New("difficulty not offered for topic")

	// ErrNotAnswering is returned for round actions outside the answering phase.
	ErrNotAnswering = errors.New("round is not accepting answers")
	// ErrRoundClosed is returned once an answer has been submitted for the current round.
	ErrRoundClosed = errors.New("round already submitted")
	// ErrUnknownAnswer indicates a selection that is not one of the round's options.
	ErrUnknownAnswer = errors.New("answer not part of question")
	// ErrJokerUnavailable is returned when the joker cannot be used on the current question.
	ErrJokerUnavailable = errors.New("joker unavailable")
	// ErrInvalidTransition is returned for actions the current quiz state does not allow.
	ErrInvalidTransition = errors.New("action not allowed in current state")
	// ErrControllerClosed is returned after the quiz session has been finished.
	ErrControllerClosed = errors.New("quiz session closed")
)
