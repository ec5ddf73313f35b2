package app

import (
	"brainquest/internal/domain"
	"brainquest/internal/nav"

	"github.com/google/uuid"
)

// JokerUses is the number of 50:50 jokers a player gets per quiz run.
const JokerUses = 2

// Session is one quiz run: a player working through one topic at one difficulty.
// It is owned by a Controller once handed to NewController.
type Session struct {
	ID         string
	PlayerName string
	TopicID    int64
	TopicName  string
	Difficulty domain.Difficulty
	Score      int
	Served     []int64
	JokersLeft int
	GameOver   bool
	GameBeaten bool
}

// NewSession starts a run from confirmed game parameters.
func NewSession(p nav.GameParams) *Session {
	return &Session{
		ID:         uuid.NewString(),
		PlayerName: p.Name,
		TopicID:    p.TopicID,
		TopicName:  p.Topic,
		Difficulty: p.Difficulty,
		JokersLeft: JokerUses,
	}
}

// OpenSession decodes a quiz screen blob into a new Session.
func OpenSession(blob string) (*Session, error) {
	p, err := nav.DecodeGame(blob)
	if err != nil {
		return nil, err
	}
	return NewSession(p), nil
}

// Round is the lifecycle of a single question.
type Round struct {
	Number          int
	Question        domain.Question
	Shown           []bool
	Selected        int64
	Remaining       int
	CorrectAnswerID int64
	Info            string
	// JokerUsed is set once a joker was applied to this question.
	JokerUsed bool
}

func newRound(number int, q domain.Question, seconds int) *Round {
	shown := make([]bool, len(q.Answers))
	for i := range shown {
		shown[i] = true
	}
	return &Round{
		Number:    number,
		Question:  q,
		Shown:     shown,
		Remaining: seconds,
	}
}

func (r *Round) hasAnswer(id int64) bool {
	for _, a := range r.Question.Answers {
		if a.ID == id {
			return true
		}
	}
	return false
}
