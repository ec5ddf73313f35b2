package app

import "brainquest/internal/domain"

// State is the phase of the quiz round state machine.
type State string

const (
	StateIdle       State = "idle"
	StateLoading    State = "loading"
	StateAnswering  State = "answering"
	StateChecking   State = "checking"
	StateCorrect    State = "correct"
	StateGameOver   State = "game_over"
	StateGameBeaten State = "game_beaten"
	StateFailed     State = "failed"
	StateFinished   State = "finished"
)

// Terminal reports whether no further round can follow.
func (s State) Terminal() bool {
	switch s {
	case StateGameOver, StateGameBeaten, StateFailed, StateFinished:
		return true
	}
	return false
}

// Snapshot is an immutable view of a controller for rendering.
type Snapshot struct {
	SessionID    string            `json:"sessionId"`
	State        State             `json:"state"`
	PlayerName   string            `json:"playerName"`
	TopicID      int64             `json:"topicId"`
	TopicName    string            `json:"topicName"`
	Difficulty   domain.Difficulty `json:"difficulty"`
	Score        int               `json:"score"`
	JokersLeft   int               `json:"jokersLeft"`
	JokerEnabled bool              `json:"jokerEnabled"`
	Round        *RoundView        `json:"round,omitempty"`
	Slow         bool              `json:"slow"`
	Recovered    bool              `json:"recovered"`
	Error        string            `json:"error,omitempty"`
}

// RoundView is the rendered part of a Round.
type RoundView struct {
	Number          int          `json:"number"`
	QuestionID      int64        `json:"questionId"`
	Question        string       `json:"question"`
	Options         []OptionView `json:"options"`
	Selected        int64        `json:"selected"`
	Remaining       int          `json:"remaining"`
	CorrectAnswerID int64        `json:"correctAnswerId,omitempty"`
	Info            string       `json:"info,omitempty"`
	JokerUsed       bool         `json:"jokerUsed"`
}

// OptionView is one answer button.
type OptionView struct {
	ID    int64  `json:"id"`
	Text  string `json:"text"`
	Shown bool   `json:"shown"`
}

// ShownIDs returns the IDs of the visible options in display order.
func (r RoundView) ShownIDs() []int64 {
	var ids []int64
	for _, o := range r.Options {
		if o.Shown {
			ids = append(ids, o.ID)
		}
	}
	return ids
}

func (r *Round) view() *RoundView {
	options := make([]OptionView, len(r.Question.Answers))
	for i, a := range r.Question.Answers {
		options[i] = OptionView{ID: a.ID, Text: a.Text, Shown: r.Shown[i]}
	}
	return &RoundView{
		Number:          r.Number,
		QuestionID:      r.Question.ID,
		Question:        r.Question.Text,
		Options:         options,
		Selected:        r.Selected,
		Remaining:       r.Remaining,
		CorrectAnswerID: r.CorrectAnswerID,
		Info:            r.Info,
		JokerUsed:       r.JokerUsed,
	}
}
