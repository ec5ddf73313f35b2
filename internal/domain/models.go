package domain

import (
	"fmt"
	"strings"
	"time"
)

// Difficulty is the difficulty level of a question and of a quiz run.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// Difficulties lists every known level in ascending order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// ParseDifficulty accepts a level name in any letter case.
func ParseDifficulty(raw string) (Difficulty, error) {
	d := Difficulty(strings.ToUpper(strings.TrimSpace(raw)))
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, nil
	}
	return "", fmt.Errorf("unknown difficulty %q", raw)
}

// TimeLimit is the answering budget for one question.
func (d Difficulty) TimeLimit() time.Duration {
	switch d {
	case DifficultyEasy:
		return 60 * time.Second
	case DifficultyMedium:
		return 45 * time.Second
	case DifficultyHard:
		return 30 * time.Second
	}
	return 0
}

// Seconds returns TimeLimit as whole seconds.
func (d Difficulty) Seconds() int {
	return int(d.TimeLimit() / time.Second)
}

// Topic is a quiz category together with the difficulties it has questions for.
type Topic struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description,omitempty"`
	Difficulties []Difficulty `json:"difficulty"`
}

// Allows reports whether the topic offers the given difficulty.
func (t Topic) Allows(d Difficulty) bool {
	for _, allowed := range t.Difficulties {
		if allowed == d {
			return true
		}
	}
	return false
}

// Answer is one selectable option of a question.
type Answer struct {
	ID   int64  `json:"id"`
	Text string `json:"answer"`
}

// Question models a multiple choice question as served to players.
// The correct option is never part of it.
type Question struct {
	ID         int64      `json:"id"`
	Text       string     `json:"question"`
	Difficulty Difficulty `json:"difficulty,omitempty"`
	Answers    []Answer   `json:"answers"`
}

// AnswerIDs returns the option IDs in display order.
func (q Question) AnswerIDs() []int64 {
	ids := make([]int64, 0, len(q.Answers))
	for _, a := range q.Answers {
		ids = append(ids, a.ID)
	}
	return ids
}

// QuestionQuery holds the parameters of a question fetch.
type QuestionQuery struct {
	TopicID    int64
	Difficulty Difficulty
	ExcludeIDs []int64
	PlayerName string
	Score      int
}

// QuestionResult is either a served question or the signal that the pool is exhausted.
type QuestionResult struct {
	question *Question
}

// Found wraps a served question.
func Found(q Question) QuestionResult {
	return QuestionResult{question: &q}
}

// Exhausted reports that no unserved question is left.
func Exhausted() QuestionResult {
	return QuestionResult{}
}

// Question returns the served question, or false when the pool is exhausted.
func (r QuestionResult) Question() (Question, bool) {
	if r.question == nil {
		return Question{}, false
	}
	return *r.question, true
}

// IsExhausted is the negation of the ok value of Question.
func (r QuestionResult) IsExhausted() bool {
	return r.question == nil
}

// AnswerCheck is the grading request for one question.
type AnswerCheck struct {
	AnswerID   int64  `json:"answerId"`
	PlayerName string `json:"playerName"`
	Score      int    `json:"score"`
}

// AnswerResult is the grading verdict for one question.
type AnswerResult struct {
	Correct         bool   `json:"correct"`
	CorrectAnswerID int64  `json:"correctAnswerId"`
	Info            string `json:"info"`
}

// JokerKind names an aid a player can use on a question.
type JokerKind string

const JokerFiftyFifty JokerKind = "FIFTY_FIFTY"

// SortBy is the highscore sort field.
type SortBy string

const (
	SortByID         SortBy = "ID"
	SortByScore      SortBy = "SCORE"
	SortByPlayerName SortBy = "PLAYER_NAME"
)

// SortDir is the highscore sort direction.
type SortDir string

const (
	SortAsc  SortDir = "ASC"
	SortDesc SortDir = "DESC"
)

// HighscoreQuery filters and orders a highscore listing. Zero values are left out of the request.
type HighscoreQuery struct {
	TopicID    int64
	Difficulty Difficulty
	SortBy     SortBy
	SortDir    SortDir
	Limit      int
}

// Highscore is a single leaderboard row.
type Highscore struct {
	ID         int64      `json:"id"`
	PlayerName string     `json:"playerName"`
	Score      int        `json:"score"`
	Difficulty Difficulty `json:"difficulty"`
	Topic      Topic      `json:"topic"`
}

// TopicName is the display name of the topic the score was reached in.
func (h Highscore) TopicName() string {
	return h.Topic.Name
}

// Token is the credential pair issued by the login endpoint.
type Token struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}
