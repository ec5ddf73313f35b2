package app_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"brainquest/internal/domain"
)

// fakeQuizAPI serves questions in order, skipping excluded IDs. Answer 1 of
// every question is correct.
type fakeQuizAPI struct {
	mu        sync.Mutex
	questions []domain.Question
	queries   []domain.QuestionQuery
	checks    []domain.AnswerCheck

	checkCalls atomic.Int32
	jokerCalls atomic.Int32

	fetchErr error
	checkErr error
	jokerErr error
	// fetchGate, if set, blocks FetchQuestion until it is closed.
	fetchGate    chan struct{}
	fetchStarted chan struct{}
	jokerResult  func(q domain.Question) []int64
}

func newFakeQuizAPI(questions ...domain.Question) *fakeQuizAPI {
	return &fakeQuizAPI{questions: questions}
}

func (f *fakeQuizAPI) FetchQuestion(ctx context.Context, query domain.QuestionQuery) (domain.QuestionResult, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	gate, started := f.fetchGate, f.fetchStarted
	f.fetchStarted = nil
	f.mu.Unlock()

	if started != nil {
		close(started)
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return domain.QuestionResult{}, ctx.Err()
		}
	}
	if f.fetchErr != nil {
		return domain.QuestionResult{}, f.fetchErr
	}

	excluded := make(map[int64]bool, len(query.ExcludeIDs))
	for _, id := range query.ExcludeIDs {
		excluded[id] = true
	}
	for _, q := range f.questions {
		if !excluded[q.ID] {
			return domain.Found(q), nil
		}
	}
	return domain.Exhausted(), nil
}

func (f *fakeQuizAPI) CheckAnswer(ctx context.Context, questionID int64, check domain.AnswerCheck) (domain.AnswerResult, error) {
	f.checkCalls.Add(1)
	f.mu.Lock()
	f.checks = append(f.checks, check)
	f.mu.Unlock()
	if f.checkErr != nil {
		return domain.AnswerResult{}, f.checkErr
	}
	correct := questionID*10 + 1
	return domain.AnswerResult{
		Correct:         check.AnswerID == correct,
		CorrectAnswerID: correct,
	}, nil
}

func (f *fakeQuizAPI) UseJoker(ctx context.Context, questionID int64, kind domain.JokerKind) ([]int64, error) {
	f.jokerCalls.Add(1)
	if kind != domain.JokerFiftyFifty {
		return nil, errors.New("unexpected joker kind")
	}
	if f.jokerErr != nil {
		return nil, f.jokerErr
	}
	for _, q := range f.questions {
		if q.ID == questionID {
			if f.jokerResult != nil {
				return f.jokerResult(q), nil
			}
			return []int64{q.Answers[0].ID, q.Answers[2].ID}, nil
		}
	}
	return nil, errors.New("unknown question")
}

func (f *fakeQuizAPI) lastChecks() []domain.AnswerCheck {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.AnswerCheck(nil), f.checks...)
}

func (f *fakeQuizAPI) lastQueries() []domain.QuestionQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.QuestionQuery(nil), f.queries...)
}

// question builds a question with four options whose IDs are id*10+1..id*10+4.
func question(id int64) domain.Question {
	q := domain.Question{ID: id, Text: "Question"}
	for i := int64(1); i <= 4; i++ {
		q.Answers = append(q.Answers, domain.Answer{ID: id*10 + i, Text: "Option"})
	}
	return q
}
