package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"brainquest/internal/domain"
	"brainquest/internal/infra/api/apitest"
)

func newBackend() *apitest.Backend {
	space := domain.Topic{ID: 7, Name: "Space", Difficulties: []domain.Difficulty{domain.DifficultyEasy}}
	b := &apitest.Backend{
		Topics: []domain.Topic{space},
		Questions: []apitest.Question{{
			Question: domain.Question{
				ID:         1,
				Text:       "Closest planet to the sun?",
				Difficulty: domain.DifficultyEasy,
				Answers: []domain.Answer{
					{ID: 11, Text: "Mercury"}, {ID: 12, Text: "Venus"},
					{ID: 13, Text: "Mars"}, {ID: 14, Text: "Earth"},
				},
			},
			TopicID: 7,
			Correct: 11,
			Info:    "Mercury orbits at 0.39 AU.",
		}},
		Users: map[string]string{"admin": "secret"},
		Token: "access",
	}
	b.AddHighscore(domain.Highscore{PlayerName: "Bob", Score: 2, Difficulty: domain.DifficultyEasy, Topic: space})
	b.AddHighscore(domain.Highscore{PlayerName: "Alice", Score: 5, Difficulty: domain.DifficultyEasy, Topic: space})
	return b
}

func TestClientQuizRoundTrip(t *testing.T) {
	ctx := context.Background()
	srv := apitest.NewServer(newBackend())
	defer srv.Close()
	client := NewClient(srv.URL + "/")

	topics, err := client.Topics(ctx)
	if err != nil || len(topics) != 1 || !topics[0].Allows(domain.DifficultyEasy) {
		t.Fatalf("unexpected topics %+v (%v)", topics, err)
	}

	query := domain.QuestionQuery{TopicID: 7, Difficulty: domain.DifficultyEasy, PlayerName: "Alice"}
	result, err := client.FetchQuestion(ctx, query)
	if err != nil {
		t.Fatalf("fetch question: %v", err)
	}
	q, ok := result.Question()
	if !ok || q.ID != 1 || len(q.Answers) != 4 || q.Answers[0].Text != "Mercury" {
		t.Fatalf("unexpected question %+v", q)
	}

	survivors, err := client.UseJoker(ctx, 1, domain.JokerFiftyFifty)
	if err != nil || len(survivors) != 2 || survivors[0] != 11 {
		t.Fatalf("unexpected joker result %v (%v)", survivors, err)
	}

	verdict, err := client.CheckAnswer(ctx, 1, domain.AnswerCheck{AnswerID: 11, PlayerName: "Alice"})
	if err != nil || !verdict.Correct || verdict.CorrectAnswerID != 11 || verdict.Info == "" {
		t.Fatalf("unexpected verdict %+v (%v)", verdict, err)
	}

	query.ExcludeIDs = []int64{1}
	result, err = client.FetchQuestion(ctx, query)
	if err != nil || !result.IsExhausted() {
		t.Fatalf("expected exhausted pool, got %+v (%v)", result, err)
	}
}

func TestFetchQuestionEmptyBodiesMeanExhausted(t *testing.T) {
	for _, body := range []string{"", "{}", "[]", " null\n"} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, body)
		}))
		result, err := NewClient(srv.URL).FetchQuestion(context.Background(), domain.QuestionQuery{TopicID: 1})
		srv.Close()
		if err != nil || !result.IsExhausted() {
			t.Fatalf("body %q: expected exhausted, got %+v (%v)", body, result, err)
		}
	}
}

func TestFetchQuestionSendsQuery(t *testing.T) {
	var got http.Header
	var query map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header
		query = r.URL.Query()
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).FetchQuestion(context.Background(), domain.QuestionQuery{
		TopicID:    3,
		Difficulty: domain.DifficultyHard,
		ExcludeIDs: []int64{4, 9},
		PlayerName: "Ada Lovelace",
		Score:      2,
	})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got.Get("Accept") != "application/json" {
		t.Fatalf("expected json accept header, got %q", got.Get("Accept"))
	}
	want := map[string]string{"topicId": "3", "difficulty": "HARD", "excludeIds": "4,9", "playerName": "Ada Lovelace", "score": "2"}
	for key, value := range want {
		if query[key][0] != value {
			t.Fatalf("expected %s=%s, got %v", key, value, query[key])
		}
	}
}

func TestClientMapsStatusCodes(t *testing.T) {
	status := http.StatusUnauthorized
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, `{"message":"nope"}`)
	}))
	defer srv.Close()
	client := NewClient(srv.URL)

	if _, err := client.Topics(context.Background()); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}

	status = http.StatusInternalServerError
	_, err := client.CheckAnswer(context.Background(), 1, domain.AnswerCheck{})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected status error, got %v", err)
	}
	if _, err := client.FetchQuestion(context.Background(), domain.QuestionQuery{}); err == nil {
		t.Fatalf("server errors must not read as exhaustion")
	}
}

func TestHighscoresSortedByScore(t *testing.T) {
	srv := apitest.NewServer(newBackend())
	defer srv.Close()

	rows, err := NewClient(srv.URL).Highscores(context.Background(), domain.HighscoreQuery{
		TopicID:    7,
		Difficulty: domain.DifficultyEasy,
		SortBy:     domain.SortByScore,
		SortDir:    domain.SortDesc,
	})
	if err != nil {
		t.Fatalf("highscores: %v", err)
	}
	if len(rows) != 2 || rows[0].PlayerName != "Alice" || rows[0].TopicName() != "Space" {
		t.Fatalf("unexpected rows %+v", rows)
	}
}

func TestLogin(t *testing.T) {
	srv := apitest.NewServer(newBackend())
	defer srv.Close()
	client := NewClient(srv.URL)

	token, err := client.Login(context.Background(), "admin", "secret")
	if err != nil || token.AccessToken != "access" {
		t.Fatalf("expected access token, got %+v (%v)", token, err)
	}
	if _, err := client.Login(context.Background(), "admin", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestLoginRejectsMalformedToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds["username"] != "admin" {
			t.Errorf("expected username in body, got %v", creds)
		}
		_, _ = io.WriteString(w, `{"accessToken":42}`)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL).Login(context.Background(), "admin", "secret"); err == nil {
		t.Fatalf("expected non-string token to be rejected")
	}
}
