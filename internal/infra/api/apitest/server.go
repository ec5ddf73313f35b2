// Package apitest provides an in-memory quiz backend for tests.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"

	"brainquest/internal/domain"
)

// Question is a served question together with its correct option.
type Question struct {
	domain.Question
	TopicID int64
	Correct int64
	Info    string
}

// Backend answers the quiz API endpoints from fixed content.
type Backend struct {
	Topics    []domain.Topic
	Questions []Question
	Users     map[string]string
	Token     string

	mu         sync.Mutex
	highscores []domain.Highscore
	checks     int
}

// NewServer starts an httptest server for b. The caller must Close it.
func NewServer(b *Backend) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/topics", b.topics)
	mux.HandleFunc("/questions/", b.questions)
	mux.HandleFunc("/highscores", b.listHighscores)
	mux.HandleFunc("/auth/login", b.login)
	return httptest.NewServer(mux)
}

// AddHighscore seeds the leaderboard.
func (b *Backend) AddHighscore(h domain.Highscore) {
	b.mu.Lock()
	defer b.mu.Unlock()
	h.ID = int64(len(b.highscores) + 1)
	b.highscores = append(b.highscores, h)
}

// Checks returns the number of graded answers.
func (b *Backend) Checks() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.checks
}

func (b *Backend) topics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, b.Topics)
}

func (b *Backend) questions(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/questions/")
	if rest == "quiz-question" {
		b.nextQuestion(w, r)
		return
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 2 {
		http.NotFound(w, r)
		return
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}
	q, ok := b.find(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	switch {
	case parts[1] == "correct" && r.Method == http.MethodPost:
		b.check(w, r, q)
	case parts[1] == "joker" && r.Method == http.MethodGet:
		b.joker(w, r, q)
	default:
		http.NotFound(w, r)
	}
}

func (b *Backend) nextQuestion(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	topicID, _ := strconv.ParseInt(query.Get("topicId"), 10, 64)
	difficulty := domain.Difficulty(query.Get("difficulty"))
	excluded := make(map[string]bool)
	for _, id := range strings.Split(query.Get("excludeIds"), ",") {
		excluded[id] = true
	}
	for _, q := range b.Questions {
		if q.TopicID == topicID && q.Difficulty == difficulty && !excluded[strconv.FormatInt(q.ID, 10)] {
			writeJSON(w, http.StatusOK, q.Question)
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func (b *Backend) check(w http.ResponseWriter, r *http.Request, q Question) {
	var check domain.AnswerCheck
	if err := json.NewDecoder(r.Body).Decode(&check); err != nil {
		http.Error(w, "bad body", http.StatusBadRequest)
		return
	}
	b.mu.Lock()
	b.checks++
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, domain.AnswerResult{
		Correct:         check.AnswerID == q.Correct,
		CorrectAnswerID: q.Correct,
		Info:            q.Info,
	})
}

func (b *Backend) joker(w http.ResponseWriter, r *http.Request, q Question) {
	if r.URL.Query().Get("joker") != string(domain.JokerFiftyFifty) {
		http.Error(w, "unknown joker", http.StatusBadRequest)
		return
	}
	reduced := q.Question
	reduced.Answers = nil
	for _, a := range q.Answers {
		if a.ID == q.Correct {
			reduced.Answers = append(reduced.Answers, a)
		}
	}
	for _, a := range q.Answers {
		if a.ID != q.Correct {
			reduced.Answers = append(reduced.Answers, a)
			break
		}
	}
	writeJSON(w, http.StatusOK, reduced)
}

func (b *Backend) listHighscores(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	topicID, _ := strconv.ParseInt(query.Get("topicId"), 10, 64)
	difficulty := domain.Difficulty(query.Get("difficulty"))

	b.mu.Lock()
	rows := make([]domain.Highscore, 0, len(b.highscores))
	for _, h := range b.highscores {
		if (topicID == 0 || h.Topic.ID == topicID) && (difficulty == "" || h.Difficulty == difficulty) {
			rows = append(rows, h)
		}
	}
	b.mu.Unlock()

	if query.Get("sortBy") == string(domain.SortByScore) {
		desc := query.Get("sortDir") == string(domain.SortDesc)
		sort.SliceStable(rows, func(i, j int) bool {
			if desc {
				return rows[i].Score > rows[j].Score
			}
			return rows[i].Score < rows[j].Score
		})
	}
	writeJSON(w, http.StatusOK, rows)
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "bad body", http.StatusBadRequest)
		return
	}
	if pass, ok := b.Users[creds.Username]; !ok || pass != creds.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Incorrect username or password"})
		return
	}
	writeJSON(w, http.StatusOK, domain.Token{AccessToken: b.Token, RefreshToken: "refresh"})
}

func (b *Backend) find(id int64) (Question, bool) {
	for _, q := range b.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
