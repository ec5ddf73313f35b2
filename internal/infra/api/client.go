// Package api talks to the quiz backend over HTTP.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"brainquest/internal/domain"
)

// Client implements every remote collaborator the quiz client needs.
type Client struct {
	*BaseClient
}

func NewClient(baseURL string) *Client {
	return &Client{BaseClient: NewBaseClient(strings.TrimRight(baseURL, "/"))}
}

// SetToken attaches a bearer token to all subsequent requests.
func (c *Client) SetToken(token string) {
	if token == "" {
		delete(c.headers, "Authorization")
		return
	}
	c.SetHeader("Authorization", "Bearer "+token)
}

func (c *Client) Topics(ctx context.Context) ([]domain.Topic, error) {
	body, err := c.Get(ctx, "/topics")
	if err != nil {
		return nil, fmt.Errorf("failed to get topics: %w", err)
	}
	var topics []domain.Topic
	if err := decode(body, &topics); err != nil {
		return nil, err
	}
	return topics, nil
}

// FetchQuestion asks for a question of the run's topic and difficulty that is
// not in query.ExcludeIDs. A 404 or an empty answer means the pool is exhausted.
func (c *Client) FetchQuestion(ctx context.Context, query domain.QuestionQuery) (domain.QuestionResult, error) {
	params := url.Values{}
	params.Set("topicId", strconv.FormatInt(query.TopicID, 10))
	params.Set("difficulty", string(query.Difficulty))
	params.Set("excludeIds", joinIDs(query.ExcludeIDs))
	params.Set("playerName", query.PlayerName)
	params.Set("score", strconv.Itoa(query.Score))

	body, err := c.Get(ctx, "/questions/quiz-question?"+params.Encode())
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return domain.Exhausted(), nil
	}
	if err != nil {
		return domain.QuestionResult{}, fmt.Errorf("failed to get question: %w", err)
	}
	if isEmptyBody(body) {
		return domain.Exhausted(), nil
	}

	var q domain.Question
	if err := decode(body, &q); err != nil {
		return domain.QuestionResult{}, err
	}
	if q.ID == 0 && len(q.Answers) == 0 {
		return domain.Exhausted(), nil
	}
	return domain.Found(q), nil
}

func (c *Client) CheckAnswer(ctx context.Context, questionID int64, check domain.AnswerCheck) (domain.AnswerResult, error) {
	endpoint := "/questions/" + strconv.FormatInt(questionID, 10) + "/correct"
	body, err := c.Post(ctx, endpoint, check)
	if err != nil {
		return domain.AnswerResult{}, fmt.Errorf("failed to check answer: %w", err)
	}
	var result domain.AnswerResult
	if err := decode(body, &result); err != nil {
		return domain.AnswerResult{}, err
	}
	return result, nil
}

// UseJoker returns the IDs of the options that survive the joker.
func (c *Client) UseJoker(ctx context.Context, questionID int64, kind domain.JokerKind) ([]int64, error) {
	endpoint := "/questions/" + strconv.FormatInt(questionID, 10) + "/joker?joker=" + url.QueryEscape(string(kind))
	body, err := c.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to use joker: %w", err)
	}
	var q domain.Question
	if err := decode(body, &q); err != nil {
		return nil, err
	}
	return q.AnswerIDs(), nil
}

func (c *Client) Highscores(ctx context.Context, query domain.HighscoreQuery) ([]domain.Highscore, error) {
	params := url.Values{}
	if query.TopicID != 0 {
		params.Set("topicId", strconv.FormatInt(query.TopicID, 10))
	}
	if query.Difficulty != "" {
		params.Set("difficulty", string(query.Difficulty))
	}
	if query.SortBy != "" {
		params.Set("sortBy", string(query.SortBy))
	}
	if query.SortDir != "" {
		params.Set("sortDir", string(query.SortDir))
	}
	if query.Limit > 0 {
		params.Set("limit", strconv.Itoa(query.Limit))
	}
	endpoint := "/highscores"
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	body, err := c.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to get highscores: %w", err)
	}
	var scores []domain.Highscore
	if err := decode(body, &scores); err != nil {
		return nil, err
	}
	return scores, nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges credentials for a token. Rejected credentials yield
// domain.ErrInvalidCredentials.
func (c *Client) Login(ctx context.Context, username, password string) (domain.Token, error) {
	body, err := c.Post(ctx, "/auth/login", loginRequest{Username: username, Password: password})
	if errors.Is(err, domain.ErrUnauthenticated) {
		return domain.Token{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return domain.Token{}, fmt.Errorf("failed to log in: %w", err)
	}
	var token domain.Token
	if err := decode(body, &token); err != nil {
		return domain.Token{}, err
	}
	if token.AccessToken == "" {
		return domain.Token{}, errors.New("login response carries no access token")
	}
	return token, nil
}

func decode(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w, raw response: %s", err, string(body))
	}
	return nil
}

func isEmptyBody(body []byte) bool {
	switch string(bytes.TrimSpace(body)) {
	case "", "{}", "[]", "null":
		return true
	}
	return false
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
