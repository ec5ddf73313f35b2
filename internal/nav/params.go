// Package nav encodes the parameters handed from one screen to the next.
//
// A blob is JSON, base64 wrapped and query escaped, carried in a single
// "params" query parameter.
package nav

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"

	"brainquest/internal/domain"
)

// ParamKey is the query parameter carrying a blob.
const ParamKey = "params"

// GameParams hands a confirmed name, topic and difficulty to the quiz screen.
type GameParams struct {
	TopicID    int64             `json:"chosenTopicId"`
	Topic      string            `json:"chosenTopic"`
	Difficulty domain.Difficulty `json:"selectedDifficulty"`
	Name       string            `json:"name"`
}

// LeaderboardParams hands a finished run to the leaderboard screen.
type LeaderboardParams struct {
	TopicID    int64             `json:"topicId"`
	Difficulty domain.Difficulty `json:"difficulty"`
}

// Encode serializes v into a blob.
func Encode(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode params: %w", err)
	}
	return url.QueryEscape(base64.StdEncoding.EncodeToString(raw)), nil
}

// Decode parses a blob into v. Any failure wraps domain.ErrInvalidParams.
func Decode(blob string, v any) error {
	if blob == "" {
		return fmt.Errorf("%w: empty", domain.ErrInvalidParams)
	}
	unescaped, err := url.QueryUnescape(blob)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidParams, err)
	}
	raw, err := base64.StdEncoding.DecodeString(unescaped)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidParams, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidParams, err)
	}
	return nil
}

// DecodeGame decodes and checks a quiz screen blob.
func DecodeGame(blob string) (GameParams, error) {
	var p GameParams
	if err := Decode(blob, &p); err != nil {
		return GameParams{}, err
	}
	if p.TopicID == 0 || p.Name == "" {
		return GameParams{}, fmt.Errorf("%w: missing topic or name", domain.ErrInvalidParams)
	}
	d, err := domain.ParseDifficulty(string(p.Difficulty))
	if err != nil {
		return GameParams{}, fmt.Errorf("%w: %v", domain.ErrInvalidParams, err)
	}
	p.Difficulty = d
	return p, nil
}

// DecodeLeaderboard decodes and checks a leaderboard screen blob.
func DecodeLeaderboard(blob string) (LeaderboardParams, error) {
	var p LeaderboardParams
	if err := Decode(blob, &p); err != nil {
		return LeaderboardParams{}, err
	}
	d, err := domain.ParseDifficulty(string(p.Difficulty))
	if err != nil {
		return LeaderboardParams{}, fmt.Errorf("%w: %v", domain.ErrInvalidParams, err)
	}
	p.Difficulty = d
	return p, nil
}
