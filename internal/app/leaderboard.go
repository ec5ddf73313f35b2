package app

import (
	"context"
	"fmt"

	"brainquest/internal/domain"
	"brainquest/internal/nav"

	"github.com/rs/zerolog/log"
)

// HighscoreSource lists highscores from the API.
type HighscoreSource interface {
	Highscores(ctx context.Context, query domain.HighscoreQuery) ([]domain.Highscore, error)
}

// Leaderboard is the highscore screen.
type Leaderboard struct {
	source   HighscoreSource
	activity *Activity
}

// NewLeaderboard wires the leaderboard to a highscore source. activity may be nil.
func NewLeaderboard(source HighscoreSource, activity *Activity) *Leaderboard {
	return &Leaderboard{source: source, activity: activity}
}

// Highscores lists the best scores for a topic and difficulty, best first.
func (l *Leaderboard) Highscores(ctx context.Context, topicID int64, difficulty domain.Difficulty) ([]domain.Highscore, error) {
	query := domain.HighscoreQuery{
		TopicID:    topicID,
		Difficulty: difficulty,
		SortBy:     domain.SortByScore,
		SortDir:    domain.SortDesc,
	}
	log.Info().Int64("topic_id", topicID).Str("difficulty", string(difficulty)).Msg("fetching highscores")
	done := l.activity.Begin()
	scores, err := l.source.Highscores(ctx, query)
	done()
	if err != nil {
		log.Error().Err(err).Msg("failed to load highscores")
		return nil, fmt.Errorf("load highscores: %w", err)
	}
	return scores, nil
}

// Open decodes a leaderboard blob and loads the matching highscores.
func (l *Leaderboard) Open(ctx context.Context, blob string) (nav.LeaderboardParams, []domain.Highscore, error) {
	params, err := nav.DecodeLeaderboard(blob)
	if err != nil {
		log.Error().Err(err).Msg("failed to decode leaderboard params")
		return nav.LeaderboardParams{}, nil, err
	}
	scores, err := l.Highscores(ctx, params.TopicID, params.Difficulty)
	if err != nil {
		return params, nil, err
	}
	return params, scores, nil
}
