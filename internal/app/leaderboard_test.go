package app_test

import (
	"context"
	"errors"
	"testing"

	"brainquest/internal/app"
	"brainquest/internal/domain"
	"brainquest/internal/nav"
)

type recordingHighscores struct {
	query domain.HighscoreQuery
	rows  []domain.Highscore
}

func (r *recordingHighscores) Highscores(_ context.Context, query domain.HighscoreQuery) ([]domain.Highscore, error) {
	r.query = query
	return r.rows, nil
}

func TestLeaderboardOpenUsesBlob(t *testing.T) {
	source := &recordingHighscores{rows: []domain.Highscore{
		{ID: 1, PlayerName: "Alice", Score: 9, Difficulty: domain.DifficultyHard, Topic: space},
		{ID: 2, PlayerName: "Bob", Score: 4, Difficulty: domain.DifficultyHard, Topic: space},
	}}
	board := app.NewLeaderboard(source, nil)

	blob, err := nav.Encode(nav.LeaderboardParams{TopicID: 7, Difficulty: domain.DifficultyHard})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	params, rows, err := board.Open(context.Background(), blob)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if params.TopicID != 7 || len(rows) != 2 || rows[0].TopicName() != "Space" {
		t.Fatalf("unexpected leaderboard %+v %+v", params, rows)
	}
	want := domain.HighscoreQuery{
		TopicID:    7,
		Difficulty: domain.DifficultyHard,
		SortBy:     domain.SortByScore,
		SortDir:    domain.SortDesc,
	}
	if source.query != want {
		t.Fatalf("expected query %+v, got %+v", want, source.query)
	}
}

func TestLeaderboardRejectsMalformedBlob(t *testing.T) {
	board := app.NewLeaderboard(&recordingHighscores{}, nil)
	if _, _, err := board.Open(context.Background(), "%%%"); !errors.Is(err, domain.ErrInvalidParams) {
		t.Fatalf("expected invalid params, got %v", err)
	}
}
