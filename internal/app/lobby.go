package app

import (
	"context"
	"fmt"

	"brainquest/internal/domain"
	"brainquest/internal/nav"
	"brainquest/internal/validation"

	"github.com/rs/zerolog/log"
)

// TopicSource lists the quiz topics offered by the API.
type TopicSource interface {
	Topics(ctx context.Context) ([]domain.Topic, error)
}

// Lobby is the entry screen: player name, topic and difficulty selection.
type Lobby struct {
	topics   TopicSource
	activity *Activity
}

// NewLobby wires the lobby to a topic source. activity may be nil.
func NewLobby(topics TopicSource, activity *Activity) *Lobby {
	return &Lobby{topics: topics, activity: activity}
}

// Topics loads the selectable topics.
func (l *Lobby) Topics(ctx context.Context) ([]domain.Topic, error) {
	log.Info().Msg("fetching topics")
	done := l.activity.Begin()
	topics, err := l.topics.Topics(ctx)
	done()
	if err != nil {
		log.Error().Err(err).Msg("failed to load topics")
		return nil, fmt.Errorf("load topics: %w", err)
	}
	return topics, nil
}

// Topic looks up a single topic by ID.
func (l *Lobby) Topic(ctx context.Context, id int64) (domain.Topic, error) {
	topics, err := l.Topics(ctx)
	if err != nil {
		return domain.Topic{}, err
	}
	for _, t := range topics {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.Topic{}, fmt.Errorf("%w: %d", domain.ErrTopicNotFound, id)
}

// Prepare validates the player's choices and returns the quiz screen hand-off
// together with its encoded blob.
func (l *Lobby) Prepare(name string, topic domain.Topic, difficulty domain.Difficulty) (nav.GameParams, string, error) {
	result := validation.ValidatePlayerName(name)
	if err := result.Err(); err != nil {
		return nav.GameParams{}, "", err
	}
	if !topic.Allows(difficulty) {
		return nav.GameParams{}, "", fmt.Errorf("%w: %s for %q", domain.ErrDifficultyNotOffered, difficulty, topic.Name)
	}

	params := nav.GameParams{
		TopicID:    topic.ID,
		Topic:      topic.Name,
		Difficulty: difficulty,
		Name:       result.Name,
	}
	blob, err := nav.Encode(params)
	if err != nil {
		return nav.GameParams{}, "", err
	}
	log.Info().
		Str("player", params.Name).
		Int64("topic_id", params.TopicID).
		Str("difficulty", string(difficulty)).
		Msg("game prepared")
	return params, blob, nil
}

// Open decodes a quiz screen blob into a new Session.
func (l *Lobby) Open(blob string) (*Session, error) {
	session, err := OpenSession(blob)
	if err != nil {
		log.Error().Err(err).Msg("failed to decode game params")
		return nil, err
	}
	return session, nil
}
