// Package ws exposes a quiz session over a websocket so browser or remote
// frontends can drive the round controller.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"brainquest/internal/app"
	"brainquest/internal/domain"
	"brainquest/internal/nav"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type Gateway struct {
	api         app.QuizAPI
	leaderboard *app.Leaderboard
	opts        []app.Option
	upgrader    websocket.Upgrader
}

func NewGateway(api app.QuizAPI, scores app.HighscoreSource, opts ...app.Option) *Gateway {
	return &Gateway{
		api:         api,
		leaderboard: app.NewLeaderboard(scores, nil),
		opts:        opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

const (
	msgState    = "state"
	msgFinished = "finished"
	msgError    = "error"

	msgSelect = "select"
	msgSubmit = "submit"
	msgJoker  = "joker"
	msgNext   = "next"
	msgFinish = "finish"
)

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	AnswerID int64 `json:"answerId"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type finishedPayload struct {
	Params     string             `json:"params"`
	Highscores []domain.Highscore `json:"highscores"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades GET /ws?params=<game blob> and runs one quiz session per connection.
func (g *Gateway) ServeWS(w http.ResponseWriter, r *http.Request) {
	session, err := app.OpenSession(r.URL.Query().Get(nav.ParamKey))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	logger := log.With().Str("session_id", session.ID).Logger()
	logger.Info().Str("player", session.PlayerName).Int64("topic_id", session.TopicID).Msg("quiz connection opened")

	ctx, cancel := context.WithCancel(context.Background())
	controller := app.NewController(g.api, session, g.opts...)
	updates, unsubscribe := controller.Subscribe()
	defer unsubscribe()

	send := make(chan outboundMessage, 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	var workers sync.WaitGroup

	emit := func(msg outboundMessage) {
		select {
		case send <- msg:
		case <-closeSignals:
		}
	}
	emitErr := func(err error) {
		emit(outboundMessage{Type: msgError, Payload: errorPayload{Message: err.Error()}})
	}
	// run executes a controller action off the read loop so finish can interrupt it.
	run := func(action func(context.Context) error) {
		workers.Add(1)
		go func() {
			defer workers.Done()
			if err := action(ctx); err != nil && !errors.Is(err, domain.ErrControllerClosed) {
				emitErr(err)
			}
		}()
	}

	// The writer owns conn writes. After a failed write it closes conn to stop the
	// read loop and keeps draining send so emitters never block.
	go func() {
		defer close(writerDone)
		broken := false
		for msg := range send {
			if broken {
				continue
			}
			if err := conn.WriteJSON(msg); err != nil {
				logger.Warn().Err(err).Msg("ws write error")
				_ = conn.Close()
				broken = true
			}
		}
	}()

	workers.Add(1)
	go func() {
		defer workers.Done()
		for snap := range updates {
			emit(outboundMessage{Type: msgState, Payload: snap})
		}
	}()

	run(controller.Start)

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case msgSelect:
			var payload selectPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				emitErr(errors.New("invalid select payload"))
				continue
			}
			if err := controller.Select(payload.AnswerID); err != nil {
				emitErr(err)
			}
		case msgSubmit:
			run(controller.Submit)
		case msgJoker:
			run(controller.UseJoker)
		case msgNext:
			run(controller.Next)
		case msgFinish:
			blob, err := controller.Finish()
			if err != nil {
				emitErr(err)
				continue
			}
			_, scores, err := g.leaderboard.Open(ctx, blob)
			if err != nil {
				emitErr(err)
			}
			emit(outboundMessage{Type: msgFinished, Payload: finishedPayload{Params: blob, Highscores: scores}})
		default:
			emitErr(errors.New("unsupported message type"))
		}
	}

	cancel()
	controller.Close()
	close(closeSignals)
	workers.Wait()
	close(send)
	<-writerDone
	logger.Info().Msg("quiz connection closed")
}
