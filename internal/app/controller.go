package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"brainquest/internal/domain"
	"brainquest/internal/nav"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// NoInfo is shown when the grader returns no explanation for a question.
const NoInfo = "No additional information available."

// QuizAPI is the remote side of a quiz run.
type QuizAPI interface {
	FetchQuestion(ctx context.Context, query domain.QuestionQuery) (domain.QuestionResult, error)
	CheckAnswer(ctx context.Context, questionID int64, check domain.AnswerCheck) (domain.AnswerResult, error)
	UseJoker(ctx context.Context, questionID int64, kind domain.JokerKind) ([]int64, error)
}

// Controller drives the rounds of one quiz session:
//
//	idle -> loading -> answering -> checking -> correct -> loading ...
//	                                         -> game_over
//	        loading -> game_beaten
//
// Any collaborator failure moves to failed. All state changes happen under one
// mutex that is never held across a network call; results of calls started in an
// earlier round are dropped by comparing round epochs.
type Controller struct {
	api      QuizAPI
	clock    clockwork.Clock
	activity *Activity
	logger   zerolog.Logger

	slowThreshold time.Duration
	slowLinger    time.Duration

	// ctx outlives individual calls and is used for submissions triggered by the countdown.
	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	session      *Session
	state        State
	round        *Round
	rounds       int
	epoch        uint64
	tick         clockwork.Timer
	jokerPending bool
	err          error
	closed       bool
	subscribers  map[chan Snapshot]struct{}
}

// Option customizes a Controller.
type Option func(*Controller)

// WithClock replaces the wall clock driving the countdown and the slow signal.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithSlowThreshold overrides DefaultSlowThreshold.
func WithSlowThreshold(d time.Duration) Option {
	return func(c *Controller) { c.slowThreshold = d }
}

// WithRecoveredLinger overrides DefaultRecoveredLinger.
func WithRecoveredLinger(d time.Duration) Option {
	return func(c *Controller) { c.slowLinger = d }
}

func NewController(api QuizAPI, session *Session, opts ...Option) *Controller {
	c := &Controller{
		api:           api,
		clock:         clockwork.NewRealClock(),
		slowThreshold: DefaultSlowThreshold,
		slowLinger:    DefaultRecoveredLinger,
		session:       session,
		state:         StateIdle,
		subscribers:   make(map[chan Snapshot]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.activity = NewActivity(c.clock, c.slowThreshold, c.slowLinger, c.publish)
	c.logger = log.With().
		Str("session_id", session.ID).
		Int64("topic_id", session.TopicID).
		Str("difficulty", string(session.Difficulty)).
		Logger()
	return c
}

// Start loads the first question.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.ErrControllerClosed
	}
	if c.state != StateIdle {
		c.mu.Unlock()
		return domain.ErrInvalidTransition
	}
	c.mu.Unlock()

	c.logger.Info().Str("player", c.session.PlayerName).Msg("quiz started")
	return c.load(ctx)
}

// Next loads the question following a correctly answered one.
func (c *Controller) Next(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.ErrControllerClosed
	}
	if c.state != StateCorrect {
		state := c.state
		c.mu.Unlock()
		if state.Terminal() {
			return domain.ErrRoundClosed
		}
		return domain.ErrInvalidTransition
	}
	c.mu.Unlock()
	return c.load(ctx)
}

// Select records the player's choice without submitting it. Selecting 0 clears it.
func (c *Controller) Select(answerID int64) error {
	c.mu.Lock()
	if err := c.answeringLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	if answerID != 0 && !c.round.hasAnswer(answerID) {
		c.mu.Unlock()
		return domain.ErrUnknownAnswer
	}
	c.round.Selected = answerID
	c.mu.Unlock()

	c.publish()
	return nil
}

// Submit sends the current selection, or none, for grading.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	req, err := c.beginCheckLocked()
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.publish()
	return c.check(ctx, req)
}

// UseJoker spends one 50:50 joker on the current question and hides the options
// the API eliminated. At most one joker applies per question; a failed request
// does not consume it.
func (c *Controller) UseJoker(ctx context.Context) error {
	c.mu.Lock()
	if err := c.answeringLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.session.JokersLeft <= 0 || c.jokerPending || c.round.JokerUsed {
		c.mu.Unlock()
		return domain.ErrJokerUnavailable
	}
	c.jokerPending = true
	epoch := c.epoch
	questionID := c.round.Question.ID
	c.mu.Unlock()
	c.publish()

	c.logger.Debug().Int64("question_id", questionID).Msg("using 50:50 joker")
	done := c.activity.Begin()
	survivors, err := c.api.UseJoker(ctx, questionID, domain.JokerFiftyFifty)
	done()

	c.mu.Lock()
	c.jokerPending = false
	if err == nil && c.round != nil && epoch == c.epoch && !matchesAny(c.round, survivors) {
		err = fmt.Errorf("joker returned no option of question %d", questionID)
	}
	if err != nil {
		c.mu.Unlock()
		c.logger.Error().Err(err).Int64("question_id", questionID).Msg("failed to fetch joker answers")
		c.publish()
		return fmt.Errorf("use joker: %w", err)
	}
	if c.session.JokersLeft > 0 {
		c.session.JokersLeft--
	}
	if !c.closed && epoch == c.epoch && c.state == StateAnswering {
		keep := make(map[int64]bool, len(survivors))
		for _, id := range survivors {
			keep[id] = true
		}
		for i, a := range c.round.Question.Answers {
			c.round.Shown[i] = keep[a.ID]
		}
		c.round.JokerUsed = true
	}
	c.mu.Unlock()

	c.publish()
	return nil
}

// Finish ends the session from any state, stops all timers and returns the
// leaderboard blob for the topic and difficulty played.
func (c *Controller) Finish() (string, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return "", domain.ErrControllerClosed
	}
	params := nav.LeaderboardParams{TopicID: c.session.TopicID, Difficulty: c.session.Difficulty}
	score := c.session.Score
	c.mu.Unlock()

	blob, err := nav.Encode(params)
	if err != nil {
		return "", err
	}
	c.logger.Info().Int("score", score).Msg("quiz finished")
	c.shutdown(StateFinished)
	return blob, nil
}

// Close stops all timers and subscriptions without producing a hand-off.
func (c *Controller) Close() {
	c.shutdown(StateFinished)
}

// Snapshot returns the current view.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Err returns the cause of the failed state.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Subscribe returns a channel of snapshots, starting with the current one.
// Slow readers only see the latest snapshot. The caller must invoke cancel.
func (c *Controller) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 8)

	c.mu.Lock()
	if c.closed {
		ch <- c.snapshotLocked()
		close(ch)
		c.mu.Unlock()
		return ch, func() {}
	}
	c.subscribers[ch] = struct{}{}
	ch <- c.snapshotLocked()
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		if _, ok := c.subscribers[ch]; ok {
			delete(c.subscribers, ch)
			close(ch)
		}
		c.mu.Unlock()
	}
	return ch, cancel
}

func (c *Controller) load(ctx context.Context) error {
	c.mu.Lock()
	c.stopTickLocked()
	c.epoch++
	epoch := c.epoch
	c.state = StateLoading
	c.round = nil
	query := domain.QuestionQuery{
		TopicID:    c.session.TopicID,
		Difficulty: c.session.Difficulty,
		ExcludeIDs: append([]int64(nil), c.session.Served...),
		PlayerName: c.session.PlayerName,
		Score:      c.session.Score,
	}
	c.mu.Unlock()
	c.publish()

	c.logger.Debug().Ints64("exclude_ids", query.ExcludeIDs).Msg("fetching question")
	done := c.activity.Begin()
	result, err := c.api.FetchQuestion(ctx, query)
	done()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.ErrControllerClosed
	}
	if epoch != c.epoch {
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		c.failLocked(fmt.Errorf("fetch question: %w", err))
		c.mu.Unlock()
		c.publish()
		return err
	}

	question, ok := result.Question()
	if !ok {
		c.state = StateGameBeaten
		c.session.GameOver = true
		c.session.GameBeaten = true
		score := c.session.Score
		c.mu.Unlock()
		c.logger.Info().Int("score", score).Msg("no questions left, game beaten")
		c.publish()
		return nil
	}
	if len(question.Answers) == 0 {
		err := fmt.Errorf("question %d has no answers", question.ID)
		c.failLocked(err)
		c.mu.Unlock()
		c.publish()
		return err
	}

	c.rounds++
	number := c.rounds
	c.session.Served = append(c.session.Served, question.ID)
	c.round = newRound(number, question, c.session.Difficulty.Seconds())
	c.state = StateAnswering
	c.armTickLocked(epoch)
	c.mu.Unlock()

	c.logger.Debug().Int64("question_id", question.ID).Int("round", number).Msg("question loaded")
	c.publish()
	return nil
}

type checkRequest struct {
	epoch      uint64
	questionID int64
	check      domain.AnswerCheck
}

func (c *Controller) beginCheckLocked() (checkRequest, error) {
	if err := c.answeringLocked(); err != nil {
		return checkRequest{}, err
	}
	c.stopTickLocked()
	c.state = StateChecking
	return checkRequest{
		epoch:      c.epoch,
		questionID: c.round.Question.ID,
		check: domain.AnswerCheck{
			AnswerID:   c.round.Selected,
			PlayerName: c.session.PlayerName,
			Score:      c.session.Score,
		},
	}, nil
}

func (c *Controller) check(ctx context.Context, req checkRequest) error {
	c.logger.Debug().
		Int64("question_id", req.questionID).
		Int64("answer_id", req.check.AnswerID).
		Msg("checking answer")
	done := c.activity.Begin()
	result, err := c.api.CheckAnswer(ctx, req.questionID, req.check)
	done()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.ErrControllerClosed
	}
	if req.epoch != c.epoch {
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		c.failLocked(fmt.Errorf("check answer: %w", err))
		c.mu.Unlock()
		c.publish()
		return err
	}

	c.round.CorrectAnswerID = result.CorrectAnswerID
	c.round.Info = result.Info
	if c.round.Info == "" {
		c.round.Info = NoInfo
	}
	if result.Correct {
		c.session.Score++
		c.state = StateCorrect
	} else {
		c.session.GameOver = true
		c.state = StateGameOver
	}
	score := c.session.Score
	c.mu.Unlock()

	c.logger.Info().
		Int64("question_id", req.questionID).
		Bool("correct", result.Correct).
		Int("score", score).
		Msg("answer graded")
	c.publish()
	return nil
}

// answeringLocked rejects round actions outside the answering phase.
func (c *Controller) answeringLocked() error {
	if c.closed {
		return domain.ErrControllerClosed
	}
	switch c.state {
	case StateAnswering:
		return nil
	case StateChecking, StateCorrect, StateGameOver, StateGameBeaten, StateFailed:
		return domain.ErrRoundClosed
	}
	return domain.ErrNotAnswering
}

func (c *Controller) armTickLocked(epoch uint64) {
	c.tick = c.clock.AfterFunc(time.Second, func() { c.onTick(epoch) })
}

func (c *Controller) stopTickLocked() {
	if c.tick != nil {
		c.tick.Stop()
		c.tick = nil
	}
}

func (c *Controller) onTick(epoch uint64) {
	c.mu.Lock()
	if c.closed || epoch != c.epoch || c.state != StateAnswering {
		c.mu.Unlock()
		return
	}
	c.round.Remaining--
	if c.round.Remaining > 0 {
		c.armTickLocked(epoch)
		c.mu.Unlock()
		c.publish()
		return
	}

	c.round.Remaining = 0
	c.tick = nil
	req, err := c.beginCheckLocked()
	c.mu.Unlock()
	if err != nil {
		return
	}

	c.logger.Info().Int64("question_id", req.questionID).Msg("time is up")
	c.publish()
	if err := c.check(c.ctx, req); err != nil && !errors.Is(err, domain.ErrControllerClosed) {
		c.logger.Error().Err(err).Msg("implicit submission failed")
	}
}

func (c *Controller) failLocked(err error) {
	c.stopTickLocked()
	c.err = err
	c.state = StateFailed
	c.logger.Error().Err(err).Msg("quiz session failed")
}

func (c *Controller) shutdown(final State) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.stopTickLocked()
	c.epoch++
	c.state = final
	last := c.snapshotLocked()
	for ch := range c.subscribers {
		deliverLatest(ch, last)
		close(ch)
		delete(c.subscribers, ch)
	}
	c.mu.Unlock()

	c.activity.Stop()
	c.cancel()
}

func (c *Controller) publish() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || len(c.subscribers) == 0 {
		return
	}
	snap := c.snapshotLocked()
	for ch := range c.subscribers {
		deliverLatest(ch, snap)
	}
}

// deliverLatest never blocks: when the buffer is full the oldest snapshot is dropped.
// Callers must be the only sender on ch.
func deliverLatest(ch chan Snapshot, snap Snapshot) {
	select {
	case ch <- snap:
	default:
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		SessionID:  c.session.ID,
		State:      c.state,
		PlayerName: c.session.PlayerName,
		TopicID:    c.session.TopicID,
		TopicName:  c.session.TopicName,
		Difficulty: c.session.Difficulty,
		Score:      c.session.Score,
		JokersLeft: c.session.JokersLeft,
		JokerEnabled: !c.closed && c.state == StateAnswering && c.round != nil &&
			c.session.JokersLeft > 0 && !c.jokerPending && !c.round.JokerUsed,
		Slow:      c.activity.Slow(),
		Recovered: c.activity.Recovered(),
	}
	if c.round != nil {
		s.Round = c.round.view()
	}
	if c.err != nil {
		s.Error = c.err.Error()
	}
	return s
}

func matchesAny(r *Round, ids []int64) bool {
	for _, id := range ids {
		if r.hasAnswer(id) {
			return true
		}
	}
	return false
}
