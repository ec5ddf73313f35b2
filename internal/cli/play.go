package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"brainquest/internal/app"
	"brainquest/internal/config"
	"brainquest/internal/domain"
	"brainquest/internal/grid"
	"brainquest/internal/validation"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewPlayCmd runs an interactive quiz in the terminal.
func NewPlayCmd(cfg *config.Config) *cobra.Command {
	var (
		name       string
		topicID    int64
		difficulty string
		params     string
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a timed quiz",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d := buildDeps(ctx, *cfg)
			defer d.close()

			out := cmd.OutOrStdout()
			in := newLineReader(cmd.InOrStdin())
			lobby := d.lobby()

			blob := params
			if blob == "" {
				var err error
				blob, err = prepareGame(ctx, lobby, in, out, name, topicID, difficulty)
				if err != nil {
					return err
				}
			}
			session, err := lobby.Open(blob)
			if err != nil {
				return errors.New(userMessage(err))
			}

			controller := app.NewController(d.client, session,
				app.WithSlowThreshold(config.TTLDuration(cfg.API.SlowThreshold, app.DefaultSlowThreshold)))
			defer controller.Close()
			return playSession(ctx, d, controller, in, out)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "player name")
	cmd.Flags().Int64Var(&topicID, "topic", 0, "topic ID")
	cmd.Flags().StringVar(&difficulty, "difficulty", "", "EASY, MEDIUM or HARD")
	cmd.Flags().StringVar(&params, "params", "", "game link parameters")
	return cmd
}

// prepareGame asks for whatever the flags left open and returns the game blob.
func prepareGame(ctx context.Context, lobby *app.Lobby, in *lineReader, out io.Writer, name string, topicID int64, difficulty string) (string, error) {
	for {
		result := validation.ValidatePlayerName(name)
		if result.Valid {
			name = result.Name
			break
		}
		if name != "" {
			fmt.Fprintln(out, result.Reason)
		}
		var err error
		if name, err = in.ask(out, "Your name: "); err != nil {
			return "", err
		}
	}

	var topic domain.Topic
	if topicID != 0 {
		var err error
		if topic, err = lobby.Topic(ctx, topicID); err != nil {
			return "", err
		}
	} else {
		topics, err := lobby.Topics(ctx)
		if err != nil {
			return "", err
		}
		if len(topics) == 0 {
			return "", errors.New("no topics available")
		}
		printTopics(out, topics)
		for topic.ID == 0 {
			line, err := in.ask(out, "Topic: ")
			if err != nil {
				return "", err
			}
			id, _ := strconv.ParseInt(line, 10, 64)
			for _, t := range topics {
				if t.ID == id {
					topic = t
				}
			}
		}
	}

	level, err := domain.ParseDifficulty(difficulty)
	for err != nil || !topic.Allows(level) {
		if difficulty != "" {
			fmt.Fprintf(out, "%s is not offered for %s.\n", strings.ToUpper(difficulty), topic.Name)
		}
		printDifficulties(out, topic.Difficulties)
		if difficulty, err = in.ask(out, "Difficulty: "); err != nil {
			return "", err
		}
		level, err = domain.ParseDifficulty(difficulty)
	}

	_, blob, err := lobby.Prepare(name, topic, level)
	return blob, err
}

// playSession drives the controller from terminal input. Input typed ahead is
// queued until the round accepts it.
func playSession(ctx context.Context, d *deps, controller *app.Controller, in *lineReader, out io.Writer) error {
	updates, unsubscribe := controller.Subscribe()
	defer unsubscribe()

	results := make(chan error, 8)
	inflight := 0
	act := func(action func(context.Context) error) {
		inflight++
		go func() { results <- action(ctx) }()
	}

	var (
		last    app.Snapshot
		pending []string
		lines   = in.lines
	)
	act(controller.Start)

	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				return nil
			}
			renderSnapshot(out, last, snap)
			last = snap
			if snap.State.Terminal() {
				return finishGame(ctx, d, controller, out)
			}
		case err := <-results:
			inflight--
			if err != nil && !errors.Is(err, domain.ErrControllerClosed) && last.State != app.StateFailed {
				fmt.Fprintln(out, "!", userMessage(err))
			}
		case line, ok := <-lines:
			if !ok {
				lines = nil
				break
			}
			pending = append(pending, line)
		case <-ctx.Done():
			return ctx.Err()
		}

		if inflight > 0 {
			continue
		}
		// Decide on the controller's current state; rendered snapshots may lag behind.
		current := controller.Snapshot()
		for len(pending) > 0 && inflight == 0 && (pending[0] == "q" || acceptsInput(current.State)) {
			line := pending[0]
			pending = pending[1:]
			if line == "q" {
				return finishGame(ctx, d, controller, out)
			}
			handleInput(line, current, controller, act, out)
			current = controller.Snapshot()
		}
		if lines == nil && len(pending) == 0 && inflight == 0 && acceptsInput(current.State) {
			log.Debug().Msg("input closed, leaving quiz")
			return finishGame(ctx, d, controller, out)
		}
	}
}

func acceptsInput(s app.State) bool {
	return s == app.StateAnswering || s == app.StateCorrect
}

func handleInput(line string, snap app.Snapshot, controller *app.Controller, act func(func(context.Context) error), out io.Writer) {
	switch snap.State {
	case app.StateCorrect:
		act(controller.Next)
	case app.StateAnswering:
		if strings.EqualFold(line, "j") {
			act(controller.UseJoker)
			return
		}
		shown := snap.Round.ShownIDs()
		n, err := strconv.Atoi(line)
		if err != nil || n < 1 || n > len(shown) {
			fmt.Fprintf(out, "Enter 1-%d, j or q.\n", len(shown))
			return
		}
		if err := controller.Select(shown[n-1]); err != nil {
			fmt.Fprintln(out, "!", userMessage(err))
			return
		}
		act(controller.Submit)
	}
}

func finishGame(ctx context.Context, d *deps, controller *app.Controller, out io.Writer) error {
	score := controller.Snapshot().Score
	blob, err := controller.Finish()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nFinal score: %d\n\n", score)
	return showLeaderboard(ctx, d, out, blob)
}

// renderSnapshot prints what changed between prev and next.
func renderSnapshot(out io.Writer, prev, next app.Snapshot) {
	if next.Slow && !prev.Slow {
		fmt.Fprintln(out, "... the server is taking longer than usual")
	}
	if next.Recovered && !prev.Recovered {
		fmt.Fprintln(out, "... operation succeeded")
	}

	sameRound := prev.Round != nil && next.Round != nil && prev.Round.Number == next.Round.Number
	if prev.State == next.State && sameRound {
		if len(prev.Round.ShownIDs()) != len(next.Round.ShownIDs()) {
			fmt.Fprintln(out, "50:50 used.")
			printOptions(out, *next.Round)
			return
		}
		if r := next.Round.Remaining; r != prev.Round.Remaining && (r%10 == 0 || r <= 5) {
			fmt.Fprintf(out, "  %ds left\n", r)
		}
		return
	}
	if prev.State == next.State {
		return
	}

	switch next.State {
	case app.StateLoading:
		fmt.Fprintln(out, "Loading question...")
	case app.StateAnswering:
		r := next.Round
		fmt.Fprintf(out, "\nQuestion %d  %s (%s)  score %d  jokers %d  time %ds\n",
			r.Number, next.TopicName, next.Difficulty, next.Score, next.JokersLeft, r.Remaining)
		fmt.Fprintln(out, r.Question)
		printOptions(out, *r)
		fmt.Fprintln(out, "Enter a number to answer, j for the 50:50 joker, q to quit.")
	case app.StateChecking:
		fmt.Fprintln(out, "Checking your answer...")
	case app.StateCorrect:
		fmt.Fprintf(out, "Correct! %s\nPress enter for the next question.\n", next.Round.Info)
	case app.StateGameOver:
		fmt.Fprintf(out, "Wrong. The correct answer was %s.\n%s\n", correctText(next.Round), next.Round.Info)
	case app.StateGameBeaten:
		fmt.Fprintln(out, "You answered every question. Quiz beaten!")
	case app.StateFailed:
		fmt.Fprintf(out, "Something went wrong: %s\nStart over with `brainquest play`.\n", next.Error)
	}
}

func printOptions(out io.Writer, r app.RoundView) {
	var cells []string
	n := 0
	for _, o := range r.Options {
		if !o.Shown {
			continue
		}
		n++
		cells = append(cells, fmt.Sprintf("[%d] %-28s", n, o.Text))
	}
	for _, row := range grid.Chunk(cells, 2) {
		fmt.Fprintln(out, " ", strings.TrimRight(strings.Join(row, " "), " "))
	}
}

func correctText(r *app.RoundView) string {
	if r == nil {
		return "unknown"
	}
	for _, o := range r.Options {
		if o.ID == r.CorrectAnswerID {
			return o.Text
		}
	}
	return "unknown"
}
