package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"brainquest/internal/config"
	"brainquest/internal/domain"
	"brainquest/internal/nav"

	"github.com/spf13/cobra"
)

// NewHighscoresCmd shows the leaderboard of a topic and difficulty.
func NewHighscoresCmd(cfg *config.Config) *cobra.Command {
	var (
		topicID    int64
		difficulty string
		params     string
	)
	cmd := &cobra.Command{
		Use:   "highscores",
		Short: "Show the leaderboard for a topic and difficulty",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d := buildDeps(ctx, *cfg)
			defer d.close()

			if params == "" {
				if topicID == 0 {
					return errors.New("either --params or --topic is required")
				}
				level, err := domain.ParseDifficulty(difficulty)
				if err != nil {
					return err
				}
				if params, err = nav.Encode(nav.LeaderboardParams{TopicID: topicID, Difficulty: level}); err != nil {
					return err
				}
			}
			return showLeaderboard(ctx, d, cmd.OutOrStdout(), params)
		},
	}
	cmd.Flags().Int64Var(&topicID, "topic", 0, "topic ID")
	cmd.Flags().StringVar(&difficulty, "difficulty", string(domain.DifficultyEasy), "EASY, MEDIUM or HARD")
	cmd.Flags().StringVar(&params, "params", "", "leaderboard link parameters")
	return cmd
}

func showLeaderboard(ctx context.Context, d *deps, out io.Writer, blob string) error {
	params, scores, err := d.leaderboard().Open(ctx, blob)
	if err != nil {
		return errors.New(userMessage(err))
	}
	title := fmt.Sprintf("topic %d", params.TopicID)
	if len(scores) > 0 {
		title = scores[0].TopicName()
	}
	fmt.Fprintf(out, "Highscores: %s (%s)\n", title, params.Difficulty)
	printHighscores(out, scores)
	return nil
}

func printHighscores(out io.Writer, scores []domain.Highscore) {
	if len(scores) == 0 {
		fmt.Fprintln(out, "No highscores yet.")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPLAYER\tSCORE")
	for i, h := range scores {
		fmt.Fprintf(tw, "%d\t%s\t%d\n", i+1, h.PlayerName, h.Score)
	}
	_ = tw.Flush()
}
