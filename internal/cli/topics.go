package cli

import (
	"fmt"
	"io"
	"strings"

	"brainquest/internal/config"
	"brainquest/internal/domain"
	"brainquest/internal/grid"

	"github.com/spf13/cobra"
)

// rowWidth is the number of cards per row when laying out choices.
const rowWidth = 3

// NewTopicsCmd lists the quiz topics.
func NewTopicsCmd(cfg *config.Config) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "topics",
		Short: "List quiz topics",
		RunE: func(cmd *cobra.Command, args []string) error {
			d := buildDeps(cmd.Context(), *cfg)
			defer d.close()

			if refresh {
				if err := d.topics.Invalidate(cmd.Context()); err != nil {
					return fmt.Errorf("invalidate topics: %w", err)
				}
			}
			topics, err := d.lobby().Topics(cmd.Context())
			if err != nil {
				return err
			}
			printTopics(cmd.OutOrStdout(), topics)
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "drop cached topics before listing")
	return cmd
}

func printTopics(out io.Writer, topics []domain.Topic) {
	if len(topics) == 0 {
		fmt.Fprintln(out, "No topics available.")
		return
	}
	for _, row := range grid.Chunk(topics, rowWidth) {
		cells := make([]string, len(row))
		for i, t := range row {
			cells[i] = fmt.Sprintf("[%d] %-24s", t.ID, t.Name)
		}
		fmt.Fprintln(out, strings.TrimRight(strings.Join(cells, " "), " "))
	}
}

func printDifficulties(out io.Writer, difficulties []domain.Difficulty) {
	for _, row := range grid.Chunk(difficulties, rowWidth) {
		cells := make([]string, len(row))
		for i, d := range row {
			cells[i] = fmt.Sprintf("%-8s (%ds)", d, d.Seconds())
		}
		fmt.Fprintln(out, strings.Join(cells, "   "))
	}
}
