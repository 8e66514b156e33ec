package cli

import (
	"github.com/spf13/cobra"
)

// NewScoresCmd создаёт группу команд для просмотра результатов оценки.
func NewScoresCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scores",
		Short: "Inspect evaluation scores",
	}

	cmd.AddCommand(
		newScoresGetCmd(clientFn, outputFn),
		newScoresHistoryCmd(clientFn, outputFn),
	)

	return cmd
}

func newScoresGetCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "get RUN_ID GAME",
		Short: "Show the score of one game in a run",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			score, err := client.GetRunScore(args[0], args[1])
			if err != nil {
				return err
			}

			out.ScoreTable([]ScoreResponse{*score})
			return nil
		},
	}
}

func newScoresHistoryCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history GAME",
		Short: "Show score history of a game across runs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			scores, err := client.ListGameHistory(args[0], limit)
			if err != nil {
				return err
			}

			out.HistoryTable(scores)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of results")

	return cmd
}
