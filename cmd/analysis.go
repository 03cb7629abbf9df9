package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/spigell/hh-interviewer/internal/interview"
)

var analysisCmd = &cobra.Command{
	Use:   "analysis <interview-id>",
	Short: "Print the scorecard of a completed interview",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalysis(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(analysisCmd)

	analysisCmd.Flags().Bool("raw", false, "print the scorecard as JSON")
}

func runAnalysis(cmd *cobra.Command, interviewID string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApplication()
	if err != nil {
		return err
	}
	defer a.Close()

	svc, err := a.service(ctx, false)
	if err != nil {
		return err
	}

	scorecard, err := svc.Analysis(ctx, interviewID)
	if err != nil {
		return err
	}

	if raw, _ := cmd.Flags().GetBool("raw"); raw {
		pretty, err := json.MarshalIndent(scorecard, "", "  ")
		if err != nil {
			return fmt.Errorf("encode scorecard: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(pretty))
		return nil
	}

	printScorecard(cmd.OutOrStdout(), scorecard)
	return nil
}

func printScorecard(out io.Writer, scorecard interview.Scorecard) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tSCORE\tCOMMENT")

	total := 0
	for _, name := range interview.MetricNames {
		metric := scorecard[name]
		total += metric.Score
		fmt.Fprintf(w, "%s\t%d/%d\t%s\n", name, metric.Score, interview.MaxScore, metric.Comment)
	}
	_ = w.Flush()

	fmt.Fprintf(out, "\nAverage: %.1f/%d\n", float64(total)/float64(len(interview.MetricNames)), interview.MaxScore)
}
