package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskrouter/cmd/taskrouter/ui"
	"taskrouter/internal/learning"
)

var (
	feedbackHandler    string
	feedbackConfidence float64
	feedbackSuccess    bool
	feedbackFailure    bool
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback [query]",
	Short: "Report the outcome of a routed query",
	Long: `Records whether a routing decision worked out. Successful outcomes on
confident selections reinforce the pattern; failures penalize it harder
than successes reward it, so a bad route is unlearned quickly.

Example:
  taskrouter feedback "pytest async mock failures" --handler test-engineer --confidence 0.82 --success`,
	Args: cobra.ExactArgs(1),
	RunE: runFeedback,
}

func init() {
	feedbackCmd.Flags().StringVar(&feedbackHandler, "handler", "", "handler that served the query (required)")
	feedbackCmd.Flags().Float64Var(&feedbackConfidence, "confidence", 0, "confidence the selection was made at (required)")
	feedbackCmd.Flags().BoolVar(&feedbackSuccess, "success", false, "the handler resolved the query")
	feedbackCmd.Flags().BoolVar(&feedbackFailure, "failure", false, "the handler did not resolve the query")
	_ = feedbackCmd.MarkFlagRequired("handler")
	_ = feedbackCmd.MarkFlagRequired("confidence")
}

func runFeedback(cmd *cobra.Command, args []string) error {
	if feedbackSuccess == feedbackFailure {
		return fmt.Errorf("exactly one of --success or --failure is required")
	}

	r, err := newRouter(appConfig)
	if err != nil {
		return err
	}
	defer r.close()

	outcome := learning.OutcomeSuccess
	if feedbackFailure {
		outcome = learning.OutcomeFailure
	}
	r.classifier.Feedback(args[0], feedbackHandler, feedbackConfidence, outcome)

	cmd.Printf("%s %s outcome recorded for %s\n",
		ui.TitleStyle.Render("Feedback:"), string(outcome),
		ui.HandlerStyle.Render(feedbackHandler))
	return nil
}
