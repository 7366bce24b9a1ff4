package main

import (
	"github.com/spf13/cobra"

	"taskrouter/cmd/taskrouter/ui"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest [query]",
	Short: "Look up the best learned route for a query",
	Long: `Checks the learned pattern store for a previously successful route
matching this query's vocabulary, without running the full classifier.`,
	Args: cobra.ExactArgs(1),
	RunE: runSuggest,
}

func runSuggest(cmd *cobra.Command, args []string) error {
	r, err := newRouter(appConfig)
	if err != nil {
		return err
	}
	defer r.close()

	sug, ok := r.classifier.Suggest(args[0])
	if !ok {
		cmd.Println("No learned pattern matches this query.")
		return nil
	}

	cmd.Printf("%s %s  %s %s  %s %.2f  %s %.2f\n",
		ui.LabelStyle.Render("handler"), ui.HandlerStyle.Render(sug.Handler),
		ui.LabelStyle.Render("domain"), sug.Domain,
		ui.LabelStyle.Render("confidence"), sug.Confidence,
		ui.LabelStyle.Render("similarity"), sug.Similarity)
	return nil
}
