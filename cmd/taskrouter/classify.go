package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"taskrouter/cmd/taskrouter/ui"
	"taskrouter/internal/triage"
)

var (
	classifyRecent []string
	classifyJSON   bool
)

var classifyCmd = &cobra.Command{
	Use:   "classify [query...]",
	Short: "Classify queries and print the selected handler",
	Long: `Classifies one or more queries. A single query prints a full selection
report; multiple queries are classified in parallel and printed one per
line.

Recent conversation turns can be supplied with --recent (oldest first) so
domain momentum carries across turns:

  taskrouter classify --recent "profile the slow endpoint" "now fix the docs"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().StringArrayVar(&classifyRecent, "recent", nil, "recent query for conversational momentum (repeatable, oldest first)")
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "emit machine-readable JSON")
}

func runClassify(cmd *cobra.Command, args []string) error {
	r, err := newRouter(appConfig)
	if err != nil {
		return err
	}
	defer r.close()

	if len(args) > 1 {
		results, err := r.classifier.ClassifyBatch(cmd.Context(), args)
		if err != nil {
			return err
		}
		if classifyJSON {
			return printJSON(cmd, results)
		}
		for i, res := range results {
			cmd.Printf("%s  %s  %s  %q\n",
				ui.State(res.State.String()), ui.Confidence(res.Confidence),
				ui.HandlerStyle.Render(res.Handler), args[i])
		}
		return nil
	}

	var qctx *triage.Context
	if len(classifyRecent) > 0 {
		qctx = &triage.Context{RecentQueries: classifyRecent}
	}
	result := r.classifier.Classify(args[0], qctx)

	if classifyJSON {
		return printJSON(cmd, result)
	}
	cmd.Println(renderResult(args[0], result))
	return nil
}

func renderResult(query string, r triage.SelectionResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %q\n\n", ui.TitleStyle.Render("Query"), query)
	fmt.Fprintf(&b, "%s      %s\n", ui.LabelStyle.Render("State"), ui.State(r.State.String()))
	fmt.Fprintf(&b, "%s    %s\n", ui.LabelStyle.Render("Handler"), ui.HandlerStyle.Render(r.Handler))
	fmt.Fprintf(&b, "%s %s\n", ui.LabelStyle.Render("Confidence"), ui.Confidence(r.Confidence))
	if len(r.Domains) > 0 {
		fmt.Fprintf(&b, "%s    %s\n", ui.LabelStyle.Render("Domains"), strings.Join(r.Domains, ", "))
	}
	for _, c := range r.Conflicts {
		fmt.Fprintf(&b, "%s   %s %s/%s (%d indicators)\n",
			ui.LabelStyle.Render("Conflict"), ui.Severity(string(c.Severity)),
			c.DomainA, c.DomainB, c.IndicatorCount)
	}
	fmt.Fprintf(&b, "\n%s", ui.RationaleStyle.Render(r.Rationale))
	return ui.BoxStyle.Render(b.String())
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(data))
	return nil
}
