package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"taskrouter/cmd/taskrouter/ui"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learned routing patterns",
	Long: `Prints the strongest learned patterns from the configured weight store:
which query shapes route where, at what learned weight, and how often
they succeeded.`,
	RunE: runStats,
}

var statsTop int

func init() {
	statsCmd.Flags().IntVar(&statsTop, "top", 10, "number of patterns to show")
}

func runStats(cmd *cobra.Command, args []string) error {
	r, err := newRouter(appConfig)
	if err != nil {
		return err
	}
	defer r.close()

	patterns := r.engine.TopPatterns(statsTop)
	if len(patterns) == 0 {
		cmd.Println("No learned patterns yet. Use 'taskrouter feedback' after routing queries.")
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", ui.TitleStyle.Render("Learned routing patterns"))
	for _, p := range patterns {
		rate := "n/a"
		if p.Observations > 0 {
			rate = fmt.Sprintf("%.0f%% of %d", p.SuccessRate*100, p.Observations)
		}
		fmt.Fprintf(&b, "%s  %s  weight %s  (%s)\n",
			ui.HandlerStyle.Render(p.Handler),
			ui.LabelStyle.Render(keywordSummary(p.Keywords)),
			ui.Confidence(p.Weight/2), // render against the [0.3, 2.0] scale
			rate)
	}

	byDomain := make(map[string]int)
	for _, p := range patterns {
		if p.Domain != "" {
			byDomain[p.Domain]++
		}
	}
	if len(byDomain) > 0 {
		domains := make([]string, 0, len(byDomain))
		for d := range byDomain {
			domains = append(domains, d)
		}
		sort.Strings(domains)
		fmt.Fprintf(&b, "\n%s %s", ui.LabelStyle.Render("Domains:"), strings.Join(domains, ", "))
	}

	cmd.Println(ui.BoxStyle.Render(b.String()))
	return nil
}

func keywordSummary(keywords []string) string {
	const max = 5
	if len(keywords) <= max {
		return strings.Join(keywords, " ")
	}
	return strings.Join(keywords[:max], " ") + " …"
}
