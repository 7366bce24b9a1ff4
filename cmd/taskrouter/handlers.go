package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"taskrouter/cmd/taskrouter/ui"
	"taskrouter/internal/registry"
)

var handlersCmd = &cobra.Command{
	Use:   "handlers",
	Short: "List the registered handler profiles",
	RunE:  runHandlers,
}

func runHandlers(cmd *cobra.Command, args []string) error {
	reg, err := registry.LoadFile(appConfig.Registry.Path)
	if err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d)\n\n", ui.TitleStyle.Render("Handler profiles"), reg.Len())
	for _, p := range reg.Profiles() {
		fmt.Fprintf(&b, "%s  %s", ui.HandlerStyle.Render(p.Name), ui.LabelStyle.Render(p.Domain))
		if len(p.SecondaryDomains) > 0 {
			fmt.Fprintf(&b, " (+%s)", strings.Join(p.SecondaryDomains, ", "))
		}
		if p.WeightMultiplier != 1.0 {
			fmt.Fprintf(&b, "  ×%.2f", p.WeightMultiplier)
		}
		b.WriteString("\n")
		if p.Description != "" {
			fmt.Fprintf(&b, "  %s\n", ui.RationaleStyle.Render(p.Description))
		}
		fmt.Fprintf(&b, "  %s %s\n", ui.LabelStyle.Render("keywords:"), strings.Join(p.PrimaryKeywords, ", "))
	}

	special := reg.Special()
	fmt.Fprintf(&b, "\n%s fallback=%s coordination=%s strategic=%s conflict=%s",
		ui.LabelStyle.Render("Special:"),
		special.Fallback, special.Coordination, special.Strategic, special.Conflict)

	cmd.Println(ui.BoxStyle.Render(b.String()))
	return nil
}
