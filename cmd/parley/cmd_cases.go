package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samdwyer/parley/internal/gamedata"
)

var casesCmd = &cobra.Command{
	Use:   "cases",
	Short: "List the built-in cases",
	RunE: func(cmd *cobra.Command, _ []string) error {
		registry, err := gamedata.LoadCaseRegistry()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, id := range registry.IDs() {
			def, _ := registry.GetByID(id)
			ritual := "no ritual"
			if def.Negotiation.Ritual.Enabled {
				ritual = fmt.Sprintf("ritual x%d", def.Negotiation.Ritual.Length)
			}
			fmt.Fprintf(out, "%-12s %-24s %d phases, %d options, %s\n",
				id, def.Title, len(def.Phases), len(def.Negotiation.Options), ritual)
		}
		return nil
	},
}
