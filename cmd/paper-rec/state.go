package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-rec/internal/recommend"
	"github.com/pdiddy/paper-rec/internal/state"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect the conversation state written by recommend",
}

var stateShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the papers slot of the conversation as a table",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := state.Open(cfg.State, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		papers, order, err := store.Papers(cmd.Context())
		if err != nil {
			return err
		}
		table, err := recommend.RenderTable(papers, order)
		if err != nil {
			return fmt.Errorf("rendering table: %w", err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprint(out, table)
		fmt.Fprintf(out, "\n%d papers in conversation %q\n", len(papers), store.Conversation())
		return nil
	},
}

var stateExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the conversation state (papers and tool messages) as YAML or JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		outPath, _ := cmd.Flags().GetString("output")

		store, err := state.Open(cfg.State, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		w := cmd.OutOrStdout()
		if outPath != "" {
			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("creating %s: %w", outPath, err)
			}
			defer f.Close()
			w = f
		}
		return store.Export(cmd.Context(), format, w)
	},
}

func init() {
	stateExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	stateExportCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")

	stateCmd.AddCommand(stateShowCmd, stateExportCmd)
	rootCmd.AddCommand(stateCmd)
}
