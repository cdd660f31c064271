package main

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-rec/internal/recommend"
	"github.com/pdiddy/paper-rec/internal/state"
	"github.com/pdiddy/paper-rec/internal/tool"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend <paper-id>",
	Short: "Get recommendations for a single Semantic Scholar paper",
	Long: `Recommend asks the Semantic Scholar recommendations API for papers similar
to the given paper ID (drawn from the all-cs pool), keeps the ones with a
title and at least one author, prints them as a grid table and stores them
in the conversation's papers slot.

The year filter accepts YYYY for a specific year, YYYY- for papers after a
year, -YYYY for papers before a year, or YYYY:YYYY for a range.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecommend,
}

func init() {
	recommendCmd.Flags().Int("limit", 0, "maximum number of recommendations to return, 1-500 (default from config, 2)")
	recommendCmd.Flags().String("year", "", "publication year filter: YYYY, YYYY-, -YYYY or YYYY:YYYY")
	recommendCmd.Flags().String("call-id", "", "tool call ID to tag the result with (default: random UUID)")
	recommendCmd.Flags().Bool("json", false, "write the state update as JSON instead of the table")
	recommendCmd.Flags().Bool("blocks", false, "also print one text block per paper")
	recommendCmd.Flags().Bool("no-state", false, "do not record the result in the state database")

	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	if !cmd.Flags().Changed("limit") {
		limit = cfg.Recommend.Limit
	}
	year, _ := cmd.Flags().GetString("year")
	callID, _ := cmd.Flags().GetString("call-id")
	if callID == "" {
		callID = uuid.NewString()
	}
	asJSON, _ := cmd.Flags().GetBool("json")
	showBlocks, _ := cmd.Flags().GetBool("blocks")
	noState, _ := cmd.Flags().GetBool("no-state")

	out := cmd.OutOrStdout()
	emitters := state.MultiEmitter{&state.WriterEmitter{W: out, JSON: asJSON}}
	if !noState {
		store, err := state.Open(cfg.State, logger)
		if err != nil {
			return err
		}
		defer store.Close()
		emitters = append(emitters, store)
	}

	fetcher := recommend.NewFetcher(cfg.Recommend, logger)
	rt := tool.NewRecommendTool(fetcher, emitters, logger)

	res, err := rt.Run(cmd.Context(), recommend.Request{
		PaperID: strings.TrimSpace(args[0]),
		Limit:   limit,
		Year:    year,
		CallID:  callID,
	})
	if err != nil {
		return err
	}

	if showBlocks && !asJSON {
		fmt.Fprintln(out)
		fmt.Fprint(out, strings.Join(res.Blocks, "\n"))
	}
	logger.Debug("recommend finished", "tool_call_id", res.CallID, "papers", len(res.Papers))
	return nil
}
