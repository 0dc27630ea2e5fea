package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"

	"scrubarr/internal/daemonrun"
	"scrubarr/internal/logging"
	"scrubarr/internal/triage"
)

type instancePlan struct {
	Instance string `json:"instance"`
	Error    string `json:"error,omitempty"`
	triage.Plan

	err error
}

func newQueueCommand(ctx *commandContext) *cobra.Command {
	var (
		index    int
		jsonFlag bool
		series   string
	)

	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Preview how the next cycle would triage each queue",
		Long:  "Fetch each instance's queue and show the disposition every item would get. No refresh or delete calls are made.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			clients, err := daemonrun.Clients(cfg, logging.NewNop())
			if err != nil {
				return err
			}
			clients, err = selectClients(clients, index)
			if err != nil {
				return err
			}

			plans := make([]instancePlan, 0, len(clients))
			for _, client := range clients {
				cycle := triage.NewCycle(client.Name(), client, triage.Options{DryRun: true})
				plan, err := cycle.Plan(cmd.Context())
				entry := instancePlan{Instance: client.Name(), Plan: plan}
				if err != nil {
					entry.Error = err.Error()
					entry.err = err
				}
				entry.Decisions = filterSeries(entry.Decisions, series)
				plans = append(plans, entry)
			}

			out := cmd.OutOrStdout()
			if jsonFlag {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				if err := encoder.Encode(plans); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(out, renderQueuePlans(out, plans))
			}
			var errs []error
			for _, plan := range plans {
				errs = append(errs, plan.err)
			}
			return errors.Join(errs...)
		},
	}

	cmd.Flags().IntVarP(&index, "instance", "i", 0, "Only show the sonarr instance with this index")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Emit JSON instead of a table")
	cmd.Flags().StringVarP(&series, "series", "s", "", "Only list items whose series title contains this text (case-insensitive)")
	return cmd
}

// filterSeries keeps decisions whose series title contains needle under
// Unicode case folding ("élite" matches "ÉLITE").
func filterSeries(decisions []triage.Decision, needle string) []triage.Decision {
	needle = strings.TrimSpace(needle)
	if needle == "" {
		return decisions
	}
	folder := cases.Fold()
	want := folder.String(needle)
	kept := make([]triage.Decision, 0, len(decisions))
	for _, decision := range decisions {
		if strings.Contains(folder.String(decision.Item.DisplayTitle()), want) {
			kept = append(kept, decision)
		}
	}
	return kept
}

func renderQueuePlans(out io.Writer, plans []instancePlan) string {
	headers := []string{"Instance", "ID", "Series", "Episode", "Score", "Disposition", "Rule"}
	aligns := []columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignRight, alignLeft, alignLeft}

	var rows [][]string
	for _, plan := range plans {
		if plan.Error != "" {
			rows = append(rows, []string{plan.Instance, "", "", "", "", "Unavailable", plan.Error})
			continue
		}
		for _, decision := range plan.Decisions {
			item := decision.Item
			episode := "-"
			if key, ok := item.DedupKey(); ok {
				episode = key.String()
			}
			disposition := decision.Disposition.Label()
			if decision.Disposition == triage.Superseded {
				disposition = fmt.Sprintf("%s by %d", disposition, decision.SupersededBy)
			}
			rows = append(rows, []string{
				plan.Instance,
				strconv.Itoa(item.ID),
				item.DisplayTitle(),
				episode,
				strconv.Itoa(item.QualityScore),
				disposition,
				strings.ReplaceAll(decision.Rule, "_", " "),
			})
		}
	}
	if len(rows) == 0 {
		return "Queues are empty"
	}
	return renderTable(out, headers, rows, aligns)
}
