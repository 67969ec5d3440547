package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"pressroom/internal/cycle"
	"pressroom/internal/history"
	"pressroom/internal/lineup"
	"pressroom/internal/state"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var dateFlag string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show keyword history, or the lineup audit for a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEnv(func(env *cycle.Env) error {
				if dateFlag != "" {
					date, err := parseDate(dateFlag)
					if err != nil {
						return err
					}
					audit, err := env.History.LineupFor(cmd.Context(), lineup.DateKey(date))
					if err != nil {
						return err
					}
					if jsonOutput {
						return writeJSON(cmd, audit)
					}
					fmt.Fprintln(cmd.OutOrStdout(), renderAudit(audit))
					return nil
				}

				records, err := env.History.Keywords(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, records)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderHistory(records))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&dateFlag, "date", "", "Show the lineup audit for this date (YYYY-MM-DD)")
	return cmd
}

func renderHistory(records []history.Record) string {
	if len(records) == 0 {
		return "No keywords recorded"
	}
	headers := []string{"Keyword", "Category", "Last score", "Last scored", "Last published", "Published"}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Phrase,
			r.Category,
			formatScore(r.LastScore),
			formatDay(r.LastScored),
			formatDay(r.LastPublished),
			strconv.Itoa(r.PublishCount),
		})
	}
	return renderTable(headers, rows, []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignRight})
}

func renderAudit(audit []history.AuditEntry) string {
	if len(audit) == 0 {
		return "No lineup recorded for that date"
	}
	headers := []string{"Cycle", "Keyword", "Category", "Angle", "Score"}
	rows := make([][]string, 0, len(audit))
	for _, a := range audit {
		rows = append(rows, []string{
			a.CycleID,
			a.Entry.Keyword,
			a.Entry.Category,
			string(a.Entry.Angle),
			formatScore(a.Entry.OpportunityScore),
		})
	}
	return renderTable(headers, rows, []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight})
}

func formatDay(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return lineup.DateKey(t.Local())
}

func newStateCommand(ctx *commandContext) *cobra.Command {
	stateCmd := &cobra.Command{
		Use:   "state",
		Short: "Maintain fingerprint and image usage state",
	}
	stateCmd.AddCommand(&cobra.Command{
		Use:   "prune",
		Short: "Drop fingerprints older than the comparison window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEnv(func(env *cycle.Env) error {
				lock, err := state.Lock(env.Config.Paths.StateDir)
				if err != nil {
					return err
				}
				defer lock.Unlock()

				removed, err := env.State.Prune(env.Guard, env.Now())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d fingerprint(s)\n", removed)
				return nil
			})
		},
	})
	return stateCmd
}
