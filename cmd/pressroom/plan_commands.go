package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"pressroom/internal/cycle"
	"pressroom/internal/lineup"
	"pressroom/internal/scoring"
	"pressroom/internal/textutil"
)

func newScoreCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var limit int

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score every seed keyword without writing anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEnv(func(env *cycle.Env) error {
				result, err := cycle.NewPlanner(env).Plan(cmd.Context(), cycle.PlanOptions{DryRun: true})
				if err != nil {
					return err
				}
				scored := result.Scored
				if limit > 0 && len(scored) > limit {
					scored = scored[:limit]
				}
				if jsonOutput {
					return writeJSON(cmd, scored)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderScores(scored))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show only the top N keywords")
	return cmd
}

func renderScores(results []scoring.Result) string {
	headers := []string{"#", "Keyword", "Category", "Score", "Trend", "Intent", "Season", "Fit", "Difficulty", "Value", "Degraded"}
	rows := make([][]string, 0, len(results))
	for i, r := range results {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			r.Keyword,
			r.Category,
			formatScore(r.OpportunityScore),
			formatRatio(r.SubScores.Trend),
			formatRatio(r.SubScores.Intent),
			formatRatio(r.SubScores.Seasonality),
			formatRatio(r.SubScores.Fit),
			formatRatio(r.Difficulty),
			formatMoney(r.EstimatedValue()),
			textutil.Ternary(r.Degraded, "yes", ""),
		})
	}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft}
	return renderTable(headers, rows, aligns)
}

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var (
		jsonOutput bool
		dryRun     bool
		target     int
		perCat     int
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Score seed keywords and write today's lineup",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEnv(func(env *cycle.Env) error {
				result, err := cycle.NewPlanner(env).Plan(cmd.Context(), cycle.PlanOptions{
					TargetCount:    target,
					PerCategoryCap: perCat,
					DryRun:         dryRun,
				})
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, result)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderEntries(result.Entries))
				verb := "Wrote"
				if result.DryRun {
					verb = "Would write"
				}
				fmt.Fprintf(out, "%s %d of %d scored keywords to the %s lineup", verb, len(result.Entries), len(result.Scored), result.Date)
				if result.Degraded > 0 {
					fmt.Fprintf(out, " (%d with degraded signals)", result.Degraded)
				}
				fmt.Fprintln(out)
				fmt.Fprintf(out, "Cycle: %s\n", result.CycleID)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Select the lineup without writing it")
	cmd.Flags().IntVar(&target, "target", 0, "Override lineup.target_count")
	cmd.Flags().IntVar(&perCat, "per-category", 0, "Override lineup.per_category_cap")
	return cmd
}

func renderEntries(entries []lineup.Entry) string {
	if len(entries) == 0 {
		return "No eligible keywords"
	}
	headers := []string{"#", "Keyword", "Category", "Angle", "Score", "Value"}
	rows := make([][]string, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			e.Keyword,
			e.Category,
			string(e.Angle),
			formatScore(e.OpportunityScore),
			formatMoney(e.EstimatedValue),
		})
	}
	return renderTable(headers, rows, []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight})
}

func newLineupCommand(ctx *commandContext) *cobra.Command {
	lineupCmd := &cobra.Command{
		Use:   "lineup",
		Short: "Inspect stored lineups",
	}
	lineupCmd.AddCommand(newLineupShowCommand(ctx))
	lineupCmd.AddCommand(newLineupDatesCommand(ctx))
	return lineupCmd
}

func newLineupShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var dateFlag string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the lineup for a day (default today)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			date, err := parseDate(dateFlag)
			if err != nil {
				return err
			}
			entries, ok, err := lineup.NewStore(cfg.Paths.LineupFile, cfg.Lineup.RetainDays).Day(date)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no lineup for %s", lineup.DateKey(date))
			}
			if jsonOutput {
				return writeJSON(cmd, entries)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderEntries(entries))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&dateFlag, "date", "", "Lineup date (YYYY-MM-DD)")
	return cmd
}

func newLineupDatesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "dates",
		Short: "List dates with a stored lineup, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dates, err := lineup.NewStore(cfg.Paths.LineupFile, cfg.Lineup.RetainDays).Dates()
			if err != nil {
				return err
			}
			if len(dates) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No lineups stored")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(dates, "\n"))
			return nil
		},
	}
}
