package main

import (
	"fmt"
	"maps"
	"strconv"

	"github.com/spf13/cobra"

	"pressroom/internal/cycle"
	"pressroom/internal/images"
	"pressroom/internal/state"
)

func newImagesCommand(ctx *commandContext) *cobra.Command {
	imagesCmd := &cobra.Command{
		Use:   "images",
		Short: "Inspect the hero image pool",
	}
	imagesCmd.AddCommand(newImagesListCommand(ctx))
	imagesCmd.AddCommand(newImagesPickCommand(ctx))
	return imagesCmd
}

func newImagesListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pool images with their usage counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			pool, err := images.Scan(cfg.Paths.ImageDir)
			if err != nil {
				return err
			}
			snap, err := state.NewStore(cfg.Paths.StateDir).Load()
			if err != nil {
				return err
			}
			if jsonOutput {
				type item struct {
					images.Candidate
					Usage int `json:"usage"`
				}
				items := make([]item, 0, len(pool))
				for _, c := range pool {
					items = append(items, item{Candidate: c, Usage: snap.Usage.Count(c.ID)})
				}
				return writeJSON(cmd, items)
			}
			if len(pool) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No images under %s\n", cfg.Paths.ImageDir)
				return nil
			}
			headers := []string{"Image", "Pool", "Category", "Scene", "Size", "Uses"}
			rows := make([][]string, 0, len(pool))
			for _, c := range pool {
				rows = append(rows, []string{
					c.ID,
					string(c.Pool),
					c.Category,
					c.Scene,
					fmt.Sprintf("%dx%d", c.Width, c.Height),
					strconv.Itoa(snap.Usage.Count(c.ID)),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight}))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newImagesPickCommand(ctx *commandContext) *cobra.Command {
	var (
		jsonOutput bool
		category   string
		top        int
	)

	cmd := &cobra.Command{
		Use:   "pick <keyword>",
		Short: "Show which image a keyword would receive, without recording usage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEnv(func(env *cycle.Env) error {
				pool, err := images.Scan(env.Config.Paths.ImageDir)
				if err != nil {
					return err
				}
				snap, err := env.State.Load()
				if err != nil {
					return err
				}
				usage := maps.Clone(snap.Usage)
				req := images.NewRequest(args[0], category)

				ranked := make([]images.Scored, 0, len(pool))
				for _, c := range pool {
					ranked = append(ranked, env.Matcher.Score(req, c, usage))
				}
				images.Rank(ranked)
				if top > 0 && len(ranked) > top {
					ranked = ranked[:top]
				}
				selection := env.Matcher.Select(req, pool, usage)

				if jsonOutput {
					return writeJSON(cmd, struct {
						Selection images.Selection `json:"selection"`
						Ranked    []images.Scored  `json:"ranked"`
					}{selection, ranked})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Selected %s (%s tier, score %s)\n", selection.ID, selection.Tier, formatRatio(selection.Score))
				if len(ranked) > 0 {
					headers := []string{"Image", "Pool", "Overlap", "Penalty", "Score", "Uses"}
					rows := make([][]string, 0, len(ranked))
					for _, s := range ranked {
						rows = append(rows, []string{
							s.Candidate.ID,
							string(s.Candidate.Pool),
							formatRatio(s.Overlap),
							formatRatio(s.Penalty),
							formatRatio(s.Score),
							strconv.Itoa(s.Usage),
						})
					}
					fmt.Fprintln(out, renderTable(headers, rows, []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight}))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&category, "category", "", "Keyword category")
	cmd.Flags().IntVar(&top, "top", 5, "Number of ranked candidates to show")
	return cmd
}
