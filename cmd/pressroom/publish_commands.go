package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pressroom/internal/cycle"
	"pressroom/internal/lineup"
	"pressroom/internal/uniqueness"
)

func newPublishCommand(ctx *commandContext) *cobra.Command {
	var (
		jsonOutput bool
		dateFlag   string
		keyword    string
		draftsDir  string
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Run the uniqueness guard and image selection over a lineup",
		Long: `Publish reads one draft per lineup entry from the drafts directory
(<keyword-slug>--<angle>.md), checks each against recently published
articles, and assigns a hero image to every accepted draft.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDate(dateFlag)
			if err != nil {
				return err
			}
			return ctx.withEnv(func(env *cycle.Env) error {
				dir := strings.TrimSpace(draftsDir)
				if dir == "" {
					dir = env.Config.Paths.DraftsDir
				}
				gen := cycle.FileGenerator{Dir: dir}
				publisher := cycle.NewPublisher(env)

				var outcomes []cycle.Outcome
				if kw := strings.TrimSpace(keyword); kw != "" {
					entry, ok, err := env.Lineups.Find(date, kw)
					if err != nil {
						return err
					}
					if !ok {
						return fmt.Errorf("keyword %q is not in the %s lineup", kw, lineup.DateKey(date))
					}
					outcome, err := publisher.Publish(cmd.Context(), entry, gen)
					if err != nil {
						return err
					}
					outcomes = []cycle.Outcome{outcome}
				} else {
					outcomes, err = publisher.PublishDay(cmd.Context(), date, gen)
					if err != nil {
						return err
					}
				}

				if jsonOutput {
					return writeJSON(cmd, outcomes)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderOutcomes(outcomes))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&dateFlag, "date", "", "Lineup date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&keyword, "keyword", "k", "", "Publish a single lineup keyword")
	cmd.Flags().StringVar(&draftsDir, "drafts", "", "Override paths.drafts_dir")
	return cmd
}

func renderOutcomes(outcomes []cycle.Outcome) string {
	if len(outcomes) == 0 {
		return "Nothing to publish"
	}
	headers := []string{"Keyword", "Status", "Angle", "Article", "Image", "Tier", "Attempts"}
	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		image, tier := "", ""
		if o.Image != nil {
			image = o.Image.ID
			tier = string(o.Image.Tier)
		}
		rows = append(rows, []string{
			o.Keyword,
			string(o.Status),
			string(o.Angle),
			o.ArticleID,
			image,
			tier,
			describeAttempts(o.Attempts),
		})
	}
	return renderTable(headers, rows, nil)
}

func describeAttempts(attempts []cycle.Attempt) string {
	parts := make([]string, 0, len(attempts))
	for _, a := range attempts {
		switch {
		case a.Error != "":
			parts = append(parts, fmt.Sprintf("%s: error", a.Angle))
		case a.Verdict == nil:
			parts = append(parts, string(a.Angle))
		case a.Verdict.Accepted:
			parts = append(parts, fmt.Sprintf("%s: ok", a.Angle))
		default:
			parts = append(parts, fmt.Sprintf("%s: %s", a.Angle, a.Verdict.Reason))
		}
	}
	return strings.Join(parts, ", ")
}

var errRejected = errors.New("draft rejected as a near-duplicate")

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "check <draft.md>",
		Short: "Check a draft against published articles without recording it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEnv(func(env *cycle.Env) error {
				verdict, err := cycle.NewChecker(env).Check(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if jsonOutput {
					if err := writeJSON(cmd, verdict); err != nil {
						return err
					}
				} else {
					printVerdict(cmd, verdict)
				}
				if !verdict.Accepted {
					return errRejected
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func printVerdict(cmd *cobra.Command, v uniqueness.Verdict) {
	out := cmd.OutOrStdout()
	if v.Accepted {
		fmt.Fprintf(out, "Accepted (compared against %d articles)\n", v.Candidates)
		return
	}
	fmt.Fprintf(out, "Rejected: %s\n", v.Reason)
	fmt.Fprintf(out, "  Prior article: %s\n", v.PriorID)
	if v.Heading != "" {
		fmt.Fprintf(out, "  Section: %s\n", v.Heading)
	}
	fmt.Fprintf(out, "  Similarity: %s\n", formatRatio(v.Similarity))
	if v.Reason == uniqueness.ReasonDocument {
		fmt.Fprintf(out, "  Hamming distance: %d\n", v.Hamming)
	}
}
