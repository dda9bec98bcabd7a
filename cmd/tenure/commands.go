package main

import (
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/coolbeans/tenure/pkg/batch"
	"github.com/coolbeans/tenure/pkg/calendar"
	"github.com/coolbeans/tenure/pkg/dates"
	"github.com/coolbeans/tenure/pkg/experience"
)

func dateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "date <text>...",
		Short: "Normalize free-form dates",
		Long: `Normalize each argument to YYYY, YYYY-MM or YYYY-MM-DD.

Example:
  tenure date "5 March 2004"
  tenure date --locale de "18. März 2004"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := a.rules()
			if err != nil {
				return err
			}
			normalizer := dates.NewNormalizer(rules)

			type row struct {
				Input string `json:"input"`
				Date  string `json:"date,omitempty"`
				Error string `json:"error,omitempty"`
			}
			rows := make([]row, 0, len(args))
			failed := 0
			for _, arg := range args {
				r := row{Input: arg}
				value, err := normalizer.Normalize(arg)
				if err != nil {
					r.Error = err.Error()
					failed++
				} else {
					r.Date = value.String()
				}
				rows = append(rows, r)
			}

			out := cmd.OutOrStdout()
			if a.jsonOutput() {
				if err := writeJSON(out, rows); err != nil {
					return err
				}
			} else {
				for _, r := range rows {
					if r.Error != "" {
						fmt.Fprintf(out, "%s\t! %s\n", r.Input, r.Error)
						continue
					}
					fmt.Fprintf(out, "%s\t%s\n", r.Input, r.Date)
				}
			}
			if failed > 0 && a.config.Strict {
				return fmt.Errorf("%d of %d dates could not be normalized", failed, len(args))
			}
			return nil
		},
	}
}

func rangeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "range <text>",
		Short: "Split and normalize a date range",
		Long: `Split a combined range into start and end, then normalize both.

Example:
  tenure range "3–10 June 2004"
  tenure range --locale pt "desde 2010"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := a.rules()
			if err != nil {
				return err
			}
			normalizer := dates.NewNormalizer(rules)
			frags := normalizer.Split(args[0])
			rng, err := normalizer.ParseRange(args[0])

			out := cmd.OutOrStdout()
			if a.jsonOutput() {
				result := struct {
					Input     string          `json:"input"`
					Fragments dates.Fragments `json:"fragments"`
					Range     dates.Range     `json:"range"`
					Error     string          `json:"error,omitempty"`
				}{Input: args[0], Fragments: frags, Range: rng}
				if err != nil {
					result.Error = err.Error()
				}
				if werr := writeJSON(out, result); werr != nil {
					return werr
				}
			} else {
				fmt.Fprintf(out, "start: %s\t(%s)\n", orDash(rng.Start), frags.Start)
				if rng.Open {
					fmt.Fprintln(out, "end:   open")
				} else {
					fmt.Fprintf(out, "end:   %s\t(%s)\n", orDash(rng.End), frags.End)
				}
			}
			if err != nil && a.config.Strict {
				return err
			}
			return nil
		},
	}
}

func termsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "terms <page.json>...",
		Short: "Build office terms from infobox page JSON",
		Long: `Build the ordered office terms of one or more pages.

Arguments may be doublestar globs.

Example:
  tenure terms pages/goldie.json
  tenure terms --format json "pages/**/*.json"
  tenure terms --claims pages/goldie.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			claims, _ := cmd.Flags().GetBool("claims")

			report, err := a.runPaths(cmd, args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.jsonOutput() {
				if claims {
					return writeJSON(out, claimsOf(report))
				}
				if err := writeJSON(out, report); err != nil {
					return err
				}
			} else {
				printReport(cmd, report)
			}
			if failed := report.Failed(); len(failed) > 0 {
				return fmt.Errorf("%d of %d documents failed", len(failed), len(report.Results))
			}
			return nil
		},
	}
	cmd.Flags().Bool("claims", false, "Emit Wikidata position-held claims instead of terms (json format)")
	return cmd
}

func experienceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "experience <page.json>...",
		Short: "Count days in office",
		Long: `Count the distinct days covered by the terms of each page. Overlapping
terms count once. Open terms count up to --as-of when it is given.

Example:
  tenure experience pages/goldie.json
  tenure experience --as-of 2024-01-01 --before 2010 pages/goldie.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asOfStr, _ := cmd.Flags().GetString("as-of")
			beforeStr, _ := cmd.Flags().GetString("before")

			var asOf time.Time
			if asOfStr != "" {
				v, err := calendar.Parse(asOfStr)
				if err != nil {
					return fmt.Errorf("--as-of: %w", err)
				}
				asOf = v.First()
			}
			var before calendar.Value
			if beforeStr != "" {
				v, err := calendar.Parse(beforeStr)
				if err != nil {
					return fmt.Errorf("--before: %w", err)
				}
				before = v
			}

			report, err := a.runPaths(cmd, args)
			if err != nil {
				return err
			}

			type row struct {
				Name   string `json:"name"`
				Title  string `json:"title,omitempty"`
				Days   int    `json:"days"`
				Before *int   `json:"days_before,omitempty"`
				Error  string `json:"error,omitempty"`
			}
			rows := make([]row, 0, len(report.Results))
			for _, result := range report.Results {
				r := row{Name: result.Name, Title: result.Title}
				if result.Err != nil {
					r.Error = result.Err.Error()
					rows = append(rows, r)
					continue
				}
				exp := experience.New(experience.FromTerms(result.Terms)...)
				if !asOf.IsZero() {
					exp = exp.AsOf(asOf)
				}
				r.Days = exp.Total()
				if !before.IsZero() {
					n := exp.Before(before)
					r.Before = &n
				}
				rows = append(rows, r)
			}

			out := cmd.OutOrStdout()
			if a.jsonOutput() {
				return writeJSON(out, rows)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, r := range rows {
				switch {
				case r.Error != "":
					fmt.Fprintf(tw, "%s\t! %s\n", r.Name, r.Error)
				case r.Before != nil:
					fmt.Fprintf(tw, "%s\t%d days\t%d before %s\n", r.Name, r.Days, *r.Before, before)
				default:
					fmt.Fprintf(tw, "%s\t%d days\n", r.Name, r.Days)
				}
			}
			return tw.Flush()
		},
	}
	cmd.Flags().String("as-of", "", "Count open terms up to this date")
	cmd.Flags().String("before", "", "Also count days before this date")
	return cmd
}

func localesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "locales",
		Short: "List available locales",
		RunE: func(cmd *cobra.Command, args []string) error {
			list := a.registry.List()
			out := cmd.OutOrStdout()
			if a.jsonOutput() {
				return writeJSON(out, list)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CODE\tNAME\tSEPARATORS")
			for _, rules := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", rules.Code, rules.Name, strings.Join(quoteAll(rules.Separators()), " "))
			}
			return tw.Flush()
		},
	}
}

// runPaths expands args into document paths and builds their terms.
func (a *app) runPaths(cmd *cobra.Command, args []string) (*batch.Report, error) {
	paths, err := expandPaths(args)
	if err != nil {
		return nil, err
	}
	docs, err := batch.ReadDocuments(paths, "")
	if err != nil {
		return nil, err
	}
	runner := batch.NewRunner(a.registry, a.batchConfig(), a.logger)
	return runner.Run(cmd.Context(), docs)
}

func (a *app) batchConfig() batch.Config {
	return batch.Config{
		Concurrency: a.config.Concurrency,
		Locale:      a.config.Locale,
		Strict:      a.config.Strict,
	}
}

// expandPaths resolves glob arguments. A pattern that matches nothing is
// an error; plain paths are passed through.
func expandPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[{") {
			paths = append(paths, arg)
			continue
		}
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no documents match %q", arg)
		}
		slices.Sort(matches)
		paths = append(paths, matches...)
	}
	return paths, nil
}

func printReport(cmd *cobra.Command, report *batch.Report) {
	out := cmd.OutOrStdout()
	for i, result := range report.Results {
		if i > 0 {
			fmt.Fprintln(out)
		}
		title := result.Title
		if title == "" {
			title = result.Name
		}
		fmt.Fprintf(out, "%s [%s]\n", title, result.Locale)
		if result.Err != nil {
			fmt.Fprintf(out, "  ! %v\n", result.Err)
			continue
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, term := range result.Terms {
			end := term.End()
			if end == "" {
				end = "…"
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", term.Position, orEmpty(term.Start()), end)
		}
		tw.Flush()
	}
}

func claimsOf(report *batch.Report) map[string][]map[string]any {
	claims := make(map[string][]map[string]any, len(report.Results))
	for _, result := range report.Results {
		list := make([]map[string]any, 0, len(result.Terms))
		for _, term := range result.Terms {
			list = append(list, term.Claims())
		}
		claims[result.Name] = list
	}
	return claims
}

func orDash(v calendar.Value) string {
	if v.IsZero() {
		return "-"
	}
	return v.String()
}

func orEmpty(s string) string {
	if s == "" {
		return "?"
	}
	return s
}

func quoteAll(items []string) []string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = fmt.Sprintf("%q", item)
	}
	return quoted
}
