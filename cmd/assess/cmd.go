package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/automaton-ready/internal/domain/branching"
	"github.com/bryanwahyu/automaton-ready/internal/domain/checklist"
	"github.com/bryanwahyu/automaton-ready/internal/domain/framework"
	"github.com/bryanwahyu/automaton-ready/internal/domain/questionnaire"
	"github.com/bryanwahyu/automaton-ready/internal/domain/vendor"
)

// input accepts both a stored snapshot and an exported audit document.
type input struct {
	Responses questionnaire.ResponseSet `json:"responses"`
	Vendors   []vendor.Vendor           `json:"vendors"`
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "assess",
		Short:         "Score readiness questionnaires offline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newScoreCmd(), newVendorsCmd(), newCatalogCmd())
	return root
}

func newScoreCmd() *cobra.Command {
	var variant, format string
	cmd := &cobra.Command{
		Use:   "score <file>",
		Short: "Run the local analysis on a snapshot or export file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readInput(args[0])
			if err != nil {
				return err
			}
			v := questionnaire.Variant(variant)
			if v == "" {
				v = detectVariant(in.Responses)
			}
			out := cmd.OutOrStdout()
			switch v {
			case questionnaire.VariantChecklist:
				res := checklist.Analyze(in.Responses, in.Vendors)
				if format == "json" {
					return writeJSON(out, res)
				}
				printChecklist(out, res)
			case questionnaire.VariantFramework:
				res := framework.BuildFallbackResult(framework.BuildScores(in.Responses))
				if format == "json" {
					return writeJSON(out, res)
				}
				printFramework(out, res)
			default:
				return fmt.Errorf("unknown variant %q", variant)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&variant, "variant", "", "checklist or framework (detected when empty)")
	cmd.Flags().StringVar(&format, "format", "text", "text or json")
	return cmd
}

func newVendorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vendors <file>",
		Short: "Print vendor risk for a snapshot file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readInput(args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), struct {
				Vendors []vendor.Assessment `json:"vendors"`
				Summary vendor.Summary      `json:"summary"`
			}{vendor.Assess(in.Vendors), vendor.Summarize(in.Vendors)})
		},
	}
}

func newCatalogCmd() *cobra.Command {
	var variant string
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the questions of a variant",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := questionnaire.For(questionnaire.Variant(variant))
			if err != nil {
				return err
			}
			eval := branching.New(c)
			out := cmd.OutOrStdout()
			for _, q := range c.Questions {
				flags := ""
				if q.Critical {
					flags += "*"
				}
				if q.Visibility != nil {
					flags += fmt.Sprintf(" (if %s in %s)", q.Visibility.Parent, strings.Join(q.Visibility.Allowed, "|"))
				}
				fmt.Fprintf(out, "%-8s %-14s %s%s\n", q.ID, q.Group, q.Text, flags)
			}
			fmt.Fprintf(out, "%d questions, %d conditional\n", len(c.Questions), len(eval.Rules()))
			return nil
		},
	}
	cmd.Flags().StringVar(&variant, "variant", string(questionnaire.VariantChecklist), "checklist or framework")
	return cmd
}

func readInput(path string) (input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return input{}, err
	}
	var in input
	if err := json.Unmarshal(data, &in); err != nil {
		return input{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if in.Responses.Controls == nil {
		in.Responses = questionnaire.NewResponseSet()
	}
	return in, nil
}

// detectVariant picks framework when any framework section is present.
func detectVariant(r questionnaire.ResponseSet) questionnaire.Variant {
	for _, s := range questionnaire.SectionIDs {
		if _, ok := r.Controls[s]; ok {
			return questionnaire.VariantFramework
		}
	}
	return questionnaire.VariantChecklist
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printChecklist(w io.Writer, r checklist.Result) {
	fmt.Fprintf(w, "Status: %s\nReadiness: %.0f%%\nTimeline: %s\n", r.OverallStatus, r.ReadinessScore, r.Timeline)
	for _, c := range questionnaire.ScoredControls {
		fmt.Fprintf(w, "  %-14s %3.0f%%\n", c, r.ControlScores[c])
	}
	if len(r.CriticalIssues) > 0 {
		fmt.Fprintf(w, "Critical issues (%d):\n", len(r.CriticalIssues))
		for _, i := range r.CriticalIssues {
			fmt.Fprintf(w, "  - [%s] %s\n    %s\n", i.Control, i.Issue, i.Action)
		}
	}
	if len(r.Warnings) > 0 {
		fmt.Fprintf(w, "Warnings (%d):\n", len(r.Warnings))
		for _, x := range r.Warnings {
			fmt.Fprintf(w, "  - [%s] %s\n", x.Control, x.Warning)
		}
	}
	fmt.Fprintln(w, r.Summary)
}

func printFramework(w io.Writer, r framework.Result) {
	fmt.Fprintf(w, "Overall: %s (%.0f%%)\n", r.OverallRating, r.OverallScore)
	for _, obj := range questionnaire.Objectives {
		fmt.Fprintf(w, "  Objective %s: %s\n", obj.ID, r.ObjectiveRatings[obj.ID])
	}
	for _, g := range r.CriticalGaps {
		fmt.Fprintf(w, "  gap: %s\n", g)
	}
	fmt.Fprintln(w, r.Summary)
}
