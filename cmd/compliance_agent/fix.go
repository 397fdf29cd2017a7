package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/creative-compliance/internal/autofix"
	"github.com/jonathan/creative-compliance/internal/observability"
)

var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Apply automatic fixes to a design",
	Long:  "Validates a design, applies every proposed auto-fix and re-validates until nothing fixable remains. Exits non-zero when blocking violations remain.",
	RunE:  runFix,
}

var (
	fixInput         string
	fixOutput        string
	fixReport        string
	fixMaxIterations int
)

func init() {
	fixCmd.Flags().StringVarP(&fixInput, "in", "i", "", "Path to design JSON file (required)")
	fixCmd.Flags().StringVarP(&fixOutput, "out", "o", "", "Path to output fixed design JSON file (required)")
	fixCmd.Flags().StringVar(&fixReport, "report", "", "Path to write the final compliance report (optional)")
	fixCmd.Flags().IntVar(&fixMaxIterations, "max-iterations", autofix.DefaultMaxIterations, "Maximum validate/fix passes")
	addOptionFlags(fixCmd)

	if err := fixCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}
	if err := fixCmd.MarkFlagRequired("out"); err != nil {
		panic(fmt.Sprintf("failed to mark out flag as required: %v", err))
	}

	rootCmd.AddCommand(fixCmd)
}

func runFix(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	defer func() { _ = logger.Close() }()

	req, err := readDesign(fixInput)
	if err != nil {
		return err
	}
	applyOptionFlags(cmd, cfg, &req.Options)

	engine, err := buildEngine(cfg, logger)
	if err != nil {
		return err
	}

	before, err := engine.Validate(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	result, err := autofix.RunFixLoop(cmd.Context(), engine, req, fixMaxIterations)
	if err != nil {
		return fmt.Errorf("auto-fix failed: %w", err)
	}

	if err := writeJSON(fixOutput, result.Request); err != nil {
		return err
	}
	if fixReport != "" {
		if err := writeJSON(fixReport, result.Report); err != nil {
			return err
		}
	}

	status := cmd.ErrOrStderr()
	if cfg.Verbose {
		printer := observability.NewPrinter(status)
		printer.PrintFixSummary(before, result.Report, result.Applied, result.Iterations)
		printer.PrintReport(result.Report)
	} else {
		_, _ = fmt.Fprintf(status, "Applied %d fix(es); score %d -> %d\n", result.Applied, before.Score, result.Report.Score)
	}

	if !result.Report.Compliant {
		return fmt.Errorf("%d blocking violation(s) need manual changes", result.Report.Summary.Hard)
	}
	return nil
}
