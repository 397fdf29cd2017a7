package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/creative-compliance/internal/observability"
	"github.com/jonathan/creative-compliance/internal/schemas"
	"github.com/jonathan/creative-compliance/internal/types"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a design against the compliance rules",
	Long:  "Validates a design JSON file and writes the compliance report. Exits non-zero when the design has blocking violations.",
	RunE:  runValidate,
}

var (
	validateInput  string
	validateOutput string
)

func init() {
	validateCmd.Flags().StringVarP(&validateInput, "in", "i", "", "Path to design JSON file (required)")
	validateCmd.Flags().StringVarP(&validateOutput, "out", "o", "", "Path to output report JSON file (stdout when empty)")
	addOptionFlags(validateCmd)

	if err := validateCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(validateCmd)
}

// readDesign reads a design file and checks it against the request schema
func readDesign(path string) (*types.ValidationRequest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read design file: %w", err)
	}
	if err := schemas.ValidateRequest(raw); err != nil {
		return nil, fmt.Errorf("invalid design %s: %w", path, err)
	}

	var req types.ValidationRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("failed to decode design: %w", err)
	}
	return &req, nil
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	defer func() { _ = logger.Close() }()

	req, err := readDesign(validateInput)
	if err != nil {
		return err
	}
	applyOptionFlags(cmd, cfg, &req.Options)

	engine, err := buildEngine(cfg, logger)
	if err != nil {
		return err
	}
	report, err := engine.Validate(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if validateOutput != "" {
		if err := writeJSON(validateOutput, report); err != nil {
			return err
		}
	} else {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	status := cmd.ErrOrStderr()
	if cfg.Verbose {
		printer := observability.NewPrinter(status)
		printer.PrintDesign(req)
		printer.PrintReport(report)
	}

	if !report.Compliant {
		return fmt.Errorf("design is not compliant: %d blocking violation(s), score %d", report.Summary.Hard, report.Score)
	}
	_, _ = fmt.Fprintf(status, "Design is compliant (score %d, %d warning(s))\n", report.Score, len(report.Warnings))
	return nil
}
