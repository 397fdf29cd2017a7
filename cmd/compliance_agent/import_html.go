package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/creative-compliance/internal/htmlimport"
)

var importHTMLCmd = &cobra.Command{
	Use:   "import-html",
	Short: "Convert a canvas HTML export into a design JSON file",
	RunE:  runImportHTML,
}

var (
	importHTMLInput  string
	importHTMLOutput string
	importHTMLCSS    string
)

func init() {
	importHTMLCmd.Flags().StringVarP(&importHTMLInput, "in", "i", "", "Path to canvas HTML file (required)")
	importHTMLCmd.Flags().StringVarP(&importHTMLOutput, "out", "o", "", "Path to output design JSON file (required)")
	importHTMLCmd.Flags().StringVar(&importHTMLCSS, "css", "", "Path to an extra stylesheet applied after the document's own")
	addOptionFlags(importHTMLCmd)

	if err := importHTMLCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}
	if err := importHTMLCmd.MarkFlagRequired("out"); err != nil {
		panic(fmt.Sprintf("failed to mark out flag as required: %v", err))
	}

	rootCmd.AddCommand(importHTMLCmd)
}

func runImportHTML(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	f, err := os.Open(importHTMLInput)
	if err != nil {
		return fmt.Errorf("failed to open HTML file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var css string
	if importHTMLCSS != "" {
		data, err := os.ReadFile(importHTMLCSS)
		if err != nil {
			return fmt.Errorf("failed to read stylesheet: %w", err)
		}
		css = string(data)
	}

	req, err := htmlimport.ParseWithStylesheet(f, css)
	if err != nil {
		return err
	}
	applyOptionFlags(cmd, cfg, &req.Options)

	if err := writeJSON(importHTMLOutput, req); err != nil {
		return err
	}

	elements := 0
	for _, page := range req.Pages {
		elements += len(page.Children)
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Imported %d page(s), %d element(s) on a %.0fx%.0f canvas\n",
		len(req.Pages), elements, req.Canvas.W, req.Canvas.H)
	return nil
}
