// Package main provides the CLI entry point for xlsxpatch.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ukaji3/xlsxpatch/pkg/xlsxpatch"
	"github.com/ukaji3/xlsxpatch/pkg/xlsxpatch/models"
	"github.com/ukaji3/xlsxpatch/pkg/xlsxpatch/output"
)

var (
	verbose       bool
	outputPath    string
	pretty        bool
	noLinks       bool
	sheetsDir     string
	printAreasDir string
	recordsSheet  string
	where         string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "xlsxpatch",
		Short: "Edit cells of existing Excel files in place",
		Long: `xlsxpatch reads and edits cells, shared strings and hyperlinks of
existing .xlsx files, rewriting only the parts that change.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log package activity to stderr")

	rootCmd.AddCommand(
		newSheetsCmd(),
		newGetCmd(),
		newSetCmd(),
		newReplaceCmd(),
		newCalcCmd(),
		newDumpCmd(),
	)
	return rootCmd
}

func options() xlsxpatch.Options {
	opts := xlsxpatch.DefaultOptions()
	if verbose {
		opts.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	if noLinks {
		includeLinks := false
		opts.IncludeLinks = &includeLinks
	}
	return opts
}

func openPackage(path string) (*xlsxpatch.Package, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	p, err := xlsxpatch.Open(path, options())
	if err != nil {
		return nil, fmt.Errorf("open failed: %w", err)
	}
	return p, nil
}

// resolveSheet accepts a sheet name or, failing that, a worksheet number.
func resolveSheet(p *xlsxpatch.Package, arg string) (int, error) {
	n, err := p.WorksheetNumber(arg)
	if err != nil {
		return 0, err
	}
	if n != xlsxpatch.NotFound {
		return n, nil
	}
	if i, err := strconv.Atoi(arg); err == nil && i > 0 {
		return i, nil
	}
	return 0, fmt.Errorf("sheet not found: %s", arg)
}

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump [input.xlsx]",
		Short: "Extract cell data as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runDump,
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	cmd.Flags().BoolVar(&noLinks, "no-links", false, "Leave hyperlinks out of the output")
	cmd.Flags().StringVar(&sheetsDir, "sheets-dir", "", "Directory for per-sheet output files")
	cmd.Flags().StringVar(&printAreasDir, "print-areas-dir", "", "Directory for per-print-area output files")
	cmd.Flags().StringVar(&recordsSheet, "records", "", "Dump the given sheet as header-keyed records")
	cmd.Flags().StringVar(&where, "where", "", "Keep only records matching this expression (with --records)")
	return cmd
}

func runDump(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	if recordsSheet != "" {
		return runRecords(inputPath)
	}
	if where != "" {
		return fmt.Errorf("--where requires --records")
	}

	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", inputPath)
	}

	// Extract data
	wb, err := xlsxpatch.Extract(inputPath, options())
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	// Serialize to JSON
	jsonData, err := output.ToJSON(wb, pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}

	// Write output
	if outputPath != "" {
		if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	} else if sheetsDir == "" && printAreasDir == "" {
		fmt.Println(string(jsonData))
	}

	// Write per-sheet files
	if sheetsDir != "" {
		if err := writeSheetFiles(wb, sheetsDir); err != nil {
			return fmt.Errorf("failed to write sheet files: %w", err)
		}
	}

	// Write per-print-area files
	if printAreasDir != "" {
		if err := writePrintAreaFiles(wb, printAreasDir); err != nil {
			return fmt.Errorf("failed to write print area files: %w", err)
		}
	}

	return nil
}

func runRecords(inputPath string) error {
	p, err := openPackage(inputPath)
	if err != nil {
		return err
	}
	defer p.Discard()

	sheet, err := resolveSheet(p, recordsSheet)
	if err != nil {
		return err
	}
	records, err := p.SheetRecords(sheet)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	if records, err = xlsxpatch.FilterRecords(records, where); err != nil {
		return err
	}

	jsonData, err := output.RecordsToJSON(records, pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	if outputPath != "" {
		if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	fmt.Println(string(jsonData))
	return nil
}

func writeSheetFiles(wb *models.WorkbookData, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	for sheetName, sheet := range wb.Sheets {
		jsonData, err := output.SheetToJSON(&sheet, pretty)
		if err != nil {
			return err
		}

		filename := filepath.Join(dir, sheetName+".json")
		if err := os.WriteFile(filename, jsonData, 0644); err != nil {
			return err
		}
	}

	return nil
}

func writePrintAreaFiles(wb *models.WorkbookData, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	for sheetName, sheet := range wb.Sheets {
		for i, area := range sheet.PrintAreas {
			view := createPrintAreaView(wb.BookName, sheetName, sheet, area)
			jsonData, err := output.PrintAreaViewToJSON(&view, pretty)
			if err != nil {
				return err
			}

			filename := filepath.Join(dir, fmt.Sprintf("%s_area%d.json", sheetName, i+1))
			if err := os.WriteFile(filename, jsonData, 0644); err != nil {
				return err
			}
		}
	}

	return nil
}

func createPrintAreaView(bookName, sheetName string, sheet models.SheetData, area models.PrintArea) models.PrintAreaView {
	view := models.PrintAreaView{
		BookName:  bookName,
		SheetName: sheetName,
		Area:      area,
	}

	// Filter rows within area
	for _, row := range sheet.Rows {
		if area.ContainsRow(row.R) {
			view.Rows = append(view.Rows, row)
		}
	}

	return view
}
