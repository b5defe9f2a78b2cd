package xlsxpatch

import (
	"fmt"
	"path/filepath"

	"github.com/expr-lang/expr"

	"github.com/ukaji3/xlsxpatch/pkg/xlsxpatch/models"
)

// Extract opens the file at path read-only and extracts every worksheet.
func Extract(path string, opts Options) (*models.WorkbookData, error) {
	p, err := Open(path, opts)
	if err != nil {
		return nil, err
	}
	defer p.Discard()

	count, err := p.WorksheetCount()
	if err != nil {
		return nil, err
	}

	wb := &models.WorkbookData{
		BookName: filepath.Base(path),
		Sheets:   make(map[string]models.SheetData, count),
	}
	for pos := 1; pos <= count; pos++ {
		name, _, err := p.WorksheetName(pos)
		if err != nil {
			return nil, err
		}
		number, err := p.WorksheetNumber(name)
		if err != nil {
			return nil, err
		}
		if number == NotFound {
			continue
		}

		sheet := models.SheetData{Number: number}
		if sheet.Rows, err = p.SheetRows(number); err != nil {
			return nil, NewExtractionError(name, "cells", err)
		}
		if sheet.UsedRange, _, err = p.UsedRange(number); err != nil {
			return nil, NewExtractionError(name, "used_range", err)
		}
		if opts.ShouldIncludePrintAreas() {
			if sheet.PrintAreas, err = p.PrintAreas(pos); err != nil {
				return nil, NewExtractionError(name, "print_areas", err)
			}
		}
		wb.SheetNames = append(wb.SheetNames, name)
		wb.Sheets[name] = sheet
	}
	return wb, nil
}

// SheetRows extracts the non-empty rows of worksheet sheet, keyed by column
// letters. Formulas are always included; hyperlink targets unless
// Options.IncludeLinks is false.
func (p *Package) SheetRows(sheet int) ([]models.CellRow, error) {
	rows, err := p.Rows(sheet)
	if err != nil {
		return nil, err
	}
	includeLinks := p.opts.ShouldIncludeLinks()

	var result []models.CellRow
	for row := range rows {
		cellMap := make(map[string]interface{})
		formulaMap := make(map[string]string)
		linkMap := make(map[string]string)

		for cell := range row.Cells() {
			col := cell.Column()
			if formula, ok := cell.Formula(); ok {
				formulaMap[col] = formula
			}
			value, err := cell.Value()
			if err != nil {
				return nil, err
			}
			if value == nil || value == "" {
				continue
			}
			cellMap[col] = value

			if includeLinks {
				target, ok, err := cell.Hyperlink()
				if err != nil {
					return nil, err
				}
				if ok && target != "" {
					linkMap[col] = target
				}
			}
		}

		if len(cellMap) > 0 || len(formulaMap) > 0 {
			cellRow := models.CellRow{
				R: row.Number(),
				C: cellMap,
			}
			if len(formulaMap) > 0 {
				cellRow.Formulas = formulaMap
			}
			if len(linkMap) > 0 {
				cellRow.Links = linkMap
			}
			result = append(result, cellRow)
		}
	}
	return result, nil
}

// SheetRecords treats the first row of worksheet sheet as a header and
// returns the remaining rows as records keyed by header text. Columns with
// an empty header are keyed by their column letters.
func (p *Package) SheetRecords(sheet int) ([]models.Record, error) {
	rows, err := p.SheetRows(sheet)
	if err != nil || len(rows) == 0 {
		return nil, err
	}

	header := make(map[string]string, len(rows[0].C))
	for col, v := range rows[0].C {
		if s := fmt.Sprint(v); s != "" {
			header[col] = s
		}
	}

	records := make([]models.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(models.Record, len(row.C))
		for col, v := range row.C {
			key, ok := header[col]
			if !ok {
				key = col
			}
			record[key] = v
		}
		records = append(records, record)
	}
	return records, nil
}

// FilterRecords keeps the records for which the boolean expression holds.
// Header names that are not identifiers can be reached as $env["Unit Price"].
func FilterRecords(records []models.Record, expression string) ([]models.Record, error) {
	if expression == "" {
		return records, nil
	}
	program, err := expr.Compile(expression, expr.AllowUndefinedVariables(), expr.AsBool())
	if err != nil {
		return nil, &PackageError{Kind: ErrInvalidArgument, Msg: fmt.Sprintf("compile expression %q", expression), Err: err}
	}

	var kept []models.Record
	for _, record := range records {
		out, err := expr.Run(program, map[string]interface{}(record))
		if err != nil {
			return nil, &PackageError{Kind: ErrInvalidArgument, Msg: fmt.Sprintf("evaluate expression %q", expression), Err: err}
		}
		if ok, _ := out.(bool); ok {
			kept = append(kept, record)
		}
	}
	return kept, nil
}
