package parser

import (
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/xlsxpatch/pkg/xlsxpatch/models"
)

// PrintAreaName is the reserved defined name holding a sheet's print areas.
const PrintAreaName = "_xlnm.Print_Area"

// ParsePrintAreaReference parses the text of a print area defined name.
// Format: 'Sheet Name'!$A$1:$D$10 or Sheet1!$A$1:$D$10, comma separated.
// Whole columns ($A:$C), whole rows ($1:$3) and single cells are accepted.
// The sheet name is taken from the first part that carries one.
func ParsePrintAreaReference(ref string) (string, []models.PrintArea) {
	var sheetName string
	var areas []models.PrintArea

	for _, part := range strings.Split(ref, ",") {
		part = strings.TrimSpace(part)
		idx := strings.LastIndex(part, "!")
		if idx < 0 {
			continue
		}
		if sheetName == "" {
			sheetName = unquoteSheetName(part[:idx])
		}
		if area, ok := parseArea(part[idx+1:]); ok {
			areas = append(areas, area)
		}
	}
	return sheetName, areas
}

func unquoteSheetName(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		s = strings.ReplaceAll(s[1:len(s)-1], "''", "'")
	}
	return s
}

// parseArea turns "$A$1:$D$10", "$A:$C", "$2:$5" or "B4" into bounds.
func parseArea(rng string) (models.PrintArea, bool) {
	rng = strings.ReplaceAll(rng, "$", "")
	start, end, found := strings.Cut(rng, ":")
	if !found {
		end = start
	}

	if c1, err := excelize.ColumnNameToNumber(start); err == nil {
		c2, err := excelize.ColumnNameToNumber(end)
		if err != nil {
			return models.PrintArea{}, false
		}
		return models.PrintArea{R1: 1, C1: c1, R2: excelize.TotalRows, C2: c2}, found
	}
	if r1, err := strconv.Atoi(start); err == nil {
		r2, err := strconv.Atoi(end)
		if err != nil || r1 < 1 || r2 < 1 {
			return models.PrintArea{}, false
		}
		return models.PrintArea{R1: r1, C1: 1, R2: r2, C2: excelize.MaxColumns}, found
	}

	c1, r1, err := excelize.CellNameToCoordinates(start)
	if err != nil {
		return models.PrintArea{}, false
	}
	c2, r2, err := excelize.CellNameToCoordinates(end)
	if err != nil {
		return models.PrintArea{}, false
	}
	return models.PrintArea{R1: r1, C1: c1, R2: r2, C2: c2}, true
}
