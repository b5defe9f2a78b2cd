// Package models defines data structures for worksheet extraction.
package models

// CellRow is one non-empty worksheet row as read from the package.
type CellRow struct {
	// R is the row number (1-based).
	R int `json:"r"`
	// C maps column letters to the typed cell value.
	C map[string]interface{} `json:"c"`
	// Formulas maps column letters to the cell formula, with a leading "=".
	Formulas map[string]string `json:"formulas,omitempty"`
	// Links maps column letters to the resolved hyperlink target.
	Links map[string]string `json:"links,omitempty"`
}

// Record is a data row keyed by the header row's text.
type Record map[string]interface{}
