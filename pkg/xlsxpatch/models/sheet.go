package models

// SheetData represents structured data for a single sheet.
type SheetData struct {
	// Number is the worksheet number backing the sheet.
	Number int `json:"number"`
	// Rows contains extracted rows with cell values and links.
	Rows []CellRow `json:"rows,omitempty"`
	// UsedRange is the bounding range of all cells, e.g. "A1:D10".
	UsedRange string `json:"used_range,omitempty"`
	// PrintAreas contains user-defined print areas.
	PrintAreas []PrintArea `json:"print_areas,omitempty"`
}
