package export

import (
	"io"

	"github.com/goccy/go-json"
)

// RowJSON is the robot representation of one flat row.
type RowJSON struct {
	Index       int    `json:"index"`
	ID          int    `json:"id"`
	Kind        string `json:"kind"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Expanded    bool   `json:"expanded,omitempty"`
	Parent      int    `json:"parent,omitempty"`
}

// RowsOutput is the document written by RowsJSON.
type RowsOutput struct {
	RootCount int       `json:"root_count"`
	RowCount  int       `json:"row_count"`
	Rows      []RowJSON `json:"rows"`
}

// NewRowsOutput converts rows to their robot form.
func NewRowsOutput(rows Rows) RowsOutput {
	out := RowsOutput{RowCount: len(rows), Rows: make([]RowJSON, 0, len(rows))}
	for _, r := range rows {
		city, _ := r.Item.Payload()
		row := RowJSON{
			Index:       r.Index,
			ID:          int(r.Item.ID),
			Name:        city.Title(),
			Description: city.Text,
		}
		if r.IsRoot {
			out.RootCount++
			row.Kind = "root"
			row.Expanded = r.Expanded
		} else {
			row.Kind = "child"
			row.Parent = int(r.Parent.ID)
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// RowsJSON writes rows as indented JSON to w.
func RowsJSON(w io.Writer, rows Rows) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewRowsOutput(rows))
}
