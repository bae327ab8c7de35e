package export

import (
	"io"
	"strings"

	svg "github.com/ajstarks/svgo"
)

// Layout shared by the SVG and PNG renderings.
const (
	rowHeight   = 22
	marginX     = 12
	marginY     = 12
	childIndent = 28
	imageWidth  = 640
	maxChars    = 80
)

// WriteSVG draws rows as a vector list to w.
func WriteSVG(w io.Writer, rows Rows) error {
	height := marginY*2 + rowHeight*max(len(rows), 1)

	canvas := svg.New(w)
	canvas.Start(imageWidth, height)
	canvas.Rect(0, 0, imageWidth, height, "fill:#ffffff")

	for i, r := range rows {
		y := marginY + rowHeight*i
		baseline := y + rowHeight - 7
		city, _ := r.Item.Payload()

		if r.IsRoot {
			if i%2 == 0 {
				canvas.Rect(0, y, imageWidth, rowHeight, "fill:#f3f4f6")
			}
			indicator := "▸"
			if r.Expanded {
				indicator = "▾"
			}
			canvas.Text(marginX, baseline, indicator, "font-family:sans-serif;font-size:14px;fill:#b45309")
			canvas.Text(marginX+18, baseline, city.Title(), "font-family:sans-serif;font-size:14px;font-weight:bold;fill:#1e40af")
			continue
		}
		canvas.Text(marginX+childIndent, baseline, clip(city.Text), "font-family:sans-serif;font-size:13px;fill:#374151")
	}

	canvas.End()
	return nil
}

// clip flattens whitespace and shortens s to maxChars runes.
func clip(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars-1]) + "…"
}
