package export

import (
	"fmt"
	"io"
	"os"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font/basicfont"
)

// WritePNG draws rows as a raster list and encodes it to w.
func WritePNG(w io.Writer, rows Rows) error {
	dc := render(rows)
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	return nil
}

// SavePNG writes the PNG rendering of rows to path.
func SavePNG(path string, rows Rows) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WritePNG(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func render(rows Rows) *gg.Context {
	height := marginY*2 + rowHeight*max(len(rows), 1)

	dc := gg.NewContext(imageWidth, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	for i, r := range rows {
		y := float64(marginY + rowHeight*i)
		baseline := y + rowHeight - 7
		city, _ := r.Item.Payload()

		if r.IsRoot {
			if i%2 == 0 {
				dc.SetHexColor("#f3f4f6")
				dc.DrawRectangle(0, y, imageWidth, rowHeight)
				dc.Fill()
			}
			// basicfont has no glyphs for the triangle indicators.
			indicator := "+"
			if r.Expanded {
				indicator = "-"
			}
			dc.SetHexColor("#b45309")
			dc.DrawString(indicator, marginX, baseline)
			dc.SetHexColor("#1e40af")
			dc.DrawString(city.Title(), marginX+18, baseline)
			continue
		}
		dc.SetHexColor("#374151")
		dc.DrawString(clip(city.Text), marginX+childIndent, baseline)
	}
	return dc
}
