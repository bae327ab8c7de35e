package export

import (
	"bufio"
	"io"
	"strings"

	"github.com/vanderheijden86/treelist/pkg/catalog"
	"github.com/vanderheijden86/treelist/pkg/tree"
)

// plainRows draws rows without styling.
type plainRows struct{}

func (plainRows) RenderRoot(item tree.Item[catalog.City], expanded bool) string {
	city, _ := item.Payload()
	indicator := "▸"
	if expanded {
		indicator = "▾"
	}
	return indicator + " " + city.Title()
}

func (plainRows) RenderChild(item tree.Item[catalog.City]) string {
	city, _ := item.Payload()
	return "    " + strings.Join(strings.Fields(city.Text), " ")
}

// WriteText writes rows as plain lines: roots with their indicator,
// descriptions indented below.
func WriteText(w io.Writer, rows Rows) error {
	bw := bufio.NewWriter(w)
	for _, r := range rows {
		bw.WriteString(tree.Render(r, plainRows{}) + "\n")
	}
	return bw.Flush()
}
