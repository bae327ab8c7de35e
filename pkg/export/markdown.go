// Package export renders the flat row order of a city tree as markdown,
// SVG, PNG or JSON.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/vanderheijden86/treelist/pkg/catalog"
	"github.com/vanderheijden86/treelist/pkg/tree"
)

// Rows is the flat order an export draws, as returned by Controller.Rows.
type Rows = []tree.Row[catalog.City]

// now is replaced in tests.
var now = time.Now

// GenerateMarkdown creates an outline of the rows: one bullet per root,
// its visible description nested beneath it.
func GenerateMarkdown(rows Rows, title string) (string, error) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now().Format(time.RFC1123)))

	roots, expanded := 0, 0
	for _, r := range rows {
		if r.IsRoot {
			roots++
			if r.Expanded {
				expanded++
			}
		}
	}
	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- **Cities**: %d\n", roots))
	sb.WriteString(fmt.Sprintf("- **Expanded**: %d\n", expanded))
	sb.WriteString(fmt.Sprintf("- **Rows**: %d\n\n", len(rows)))

	sb.WriteString("## Cities\n\n")
	if len(rows) == 0 {
		sb.WriteString("_No cities._\n")
		return sb.String(), nil
	}
	for _, r := range rows {
		city, _ := r.Item.Payload()
		if r.IsRoot {
			mark := "+"
			if r.Expanded {
				mark = "-"
			}
			sb.WriteString(fmt.Sprintf("- [%s] **%s**\n", mark, escapeMarkdown(city.Title())))
			continue
		}
		text := strings.Join(strings.Fields(city.Text), " ")
		if text == "" {
			text = "_(no description)_"
		}
		sb.WriteString(fmt.Sprintf("  - %s\n", escapeMarkdown(text)))
	}

	return sb.String(), nil
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
