package widgets

import (
	"fmt"
	"strings"
)

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}

// RenderKeyHelp lays out key bindings in two columns, the key column as
// wide as the longest key across all sections
func RenderKeyHelp(sections []KeySection) string {
	width := 0
	for _, sec := range sections {
		for _, k := range sec.Keys {
			width = max(width, len(k.Key))
		}
	}

	var lines []string
	for i, sec := range sections {
		if sec.Title != "" {
			if i > 0 {
				lines = append(lines, "")
			}
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-*s  %s", width, k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}
