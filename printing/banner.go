package printing

import (
	"fmt"
	"io"
	"strings"
)

const bannerWidth = 60

// PrintBanner writes the program banner
func PrintBanner(w io.Writer, style Style, version string) {
	rule := strings.Repeat("=", bannerWidth)
	fmt.Fprintln(w, style.Accent(rule))
	fmt.Fprintf(w, " %s | %s\n", style.Heading("IPTRACK"), style.Success("multi source IP lookup"))
	fmt.Fprintf(w, " %s %s\n", style.Label("Version:"), style.Value(version))
	fmt.Fprintln(w, style.Accent(rule))
}

// PrintMenu writes the destination menu in two columns. The entry after
// the last destination is Exit.
func PrintMenu(w io.Writer, style Style, destinations []string) {
	options := append(append([]string(nil), destinations...), "Exit")

	fmt.Fprintln(w, style.Prompt(strings.Repeat("-", bannerWidth)))
	fmt.Fprintln(w, " "+style.Heading("SELECT A DESTINATION:"))
	fmt.Fprintln(w, style.Prompt(strings.Repeat("-", bannerWidth)))
	for i := 0; i < len(options); i += 2 {
		line := " " + menuCell(style, i+1, options[i])
		if i+1 < len(options) {
			line += menuCell(style, i+2, options[i+1])
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
	fmt.Fprintln(w, style.Prompt(strings.Repeat("-", bannerWidth)))
}

func menuCell(style Style, index int, name string) string {
	key := fmt.Sprintf("[%d]", index)
	return fmt.Sprintf("%s %-22s", style.Label(key), name)
}
