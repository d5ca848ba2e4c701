package printing

import (
	"github.com/fatih/color"
)

// Style holds the colour functions used to render output. It carries no
// state beyond its colours and is safe to share.
type Style struct {
	Heading func(a ...interface{}) string
	Label   func(a ...interface{}) string
	Value   func(a ...interface{}) string
	Prompt  func(a ...interface{}) string
	Success func(a ...interface{}) string
	Warning func(a ...interface{}) string
	Error   func(a ...interface{}) string
	Accent  func(a ...interface{}) string
}

// NewStyle builds the default palette. With noColor every function
// returns its arguments unchanged.
func NewStyle(noColor bool) Style {
	sprint := func(attrs ...color.Attribute) func(a ...interface{}) string {
		c := color.New(attrs...)
		if noColor {
			c.DisableColor()
		} else {
			c.EnableColor()
		}
		return c.SprintFunc()
	}

	return Style{
		Heading: sprint(color.FgMagenta, color.Bold),
		Label:   sprint(color.FgCyan),
		Value:   sprint(color.FgWhite),
		Prompt:  sprint(color.FgYellow),
		Success: sprint(color.FgGreen),
		Warning: sprint(color.FgYellow),
		Error:   sprint(color.FgRed),
		Accent:  sprint(color.FgBlue),
	}
}
