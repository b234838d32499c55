package conventional

import "strings"

// MessageElement identifies what a rendered message line carries.
type MessageElement string

const (
	ElementSubject        MessageElement = "subject"
	ElementDescription    MessageElement = "description"
	ElementBreakingChange MessageElement = "breaking-change"
	ElementReferences     MessageElement = "references"
	ElementSpacer         MessageElement = "spacer"
)

// MessageLine is one numbered line of a rendered commit message, used by
// interactive message builders to show the operator what will be committed.
type MessageLine struct {
	Number  int
	Element MessageElement
	Text    string
}

// MessageLines renders the commit message as numbered lines: subject,
// description (or a spacer), then blank-line separated breaking-change and
// reference paragraphs when present.
func (c *Commit) MessageLines() []MessageLine {
	n := 1
	lines := []MessageLine{{Number: n, Element: ElementSubject, Text: c.Subject()}}

	n++
	if c.Description != "" {
		lines = append(lines, MessageLine{Number: n, Element: ElementDescription, Text: c.Description})
	} else {
		lines = append(lines, MessageLine{Number: n, Element: ElementSpacer})
	}
	if c.IsBreakingChange() {
		n++
		lines = append(lines, MessageLine{Number: n, Element: ElementSpacer})
		n++
		lines = append(lines, MessageLine{Number: n, Element: ElementBreakingChange, Text: "BREAKING CHANGE: " + c.BreakingChange})
	}
	if len(c.References) > 0 {
		n++
		lines = append(lines, MessageLine{Number: n, Element: ElementSpacer})
		n++
		lines = append(lines, MessageLine{Number: n, Element: ElementReferences, Text: "Refs " + strings.Join(c.References, ", ")})
	}
	return lines
}
