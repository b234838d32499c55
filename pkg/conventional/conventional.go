// Package conventional classifies free-form commit messages under the
// Conventional Commits convention. Parsing is a pure best-effort heuristic:
// commit messages are uncontrolled input, so classification never fails.
// At worst the commit carries the Invalid type and an empty summary.
package conventional

import (
	"fmt"
	"strings"
)

// CommitType is the closed set of change categories. Declaration order is
// the grouping order changelog sections are emitted in.
type CommitType string

const (
	TypeInvalid   CommitType = "Invalid"
	TypeFeat      CommitType = "feat"
	TypeFix       CommitType = "fix"
	TypePerf      CommitType = "perf"
	TypeRefactor  CommitType = "refactor"
	TypeTest      CommitType = "test"
	TypeChore     CommitType = "chore"
	TypeBuild     CommitType = "build"
	TypeCI        CommitType = "ci"
	TypeDocs      CommitType = "docs"
	TypeRevert    CommitType = "revert"
	TypeChangelog CommitType = "changelog"
)

// Types lists every CommitType in declaration order, Invalid first.
var Types = []CommitType{
	TypeInvalid,
	TypeFeat,
	TypeFix,
	TypePerf,
	TypeRefactor,
	TypeTest,
	TypeChore,
	TypeBuild,
	TypeCI,
	TypeDocs,
	TypeRevert,
	TypeChangelog,
}

// ParseCommitType maps a type token to its CommitType. Unknown tokens map to
// TypeInvalid; matching is exact, the convention is lowercase.
func ParseCommitType(text string) CommitType {
	for _, t := range Types[1:] {
		if string(t) == text {
			return t
		}
	}
	return TypeInvalid
}

// NoScope is the sentinel value meaning "scope deliberately absent", as
// opposed to an empty string meaning "never set".
const NoScope = "<none>"

// Commit is the structured classification of one commit message.
type Commit struct {
	Type           CommitType `json:"type"`
	Scope          string     `json:"scope"`
	Summary        string     `json:"summary"`
	Description    string     `json:"description"`
	BreakingChange string     `json:"breakingChange"`
	References     []string   `json:"references"`
}

// IsEmpty reports whether classification produced no usable summary.
func (c *Commit) IsEmpty() bool {
	return c == nil || c.Summary == ""
}

// IsBreakingChange reports whether a BREAKING CHANGE note was found.
func (c *Commit) IsBreakingChange() bool {
	return c != nil && c.BreakingChange != ""
}

func (c *Commit) hasScope() bool {
	return c.Scope != "" && c.Scope != NoScope
}

// Subject renders the canonical subject line: "type(scope): summary",
// "type: summary", or the bare summary when the type is unusable.
func (c *Commit) Subject() string {
	if c.Type == TypeInvalid && !c.hasScope() {
		return c.Summary
	}
	if c.hasScope() {
		return fmt.Sprintf("%s(%s): %s", c.Type, c.Scope, c.Summary)
	}
	return fmt.Sprintf("%s: %s", c.Type, c.Summary)
}

// Body renders the description, breaking-change note and reference list as
// blank-line separated paragraphs. Formatting then re-parsing the Subject and
// Body reproduces the structured fields.
func (c *Commit) Body() string {
	var parts []string
	if c.Description != "" {
		parts = append(parts, c.Description)
	}
	if c.BreakingChange != "" {
		parts = append(parts, "BREAKING CHANGE: "+c.BreakingChange)
	}
	if len(c.References) > 0 {
		parts = append(parts, "Refs "+strings.Join(c.References, ", "))
	}
	return strings.Join(parts, "\n\n")
}

// String renders the full commit message.
func (c *Commit) String() string {
	return c.Subject() + "\n\n" + c.Body()
}

// SetReferences normalizes a free-text reference list (tokens separated by
// any run of spaces or commas) into the ordered reference slice. Used by
// interactive message building, not by log parsing.
func (c *Commit) SetReferences(text string) {
	c.References = splitReferences(text)
}

// Parse classifies a commit's subject and body. It returns nil for an empty
// subject or a merge marker ("Merged ..."), which are excluded from
// classification entirely. Everything else yields a Commit, with TypeInvalid
// signalling an unrecognized type token and the permissive "fix" default
// applied when the subject has no structural type marker at all.
func Parse(subject, body string) *Commit {
	if subject == "" || strings.HasPrefix(subject, "Merged ") {
		return nil
	}

	typeToken := "fix"
	scope := ""
	if open := strings.Index(subject, "("); open >= 0 {
		typeToken = strings.TrimSpace(subject[:open])
		if close := strings.Index(subject, ")"); close > open {
			scope = strings.TrimSpace(subject[open+1 : close])
		}
	} else if colon := strings.Index(subject, ":"); colon >= 0 {
		typeToken = strings.TrimSpace(subject[:colon])
	}

	summary := ""
	if prefix := typeToken + ":"; strings.HasPrefix(subject, prefix) {
		summary = strings.TrimSpace(subject[len(prefix):])
	}
	if scope != "" {
		if prefix := typeToken + "(" + scope + "):"; strings.HasPrefix(subject, prefix) {
			summary = strings.TrimSpace(subject[len(prefix):])
		}
	}

	c := &Commit{
		Type:    ParseCommitType(typeToken),
		Scope:   scope,
		Summary: summary,
	}
	c.Description, c.BreakingChange, c.References = scanBody(body)
	return c
}

// scanBody walks the body lines applying the candidate rules: a non-marker
// line at index 0 or 1 is the description, any "BREAKING CHANGE" line sets
// the breaking note, any FIXES/ISSUES/CLOSES/REFS line sets the references.
// Later matches of the same kind overwrite earlier ones.
func scanBody(body string) (description, breaking string, refs []string) {
	if body == "" {
		return "", "", nil
	}
	lines := strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n")

	descLine, breakLine, refsLine := -1, -1, -1
	for i, line := range lines {
		if len(line) == 0 {
			continue
		}
		upper := strings.ToUpper(line)
		isBreaking := strings.HasPrefix(upper, "BREAKING CHANGE")
		isRefs := strings.HasPrefix(upper, "FIXES") ||
			strings.HasPrefix(upper, "ISSUES") ||
			strings.HasPrefix(upper, "CLOSES") ||
			strings.HasPrefix(upper, "REFS")

		if (i == 0 || i == 1) && !isBreaking &&
			!strings.HasPrefix(upper, "FIXES") &&
			!strings.HasPrefix(upper, "ISSUES") &&
			!strings.HasPrefix(upper, "REFS") {
			descLine = i
			continue
		}
		if isBreaking {
			breakLine = i
		}
		if isRefs {
			refsLine = i
		}
	}

	if descLine >= 0 {
		description = lines[descLine]
	}
	if breakLine >= 0 {
		// "BREAKING CHANGE:" is exactly 16 characters including the colon.
		line := lines[breakLine]
		if len(line) > 16 {
			breaking = strings.TrimSpace(line[16:])
		}
	}
	if refsLine >= 0 {
		line := lines[refsLine]
		if space := strings.Index(line, " "); space >= 0 {
			refs = splitReferences(line[space:])
		}
	}
	return description, breaking, refs
}

// splitReferences collapses runs of spaces and commas into single delimiters
// and splits the result into ordered reference tokens.
func splitReferences(text string) []string {
	cleaned := strings.NewReplacer(" ", "|", ",", "|").Replace(strings.TrimSpace(text))
	for strings.Contains(cleaned, "||") {
		cleaned = strings.ReplaceAll(cleaned, "||", "|")
	}
	var refs []string
	for _, token := range strings.Split(cleaned, "|") {
		if token != "" {
			refs = append(refs, token)
		}
	}
	return refs
}
