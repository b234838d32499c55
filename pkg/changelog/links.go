package changelog

import "strings"

// Links expands commit and work item reference URLs from the repository's
// remote origin. Templates use {origin}, {sha} and {ref} placeholders; an
// empty template disables linking and entries fall back to plain text.
type Links struct {
	Origin        string
	CommitLink    string
	ReferenceLink string
}

// NewLinks builds a Links for the given origin URL. Empty templates are
// derived from the origin's host: github.com and Azure DevOps hosts get
// their native link styles, anything else stays unlinked.
func NewLinks(origin, commitTemplate, referenceTemplate string) Links {
	origin = strings.TrimSuffix(strings.TrimSpace(origin), ".git")
	l := Links{Origin: origin, CommitLink: commitTemplate, ReferenceLink: referenceTemplate}
	if origin == "" {
		return l
	}

	switch {
	case strings.Contains(origin, "github.com"):
		if l.CommitLink == "" {
			l.CommitLink = "{origin}/commit/{sha}"
		}
		if l.ReferenceLink == "" {
			l.ReferenceLink = "{origin}/issues/{ref}"
		}
	case strings.Contains(origin, "dev.azure.com"), strings.Contains(origin, "visualstudio.com"):
		if l.CommitLink == "" {
			l.CommitLink = "{origin}/commit/{sha}"
		}
		if l.ReferenceLink == "" {
			l.ReferenceLink = "{origin}/_workitems/edit/{ref}"
		}
	}
	return l
}

// CommitURL expands the commit link template for one SHA, or "" when
// linking is disabled.
func (l Links) CommitURL(sha string) string {
	if l.CommitLink == "" || l.Origin == "" {
		return ""
	}
	return expand(l.CommitLink, l.Origin, "{sha}", sha)
}

// ReferenceURL expands the reference link template for one work item token,
// or "" when linking is disabled.
func (l Links) ReferenceURL(ref string) string {
	if l.ReferenceLink == "" || l.Origin == "" {
		return ""
	}
	return expand(l.ReferenceLink, l.Origin, "{ref}", ref)
}

func expand(tmpl, origin, key, value string) string {
	out := strings.ReplaceAll(tmpl, "{origin}", origin)
	return strings.ReplaceAll(out, key, value)
}
