// Package changelog renders stored versions into markdown. The output is
// assembled from a small set of template pieces so operators can restyle the
// changelog without touching code.
package changelog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/relogdev/relog/pkg/conventional"
	"github.com/relogdev/relog/pkg/history"
	"github.com/relogdev/relog/pkg/semver"
)

// Renderer turns versions into markdown using a template set and the
// repository's link configuration.
type Renderer struct {
	set   *Set
	links Links
}

// NewRenderer builds a Renderer.
func NewRenderer(set *Set, links Links) *Renderer {
	return &Renderer{set: set, links: links}
}

// RenderAll renders every version in descending version order, separated by
// the version-separator piece, under a single changelog heading.
func (r *Renderer) RenderAll(versions []*history.Version) (string, error) {
	ordered := make([]*history.Version, len(versions))
	copy(ordered, versions)
	sort.Slice(ordered, func(i, j int) bool {
		return semver.Compare(ordered[i].SemVer, ordered[j].SemVer) > 0
	})

	separator, err := r.set.render("version-separator", nil)
	if err != nil {
		return "", err
	}

	sections := make([]string, 0, len(ordered))
	for _, v := range ordered {
		section, err := r.RenderVersion(v)
		if err != nil {
			return "", err
		}
		sections = append(sections, section)
	}

	var b strings.Builder
	b.WriteString("# Changelog\n")
	for i, section := range sections {
		b.WriteString("\n")
		b.WriteString(section)
		b.WriteString("\n")
		if i < len(sections)-1 {
			b.WriteString("\n")
			b.WriteString(separator)
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

// RenderVersion renders one version: header, notes, then one section per
// commit type in enum order with entries in ascending committer-date order.
func (r *Renderer) RenderVersion(v *history.Version) (string, error) {
	var parts []string

	header, err := r.set.render("version", map[string]string{
		"Name": v.Name,
		"Date": v.ReleaseDate.Format("2006-01-02"),
	})
	if err != nil {
		return "", err
	}
	parts = append(parts, header)

	notes, err := r.renderNotes(v)
	if err != nil {
		return "", err
	}
	parts = append(parts, notes...)

	byType := groupByType(v.Commits)
	for _, t := range conventional.Types[1:] {
		commits := byType[t]
		if len(commits) == 0 {
			continue
		}

		typeHeader, err := r.set.render("type", map[string]string{"Type": string(t)})
		if err != nil {
			return "", err
		}
		section := []string{typeHeader}
		for _, c := range commits {
			entry, err := r.renderEntry(c)
			if err != nil {
				return "", err
			}
			section = append(section, entry)
		}
		parts = append(parts, strings.Join(section, "\n"))
	}

	return strings.Join(parts, "\n"), nil
}

func (r *Renderer) renderNotes(v *history.Version) ([]string, error) {
	if len(v.Notes) == 0 {
		return nil, nil
	}
	seqs := make([]int64, 0, len(v.Notes))
	for seq := range v.Notes {
		seqs = append(seqs, seq)
	}
	sort.Slice(seqs, func(i, j int) bool { return seqs[i] < seqs[j] })

	notes := make([]string, 0, len(seqs))
	for _, seq := range seqs {
		note, err := r.set.render("version-note", map[string]string{"Note": v.Notes[seq]})
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, nil
}

func (r *Renderer) renderEntry(c *history.Commit) (string, error) {
	cc := c.Conventional

	link := "`" + shortSHA(c.SHA) + "`"
	if url := r.links.CommitURL(c.SHA); url != "" {
		link = fmt.Sprintf("[%s](%s)", shortSHA(c.SHA), url)
	}

	data := map[string]string{
		"Link":    link,
		"Scope":   cc.Scope,
		"Summary": cc.Summary,
	}
	name := "commit-noscope"
	if cc.Scope != "" && cc.Scope != conventional.NoScope {
		name = "commit-scope"
	}
	entry, err := r.set.render(name, data)
	if err != nil {
		return "", err
	}

	if len(cc.References) > 0 {
		refs := make([]string, len(cc.References))
		for i, ref := range cc.References {
			refs[i] = ref
			if url := r.links.ReferenceURL(ref); url != "" {
				refs[i] = fmt.Sprintf("[%s](%s)", ref, url)
			}
		}
		suffix, err := r.set.render("refs", map[string]string{"Refs": strings.Join(refs, ", ")})
		if err != nil {
			return "", err
		}
		entry += suffix
	}

	if cc.IsBreakingChange() {
		callout, err := r.set.render("breaking-change", map[string]string{"Text": cc.BreakingChange})
		if err != nil {
			return "", err
		}
		entry += "\n" + callout
	}
	return entry, nil
}

// WriteVersionFiles writes one markdown file per version into dir, named
// after the version.
func (r *Renderer) WriteVersionFiles(dir string, versions []*history.Version) error {
	for _, v := range versions {
		content, err := r.RenderVersion(v)
		if err != nil {
			return err
		}
		path := filepath.Join(dir, v.Name+".md")
		if err := os.WriteFile(path, []byte(content+"\n"), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return nil
}

// WriteChangelog writes the concatenated changelog to path.
func WriteChangelog(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// groupByType buckets classified commits by type in ascending committer-date
// order. Non-conventional commits and merge markers are skipped entirely.
func groupByType(commits []*history.Commit) map[conventional.CommitType][]*history.Commit {
	byType := make(map[conventional.CommitType][]*history.Commit)
	for _, c := range commits {
		if !c.IsConventional() {
			continue
		}
		byType[c.Conventional.Type] = append(byType[c.Conventional.Type], c)
	}
	for t := range byType {
		bucket := byType[t]
		sort.SliceStable(bucket, func(i, j int) bool {
			return committerDate(bucket[i]).Before(committerDate(bucket[j]))
		})
	}
	return byType
}

func committerDate(c *history.Commit) time.Time {
	if d, ok := c.ContributorDates[history.RoleCommitter]; ok {
		return d
	}
	return c.Date()
}

func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}
