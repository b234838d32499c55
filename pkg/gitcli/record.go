package gitcli

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/relogdev/relog/pkg/conventional"
	"github.com/relogdev/relog/pkg/history"
)

// Structured record fetches wrap each field of a commit or tag in an
// XML-like tag inside git's format string, so free-form subjects and bodies
// cannot collide with a line-oriented delimiter. The whole output is wrapped
// in a synthetic <list> root and decoded with a lax XML decoder. The single
// quotes embedded in the format strings come back literally in git's output
// and are stripped before decoding. All escaping knowledge lives in this
// file only.

const commitPretty = `--pretty=format:'<!--%H-->%n<c><an>%an</an><ae>%ae</ae><ad>%aI</ad><cn>%cn</cn><ce>%ce</ce><cd>%cI</cd><sha>%H</sha><sub>%s</sub><b>%b</b></c>'`

const tagFormat = `--format='<t><ref>%(refname)</ref><sha>%(objectname)</sha><type>%(objecttype)</type><an>%(authorname)</an><ae>%(authoremail:trim)</ae><ad>%(authordate:iso8601)</ad><cn>%(committername)</cn><ce>%(committeremail:trim)</ce><cd>%(committerdate:iso8601)</cd><tn>%(taggername)</tn><te>%(taggeremail:trim)</te><td>%(taggerdate:iso8601)</td><sub>%(contents:subject)</sub><b>%(contents:body)</b></t>'`

// tagDateLayout is git's iso8601 date rendering used by for-each-ref.
const tagDateLayout = "2006-01-02 15:04:05 -0700"

type commitRecord struct {
	AuthorName     string `xml:"an"`
	AuthorEmail    string `xml:"ae"`
	AuthorDate     string `xml:"ad"`
	CommitterName  string `xml:"cn"`
	CommitterEmail string `xml:"ce"`
	CommitterDate  string `xml:"cd"`
	SHA            string `xml:"sha"`
	Subject        string `xml:"sub"`
	Body           string `xml:"b"`
}

type commitRecordList struct {
	XMLName xml.Name       `xml:"list"`
	Commits []commitRecord `xml:"c"`
}

type tagRecord struct {
	Ref            string `xml:"ref"`
	SHA            string `xml:"sha"`
	ObjectType     string `xml:"type"`
	AuthorName     string `xml:"an"`
	AuthorEmail    string `xml:"ae"`
	AuthorDate     string `xml:"ad"`
	CommitterName  string `xml:"cn"`
	CommitterEmail string `xml:"ce"`
	CommitterDate  string `xml:"cd"`
	TaggerName     string `xml:"tn"`
	TaggerEmail    string `xml:"te"`
	TaggerDate     string `xml:"td"`
	Subject        string `xml:"sub"`
	Body           string `xml:"b"`
}

type tagRecordList struct {
	XMLName xml.Name    `xml:"list"`
	Tags    []tagRecord `xml:"t"`
}

// decodeRecords strips the literal quotes surrounding each record, wraps the
// output in the synthetic root element and decodes into dst. The decoder is
// deliberately lax: commit messages are uncontrolled text and may carry
// stray ampersands or entities git does not escape.
func decodeRecords(output string, openTag, closeTag string, dst any) error {
	output = strings.ReplaceAll(output, "'"+openTag, openTag)
	output = strings.ReplaceAll(output, closeTag+"'", closeTag)

	dec := xml.NewDecoder(strings.NewReader("<list>" + output + "</list>"))
	dec.Strict = false
	dec.Entity = xml.HTMLEntity
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decoding git record output: %w", err)
	}
	return nil
}

// parseCommitRecords turns the raw output of a commit detail query into
// typed commits.
func parseCommitRecords(output string) ([]*history.Commit, error) {
	output = strings.ReplaceAll(output, "'<!--", "<!--")
	var list commitRecordList
	if err := decodeRecords(output, "<c>", "</c>", &list); err != nil {
		return nil, err
	}
	commits := make([]*history.Commit, 0, len(list.Commits))
	for _, rec := range list.Commits {
		commits = append(commits, rec.toCommit())
	}
	return commits, nil
}

// parseTagRecords turns the raw output of a tag detail query into typed
// tags. The tag's target commit is not resolved here; that needs a separate
// peel query.
func parseTagRecords(output string) ([]*history.Tag, []string, error) {
	var list tagRecordList
	if err := decodeRecords(output, "<t>", "</t>", &list); err != nil {
		return nil, nil, err
	}
	tags := make([]*history.Tag, 0, len(list.Tags))
	types := make([]string, 0, len(list.Tags))
	for _, rec := range list.Tags {
		tags = append(tags, rec.toTag())
		types = append(types, rec.ObjectType)
	}
	return tags, types, nil
}

func (rec commitRecord) toCommit() *history.Commit {
	c := history.NewCommit()
	c.SHA = rec.SHA
	c.Subject = rec.Subject
	c.Body = rec.Body

	addContributor(c.Contributors, history.RoleAuthor, rec.AuthorName, rec.AuthorEmail)
	addContributor(c.Contributors, history.RoleCommitter, rec.CommitterName, rec.CommitterEmail)
	addDate(c.ContributorDates, history.RoleAuthor, rec.AuthorDate, time.RFC3339)
	addDate(c.ContributorDates, history.RoleCommitter, rec.CommitterDate, time.RFC3339)

	c.Conventional = conventional.Parse(c.Subject, c.Body)
	return c
}

func (rec tagRecord) toTag() *history.Tag {
	t := history.NewTag()
	t.Ref = rec.Ref
	t.SHA = rec.SHA
	t.Name = strings.TrimPrefix(rec.Ref, "refs/tags/")
	t.Subject = rec.Subject
	t.Body = rec.Body

	addContributor(t.Contributors, history.RoleAuthor, rec.AuthorName, rec.AuthorEmail)
	addContributor(t.Contributors, history.RoleCommitter, rec.CommitterName, rec.CommitterEmail)
	addContributor(t.Contributors, history.RoleTagger, rec.TaggerName, rec.TaggerEmail)
	addDate(t.ContributorDates, history.RoleAuthor, rec.AuthorDate, tagDateLayout)
	addDate(t.ContributorDates, history.RoleCommitter, rec.CommitterDate, tagDateLayout)
	addDate(t.ContributorDates, history.RoleTagger, rec.TaggerDate, tagDateLayout)
	return t
}

func addContributor(m map[history.Role]history.Contributor, role history.Role, name, email string) {
	c := history.Contributor{Name: name, Email: email}
	if c.IsEmpty() {
		return
	}
	m[role] = c
}

func addDate(m map[history.Role]time.Time, role history.Role, text, layout string) {
	if text == "" {
		return
	}
	if d, err := time.Parse(layout, text); err == nil {
		m[role] = d
	}
}
