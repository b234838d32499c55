package jsonfile_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/relogdev/relog/pkg/history"
	"github.com/relogdev/relog/pkg/store"
	"github.com/relogdev/relog/pkg/store/jsonfile"
)

func newCommit(sha, subject string, date time.Time) *history.Commit {
	c := history.NewCommit()
	c.SHA = sha
	c.Subject = subject
	c.Contributors[history.RoleAuthor] = history.Contributor{Name: "Jane", Email: "jane@example.com"}
	c.ContributorDates[history.RoleAuthor] = date
	return c
}

var _ = Describe("jsonfile store", func() {
	var (
		ctx    context.Context
		tmpDir string
		s      *jsonfile.Store
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		tmpDir, err = os.MkdirTemp("", "jsonfile-test-*")
		Expect(err).NotTo(HaveOccurred())

		s, err = jsonfile.Open(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	It("creates the document directory", func() {
		Expect(s.Dir()).To(Equal(tmpDir))
	})

	It("persists commits as a flat JSON document", func() {
		c := newCommit("aaa", "feat: first", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
		Expect(s.AddCommit(ctx, c)).To(Succeed())

		data, err := os.ReadFile(filepath.Join(tmpDir, "commits.json"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring(`"sha": "aaa"`))
	})

	It("survives a close and reopen", func() {
		c := newCommit("aaa", "feat: first", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
		Expect(s.AddCommit(ctx, c)).To(Succeed())
		Expect(s.AddTag(ctx, &history.Tag{Ref: "refs/tags/v1.0.0", Name: "v1.0.0"})).To(Succeed())
		Expect(s.AddVersion(ctx, &history.Version{Name: "v1.0.0", Commits: []*history.Commit{c}})).To(Succeed())
		Expect(s.Close()).To(Succeed())

		reopened, err := jsonfile.Open(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		got, err := reopened.GetCommit(ctx, "aaa")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Subject).To(Equal("feat: first"))

		v, err := reopened.GetVersion(ctx, "v1.0.0")
		Expect(err).NotTo(HaveOccurred())
		Expect(v.CommitSHAs).To(Equal([]string{"aaa"}))
		Expect(v.Commits).To(HaveLen(1))

		exists, err := reopened.TagExists(ctx, "refs/tags/v1.0.0")
		Expect(err).NotTo(HaveOccurred())
		Expect(exists).To(BeTrue())
	})

	It("upserts by key instead of appending duplicates", func() {
		first := newCommit("aaa", "feat: first", time.Now())
		second := newCommit("aaa", "feat: revised", time.Now())
		Expect(s.AddCommit(ctx, first)).To(Succeed())
		Expect(s.AddCommit(ctx, second)).To(Succeed())

		got, err := s.GetCommit(ctx, "aaa")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Subject).To(Equal("feat: revised"))

		reopened, err := jsonfile.Open(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		commits, err := reopened.GetCommits(ctx, []string{"aaa"})
		Expect(err).NotTo(HaveOccurred())
		Expect(commits).To(HaveLen(1))
	})

	It("returns NotFoundError for missing entities", func() {
		_, err := s.GetCommit(ctx, "nope")
		Expect(err).To(MatchError(store.NotFoundError{Kind: "commit", Key: "nope"}))

		_, err = s.GetTag(ctx, "refs/tags/nope")
		Expect(err).To(MatchError(store.NotFoundError{Kind: "tag", Key: "refs/tags/nope"}))

		_, err = s.GetVersion(ctx, "v9.9.9")
		Expect(err).To(MatchError(store.NotFoundError{Kind: "version", Key: "v9.9.9"}))
	})

	It("orders max lookups numerically", func() {
		Expect(s.AddTag(ctx, &history.Tag{Ref: "refs/tags/v9.0.0", Name: "v9.0.0"})).To(Succeed())
		Expect(s.AddTag(ctx, &history.Tag{Ref: "refs/tags/v10.0.0", Name: "v10.0.0"})).To(Succeed())

		max, err := s.MaxTag(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(max.Name).To(Equal("v10.0.0"))
	})

	It("tracks contributors across documents", func() {
		Expect(s.AddCommit(ctx, newCommit("aaa", "a", time.Now()))).To(Succeed())

		contributors, err := s.Contributors(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(contributors).To(HaveLen(1))

		data, err := os.ReadFile(filepath.Join(tmpDir, "contributors.json"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring("jane@example.com"))
	})
})
