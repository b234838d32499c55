package inmemory_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/relogdev/relog/pkg/history"
	"github.com/relogdev/relog/pkg/semver"
	"github.com/relogdev/relog/pkg/store"
	"github.com/relogdev/relog/pkg/store/inmemory"
)

func newCommit(sha, subject string, date time.Time) *history.Commit {
	c := history.NewCommit()
	c.SHA = sha
	c.Subject = subject
	c.Contributors[history.RoleAuthor] = history.Contributor{Name: "Jane", Email: "jane@example.com"}
	c.ContributorDates[history.RoleAuthor] = date
	return c
}

func newTag(name, sha string, commit *history.Commit) *history.Tag {
	t := history.NewTag()
	t.Ref = "refs/tags/" + name
	t.Name = name
	t.SHA = sha
	t.Commit = commit
	return t
}

var _ = Describe("inmemory store", func() {
	var (
		ctx context.Context
		s   *inmemory.Store
	)

	BeforeEach(func() {
		ctx = context.Background()
		s = inmemory.New()
	})

	Describe("commits", func() {
		It("round-trips a commit by SHA", func() {
			c := newCommit("aaa", "fix: x", time.Now())
			Expect(s.AddCommit(ctx, c)).To(Succeed())

			got, err := s.GetCommit(ctx, "aaa")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Subject).To(Equal("fix: x"))

			exists, err := s.CommitExists(ctx, "aaa")
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeTrue())
		})

		It("returns NotFoundError for a missing SHA", func() {
			_, err := s.GetCommit(ctx, "nope")
			Expect(err).To(MatchError(store.NotFoundError{Kind: "commit", Key: "nope"}))
		})

		It("fetches commits in the requested order, skipping unknowns", func() {
			Expect(s.AddCommit(ctx, newCommit("aaa", "a", time.Now()))).To(Succeed())
			Expect(s.AddCommit(ctx, newCommit("bbb", "b", time.Now()))).To(Succeed())

			commits, err := s.GetCommits(ctx, []string{"bbb", "missing", "aaa"})
			Expect(err).NotTo(HaveOccurred())
			Expect(commits).To(HaveLen(2))
			Expect(commits[0].SHA).To(Equal("bbb"))
			Expect(commits[1].SHA).To(Equal("aaa"))
		})

		It("resolves the newest commit by date", func() {
			older := newCommit("aaa", "a", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
			newer := newCommit("bbb", "b", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
			Expect(s.AddCommit(ctx, older)).To(Succeed())
			Expect(s.AddCommit(ctx, newer)).To(Succeed())

			got, err := s.NewestCommit(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.SHA).To(Equal("bbb"))
		})
	})

	Describe("tags", func() {
		It("round-trips a tag by ref", func() {
			tag := newTag("v1.0.0", "aaa", nil)
			Expect(s.AddTag(ctx, tag)).To(Succeed())

			got, err := s.GetTag(ctx, "refs/tags/v1.0.0")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Name).To(Equal("v1.0.0"))
		})

		It("orders MaxTag numerically across digit widths", func() {
			Expect(s.AddTag(ctx, newTag("v9.0.0", "aaa", nil))).To(Succeed())
			Expect(s.AddTag(ctx, newTag("v10.0.0", "bbb", nil))).To(Succeed())

			max, err := s.MaxTag(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(max.Name).To(Equal("v10.0.0"))
		})

		It("returns nil, nil for MaxTag on an empty store", func() {
			max, err := s.MaxTag(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(max).To(BeNil())
		})
	})

	Describe("versions", func() {
		It("snapshots commits as SHAs and expands them on read", func() {
			c1 := newCommit("aaa", "feat: a", time.Now())
			c2 := newCommit("bbb", "fix: b", time.Now())
			Expect(s.AddCommit(ctx, c1)).To(Succeed())
			Expect(s.AddCommit(ctx, c2)).To(Succeed())

			v := &history.Version{Name: "v1.0.0", Commits: []*history.Commit{c1, c2}}
			Expect(s.AddVersion(ctx, v)).To(Succeed())

			got, err := s.GetVersion(ctx, "v1.0.0")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.CommitSHAs).To(Equal([]string{"aaa", "bbb"}))
			Expect(got.Commits).To(HaveLen(2))
			Expect(got.Commits[0].Subject).To(Equal("feat: a"))
		})

		It("replaces a version on re-add", func() {
			Expect(s.AddVersion(ctx, &history.Version{Name: "v1.0.0", CommitSHAs: []string{"aaa"}})).To(Succeed())
			Expect(s.AddVersion(ctx, &history.Version{Name: "v1.0.0", CommitSHAs: []string{"bbb"}})).To(Succeed())

			got, err := s.GetVersion(ctx, "v1.0.0")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.CommitSHAs).To(Equal([]string{"bbb"}))

			count, err := s.VersionCount(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(1))
		})

		It("lists versions in ascending numeric order", func() {
			for _, name := range []string{"v10.0.0", "v1.0.0", "v2.0.0"} {
				v := &history.Version{Name: name, SemVer: semver.MustParse(name)}
				Expect(s.AddVersion(ctx, v)).To(Succeed())
			}

			versions, err := s.Versions(ctx)
			Expect(err).NotTo(HaveOccurred())
			ordered := make([]string, len(versions))
			for i, v := range versions {
				ordered[i] = v.Name
			}
			Expect(ordered).To(Equal([]string{"v1.0.0", "v2.0.0", "v10.0.0"}))
		})

		It("resolves the max version numerically", func() {
			Expect(s.AddVersion(ctx, &history.Version{Name: "v9.0.0"})).To(Succeed())
			Expect(s.AddVersion(ctx, &history.Version{Name: "v10.0.0"})).To(Succeed())

			max, err := s.MaxVersion(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(max.Name).To(Equal("v10.0.0"))
		})

		It("returns nil, nil for MaxVersion on an empty store", func() {
			max, err := s.MaxVersion(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(max).To(BeNil())
		})
	})

	Describe("contributors", func() {
		It("deduplicates by email across commits and tags", func() {
			Expect(s.AddCommit(ctx, newCommit("aaa", "a", time.Now()))).To(Succeed())
			Expect(s.AddCommit(ctx, newCommit("bbb", "b", time.Now()))).To(Succeed())

			contributors, err := s.Contributors(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(contributors).To(HaveLen(1))
			Expect(contributors[0].Email).To(Equal("jane@example.com"))
		})
	})
})
