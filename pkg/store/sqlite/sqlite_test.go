package sqlite_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/relogdev/relog/pkg/conventional"
	"github.com/relogdev/relog/pkg/history"
	"github.com/relogdev/relog/pkg/semver"
	"github.com/relogdev/relog/pkg/store"
	"github.com/relogdev/relog/pkg/store/sqlite"
)

func newCommit(sha, subject string, date time.Time) *history.Commit {
	c := history.NewCommit()
	c.SHA = sha
	c.Subject = subject
	c.Contributors[history.RoleAuthor] = history.Contributor{Name: "Jane", Email: "jane@example.com"}
	c.Contributors[history.RoleCommitter] = history.Contributor{Name: "Sam", Email: "sam@example.com"}
	c.ContributorDates[history.RoleAuthor] = date
	c.ContributorDates[history.RoleCommitter] = date.Add(time.Minute)
	c.Conventional = conventional.Parse(subject, "")
	return c
}

func newTag(name, sha string, commit *history.Commit, date time.Time) *history.Tag {
	t := history.NewTag()
	t.Ref = "refs/tags/" + name
	t.Name = name
	t.SHA = sha
	t.Commit = commit
	t.Subject = name
	t.Contributors[history.RoleTagger] = history.Contributor{Name: "Jane", Email: "jane@example.com"}
	t.ContributorDates[history.RoleTagger] = date
	return t
}

var _ = Describe("sqlite store", func() {
	var (
		ctx context.Context
		s   *sqlite.Store
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		s, err = sqlite.Open(ctx, ":memory:")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(s.Close()).To(Succeed())
	})

	Describe("commits", func() {
		It("round-trips identity, roles and classification", func() {
			date := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
			c := newCommit("aaa", "feat(api): add endpoint", date)
			c.Conventional.BreakingChange = "drops v1"
			c.Conventional.References = []string{"12", "34"}
			Expect(s.AddCommit(ctx, c)).To(Succeed())

			got, err := s.GetCommit(ctx, "aaa")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Subject).To(Equal("feat(api): add endpoint"))
			Expect(got.Contributors[history.RoleAuthor].Name).To(Equal("Jane"))
			Expect(got.ContributorDates[history.RoleAuthor]).To(BeTemporally("==", date))
			Expect(got.Conventional).NotTo(BeNil())
			Expect(got.Conventional.Type).To(Equal(conventional.TypeFeat))
			Expect(got.Conventional.Scope).To(Equal("api"))
			Expect(got.Conventional.BreakingChange).To(Equal("drops v1"))
			Expect(got.Conventional.References).To(Equal([]string{"12", "34"}))
		})

		It("re-adding replaces the whole commit graph", func() {
			c := newCommit("aaa", "feat: one", time.Now().UTC())
			Expect(s.AddCommit(ctx, c)).To(Succeed())

			revised := newCommit("aaa", "fix: two", time.Now().UTC())
			Expect(s.AddCommit(ctx, revised)).To(Succeed())

			got, err := s.GetCommit(ctx, "aaa")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Subject).To(Equal("fix: two"))
			Expect(got.Conventional.Type).To(Equal(conventional.TypeFix))
		})

		It("keeps a nil classification nil", func() {
			c := history.NewCommit()
			c.SHA = "bare"
			c.Subject = ""
			Expect(s.AddCommit(ctx, c)).To(Succeed())

			got, err := s.GetCommit(ctx, "bare")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Conventional).To(BeNil())
		})

		It("returns NotFoundError for a missing SHA", func() {
			_, err := s.GetCommit(ctx, "nope")
			Expect(err).To(MatchError(store.NotFoundError{Kind: "commit", Key: "nope"}))
		})

		It("resolves the newest commit by role date ordering", func() {
			older := newCommit("aaa", "a", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
			newer := newCommit("bbb", "b", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
			Expect(s.AddCommit(ctx, older)).To(Succeed())
			Expect(s.AddCommit(ctx, newer)).To(Succeed())

			got, err := s.NewestCommit(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).NotTo(BeNil())
			Expect(got.SHA).To(Equal("bbb"))
		})

		It("returns nil, nil for NewestCommit on an empty store", func() {
			got, err := s.NewestCommit(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(BeNil())
		})
	})

	Describe("tags", func() {
		It("round-trips a tag and re-attaches its commit", func() {
			date := time.Date(2024, 3, 3, 10, 0, 0, 0, time.UTC)
			c := newCommit("aaa", "feat: a", date)
			Expect(s.AddCommit(ctx, c)).To(Succeed())

			tag := newTag("v1.0.0", "tagsha", c, date)
			Expect(s.AddTag(ctx, tag)).To(Succeed())

			got, err := s.GetTag(ctx, "refs/tags/v1.0.0")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Name).To(Equal("v1.0.0"))
			Expect(got.Contributors[history.RoleTagger].Email).To(Equal("jane@example.com"))
			Expect(got.Commit).NotTo(BeNil())
			Expect(got.Commit.SHA).To(Equal("aaa"))
		})

		It("tolerates a tag whose commit is not stored", func() {
			tag := newTag("v1.0.0", "tagsha", &history.Commit{SHA: "ghost"}, time.Now().UTC())
			tag.Commit.Contributors = map[history.Role]history.Contributor{}
			tag.Commit.ContributorDates = map[history.Role]time.Time{}

			Expect(s.AddTag(ctx, tag)).To(Succeed())

			got, err := s.GetTag(ctx, "refs/tags/v1.0.0")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Commit).To(BeNil())
		})

		It("orders MaxTag numerically", func() {
			Expect(s.AddTag(ctx, newTag("v9.0.0", "a", nil, time.Now().UTC()))).To(Succeed())
			Expect(s.AddTag(ctx, newTag("v10.0.0", "b", nil, time.Now().UTC()))).To(Succeed())

			max, err := s.MaxTag(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(max.Name).To(Equal("v10.0.0"))
		})
	})

	Describe("versions", func() {
		It("round-trips commits, notes and the tag reference", func() {
			date := time.Date(2024, 3, 3, 10, 0, 0, 0, time.UTC)
			c1 := newCommit("aaa", "feat: a", date)
			c2 := newCommit("bbb", "fix: b", date.Add(time.Hour))
			Expect(s.AddCommit(ctx, c1)).To(Succeed())
			Expect(s.AddCommit(ctx, c2)).To(Succeed())

			tag := newTag("v1.0.0", "tagsha", c2, date)
			Expect(s.AddTag(ctx, tag)).To(Succeed())

			v := history.NewVersion(tag)
			v.Commits = []*history.Commit{c2, c1}
			v.Notes[1] = "first release"
			Expect(s.AddVersion(ctx, v)).To(Succeed())

			got, err := s.GetVersion(ctx, "v1.0.0")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.CommitSHAs).To(Equal([]string{"bbb", "aaa"}))
			Expect(got.Commits).To(HaveLen(2))
			Expect(got.Notes).To(HaveKeyWithValue(int64(1), "first release"))
			Expect(got.Tag).NotTo(BeNil())
			Expect(got.Tag.Name).To(Equal("v1.0.0"))
			Expect(got.SemVer.Major).To(Equal(uint64(1)))
			Expect(got.ReleaseDate).To(BeTemporally("==", date))
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

		It("returns nil, nil for MaxVersion on an empty store", func() {
			max, err := s.MaxVersion(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(max).To(BeNil())
		})
	})

	Describe("contributors", func() {
		It("deduplicates by email and keeps the latest name", func() {
			c := newCommit("aaa", "a", time.Now().UTC())
			Expect(s.AddCommit(ctx, c)).To(Succeed())

			renamed := newCommit("bbb", "b", time.Now().UTC())
			renamed.Contributors[history.RoleAuthor] = history.Contributor{Name: "Jane Q", Email: "jane@example.com"}
			Expect(s.AddCommit(ctx, renamed)).To(Succeed())

			contributors, err := s.Contributors(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(contributors).To(HaveLen(2))
			Expect(contributors[0].Email).To(Equal("jane@example.com"))
			Expect(contributors[0].Name).To(Equal("Jane Q"))
		})
	})
})
