package semver_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/relogdev/relog/pkg/semver"
)

var _ = Describe("semver", func() {
	Describe("New", func() {
		It("renders the canonical name", func() {
			v := semver.New(1, 2, 3)
			Expect(v.Name).To(Equal("v1.2.3"))
			Expect(v.String()).To(Equal("v1.2.3"))
			Expect(v.Numeric()).To(Equal("1.2.3"))
		})
	})

	Describe("Parse", func() {
		It("parses a canonical version", func() {
			v, err := semver.Parse("v1.2.3")
			Expect(err).NotTo(HaveOccurred())
			Expect(v.Major).To(Equal(uint64(1)))
			Expect(v.Minor).To(Equal(uint64(2)))
			Expect(v.Patch).To(Equal(uint64(3)))
		})

		It("parses without the leading v", func() {
			v, err := semver.Parse("10.0.1")
			Expect(err).NotTo(HaveOccurred())
			Expect(v.Name).To(Equal("v10.0.1"))
		})

		It("accepts a consistent 4-part legacy version", func() {
			v, err := semver.Parse("1.2.3.0")
			Expect(err).NotTo(HaveOccurred())
			Expect(v.Name).To(Equal("v1.2.3"))
		})

		It("rejects leading zeros", func() {
			_, err := semver.Parse("v1.02.3")
			Expect(err).To(HaveOccurred())
		})

		It("rejects too few components", func() {
			_, err := semver.Parse("v1.2")
			Expect(err).To(HaveOccurred())
		})

		It("rejects non-numeric components", func() {
			_, err := semver.Parse("v1.2.x")
			Expect(err).To(HaveOccurred())
		})

		It("rejects prerelease suffixes", func() {
			_, err := semver.Parse("v1.2.3-rc.1")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("IsValid", func() {
		It("accepts canonical versions and rejects anything else", func() {
			Expect(semver.IsValid("v0.0.1")).To(BeTrue())
			Expect(semver.IsValid("release-1")).To(BeFalse())
			Expect(semver.IsValid("")).To(BeFalse())
		})
	})

	Describe("Bump", func() {
		It("zeroes lower components on a major bump", func() {
			next := semver.New(1, 2, 3).Bump(semver.Major)
			Expect(next.Name).To(Equal("v2.0.0"))
		})

		It("zeroes patch on a minor bump", func() {
			next := semver.New(1, 2, 3).Bump(semver.Minor)
			Expect(next.Name).To(Equal("v1.3.0"))
		})

		It("touches only patch on a patch bump", func() {
			next := semver.New(1, 2, 3).Bump(semver.Patch)
			Expect(next.Name).To(Equal("v1.2.4"))
		})

		It("does not mutate the receiver", func() {
			v := semver.New(1, 2, 3)
			_ = v.Bump(semver.Major)
			Expect(v.Name).To(Equal("v1.2.3"))
		})
	})

	Describe("Compare", func() {
		It("orders numerically across digit widths", func() {
			Expect(semver.Compare(semver.New(9, 0, 0), semver.New(10, 0, 0))).To(Equal(-1))
			Expect(semver.Compare(semver.New(10, 0, 0), semver.New(9, 0, 0))).To(Equal(1))
			Expect(semver.Compare(semver.New(1, 2, 3), semver.New(1, 2, 3))).To(Equal(0))
		})
	})

	Describe("CompareNames", func() {
		It("orders semver names numerically", func() {
			Expect(semver.CompareNames("v9.0.0", "v10.0.0")).To(Equal(-1))
		})

		It("falls back to string comparison for non-semver names", func() {
			Expect(semver.CompareNames("alpha", "beta")).To(BeNumerically("<", 0))
		})
	})

	Describe("ParseElement", func() {
		It("maps names case-insensitively and defaults to patch", func() {
			Expect(semver.ParseElement("Major")).To(Equal(semver.Major))
			Expect(semver.ParseElement("minor")).To(Equal(semver.Minor))
			Expect(semver.ParseElement("anything")).To(Equal(semver.Patch))
		})
	})
})
