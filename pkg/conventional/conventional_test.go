package conventional_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/relogdev/relog/pkg/conventional"
)

var _ = Describe("conventional", func() {
	Describe("ParseCommitType", func() {
		It("maps known tokens to their type", func() {
			Expect(conventional.ParseCommitType("feat")).To(Equal(conventional.TypeFeat))
			Expect(conventional.ParseCommitType("changelog")).To(Equal(conventional.TypeChangelog))
		})

		It("maps unknown and wrongly-cased tokens to Invalid", func() {
			Expect(conventional.ParseCommitType("wip")).To(Equal(conventional.TypeInvalid))
			Expect(conventional.ParseCommitType("Feat")).To(Equal(conventional.TypeInvalid))
		})
	})

	Describe("Parse", func() {
		It("parses a scoped subject", func() {
			c := conventional.Parse("feat(api): add the list endpoint", "")
			Expect(c).NotTo(BeNil())
			Expect(c.Type).To(Equal(conventional.TypeFeat))
			Expect(c.Scope).To(Equal("api"))
			Expect(c.Summary).To(Equal("add the list endpoint"))
		})

		It("parses an unscoped subject", func() {
			c := conventional.Parse("fix: handle nil contributor maps", "")
			Expect(c.Type).To(Equal(conventional.TypeFix))
			Expect(c.Scope).To(BeEmpty())
			Expect(c.Summary).To(Equal("handle nil contributor maps"))
		})

		It("keeps the scope on an unknown type token", func() {
			c := conventional.Parse("wip(parser): half done", "")
			Expect(c.Type).To(Equal(conventional.TypeInvalid))
			Expect(c.Scope).To(Equal("parser"))
			Expect(c.Summary).To(Equal("half done"))
		})

		It("returns nil for an empty subject", func() {
			Expect(conventional.Parse("", "whatever")).To(BeNil())
		})

		It("returns nil for merge markers", func() {
			Expect(conventional.Parse("Merged PR 42: feat: something", "")).To(BeNil())
		})

		It("yields an empty classification for a free-form subject", func() {
			c := conventional.Parse("update the readme", "")
			Expect(c).NotTo(BeNil())
			Expect(c.IsEmpty()).To(BeTrue())
		})

		It("extracts description, breaking change and references from the body", func() {
			body := "reworks the storage layout\n\nBREAKING CHANGE: drops the v1 api\n\nFixes 123, 456"
			c := conventional.Parse("feat(store): rework layout", body)
			Expect(c.Description).To(Equal("reworks the storage layout"))
			Expect(c.BreakingChange).To(Equal("drops the v1 api"))
			Expect(c.References).To(Equal([]string{"123", "456"}))
			Expect(c.IsBreakingChange()).To(BeTrue())
		})

		It("lets later marker lines overwrite earlier ones", func() {
			body := "Refs 1\nRefs 2 3"
			c := conventional.Parse("fix: x", body)
			Expect(c.References).To(Equal([]string{"2", "3"}))
		})

		It("treats a bare BREAKING CHANGE line as no note", func() {
			c := conventional.Parse("fix: x", "BREAKING CHANGE:")
			Expect(c.IsBreakingChange()).To(BeFalse())
		})
	})

	Describe("Subject and Body", func() {
		It("round-trips through Parse", func() {
			c := &conventional.Commit{
				Type:           conventional.TypeFeat,
				Scope:          "cli",
				Summary:        "add the status command",
				Description:    "shows the pending release",
				BreakingChange: "renames the binary",
				References:     []string{"77"},
			}

			parsed := conventional.Parse(c.Subject(), c.Body())
			Expect(parsed.Type).To(Equal(c.Type))
			Expect(parsed.Scope).To(Equal(c.Scope))
			Expect(parsed.Summary).To(Equal(c.Summary))
			Expect(parsed.Description).To(Equal(c.Description))
			Expect(parsed.BreakingChange).To(Equal(c.BreakingChange))
			Expect(parsed.References).To(Equal(c.References))
		})

		It("omits the type prefix for an invalid type without scope", func() {
			c := &conventional.Commit{Type: conventional.TypeInvalid, Summary: "just words"}
			Expect(c.Subject()).To(Equal("just words"))
		})

		It("treats the NoScope sentinel as no scope", func() {
			c := &conventional.Commit{Type: conventional.TypeFix, Scope: conventional.NoScope, Summary: "x"}
			Expect(c.Subject()).To(Equal("fix: x"))
		})
	})

	Describe("SetReferences", func() {
		It("splits on runs of spaces and commas", func() {
			c := &conventional.Commit{}
			c.SetReferences("  12,, 34   56 ")
			Expect(c.References).To(Equal([]string{"12", "34", "56"}))
		})
	})

	Describe("MessageLines", func() {
		It("numbers subject, description and trailing paragraphs", func() {
			c := &conventional.Commit{
				Type:           conventional.TypeFeat,
				Summary:        "s",
				Description:    "d",
				BreakingChange: "b",
				References:     []string{"1"},
			}

			lines := c.MessageLines()
			Expect(lines).To(HaveLen(6))
			Expect(lines[0].Element).To(Equal(conventional.ElementSubject))
			Expect(lines[1].Element).To(Equal(conventional.ElementDescription))
			Expect(lines[3].Element).To(Equal(conventional.ElementBreakingChange))
			Expect(lines[3].Text).To(Equal("BREAKING CHANGE: b"))
			Expect(lines[5].Element).To(Equal(conventional.ElementReferences))
			Expect(lines[5].Number).To(Equal(6))
		})

		It("inserts a spacer when there is no description", func() {
			c := &conventional.Commit{Type: conventional.TypeFix, Summary: "s"}
			lines := c.MessageLines()
			Expect(lines).To(HaveLen(2))
			Expect(lines[1].Element).To(Equal(conventional.ElementSpacer))
		})
	})
})
