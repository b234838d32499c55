package dotdir_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/relogdev/relog/pkg/dotdir"
)

var _ = Describe("dotdir.Manager sync state", func() {
	var tmpDir string
	var m *dotdir.Manager

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "dotdir-test-*")
		Expect(err).NotTo(HaveOccurred())
		m = dotdir.NewManager(tmpDir)
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("LoadSyncState", func() {
		It("returns nil when no state file exists", func() {
			state, err := m.LoadSyncState()
			Expect(err).NotTo(HaveOccurred())
			Expect(state).To(BeNil())
		})

		It("loads a valid state file", func() {
			data := `{"runId":"abc123","branch":"main","maxVersion":"v2.1.0","commitCount":7,"tagCount":2}`
			Expect(os.MkdirAll(filepath.Join(tmpDir, ".relog"), 0o755)).To(Succeed())
			err := os.WriteFile(filepath.Join(tmpDir, ".relog", "sync.json"), []byte(data), 0o644)
			Expect(err).NotTo(HaveOccurred())

			state, err := m.LoadSyncState()
			Expect(err).NotTo(HaveOccurred())
			Expect(state).NotTo(BeNil())
			Expect(state.RunID).To(Equal("abc123"))
			Expect(state.Branch).To(Equal("main"))
			Expect(state.MaxVersion).To(Equal("v2.1.0"))
			Expect(state.CommitCount).To(Equal(7))
			Expect(state.TagCount).To(Equal(2))
		})

		It("returns an error for invalid JSON", func() {
			Expect(os.MkdirAll(filepath.Join(tmpDir, ".relog"), 0o755)).To(Succeed())
			err := os.WriteFile(filepath.Join(tmpDir, ".relog", "sync.json"), []byte("not json"), 0o644)
			Expect(err).NotTo(HaveOccurred())

			state, err := m.LoadSyncState()
			Expect(err).To(HaveOccurred())
			Expect(state).To(BeNil())
		})
	})

	Describe("SaveSyncState", func() {
		It("persists state to disk", func() {
			state := &dotdir.SyncState{
				RunID:      "def456",
				SyncedAt:   time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
				Branch:     "main",
				MaxVersion: "v1.4.2",
			}

			Expect(m.SaveSyncState(state)).To(Succeed())

			loaded, err := m.LoadSyncState()
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(state))
		})

		It("returns an error for nil state", func() {
			Expect(m.SaveSyncState(nil)).To(HaveOccurred())
		})

		It("overwrites existing state", func() {
			first := &dotdir.SyncState{RunID: "first"}
			second := &dotdir.SyncState{RunID: "second"}

			Expect(m.SaveSyncState(first)).To(Succeed())
			Expect(m.SaveSyncState(second)).To(Succeed())

			loaded, err := m.LoadSyncState()
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.RunID).To(Equal("second"))
		})
	})

	Describe("ClearSyncState", func() {
		It("removes the state file", func() {
			Expect(m.SaveSyncState(&dotdir.SyncState{RunID: "to-clear"})).To(Succeed())
			Expect(m.ClearSyncState()).To(Succeed())

			loaded, err := m.LoadSyncState()
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(BeNil())
		})

		It("succeeds when no state file exists", func() {
			Expect(m.ClearSyncState()).To(Succeed())
		})
	})
})
