package dotdir_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/relogdev/relog/pkg/dotdir"
)

var _ = Describe("dotdir.Manager", func() {
	var tmpDir string
	var m *dotdir.Manager

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "dotdir-test-*")
		Expect(err).NotTo(HaveOccurred())

		// Resolve symlinks so paths match filepath.Abs results
		// (e.g. on macOS /var -> /private/var).
		tmpDir, err = filepath.EvalSymlinks(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		m = dotdir.NewManager(tmpDir)
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("Root", func() {
		It("creates the workspace directory if it doesn't exist", func() {
			root, err := m.Root()
			Expect(err).NotTo(HaveOccurred())
			Expect(root).To(Equal(filepath.Join(tmpDir, ".relog")))

			info, err := os.Stat(root)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.IsDir()).To(BeTrue())
		})

		It("returns an existing workspace directory without error", func() {
			Expect(os.Mkdir(filepath.Join(tmpDir, ".relog"), 0o755)).To(Succeed())

			root, err := m.Root()
			Expect(err).NotTo(HaveOccurred())
			Expect(root).To(Equal(filepath.Join(tmpDir, ".relog")))
		})
	})

	Describe("subdirectories", func() {
		It("creates the data directory", func() {
			dir, err := m.DataDir()
			Expect(err).NotTo(HaveOccurred())
			Expect(dir).To(Equal(filepath.Join(tmpDir, ".relog", "data")))

			info, err := os.Stat(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.IsDir()).To(BeTrue())
		})

		It("creates the templates directory", func() {
			dir, err := m.TemplatesDir()
			Expect(err).NotTo(HaveOccurred())
			Expect(dir).To(Equal(filepath.Join(tmpDir, ".relog", "templates")))
		})

		It("creates the versions directory", func() {
			dir, err := m.VersionsDir()
			Expect(err).NotTo(HaveOccurred())
			Expect(dir).To(Equal(filepath.Join(tmpDir, ".relog", "versions")))
		})
	})

	Describe("DatabasePath", func() {
		It("returns a path inside the workspace without creating the file", func() {
			path, err := m.DatabasePath()
			Expect(err).NotTo(HaveOccurred())
			Expect(path).To(Equal(filepath.Join(tmpDir, ".relog", "relog.db")))

			_, err = os.Stat(path)
			Expect(os.IsNotExist(err)).To(BeTrue())
		})
	})

	Describe("Exists", func() {
		It("reports false before the workspace is created", func() {
			Expect(m.Exists()).To(BeFalse())
		})

		It("reports true after Root has run", func() {
			_, err := m.Root()
			Expect(err).NotTo(HaveOccurred())
			Expect(m.Exists()).To(BeTrue())
		})
	})
})
