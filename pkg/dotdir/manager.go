// Package dotdir manages the .relog/ workspace directory kept at a
// repository's root: the JSON data documents, the changelog templates, the
// rendered changelog output and the embedded database all live under it.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// dirName is the name of the workspace directory.
	dirName = ".relog"

	dataDirName      = "data"
	templatesDirName = "templates"
	versionsDirName  = "versions"
	databaseFileName = "relog.db"
)

// Manager resolves and creates the workspace directories for one repository.
type Manager struct {
	repoDir string
}

// NewManager builds a Manager rooted at the given repository directory.
func NewManager(repoDir string) *Manager {
	return &Manager{repoDir: repoDir}
}

// Root returns the absolute path of the .relog/ directory, creating it when
// it does not exist.
func (m *Manager) Root() (string, error) {
	dir := filepath.Join(m.repoDir, dirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating workspace directory %s: %w", dir, err)
	}
	return filepath.Abs(dir)
}

// DataDir returns the directory holding the JSON data documents.
func (m *Manager) DataDir() (string, error) {
	return m.subdir(dataDirName)
}

// TemplatesDir returns the directory holding the changelog templates.
func (m *Manager) TemplatesDir() (string, error) {
	return m.subdir(templatesDirName)
}

// VersionsDir returns the directory rendered changelogs are written to.
func (m *Manager) VersionsDir() (string, error) {
	return m.subdir(versionsDirName)
}

// DatabasePath returns the path of the embedded SQLite database file.
func (m *Manager) DatabasePath() (string, error) {
	root, err := m.Root()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, databaseFileName), nil
}

// Exists reports whether the workspace directory is already present,
// without creating it.
func (m *Manager) Exists() bool {
	info, err := os.Stat(filepath.Join(m.repoDir, dirName))
	return err == nil && info.IsDir()
}

func (m *Manager) subdir(name string) (string, error) {
	root, err := m.Root()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating workspace directory %s: %w", dir, err)
	}
	return dir, nil
}
