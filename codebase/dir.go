// Package codebase stores compiled definitions and serves them to the
// evaluator.
package codebase

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pgavlin/weave"
)

// Source provides the compiled bytes of the definition stored under a hash.
// A Source that has no such definition returns an error wrapping
// weave.ErrTermNotFound.
type Source interface {
	Fetch(hash string) ([]byte, error)
}

// DefaultRoot returns the codebase directory named by $WEAVE_ROOT, or
// ~/.unison/v1 if it is unset.
func DefaultRoot() (string, error) {
	if root := os.Getenv("WEAVE_ROOT"); root != "" {
		return root, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".unison", "v1"), nil
}

// Dir is a codebase laid out on disk as <root>/terms/#<hash>/compiled.ub.
type Dir struct {
	Root string
}

func OpenDir(root string) *Dir {
	return &Dir{Root: root}
}

func (d *Dir) termsDir() string {
	return filepath.Join(d.Root, "terms")
}

// Path returns the file that holds the compiled form of hash.
func (d *Dir) Path(hash string) string {
	return filepath.Join(d.termsDir(), "#"+hash, "compiled.ub")
}

func (d *Dir) Fetch(hash string) ([]byte, error) {
	b, err := os.ReadFile(d.Path(hash))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: #%s in %s", weave.ErrTermNotFound, hash, d.Root)
	}
	return b, err
}

// Store writes compiled bytes for hash, creating directories as needed.
func (d *Dir) Store(hash string, compiled []byte) error {
	path := d.Path(hash)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, compiled, 0o644)
}

// Hashes lists the hashes of the stored terms in lexical order.
func (d *Dir) Hashes() ([]string, error) {
	entries, err := os.ReadDir(d.termsDir())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var hashes []string
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), "#") {
			continue
		}
		hashes = append(hashes, strings.TrimPrefix(e.Name(), "#"))
	}
	sort.Strings(hashes)
	return hashes, nil
}
