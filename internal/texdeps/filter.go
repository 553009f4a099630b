package texdeps

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/gobwas/glob"
)

// Filter decides which resolved paths belong to the project tree. A path is
// kept when it lies under Root and matches none of the exclude patterns.
type Filter struct {
	root     string
	excludes []glob.Glob
}

// NewFilter compiles the exclude patterns. An empty root disables the
// containment check.
func NewFilter(root string, excludes []string) (*Filter, error) {
	f := &Filter{}
	if root != "" {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("resolve project root: %w", err)
		}
		f.root = abs
	}
	for _, p := range excludes {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		f.excludes = append(f.excludes, g)
	}
	return f, nil
}

// Root returns the absolute project root, or "" when unrestricted.
func (f *Filter) Root() string {
	if f == nil {
		return ""
	}
	return f.root
}

// Allow reports whether an absolute path passes the filter. A nil Filter allows everything.
func (f *Filter) Allow(path string) bool {
	if f == nil {
		return true
	}
	if f.root != "" {
		rel, err := filepath.Rel(f.root, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return false
		}
	}
	slashed := filepath.ToSlash(path)
	for _, g := range f.excludes {
		if g.Match(slashed) {
			return false
		}
	}
	return true
}

// DetectProjectRoot returns the top of the git worktree containing dir, or
// fallback when dir is not inside a repository.
func DetectProjectRoot(dir, fallback string) string {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return fallback
	}
	wt, err := repo.Worktree()
	if err != nil {
		return fallback
	}
	return wt.Filesystem.Root()
}
