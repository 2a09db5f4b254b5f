package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	ignorefile "github.com/monochromegane/go-gitignore"
	"go.uber.org/zap"
)

const (
	gitIgnoreName = ".gitignore"
	dotIgnoreName = ".ignore" // tool-agnostic ignore file honored alongside .gitignore
	gitDirName    = ".git"
)

// scopedMatcher applies an ignore file only below the directory that holds it.
type scopedMatcher struct {
	base    string
	matcher ignorefile.IgnoreMatcher
}

// ignoreRules decides which walked entries are left out of a Report.
//
// Git patterns are matched against paths relative to the enclosing
// repository (or the start directory outside a repository), so .gitignore
// files above the start apply with their usual scope.
type ignoreRules struct {
	root   string
	prefix []string // components of root relative to the repository top
	hidden bool     // list hidden entries
	vcs    bool     // honor .gitignore, info/exclude and .ignore

	patterns []gitignore.Pattern
	git      gitignore.Matcher
	scoped   []scopedMatcher
	logger   *zap.Logger
}

// newIgnoreRules prepares the rules for a walk rooted at root. The global
// excludes file applies even when VCS rules are off; pattern files that
// cannot be read are logged and skipped.
func newIgnoreRules(root string, opts Options, logger *zap.Logger) *ignoreRules {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &ignoreRules{
		root:   filepath.Clean(root),
		hidden: opts.Hidden,
		vcs:    opts.RespectIgnore,
		logger: logger,
	}

	global, err := gitignore.LoadGlobalPatterns(osfs.New("/"))
	if err != nil {
		logger.Debug("Could not load global excludes file", zap.Error(err))
	}
	r.addPatterns(global)

	abs, err := filepath.Abs(r.root)
	if err != nil {
		logger.Warn("Could not resolve start directory", zap.String("root", r.root), zap.Error(err))
		return r
	}
	top, ok := findRepoTop(abs)
	if !ok {
		return r
	}
	r.prefix = splitRel(top, abs)
	if !r.vcs {
		return r
	}

	r.addPatterns(r.readPatternFile(filepath.Join(top, gitDirName, "info", "exclude"), nil))
	// .gitignore files between the repository top and the start; the start's
	// own file is loaded when the walk enters it.
	dir := top
	for _, name := range r.prefix {
		r.addPatterns(r.readPatternFile(filepath.Join(dir, gitIgnoreName), splitRel(top, dir)))
		dir = filepath.Join(dir, name)
	}
	return r
}

// findRepoTop walks up from dir to the first directory holding a .git entry.
func findRepoTop(dir string) (string, bool) {
	for {
		if _, err := os.Lstat(filepath.Join(dir, gitDirName)); err == nil {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// splitRel returns the slash components of path relative to base, or nil
// when they are the same directory.
func splitRel(base, path string) []string {
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == "." {
		return nil
	}
	return strings.Split(filepath.ToSlash(rel), "/")
}

func (r *ignoreRules) addPatterns(ps []gitignore.Pattern) {
	if len(ps) == 0 {
		return
	}
	r.patterns = append(r.patterns, ps...)
	r.git = gitignore.NewMatcher(r.patterns)
}

// readPatternFile parses one git pattern file scoped to domain. A missing or
// unreadable file yields no patterns.
func (r *ignoreRules) readPatternFile(path string, domain []string) []gitignore.Pattern {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			r.logger.Warn("Could not read ignore file", zap.String("file", path), zap.Error(err))
		}
		return nil
	}
	var ps []gitignore.Pattern
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ps = append(ps, gitignore.ParsePattern(line, domain))
	}
	r.logger.Debug("Loaded ignore file", zap.String("file", path), zap.Int("patterns", len(ps)))
	return ps
}

// domainOf returns the repository-relative components of a walked path.
func (r *ignoreRules) domainOf(path string) []string {
	domain := append([]string(nil), r.prefix...)
	rel, err := filepath.Rel(r.root, path)
	if err != nil || rel == "." {
		return domain
	}
	return append(domain, strings.Split(filepath.ToSlash(rel), "/")...)
}

// enterDir loads the .gitignore and .ignore files of dir before its children
// are visited. An unreadable directory only loses its own files.
func (r *ignoreRules) enterDir(dir string) {
	if !r.vcs {
		return
	}
	r.addPatterns(r.readPatternFile(filepath.Join(dir, gitIgnoreName), r.domainOf(dir)))

	path := filepath.Join(dir, dotIgnoreName)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}
	matcher, err := ignorefile.NewGitIgnore(path, dir)
	if err != nil {
		r.logger.Warn("Could not parse ignore file", zap.String("file", path), zap.Error(err))
		return
	}
	r.logger.Debug("Loaded ignore file", zap.String("file", path))
	r.scoped = append(r.scoped, scopedMatcher{base: dir, matcher: matcher})
}

// Ignored reports whether path should be left out of the walk. The root
// itself is never ignored.
func (r *ignoreRules) Ignored(path string, isDir bool) bool {
	rel, err := filepath.Rel(r.root, path)
	if err != nil || rel == "." {
		return false
	}
	if !r.hidden && isHidden(path) {
		return true
	}
	if r.git != nil && r.git.Match(r.domainOf(path), isDir) {
		return true
	}
	for _, s := range r.scoped {
		if within(s.base, path) && s.matcher.Match(path, isDir) {
			return true
		}
	}
	return false
}

// isHidden checks if a file path is hidden (base name starts with '.').
func isHidden(path string) bool {
	baseName := filepath.Base(path)
	if baseName == "." || baseName == ".." {
		return false
	}
	return len(baseName) > 0 && baseName[0] == '.'
}

// within reports whether path lies strictly below base.
func within(base, path string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
