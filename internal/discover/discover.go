// Package discover walks a workspace root and yields the set of source
// files that should be fed to the indexer, applying default excludes,
// user-supplied include/exclude globs, and size/hidden-file filters.
package discover

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultExcludes mirrors the directories the teacher's indexer skips by
// name (target/vendor), extended with the non-Rust build directories a
// real workspace accumulates.
var DefaultExcludes = []string{
	"**/.git/**",
	"**/target/**",
	"**/vendor/**",
	"**/node_modules/**",
	"**/.omni/**",
	"**/dist/**",
	"**/build/**",
	"**/out/**",
	"**/coverage/**",
	"**/.venv/**",
	"**/.next/**",
}

// Options configures a Walk call.
type Options struct {
	Root                string
	Include             []string
	Exclude             []string
	NoDefaultExcludes   bool
	IncludeHidden       bool
	IncludeLarge        bool
	MaxFileSize         int64 // bytes; 0 means use DefaultMaxFileSize
}

// DefaultMaxFileSize matches the spec's default ceiling for a single source
// file before it's skipped as "unusually large" (unless --include-large is
// set).
const DefaultMaxFileSize int64 = 2 << 20 // 2MiB

// Extensions lists the file extensions this version of omni indexes.
// Registering a second language parser only requires adding its
// extension(s) here and to the parser registry.
var Extensions = []string{".rs"}

// Walk returns the repo-relative, forward-slash paths of every file under
// opts.Root that should be indexed, after excludes, includes, hidden-file
// and size filtering.
func Walk(opts Options) ([]string, error) {
	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	excludes := opts.Exclude
	if !opts.NoDefaultExcludes {
		excludes = append(append([]string{}, DefaultExcludes...), excludes...)
	}

	var out []string
	err := filepath.Walk(opts.Root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, relErr := filepath.Rel(opts.Root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			if rel != "." && !opts.IncludeHidden && isHidden(info.Name()) {
				return filepath.SkipDir
			}
			if matchesAny(rel+"/", excludes) {
				return filepath.SkipDir
			}
			return nil
		}

		if !opts.IncludeHidden && isHidden(info.Name()) {
			return nil
		}
		if !hasSupportedExt(rel) {
			return nil
		}
		if matchesAny(rel, excludes) {
			return nil
		}
		if len(opts.Include) > 0 && !matchesAny(rel, opts.Include) {
			return nil
		}
		if !opts.IncludeLarge && info.Size() > maxSize {
			return nil
		}

		out = append(out, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

func hasSupportedExt(rel string) bool {
	ext := strings.ToLower(filepath.Ext(rel))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func matchesAny(rel string, patterns []string) bool {
	for _, pat := range patterns {
		if ok, _ := doublestar.Match(pat, rel); ok {
			return true
		}
	}
	return false
}
