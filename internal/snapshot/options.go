// Package snapshot walks a project directory and aggregates its tree and file contents
// into a single text artifact.
package snapshot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

var (
	// ErrConfigurationMissing reports that no traversal root is available.
	ErrConfigurationMissing = errors.New("configuration missing")
	// ErrCancelled reports that the run was cancelled before it completed.
	ErrCancelled = errors.New("generation cancelled")
	// ErrIOFailure wraps every read, stat, list or write failure during a run.
	ErrIOFailure = errors.New("i/o failure")
	// ErrInvalidPattern reports a malformed glob exclusion pattern.
	ErrInvalidPattern = errors.New("invalid exclusion pattern")
)

const (
	errorRootMissingFormat      = "%w: traversal root is empty"
	errorOutputMissingFormat    = "%w: output path is empty"
	errorInvalidPatternFormat   = "%w: %q"
	errorRootNotDirectoryFormat = "%w: %s is not a directory"
)

// PathMatcher reports whether a root-relative, slash-separated path is excluded.
// isDirectory tells directory-only rules whether they apply. Compiled .gitignore rules satisfy it.
type PathMatcher interface {
	MatchesPath(relativePath string, isDirectory bool) bool
}

// Exclusions holds the rules that remove paths from both the tree and the contents.
type Exclusions struct {
	// Directories are literal prefixes of the root-relative path. "dist" also matches "distFiles".
	Directories []string
	// Files are glob patterns evaluated against the root-relative path.
	Files []string
	// Matchers are additional pre-compiled rules such as .gitignore files.
	Matchers []PathMatcher
}

// Options configures one aggregation run.
type Options struct {
	RootDirectory     string
	OutputPath        string
	Exclusions        Exclusions
	IncludeExtensions []string
	// MaxFileSizeBytes caps file size; zero or negative means unlimited.
	MaxFileSizeBytes int64
}

// Validate checks that the options describe a runnable generation.
func (options Options) Validate() error {
	if strings.TrimSpace(options.RootDirectory) == "" {
		return fmt.Errorf(errorRootMissingFormat, ErrConfigurationMissing)
	}
	for _, pattern := range options.Exclusions.Files {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf(errorInvalidPatternFormat, ErrInvalidPattern, pattern)
		}
	}
	return nil
}
