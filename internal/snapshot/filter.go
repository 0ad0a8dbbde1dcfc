package snapshot

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/temirov/ctxsnap/internal/utils"
)

// IsExcluded reports whether the file at path, resolved relative to rootDirectory, matches a
// directory prefix, a glob pattern or an additional matcher from exclusions.
// Directory prefixes are compared as plain string prefixes, not path segments.
func IsExcluded(path string, rootDirectory string, exclusions Exclusions) bool {
	return IsEntryExcluded(path, rootDirectory, false, exclusions)
}

// IsEntryExcluded is IsExcluded for an entry of known kind, so that directory-only matcher
// rules apply to directories alone.
func IsEntryExcluded(path string, rootDirectory string, isDirectory bool, exclusions Exclusions) bool {
	relativePath := utils.RelativePathOrSelf(path, rootDirectory)

	for _, directoryPrefix := range exclusions.Directories {
		if strings.HasPrefix(relativePath, directoryPrefix) {
			return true
		}
	}

	for _, pattern := range exclusions.Files {
		isMatched, matchError := doublestar.Match(pattern, relativePath)
		if matchError == nil && isMatched {
			return true
		}
	}

	for _, matcher := range exclusions.Matchers {
		if matcher != nil && matcher.MatchesPath(relativePath, isDirectory) {
			return true
		}
	}

	return false
}

// ShouldInclude reports whether fileName ends with one of the allow-list suffixes.
// An empty allow-list includes every file.
func ShouldInclude(fileName string, allowList []string) bool {
	if len(allowList) == 0 {
		return true
	}
	for _, suffix := range allowList {
		if strings.HasSuffix(fileName, suffix) {
			return true
		}
	}
	return false
}
