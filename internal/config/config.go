// Package config loads ctxsnap configuration files and ignore rules.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/temirov/ctxsnap/internal/utils"
)

const (
	commentPrefix         = "#"
	directoryPathSuffix   = "/"
	warningCloseFormat    = "Warning: failed to close %s: %v\n"
	errorLoadIgnoreFormat = "loading %s from %s: %w"
)

// IgnoreMatcher evaluates .gitignore rules against root-relative, slash-separated paths.
type IgnoreMatcher struct {
	rules *ignore.GitIgnore
}

// MatchesPath reports whether relativePath is ignored. Directory rules such as "build/" match
// a directory entry itself and its descendants, never a file of the same name.
func (matcher *IgnoreMatcher) MatchesPath(relativePath string, isDirectory bool) bool {
	if matcher == nil || matcher.rules == nil {
		return false
	}
	if matcher.rules.MatchesPath(relativePath) {
		return true
	}
	return isDirectory && matcher.rules.MatchesPath(relativePath+directoryPathSuffix)
}

// LoadIgnoreFilePatterns reads an ignore file and returns its non-blank, non-comment lines.
// A missing file yields no patterns.
//
// #nosec G304
func LoadIgnoreFilePatterns(ignoreFilePath string) ([]string, error) {
	fileHandle, openFileError := os.Open(ignoreFilePath)
	if openFileError != nil {
		if os.IsNotExist(openFileError) {
			return nil, nil
		}
		return nil, openFileError
	}
	defer func() {
		closeError := fileHandle.Close()
		if closeError != nil {
			fmt.Fprintf(os.Stderr, warningCloseFormat, ignoreFilePath, closeError)
		}
	}()

	var ignorePatterns []string
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, commentPrefix) {
			continue
		}
		ignorePatterns = append(ignorePatterns, trimmedLine)
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, scanError
	}
	return ignorePatterns, nil
}

// LoadGitignoreMatcher compiles the .gitignore file found directly in rootDirectoryPath.
// It returns nil when the file is absent or holds no rules.
func LoadGitignoreMatcher(rootDirectoryPath string) (*IgnoreMatcher, error) {
	gitIgnoreFilePath := filepath.Join(rootDirectoryPath, utils.GitIgnoreFileName)
	patterns, loadError := LoadIgnoreFilePatterns(gitIgnoreFilePath)
	if loadError != nil {
		return nil, fmt.Errorf(errorLoadIgnoreFormat, utils.GitIgnoreFileName, rootDirectoryPath, loadError)
	}
	patterns = utils.DeduplicatePatterns(patterns)
	if len(patterns) == 0 {
		return nil, nil
	}
	return &IgnoreMatcher{rules: ignore.CompileIgnoreLines(patterns...)}, nil
}
