package snapshot_test

import (
	"path/filepath"
	"testing"

	"github.com/temirov/ctxsnap/internal/snapshot"
)

const testRootDirectory = "/project"

type prefixMatcher struct {
	prefix string
}

func (matcher prefixMatcher) MatchesPath(relativePath string, isDirectory bool) bool {
	return len(relativePath) >= len(matcher.prefix) && relativePath[:len(matcher.prefix)] == matcher.prefix
}

// directoryOnlyMatcher matches name only when it is a directory, like a "name/" ignore rule.
type directoryOnlyMatcher struct {
	name string
}

func (matcher directoryOnlyMatcher) MatchesPath(relativePath string, isDirectory bool) bool {
	return isDirectory && relativePath == matcher.name
}

func TestIsExcluded(t *testing.T) {
	testCases := []struct {
		name         string
		relativePath string
		exclusions   snapshot.Exclusions
		expected     bool
	}{
		{name: "no rules", relativePath: "src/main.go", expected: false},
		{name: "exact directory prefix", relativePath: "dist", exclusions: snapshot.Exclusions{Directories: []string{"dist"}}, expected: true},
		{name: "descendant of prefix", relativePath: "dist/app.js", exclusions: snapshot.Exclusions{Directories: []string{"dist"}}, expected: true},
		{name: "literal prefix matches sibling name", relativePath: "distFiles", exclusions: snapshot.Exclusions{Directories: []string{"dist"}}, expected: true},
		{name: "literal prefix matches files too", relativePath: "distribution.txt", exclusions: snapshot.Exclusions{Directories: []string{"dist"}}, expected: true},
		{name: "prefix does not match nested segment", relativePath: "src/dist/app.js", exclusions: snapshot.Exclusions{Directories: []string{"dist"}}, expected: false},
		{name: "star stays within segment", relativePath: "logs/app.log", exclusions: snapshot.Exclusions{Files: []string{"*.log"}}, expected: false},
		{name: "star at root", relativePath: "app.log", exclusions: snapshot.Exclusions{Files: []string{"*.log"}}, expected: true},
		{name: "double star crosses separators", relativePath: "logs/deep/app.log", exclusions: snapshot.Exclusions{Files: []string{"**/*.log"}}, expected: true},
		{name: "double star matches zero directories", relativePath: "app.log", exclusions: snapshot.Exclusions{Files: []string{"**/*.log"}}, expected: true},
		{name: "question mark", relativePath: "a.md", exclusions: snapshot.Exclusions{Files: []string{"?.md"}}, expected: true},
		{name: "bracket class", relativePath: "b.md", exclusions: snapshot.Exclusions{Files: []string{"[ab].md"}}, expected: true},
		{name: "bracket class miss", relativePath: "c.md", exclusions: snapshot.Exclusions{Files: []string{"[ab].md"}}, expected: false},
		{name: "exact file name", relativePath: "package-lock.json", exclusions: snapshot.Exclusions{Files: []string{"package-lock.json"}}, expected: true},
		{name: "matcher", relativePath: "build/out.js", exclusions: snapshot.Exclusions{Matchers: []snapshot.PathMatcher{prefixMatcher{prefix: "build/"}}}, expected: true},
		{name: "star matches dotfiles", relativePath: ".eslintrc.js", exclusions: snapshot.Exclusions{Files: []string{"*.js"}}, expected: true},
		{name: "nil matcher ignored", relativePath: "build/out.js", exclusions: snapshot.Exclusions{Matchers: []snapshot.PathMatcher{nil}}, expected: false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			fullPath := filepath.Join(testRootDirectory, filepath.FromSlash(testCase.relativePath))
			result := snapshot.IsExcluded(fullPath, testRootDirectory, testCase.exclusions)
			if result != testCase.expected {
				t.Fatalf("IsExcluded(%q) = %v, want %v", testCase.relativePath, result, testCase.expected)
			}
		})
	}
}

func TestIsEntryExcludedPassesEntryKind(t *testing.T) {
	exclusions := snapshot.Exclusions{Matchers: []snapshot.PathMatcher{directoryOnlyMatcher{name: "build"}}}
	fullPath := filepath.Join(testRootDirectory, "build")
	if !snapshot.IsEntryExcluded(fullPath, testRootDirectory, true, exclusions) {
		t.Fatalf("directory build should be excluded")
	}
	if snapshot.IsEntryExcluded(fullPath, testRootDirectory, false, exclusions) {
		t.Fatalf("file build should not be excluded by a directory rule")
	}
	if snapshot.IsExcluded(fullPath, testRootDirectory, exclusions) {
		t.Fatalf("IsExcluded evaluates paths as files")
	}
}

func TestShouldInclude(t *testing.T) {
	testCases := []struct {
		name      string
		fileName  string
		allowList []string
		expected  bool
	}{
		{name: "empty allow list", fileName: "anything.bin", allowList: nil, expected: true},
		{name: "matching suffix", fileName: "main.js", allowList: []string{".ts", ".js"}, expected: true},
		{name: "non matching suffix", fileName: "main.go", allowList: []string{".js"}, expected: false},
		{name: "suffix without dot", fileName: "main.js", allowList: []string{"js"}, expected: true},
		{name: "suffix without dot matches longer names", fileName: "mainjs", allowList: []string{"js"}, expected: true},
		{name: "dotted suffix does not match bare name", fileName: "mainjs", allowList: []string{".js"}, expected: false},
		{name: "case sensitive", fileName: "MAIN.JS", allowList: []string{".js"}, expected: false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if result := snapshot.ShouldInclude(testCase.fileName, testCase.allowList); result != testCase.expected {
				t.Fatalf("ShouldInclude(%q, %v) = %v, want %v", testCase.fileName, testCase.allowList, result, testCase.expected)
			}
		})
	}
}
