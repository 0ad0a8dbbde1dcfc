package snapshot

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/ctxsnap/internal/utils"
)

const errorReadDirectoryFormat = "%w: reading directory %s: %w"

// directoryEntry is one listed child that passed filtering.
type directoryEntry struct {
	name         string
	absolutePath string
	relativePath string
	isDirectory  bool
	children     []*directoryEntry
}

// listDirectory reads directoryPath and its subdirectories once, keeping only entries that
// pass the exclusion filter and, for files, the extension filter. Entries keep the
// os.ReadDir order. Directories are kept even when every child is filtered away.
func (generator *Generator) listDirectory(directoryPath string) ([]*directoryEntry, error) {
	directoryEntries, readDirectoryError := os.ReadDir(directoryPath)
	if readDirectoryError != nil {
		return nil, fmt.Errorf(errorReadDirectoryFormat, ErrIOFailure, directoryPath, readDirectoryError)
	}

	rootDirectory := generator.options.RootDirectory
	var entries []*directoryEntry
	for _, listedEntry := range directoryEntries {
		childPath := filepath.Join(directoryPath, listedEntry.Name())
		relativePath := utils.RelativePathOrSelf(childPath, rootDirectory)

		if IsEntryExcluded(childPath, rootDirectory, listedEntry.IsDir(), generator.options.Exclusions) {
			generator.logger.Debug("excluded", zap.String("path", relativePath))
			continue
		}
		if !listedEntry.IsDir() && !ShouldInclude(listedEntry.Name(), generator.options.IncludeExtensions) {
			generator.logger.Debug("extension not allowed", zap.String("path", relativePath))
			continue
		}

		entry := &directoryEntry{
			name:         listedEntry.Name(),
			absolutePath: childPath,
			relativePath: relativePath,
			isDirectory:  listedEntry.IsDir(),
		}
		if entry.isDirectory {
			children, listError := generator.listDirectory(childPath)
			if listError != nil {
				return nil, listError
			}
			entry.children = children
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
