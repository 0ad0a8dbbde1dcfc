package snapshot

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

const (
	textFileBlockFormat      = "\n==== %s (Size: %d bytes) ====\n%s\n"
	oversizedFileBlockFormat = "\n==== %s ====\n[File exceeds size limit: %d bytes]\n"
	binaryFileBlockFormat    = "\n==== %s ====\n[Binary file omitted]\n"

	errorStatFileFormat = "%w: stat %s: %w"
	errorReadFileFormat = "%w: reading %s: %w"
)

// appendContents walks entries depth-first in listing order and appends a block per file.
// Oversized and binary files get a placeholder and are never read in full.
//
// #nosec G304
func (generator *Generator) appendContents(buffer *strings.Builder, entries []*directoryEntry, result *Snapshot) error {
	for _, entry := range entries {
		if entry.isDirectory {
			if appendError := generator.appendContents(buffer, entry.children, result); appendError != nil {
				return appendError
			}
			continue
		}

		fileInfo, statError := os.Stat(entry.absolutePath)
		if statError != nil {
			return fmt.Errorf(errorStatFileFormat, ErrIOFailure, entry.absolutePath, statError)
		}
		fileSize := fileInfo.Size()

		maxFileSize := generator.options.MaxFileSizeBytes
		if maxFileSize > 0 && fileSize > maxFileSize {
			generator.logger.Debug("size limit exceeded", zap.String("path", entry.relativePath), zap.Int64("bytes", fileSize))
			fmt.Fprintf(buffer, oversizedFileBlockFormat, entry.relativePath, fileSize)
			result.OversizedFiles++
			continue
		}

		isText, classifyError := IsTextFile(entry.absolutePath)
		if classifyError != nil {
			return classifyError
		}
		if !isText {
			fmt.Fprintf(buffer, binaryFileBlockFormat, entry.relativePath)
			result.BinaryFiles++
			continue
		}

		fileBytes, readError := os.ReadFile(entry.absolutePath)
		if readError != nil {
			return fmt.Errorf(errorReadFileFormat, ErrIOFailure, entry.absolutePath, readError)
		}
		// Invalid UTF-8 sequences become U+FFFD; the header keeps the on-disk size.
		fileText := strings.ToValidUTF8(string(fileBytes), string(utf8.RuneError))
		fmt.Fprintf(buffer, textFileBlockFormat, entry.relativePath, fileSize, fileText)
		result.TextFiles++
		result.Bytes += fileSize
	}
	return nil
}
