package snapshot

import (
	"fmt"

	"github.com/google/renameio/v2"
)

const (
	outputFileMode         = 0o644
	errorWriteOutputFormat = "%w: writing %s: %w"
)

// WriteSnapshot atomically replaces outputPath with text. A failed write leaves any
// previous file untouched and no temporary file behind.
func WriteSnapshot(outputPath string, text string) error {
	if writeError := renameio.WriteFile(outputPath, []byte(text), outputFileMode); writeError != nil {
		return fmt.Errorf(errorWriteOutputFormat, ErrIOFailure, outputPath, writeError)
	}
	return nil
}
