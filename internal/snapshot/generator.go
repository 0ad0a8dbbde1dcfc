package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const (
	treeSectionHeader     = "Project File Tree:\n"
	contentsSectionHeader = "\nFile Contents:\n"

	errorAbsoluteRootFormat = "%w: resolving %s: %w"
	errorStatRootFormat     = "%w: stat %s: %w"
	errorCancelledFormat    = "%w: %w"
)

// Snapshot is the result of one aggregation run.
type Snapshot struct {
	Text           string
	TextFiles      int
	BinaryFiles    int
	OversizedFiles int
	// Bytes is the total size of files whose content was included.
	Bytes int64
}

// Files returns the number of file blocks in the contents section.
func (snapshot Snapshot) Files() int {
	return snapshot.TextFiles + snapshot.BinaryFiles + snapshot.OversizedFiles
}

// Generator produces snapshots for a single configured root.
type Generator struct {
	options Options
	logger  *zap.Logger
}

// NewGenerator validates options, resolves the root to an absolute directory and returns a
// Generator. A nil logger discards log output.
func NewGenerator(options Options, logger *zap.Logger) (*Generator, error) {
	if validationError := options.Validate(); validationError != nil {
		return nil, validationError
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	absoluteRoot, absoluteError := filepath.Abs(options.RootDirectory)
	if absoluteError != nil {
		return nil, fmt.Errorf(errorAbsoluteRootFormat, ErrIOFailure, options.RootDirectory, absoluteError)
	}
	rootInfo, statError := os.Stat(absoluteRoot)
	if statError != nil {
		return nil, fmt.Errorf(errorStatRootFormat, ErrIOFailure, absoluteRoot, statError)
	}
	if !rootInfo.IsDir() {
		return nil, fmt.Errorf(errorRootNotDirectoryFormat, ErrConfigurationMissing, absoluteRoot)
	}
	options.RootDirectory = filepath.Clean(absoluteRoot)

	return &Generator{options: options, logger: logger}, nil
}

// Generate lists the root once, renders the tree section and then the contents section
// from the same listing. Cancellation is checked between phases only.
func (generator *Generator) Generate(ctx context.Context) (Snapshot, error) {
	if cancelledError := checkCancelled(ctx); cancelledError != nil {
		return Snapshot{}, cancelledError
	}

	entries, listError := generator.listDirectory(generator.options.RootDirectory)
	if listError != nil {
		return Snapshot{}, listError
	}
	if cancelledError := checkCancelled(ctx); cancelledError != nil {
		return Snapshot{}, cancelledError
	}

	var buffer strings.Builder
	buffer.WriteString(treeSectionHeader)
	renderTree(&buffer, entries, "")
	buffer.WriteString(contentsSectionHeader)
	if cancelledError := checkCancelled(ctx); cancelledError != nil {
		return Snapshot{}, cancelledError
	}

	var result Snapshot
	if appendError := generator.appendContents(&buffer, entries, &result); appendError != nil {
		return Snapshot{}, appendError
	}
	result.Text = buffer.String()
	return result, nil
}

// Run generates a snapshot and writes it to the configured output path in a single write.
func (generator *Generator) Run(ctx context.Context) (Snapshot, error) {
	if strings.TrimSpace(generator.options.OutputPath) == "" {
		return Snapshot{}, fmt.Errorf(errorOutputMissingFormat, ErrConfigurationMissing)
	}

	result, generateError := generator.Generate(ctx)
	if generateError != nil {
		return Snapshot{}, generateError
	}
	if cancelledError := checkCancelled(ctx); cancelledError != nil {
		return Snapshot{}, cancelledError
	}
	if writeError := WriteSnapshot(generator.options.OutputPath, result.Text); writeError != nil {
		return Snapshot{}, writeError
	}

	generator.logger.Debug("snapshot generated",
		zap.String("root", generator.options.RootDirectory),
		zap.String("output", generator.options.OutputPath),
		zap.Int("files", result.Files()),
	)
	return result, nil
}

func checkCancelled(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	if contextError := ctx.Err(); contextError != nil {
		return fmt.Errorf(errorCancelledFormat, ErrCancelled, contextError)
	}
	return nil
}
