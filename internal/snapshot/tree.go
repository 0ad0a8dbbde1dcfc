package snapshot

import "strings"

const (
	branchConnector     = "├── "
	lastBranchConnector = "└── "
	continuingIndent    = "│   "
	terminatedIndent    = "    "
)

// renderTree appends one box-drawing line per entry, recursing into directories with the
// indentation extended for the next level.
func renderTree(buffer *strings.Builder, entries []*directoryEntry, prefix string) {
	for entryIndex, entry := range entries {
		isLast := entryIndex == len(entries)-1
		connector := branchConnector
		childPrefix := prefix + continuingIndent
		if isLast {
			connector = lastBranchConnector
			childPrefix = prefix + terminatedIndent
		}

		buffer.WriteString(prefix)
		buffer.WriteString(connector)
		buffer.WriteString(entry.name)
		buffer.WriteString("\n")

		if entry.isDirectory {
			renderTree(buffer, entry.children, childPrefix)
		}
	}
}
