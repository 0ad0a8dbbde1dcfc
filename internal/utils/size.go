package utils

import (
	"fmt"
	"math"
	"strings"
)

const bytesPerKilobyte = 1024

var sizeUnits = []string{"b", "kb", "mb", "gb", "tb", "pb"}

// FormatFileSize converts a byte length into a human-readable lower-case unit string.
func FormatFileSize(bytes int64) string {
	if bytes < 0 {
		return "0b"
	}
	value := float64(bytes)
	unitIndex := 0
	for value >= bytesPerKilobyte && unitIndex < len(sizeUnits)-1 {
		value /= bytesPerKilobyte
		unitIndex++
	}
	if unitIndex == 0 {
		return fmt.Sprintf("%db", bytes)
	}
	if value < 10 {
		formatted := fmt.Sprintf("%.1f", value)
		formatted = strings.TrimSuffix(formatted, ".0")
		return formatted + sizeUnits[unitIndex]
	}
	return fmt.Sprintf("%.0f%s", value, sizeUnits[unitIndex])
}

// KilobytesToBytes converts a possibly fractional kilobyte limit into whole bytes.
// Zero, negative and NaN inputs mean "no limit" and return 0. Positive inputs round
// down but never below one byte.
func KilobytesToBytes(kilobytes float64) int64 {
	if math.IsNaN(kilobytes) || kilobytes <= 0 {
		return 0
	}
	byteCount := math.Floor(kilobytes * bytesPerKilobyte)
	if byteCount >= math.MaxInt64 {
		return math.MaxInt64
	}
	if byteCount < 1 {
		return 1
	}
	return int64(byteCount)
}
