package snapshot

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// sampleLength is the number of leading bytes inspected when classifying a file.
const sampleLength = 512

const errorClassifyFormat = "%w: classifying %s: %w"

// binaryExtensions are name suffixes classified as binary without reading the file.
var binaryExtensions = []string{
	".png", ".jpg", ".jpeg", ".mp4", ".mp3", ".avi", ".gif", ".bmp", ".ico",
	".pdf", ".zip", ".tar", ".gz", ".exe", ".dll", ".bin", ".o", ".so",
}

// HasBinaryExtension reports whether name ends with a known binary extension.
// The comparison is case-sensitive.
func HasBinaryExtension(name string) bool {
	for _, extension := range binaryExtensions {
		if strings.HasSuffix(name, extension) {
			return true
		}
	}
	return false
}

// IsTextSample reports whether sample is free of control bytes in 0x00-0x08 and 0x0E-0x1F.
// Tab, line feed, vertical tab, form feed and carriage return count as text.
func IsTextSample(sample []byte) bool {
	for _, byteValue := range sample {
		if byteValue <= 0x08 || (byteValue >= 0x0E && byteValue <= 0x1F) {
			return false
		}
	}
	return true
}

// IsTextFile classifies the file at path as text or binary. Known binary extensions are
// decided without I/O; otherwise up to sampleLength bytes are inspected.
//
// #nosec G304
func IsTextFile(path string) (bool, error) {
	if HasBinaryExtension(path) {
		return false, nil
	}

	fileHandle, openError := os.Open(path)
	if openError != nil {
		return false, fmt.Errorf(errorClassifyFormat, ErrIOFailure, path, openError)
	}
	defer fileHandle.Close()

	buffer := make([]byte, sampleLength)
	bytesRead, readError := io.ReadFull(fileHandle, buffer)
	if readError != nil && !errors.Is(readError, io.EOF) && !errors.Is(readError, io.ErrUnexpectedEOF) {
		return false, fmt.Errorf(errorClassifyFormat, ErrIOFailure, path, readError)
	}
	return IsTextSample(buffer[:bytesRead]), nil
}
