package tokenizer

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrNilCounter is returned when counting is requested without a counter.
var ErrNilCounter = errors.New("nil tokenizer counter")

// CountText estimates the tokens of a snapshot. Invalid UTF-8 sequences are replaced before
// counting so that file contents with exotic encodings still produce an estimate.
func CountText(counter Counter, text string) (int, error) {
	if counter == nil {
		return 0, ErrNilCounter
	}
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, string(utf8.RuneError))
	}
	tokens, countError := counter.CountString(text)
	if countError != nil {
		return 0, fmt.Errorf("count tokens with %s: %w", counter.Name(), countError)
	}
	return tokens, nil
}
