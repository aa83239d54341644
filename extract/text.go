package extract

import (
	"context"
	"fmt"
	"unicode/utf8"
)

// PlainTextExtractor handles text/plain and text/markdown uploads: the bytes
// are the content.
type PlainTextExtractor struct{}

func NewPlainTextExtractor() *PlainTextExtractor {
	return &PlainTextExtractor{}
}

func (e *PlainTextExtractor) Extract(ctx context.Context, data []byte, filename string) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("file is not valid UTF-8 text")
	}
	return string(data), nil
}
