package utils

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// ErrEmptyText is returned when there is nothing to sanitize
var ErrEmptyText = errors.New("text content is missing")

var (
	scriptBlockRe   = regexp.MustCompile(`(?is)<script[^>]*>.*?</script\s*>`)
	styleBlockRe    = regexp.MustCompile(`(?is)<\s*style.+?<\s*/\s*style[^>]*>`)
	tagRe           = regexp.MustCompile(`(?s)<[^>]*>`)
	horizontalRunRe = regexp.MustCompile(`[ \t]+`)
	whitespaceRunRe = regexp.MustCompile(`\s{2,}`)
)

// TextProcessor provides utilities for processing text
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	return &TextProcessor{
		logger: logger,
	}
}

// Sanitize turns raw input, optionally HTML, into plain text ready for
// classification and dictionary matching. Sanitize is idempotent.
func (tp *TextProcessor) Sanitize(text string, isHTML bool) (string, error) {
	if text == "" {
		return "", ErrEmptyText
	}

	clean := tp.SanitizeUTF8(text)
	if isHTML {
		clean = StripMarkup(clean)
	}

	clean = horizontalRunRe.ReplaceAllString(clean, " ")
	clean = whitespaceRunRe.ReplaceAllString(clean, "\n")
	clean = strings.TrimSpace(clean)
	clean = norm.NFC.String(clean)

	if tp.logger != nil && len(clean) != len(text) {
		tp.logger.Debug("Text sanitized",
			zap.Bool("html", isHTML),
			zap.Int("original_size", len(text)),
			zap.Int("sanitized_size", len(clean)))
	}

	return clean, nil
}

// StripMarkup removes script and style blocks with their content, then every
// remaining tag
func StripMarkup(html string) string {
	out := scriptBlockRe.ReplaceAllString(html, "")
	out = styleBlockRe.ReplaceAllString(out, "")
	return tagRe.ReplaceAllString(out, "")
}

// TruncateText safely truncates text to the specified maximum size
// and ensures the result is valid UTF-8
func (tp *TextProcessor) TruncateText(text string, maxSize int) string {
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}

	truncated := text[:maxSize]
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}

	if tp.logger != nil {
		tp.logger.Debug("Text truncated",
			zap.Int("original_size", len(text)),
			zap.Int("truncated_size", len(truncated)),
			zap.Int("max_size", maxSize))
	}

	return truncated + "\n[... Content truncated due to size limits ...]"
}

// SanitizeUTF8 drops invalid UTF-8 bytes from text
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}
	return strings.ToValidUTF8(text, "")
}

// ProcessText truncates and sanitizes text in one operation
func (tp *TextProcessor) ProcessText(text string, maxSize int) string {
	return tp.SanitizeUTF8(tp.TruncateText(text, maxSize))
}
