package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hmans/posts/internal/output"
	"github.com/hmans/posts/internal/store"
)

// resolveContent returns content from a direct value or file flag.
// If value is "-", reads from stdin.
func resolveContent(value, file string, stdin io.Reader) (string, error) {
	if value != "" && file != "" {
		return "", fmt.Errorf("cannot use both --content and --content-file")
	}

	if value == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}

	if value != "" {
		return value, nil
	}

	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading file: %w", err)
		}
		return string(data), nil
	}

	return "", nil
}

// cmdError returns an appropriate error for JSON or text mode.
// Note: Use %v instead of %w for error arguments - wrapping is not preserved in JSON mode.
func cmdError(jsonMode bool, code string, format string, args ...any) error {
	if jsonMode {
		return output.Error(code, fmt.Sprintf(format, args...))
	}
	return fmt.Errorf(format, args...)
}

// errorCode maps a store error to an output code.
func errorCode(err error) string {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return output.ErrNotFound
	case errors.Is(err, store.ErrUnavailable):
		return output.ErrUnavailable
	default:
		return output.ErrStore
	}
}

// truncate shortens s to max runes, ending in "...".
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
