package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/opencode-ai/lorasched/internal/styles"
)

// WriteOutput writes v as indented JSON, or as JSON lines when --jsonl is
// set (one line per element for slices).
func WriteOutput(w io.Writer, v any) error {
	if IsJSONLOutput() {
		return writeJSONLines(w, v)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

func writeJSONLines(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice {
		for i := 0; i < rv.Len(); i++ {
			if err := enc.Encode(rv.Index(i).Interface()); err != nil {
				return fmt.Errorf("failed to encode output: %w", err)
			}
		}
		return nil
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

// currentStyles returns the themed styles for human output, or plain styles
// when color is disabled.
func currentStyles() styles.Styles {
	if !colorEnabled() {
		return styles.PlainStyles()
	}
	theme, err := styles.LookupTheme(GetConfig().UI.Theme)
	if err != nil {
		return styles.DefaultStyles()
	}
	return styles.BuildStyles(theme)
}

func printWarning(format string, args ...any) {
	s := currentStyles()
	fmt.Fprintln(os.Stderr, s.Warning.Render("warning: "+fmt.Sprintf(format, args...)))
}
