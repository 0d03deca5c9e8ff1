package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// MarshalJSON returns v as JSON indented with two spaces, without HTML escaping.
func MarshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteJSON writes formatted JSON to w, optionally wrapped in a slack code block.
func WriteJSON(w io.Writer, v any, slackMode bool) error {
	output, err := MarshalJSON(v)
	if err != nil {
		return err
	}
	if slackMode {
		fmt.Fprintln(w, "```")
	}
	if _, err := w.Write(output); err != nil {
		return err
	}
	if slackMode {
		fmt.Fprintln(w, "```")
	}
	return nil
}
