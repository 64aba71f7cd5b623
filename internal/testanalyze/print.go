package testanalyze

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// rawPreviewBytes is how much of a non-JSON body is printed.
const rawPreviewBytes = 2000

// Print writes the status line, content type and body of resp to w. JSON
// bodies are pretty printed in format; anything else is shown as raw text.
func Print(w io.Writer, resp Response, format string) error {
	if _, err := fmt.Fprintf(w, "HTTP status: %d\nResponse headers: %s\n", resp.Status, resp.ContentType); err != nil {
		return err
	}

	var doc any
	if err := json.Unmarshal(resp.Body, &doc); err != nil {
		body := resp.Body
		if len(body) > rawPreviewBytes {
			body = body[:rawPreviewBytes]
		}
		_, err := fmt.Fprintf(w, "Raw response text:\n%s\n", body)
		return err
	}

	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		_ = enc.Close()
		_, err := fmt.Fprintf(w, "YAML response:\n%s", buf.Bytes())
		return err
	default:
		pretty, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		_, err = fmt.Fprintf(w, "JSON response:\n%s\n", pretty)
		return err
	}
}
