package utils

import (
	"bytes"
	"encoding/json"
)

// MarshalNoEscape marshals JSON without HTML escaping, so reports keep
// their '<' and '&' as written.
func MarshalNoEscape(v any) ([]byte, error) {
	return encode(v, "")
}

// MarshalIndentNoEscape is MarshalNoEscape with two-space indentation, for
// output meant to be read by people.
func MarshalIndentNoEscape(v any) ([]byte, error) {
	return encode(v, "  ")
}

func encode(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	// Encoder adds a trailing newline; drop it to match json.Marshal.
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}
