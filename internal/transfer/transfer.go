package transfer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/pitchpilot/pitch-analyzer/internal/analysis"
)

const (
	// QueryParam is the results view query parameter carrying an encoded result.
	QueryParam = "data"
	// TokenParam is the results view query parameter carrying a share token.
	TokenParam = "id"

	// MaxURLLength is the results URL length above which some browsers and
	// proxies start truncating.
	MaxURLLength = 8 * 1024
)

const upperhex = "0123456789ABCDEF"

// Encode serializes the result to JSON and percent-encodes it the way a
// browser's encodeURIComponent does. HTML characters are not escaped in the JSON.
func Encode(result *analysis.Result) (string, error) {
	if result == nil {
		return "", fmt.Errorf("no result to encode")
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(result); err != nil {
		return "", fmt.Errorf("encoding result: %w", err)
	}

	return escapeComponent(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// Decode reverses Encode. Any failure is reported as *ErrTransferDecode.
func Decode(encoded string) (*analysis.Result, error) {
	raw, err := url.PathUnescape(encoded)
	if err != nil {
		return nil, NewErrTransferDecode(err)
	}
	return decodeJSON(raw)
}

// FromQuery reads the result from already query-decoded values, as found in
// url.URL.Query() or http.Request.URL.Query().
func FromQuery(values url.Values) (*analysis.Result, error) {
	raw := values.Get(QueryParam)
	if raw == "" {
		return nil, NewErrTransferDecode(fmt.Errorf("missing %s parameter", QueryParam))
	}
	return decodeJSON(raw)
}

// FromURL reads the result carried by a results view URL.
func FromURL(rawURL string) (*analysis.Result, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, NewErrTransferDecode(err)
	}
	return FromQuery(u.Query())
}

// ResultsURL builds the results view URL for result. base may already carry a query.
func ResultsURL(base string, result *analysis.Result) (string, error) {
	encoded, err := Encode(result)
	if err != nil {
		return "", err
	}
	return appendParam(base, QueryParam, encoded), nil
}

// TokenURL builds the results view URL referencing a stored result.
func TokenURL(base string, token string) string {
	return appendParam(base, TokenParam, escapeComponent([]byte(token)))
}

// TooLong reports whether rawURL exceeds MaxURLLength.
func TooLong(rawURL string) bool {
	return len(rawURL) > MaxURLLength
}

func appendParam(base, name, escapedValue string) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + name + "=" + escapedValue
}

func decodeJSON(raw string) (*analysis.Result, error) {
	var result *analysis.Result
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, NewErrTransferDecode(err)
	}
	if result == nil {
		return nil, NewErrTransferDecode(errors.New("result is null"))
	}
	return result, nil
}

// escapeComponent percent-encodes every byte outside A-Z a-z 0-9 - _ . ! ~ * ' ( ).
func escapeComponent(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b) * 3)
	for _, c := range b {
		if unreserved(c) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(upperhex[c>>4])
		sb.WriteByte(upperhex[c&15])
	}
	return sb.String()
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
