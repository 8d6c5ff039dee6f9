package core

// parse.go turns raw upload bytes into RawRows.
//
// The parser is deliberately simple: one line per record, a tab or comma
// delimiter chosen from the header line, and no quoted-delimiter escaping.
// Rows shorter than the header are dropped rather than reported.

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ignoredHeaders are metadata columns added by export tools.
var ignoredHeaders = map[string]bool{
	"_source_file": true,
	"source_file":  true,
}

// DecodeText converts upload bytes to a UTF-8 string.
// A UTF-8 or UTF-16 BOM is honoured and stripped; input that is not valid
// UTF-8 is decoded as Windows-1252, the usual spreadsheet export charset.
func DecodeText(data []byte) (string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return "", ErrEmptyFile
	}

	decoded, _, err := transform.Bytes(unicode.BOMOverride(encoding.Nop.NewDecoder()), data)
	if err != nil {
		return "", &FormatError{Msg: "encoding error: " + err.Error()}
	}
	if utf8.Valid(decoded) {
		return string(decoded), nil
	}

	decoded, _, err = transform.Bytes(charmap.Windows1252.NewDecoder(), data)
	if err != nil {
		return "", &FormatError{Msg: "encoding error: " + err.Error()}
	}
	return string(decoded), nil
}

// ParseCSV splits text into a header row and data rows.
func ParseCSV(text string) (*ParsedCSV, error) {
	var lines []int // indexes into all, 0-based
	all := strings.Split(text, "\n")
	for i, line := range all {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, i)
		}
	}
	if len(lines) < 2 {
		return nil, &FormatError{Msg: "CSV must have at least a header row and one data row"}
	}

	headerLine := all[lines[0]]
	delim := ','
	if strings.Contains(headerLine, "\t") {
		delim = '\t'
	}

	headers := splitLine(headerLine, delim)
	result := &ParsedCSV{Delimiter: delim}
	for _, h := range headers {
		if h == "" || ignoredHeaders[h] {
			continue
		}
		result.Headers = append(result.Headers, h)
	}

	for _, idx := range lines[1:] {
		values := splitLine(all[idx], delim)
		if len(values) < len(headers) {
			result.Skipped++
			continue
		}

		row := RawRow{Line: idx + 1, Values: make(map[string]string, len(headers))}
		for i, h := range headers {
			if h == "" || ignoredHeaders[h] {
				continue
			}
			row.Values[h] = values[i]
		}
		if len(row.Values) == 0 {
			continue
		}
		result.Rows = append(result.Rows, row)
	}

	return result, nil
}

// splitLine splits one line and cleans each token.
func splitLine(line string, delim rune) []string {
	parts := strings.Split(line, string(delim))
	for i, p := range parts {
		parts[i] = cleanToken(p)
	}
	return parts
}

// cleanToken trims whitespace and one wrapping double quote on each side.
func cleanToken(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	return s
}
