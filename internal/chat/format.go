package chat

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/dustin/go-humanize"
)

// maxTableRows bounds how many records render inline; the remainder
// collapses into a "+N more" note.
const maxTableRows = 5

// currency prefixes numeric fields whose key names a monetary amount.
const currency = "AED"

// FormatData renders a reply's structured payload as an HTML fragment.
// Arrays of uniform records become a table whose header row is the key
// set of the first record; mappings become a definition list. An empty
// or absent payload renders nothing.
func FormatData(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", nil
	}

	switch trimmed[0] {
	case '[':
		return formatTable(trimmed)
	case '{':
		fields, err := decodeOrderedFields(trimmed)
		if err != nil {
			return "", err
		}
		if len(fields) == 0 {
			return "", nil
		}
		return formatFieldList(fields, 0), nil
	default:
		// Scalar payloads are not structured data; the answer text
		// already carries them.
		return "", nil
	}
}

func formatTable(raw json.RawMessage) (string, error) {
	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return "", fmt.Errorf("decoding records: %w", err)
	}
	if len(records) == 0 {
		return "", nil
	}

	first, err := decodeOrderedFields(records[0])
	if err != nil {
		return "", fmt.Errorf("decoding first record: %w", err)
	}
	keys := make([]string, len(first))
	for i, f := range first {
		keys[i] = f.key
	}

	var b strings.Builder
	b.WriteString(`<div class="chat-data"><table>`)
	b.WriteString("<thead><tr>")
	for _, key := range keys {
		b.WriteString("<th>" + html.EscapeString(key) + "</th>")
	}
	b.WriteString("</tr></thead><tbody>")

	shown := records
	if len(shown) > maxTableRows {
		shown = shown[:maxTableRows]
	}
	for _, rec := range shown {
		fields, err := decodeOrderedFields(rec)
		if err != nil {
			return "", fmt.Errorf("decoding record: %w", err)
		}
		byKey := make(map[string]json.RawMessage, len(fields))
		for _, f := range fields {
			byKey[f.key] = f.value
		}

		b.WriteString("<tr>")
		for _, key := range keys {
			b.WriteString("<td>" + formatCell(key, byKey[key]) + "</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")

	if rest := len(records) - maxTableRows; rest > 0 {
		fmt.Fprintf(&b, `<p class="chat-data-more">+%d more</p>`, rest)
	}
	b.WriteString("</div>")
	return b.String(), nil
}

func formatFieldList(fields []orderedField, depth int) string {
	class := "chat-data"
	if depth > 0 {
		class = "chat-data-sub"
	}

	var b strings.Builder
	b.WriteString(`<dl class="` + class + `">`)
	for _, f := range fields {
		b.WriteString("<dt>" + html.EscapeString(f.key) + "</dt>")
		b.WriteString("<dd>" + formatValue(f.key, f.value, depth) + "</dd>")
	}
	b.WriteString("</dl>")
	return b.String()
}

// formatValue renders one mapping value. Nested mappings become an
// indented sub-list; numbers follow the key-name heuristics.
func formatValue(key string, raw json.RawMessage, depth int) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "N/A"
	}

	if trimmed[0] == '{' {
		sub, err := decodeOrderedFields(trimmed)
		if err != nil || len(sub) == 0 {
			return "N/A"
		}
		return formatFieldList(sub, depth+1)
	}

	return formatCell(key, trimmed)
}

// formatCell renders a scalar for either a table cell or a definition
// value. Missing values render "N/A".
func formatCell(key string, raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "N/A"
	}

	var num float64
	if err := json.Unmarshal(trimmed, &num); err == nil && trimmed[0] != '"' {
		return formatNumber(key, num, trimmed)
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		if s == "" {
			return "N/A"
		}
		return html.EscapeString(s)
	}

	// Booleans, arrays and anything else render as their JSON text.
	return html.EscapeString(string(trimmed))
}

// formatNumber applies the key-name heuristics: monetary keys get the
// currency prefix with grouped thousands, ratio keys get a percent
// suffix, everything else keeps its literal form.
func formatNumber(key string, num float64, literal []byte) string {
	lower := strings.ToLower(key)
	switch {
	case strings.Contains(lower, "amount") || strings.Contains(lower, "value"):
		return currency + " " + humanize.FormatFloat("#,###.##", num)
	case strings.Contains(lower, "percentage") || strings.Contains(lower, "rate"):
		return humanize.FormatFloat("#,###.##", num) + "%"
	default:
		return string(literal)
	}
}

// orderedField preserves a JSON object's key order, which encoding/json
// map decoding throws away. Table headers must follow the first
// record's own ordering.
type orderedField struct {
	key   string
	value json.RawMessage
}

func decodeOrderedFields(obj json.RawMessage) ([]orderedField, error) {
	dec := json.NewDecoder(bytes.NewReader(obj))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	var fields []orderedField
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", keyTok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		fields = append(fields, orderedField{key: key, value: value})
	}
	return fields, nil
}
