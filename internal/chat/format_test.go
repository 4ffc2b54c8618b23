package chat

import (
	"strings"
	"testing"
)

func TestFormatDataTableHeadersFollowFirstRecord(t *testing.T) {
	raw := []byte(`[
		{"supplier": "Acme", "total_amount": 1200.5, "status": "paid"},
		{"status": "open", "supplier": "Globex", "total_amount": 75}
	]`)

	out, err := FormatData(raw)
	if err != nil {
		t.Fatalf("FormatData: %v", err)
	}

	want := "<thead><tr><th>supplier</th><th>total_amount</th><th>status</th></tr></thead>"
	if !strings.Contains(out, want) {
		t.Errorf("header row = %q, want it to contain %q", out, want)
	}
}

func TestFormatDataTableTruncatesAtFiveRows(t *testing.T) {
	raw := []byte(`[
		{"n": 1}, {"n": 2}, {"n": 3}, {"n": 4}, {"n": 5}, {"n": 6}, {"n": 7}
	]`)

	out, err := FormatData(raw)
	if err != nil {
		t.Fatalf("FormatData: %v", err)
	}

	if got := strings.Count(out, "<tr>") - 1; got != 5 {
		t.Errorf("body rows = %d, want 5", got)
	}
	if !strings.Contains(out, "+2 more") {
		t.Errorf("output %q missing truncation note", out)
	}
}

func TestFormatDataTableNoTruncationNoteAtLimit(t *testing.T) {
	raw := []byte(`[{"n": 1}, {"n": 2}, {"n": 3}, {"n": 4}, {"n": 5}]`)

	out, err := FormatData(raw)
	if err != nil {
		t.Fatalf("FormatData: %v", err)
	}
	if strings.Contains(out, "more") {
		t.Errorf("output %q has a truncation note for exactly 5 rows", out)
	}
}

func TestFormatDataMissingCellsRenderNA(t *testing.T) {
	raw := []byte(`[
		{"name": "a", "note": "x"},
		{"name": "b"}
	]`)

	out, err := FormatData(raw)
	if err != nil {
		t.Fatalf("FormatData: %v", err)
	}
	if !strings.Contains(out, "<td>N/A</td>") {
		t.Errorf("output %q missing N/A for absent cell", out)
	}
}

func TestFormatCellNumberHeuristics(t *testing.T) {
	tests := []struct {
		key  string
		raw  string
		want string
	}{
		{"total_amount", "1234.5", "AED 1,234.50"},
		{"invoice_value", "99", "AED 99.00"},
		{"match_percentage", "98.6", "98.60%"},
		{"success_rate", "50", "50.00%"},
		{"quantity", "42", "42"},
		{"code", `"42"`, "42"},
		{"anything", "null", "N/A"},
		{"note", `""`, "N/A"},
	}
	for _, tt := range tests {
		if got := formatCell(tt.key, []byte(tt.raw)); got != tt.want {
			t.Errorf("formatCell(%q, %s) = %q, want %q", tt.key, tt.raw, got, tt.want)
		}
	}
}

func TestFormatDataMappingRendersDefinitionList(t *testing.T) {
	raw := []byte(`{"supplier": "Acme", "totals": {"net_amount": 100, "vat_amount": 5}}`)

	out, err := FormatData(raw)
	if err != nil {
		t.Fatalf("FormatData: %v", err)
	}

	for _, want := range []string{
		"<dt>supplier</dt>",
		"<dd>Acme</dd>",
		`<dl class="chat-data-sub">`,
		"AED 100.00",
		"AED 5.00",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestFormatDataEscapesMarkup(t *testing.T) {
	raw := []byte(`[{"name": "<script>alert(1)</script>"}]`)

	out, err := FormatData(raw)
	if err != nil {
		t.Fatalf("FormatData: %v", err)
	}
	if strings.Contains(out, "<script>") {
		t.Fatalf("output %q contains unescaped markup", out)
	}
	if !strings.Contains(out, "&lt;script&gt;") {
		t.Errorf("output %q missing escaped markup", out)
	}
}

func TestFormatDataIgnoresScalarsAndEmpty(t *testing.T) {
	for _, raw := range []string{"", "null", `"just text"`, "17", "[]", "{}"} {
		out, err := FormatData([]byte(raw))
		if err != nil {
			t.Fatalf("FormatData(%q): %v", raw, err)
		}
		if out != "" {
			t.Errorf("FormatData(%q) = %q, want empty", raw, out)
		}
	}
}

func TestRenderMessageUserTextIsEscaped(t *testing.T) {
	out, err := RenderMessage(SenderUser, `<img src=x onerror=alert(1)>`, nil)
	if err != nil {
		t.Fatalf("RenderMessage: %v", err)
	}
	if strings.Contains(out, "<img") {
		t.Fatalf("output %q contains unescaped user markup", out)
	}
	if !strings.Contains(out, `class="msg msg-user"`) {
		t.Errorf("output %q missing user message class", out)
	}
}

func TestRenderMessageAIMarkdown(t *testing.T) {
	out, err := RenderMessage(SenderAI, "Here is **the total** for today", nil)
	if err != nil {
		t.Fatalf("RenderMessage: %v", err)
	}
	if !strings.Contains(out, "<strong>the total</strong>") {
		t.Errorf("output %q did not render markdown emphasis", out)
	}
}

func TestRenderMessageAIRawHTMLDropped(t *testing.T) {
	out, err := RenderMessage(SenderAI, `before <script>alert(1)</script> after`, nil)
	if err != nil {
		t.Fatalf("RenderMessage: %v", err)
	}
	if strings.Contains(out, "<script>") {
		t.Fatalf("output %q contains live script markup", out)
	}
}

func TestRenderMessageAIIncludesDataBlock(t *testing.T) {
	out, err := RenderMessage(SenderAI, "Matches found", []byte(`[{"id": 1}]`))
	if err != nil {
		t.Fatalf("RenderMessage: %v", err)
	}
	if !strings.Contains(out, "<table>") {
		t.Errorf("output %q missing rendered data table", out)
	}
}
