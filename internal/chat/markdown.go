package chat

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
)

// md renders AI answers. Raw HTML in the source is dropped by goldmark
// in safe mode, so a reply containing markup never reaches the page as
// markup.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		highlighting.NewHighlighting(
			highlighting.WithStyle("github"),
		),
	),
)

// renderAnswer converts an AI answer to HTML. On conversion failure it
// falls back to the escaped plain text rather than dropping the reply.
func renderAnswer(answer string) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(answer), &buf); err != nil {
		return "<p>" + html.EscapeString(answer) + "</p>"
	}
	return buf.String()
}

// RenderMessage builds the transcript fragment for one message. User
// text is escaped verbatim; AI text is rendered as markdown, followed
// by any structured data block.
func RenderMessage(sender Sender, body string, data []byte) (string, error) {
	var b bytes.Buffer

	switch sender {
	case SenderUser:
		fmt.Fprintf(&b, `<div class="msg msg-user">%s</div>`, html.EscapeString(body))
	default:
		fmt.Fprintf(&b, `<div class="msg msg-ai">%s`, renderAnswer(body))
		if len(data) > 0 {
			dataHTML, err := FormatData(data)
			if err != nil {
				return "", fmt.Errorf("formatting reply data: %w", err)
			}
			b.WriteString(dataHTML)
		}
		b.WriteString("</div>")
	}

	return b.String(), nil
}
