package render

import (
	"bytes"
	"fmt"
	"html"

	"github.com/russross/blackfriday"

	"github.com/ashevelev/chatweb/pkg/domain"
)

// TranscriptHTML renders a conversation as a standalone HTML document.
// Assistant replies are markdown and rendered as such; user and system
// messages are escaped verbatim.
func TranscriptHTML(conv *domain.Conversation) []byte {
	var buf bytes.Buffer

	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	fmt.Fprintf(&buf, "<meta charset=\"utf-8\">\n<title>%s</title>\n", html.EscapeString(conv.Title))
	buf.WriteString("</head>\n<body>\n")
	fmt.Fprintf(&buf, "<h1>%s</h1>\n", html.EscapeString(conv.Title))

	for _, msg := range conv.Messages {
		fmt.Fprintf(&buf, "<section class=\"message %s\">\n", msg.Role)
		fmt.Fprintf(&buf, "<h3>%s</h3>\n", msg.Role)

		if msg.Role == domain.RoleAssistant {
			buf.Write(blackfriday.MarkdownCommon([]byte(msg.Content)))
		} else {
			fmt.Fprintf(&buf, "<p>%s</p>\n", html.EscapeString(msg.Content))
		}

		for _, att := range msg.Attachments {
			fmt.Fprintf(&buf, "<p><a href=\"%s\">%s</a></p>\n",
				html.EscapeString(att.URL), html.EscapeString(att.Name))
		}

		buf.WriteString("</section>\n")
	}

	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes()
}
