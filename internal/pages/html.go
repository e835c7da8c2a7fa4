package pages

import (
	"strings"

	"golang.org/x/net/html"
)

// Tags the transport accepts in HTML-formatted messages. Everything else
// is stripped, keeping only its text content.
var allowedHTMLTags = map[string]bool{
	"a": true, "b": true, "strong": true, "i": true, "em": true,
	"u": true, "ins": true, "s": true, "strike": true, "del": true,
	"code": true, "pre": true, "blockquote": true,
}

// Block-level tags that become line breaks when stripped.
var breakHTMLTags = map[string]bool{
	"br": true, "p": true, "div": true,
}

// sanitizeHTML reduces arbitrary announcement HTML to the transport's
// supported subset. Disallowed tags are dropped, their text kept; block
// tags turn into newlines; the only attribute preserved is a's href.
func sanitizeHTML(raw string) string {
	var sb strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(raw))

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return collapseBlankLines(sb.String())

		case html.TextToken:
			sb.WriteString(html.EscapeString(string(tokenizer.Text())))

		case html.StartTagToken, html.SelfClosingTagToken:
			token := tokenizer.Token()
			if breakHTMLTags[token.Data] {
				sb.WriteByte('\n')
				continue
			}
			if !allowedHTMLTags[token.Data] {
				continue
			}
			sb.WriteByte('<')
			sb.WriteString(token.Data)
			if token.Data == "a" {
				for _, attr := range token.Attr {
					if attr.Key == "href" {
						sb.WriteString(` href="` + html.EscapeString(attr.Val) + `"`)
						break
					}
				}
			}
			sb.WriteByte('>')

		case html.EndTagToken:
			token := tokenizer.Token()
			if allowedHTMLTags[token.Data] {
				sb.WriteString("</" + token.Data + ">")
			}
		}
	}
}

// collapseBlankLines squeezes runs of blank lines into one.
func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
