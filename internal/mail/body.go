package mail

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// blockElements are HTML elements that imply a line break when
// flattening to plain text.
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "table": true,
}

// skippedElements are HTML elements whose text content is never body
// text.
var skippedElements = map[string]bool{
	"script": true, "style": true, "head": true, "title": true,
}

// HTMLToText flattens an HTML email body to plain text suitable for
// summarization. Block-level elements become line breaks; script and
// style content is dropped. Malformed HTML is flattened best-effort,
// matching the tolerance of the html package's parser.
func HTMLToText(body string) (string, error) {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse html body: %w", err)
	}

	b := &strings.Builder{}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			if skippedElements[n.Data] {
				return
			}
			if blockElements[n.Data] {
				b.WriteString("\n")
			}
		case html.TextNode:
			text := strings.TrimSpace(n.Data)
			if text != "" {
				b.WriteString(text)
				b.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return collapseWhitespace(b.String()), nil
}

// collapseWhitespace squeezes runs of blank lines and trailing spaces
// out of flattened text.
func collapseWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// BodyText materializes a raw message body into the plain text carried
// by model.EmailMessage: the bytes are decoded from the declared
// charset, then HTML markup is flattened. Sources call this while
// building messages so downstream code only ever sees plain text.
func BodyText(raw []byte, charset, contentType string) string {
	decoded := string(DecodeCharset(raw, charset))

	if isHTMLBody(contentType, decoded) {
		if text, err := HTMLToText(decoded); err == nil {
			return text
		}
	}
	return strings.TrimSpace(decoded)
}

// isHTMLBody reports whether the body should be flattened as HTML,
// going by the declared content type or, when none is declared, by the
// markup itself. Mislabeled multipart messages often omit the type.
func isHTMLBody(contentType, body string) bool {
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		return true
	}

	lower := strings.ToLower(body)
	return strings.Contains(lower, "<html") || strings.Contains(lower, "<body")
}

// DecodeCharset converts body bytes in the named charset to UTF-8.
// An empty or unknown charset name returns the bytes unchanged: a
// mislabeled message should still be summarized, just possibly with
// mangled characters.
func DecodeCharset(body []byte, charset string) []byte {
	if charset == "" || strings.EqualFold(charset, "utf-8") || strings.EqualFold(charset, "us-ascii") {
		return body
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		return body
	}

	decoded, _, err := transform.Bytes(enc.NewDecoder(), body)
	if err != nil {
		return body
	}
	return decoded
}
