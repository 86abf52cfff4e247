package format

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownOnce sync.Once
	markdown     goldmark.Markdown
)

// The converter configuration never changes, so one instance is shared.
func converter() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdown = goldmark.New(
			goldmark.WithRendererOptions(html.WithHardWraps()),
		)
	})
	return markdown
}

// ToHTML renders Markdown into an HTML fragment. Raw HTML in the input is
// dropped by the renderer.
func ToHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := converter().Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"#", `\#`,
	"<", `\<`,
	">", `\>`,
)

// Escape makes user-supplied text render literally inside Markdown.
func Escape(s string) string {
	return markdownEscaper.Replace(s)
}

// Plain strips the escapes added by Escape and the bold markers used in
// reminder bodies, for the text/plain part.
func Plain(md string) string {
	md = strings.ReplaceAll(md, "**", "")
	var b strings.Builder
	escaped := false
	for _, r := range md {
		if r == '\\' && !escaped {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return b.String()
}
