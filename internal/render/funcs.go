package render

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// icalTimeLayout is the UTC timestamp format used in calendar output.
const icalTimeLayout = "20060102T150405Z"

// markdown converter shared by all renderers; goldmark.Markdown is safe for
// concurrent use.
var markdownConverter = goldmark.New(
	goldmark.WithExtensions(extension.Table),
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
		html.WithUnsafe(),
	),
)

// ICalDatetime formats a timestamp as an iCal UTC datetime string
// (YYYYMMDDTHHMMSSZ). Nil and zero times render as "".
func ICalDatetime(v any) string {
	var t time.Time
	switch ts := v.(type) {
	case time.Time:
		t = ts
	case *time.Time:
		if ts == nil {
			return ""
		}
		t = *ts
	default:
		return ""
	}
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(icalTimeLayout)
}

// Markdown renders markdown text to HTML with table, fenced-code and
// hard-line-break support. Empty input renders as "".
func Markdown(text string) (string, error) {
	if text == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := markdownConverter.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("%w: markdown: %v", ErrSyntax, err)
	}
	return buf.String(), nil
}

// funcMap exposes the two domain functions to templates.
func funcMap() template.FuncMap {
	return template.FuncMap{
		"ical_datetime": ICalDatetime,
		"markdown":      Markdown,
	}
}
