package render

import (
	"fmt"
	"regexp"
	"strings"
)

// Block-inheritance markers. A parent template declares named regions with
// {% block name %}...{% endblock %}; a child names its parent with
// {% extends "slug" %} and overrides blocks by redeclaring them. Inside an
// override, {% super %} is replaced with the parent's block body. Markers
// are resolved in a flattening pass before the host template engine ever
// sees the source, so they carry no host syntax.
var (
	extendsRe    = regexp.MustCompile(`\{%-?\s*extends\s+"([^"]+)"\s*-?%\}`)
	blockStartRe = regexp.MustCompile(`\{%\s*block\s+([A-Za-z_][\w.-]*)\s*%\}`)
	blockEndRe   = regexp.MustCompile(`\{%\s*endblock(?:\s+[A-Za-z_][\w.-]*)?\s*%\}`)
	superRe      = regexp.MustCompile(`\{%\s*super\s*%\}`)
)

// maxInheritanceDepth bounds the extends chain.
const maxInheritanceDepth = 10

// segment is one top-level piece of a parsed template: either literal text
// or a named block region.
type segment struct {
	text  string
	block string // block name; empty for literal segments
}

// parsedDoc is a template source split into top-level segments plus a map
// of its top-level block bodies.
type parsedDoc struct {
	segments []segment
	blocks   map[string]string
}

// parseBlocks splits src into top-level literal and block segments. Nested
// block markers inside a body are kept verbatim; unbalanced markers are a
// syntax error.
func parseBlocks(src string) (*parsedDoc, error) {
	type marker struct {
		start, end int
		name       string // empty for endblock
	}

	var markers []marker
	for _, m := range blockStartRe.FindAllStringSubmatchIndex(src, -1) {
		markers = append(markers, marker{start: m[0], end: m[1], name: src[m[2]:m[3]]})
	}
	for _, m := range blockEndRe.FindAllStringIndex(src, -1) {
		markers = append(markers, marker{start: m[0], end: m[1]})
	}
	// Order markers by position
	for i := 1; i < len(markers); i++ {
		for j := i; j > 0 && markers[j].start < markers[j-1].start; j-- {
			markers[j], markers[j-1] = markers[j-1], markers[j]
		}
	}

	doc := &parsedDoc{blocks: make(map[string]string)}
	depth := 0
	cursor := 0
	var openName string
	var openBody int

	for _, m := range markers {
		if m.name != "" { // block start
			if depth == 0 {
				doc.segments = append(doc.segments, segment{text: src[cursor:m.start]})
				openName = m.name
				openBody = m.end
			}
			depth++
			continue
		}
		// endblock
		depth--
		if depth < 0 {
			return nil, fmt.Errorf("%w: endblock without matching block", ErrSyntax)
		}
		if depth == 0 {
			body := src[openBody:m.start]
			doc.segments = append(doc.segments, segment{text: body, block: openName})
			if _, dup := doc.blocks[openName]; dup {
				return nil, fmt.Errorf("%w: duplicate block %q", ErrSyntax, openName)
			}
			doc.blocks[openName] = body
			cursor = m.end
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("%w: unclosed block %q", ErrSyntax, openName)
	}
	doc.segments = append(doc.segments, segment{text: src[cursor:]})
	return doc, nil
}

// stripMarkers removes residual block markers from a body, keeping inner
// text, and erases unresolvable super markers.
func stripMarkers(s string) string {
	s = blockStartRe.ReplaceAllString(s, "")
	s = blockEndRe.ReplaceAllString(s, "")
	s = superRe.ReplaceAllString(s, "")
	return s
}

// flatten resolves the inheritance chain of src into one plain template.
// Pass one collects the chain child-to-root and each document's top-level
// blocks; pass two rebuilds the root skeleton with the most-derived body
// substituted per block, super markers expanding one level up the chain.
// Only top-level blocks participate in overriding.
func (r *Renderer) flatten(src string) (string, error) {
	var docs []*parsedDoc
	seen := make(map[string]bool)

	cur := src
	for depth := 0; ; depth++ {
		if depth > maxInheritanceDepth {
			return "", fmt.Errorf("%w: inheritance chain deeper than %d", ErrSyntax, maxInheritanceDepth)
		}

		var parent string
		if m := extendsRe.FindStringSubmatch(cur); m != nil {
			parent = m[1]
			cur = extendsRe.ReplaceAllString(cur, "")
		}

		doc, err := parseBlocks(cur)
		if err != nil {
			return "", err
		}
		docs = append(docs, doc)

		if parent == "" {
			break
		}
		if seen[parent] {
			return "", fmt.Errorf("%w: inheritance cycle through %q", ErrSyntax, parent)
		}
		seen[parent] = true

		next, ok := r.templates[parent]
		if !ok {
			return "", fmt.Errorf("%w: unknown parent template %q", ErrSyntax, parent)
		}
		cur = next
	}

	root := docs[len(docs)-1]
	var out strings.Builder
	for _, seg := range root.segments {
		if seg.block == "" {
			out.WriteString(stripMarkers(seg.text))
			continue
		}
		body := seg.text
		for i := len(docs) - 2; i >= 0; i-- {
			if override, ok := docs[i].blocks[seg.block]; ok {
				body = superRe.ReplaceAllLiteralString(override, body)
			}
		}
		out.WriteString(stripMarkers(body))
	}
	return out.String(), nil
}
