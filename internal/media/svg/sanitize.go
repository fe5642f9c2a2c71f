// Package svg strips active content from SVG cover images before they are
// uploaded and later rendered inline on the blog.
package svg

import (
	"bytes"
	"errors"
	"regexp"
)

var ErrNotSVG = errors.New("not an svg document")

var (
	scriptBlockPattern = regexp.MustCompile(`(?is)<\s*script\b[^>]*?(?:/\s*>|>.*?<\s*/\s*script\s*>)`)
	scriptTagPattern   = regexp.MustCompile(`(?is)<\s*/?\s*script\b[^>]*>`)
	eventAttrPattern   = regexp.MustCompile(`(?is)[\s/]on[a-z]+\s*=\s*("[^"]*"|'[^']*'|[^\s>]+)`)
	jsHrefPattern      = regexp.MustCompile(`(?is)[\s/](xlink:)?href\s*=\s*("\s*javascript:[^"]*"|'\s*javascript:[^']*'|javascript:[^\s>]*)`)
	foreignObjectRegex = regexp.MustCompile(`(?is)<\s*foreignObject\b.*?<\s*/\s*foreignObject\s*>`)
)

func Sanitize(input []byte) ([]byte, error) {
	if !bytes.Contains(bytes.ToLower(input), []byte("<svg")) {
		return nil, ErrNotSVG
	}

	clean := scriptBlockPattern.ReplaceAll(input, nil)
	// Unterminated script tags.
	clean = scriptTagPattern.ReplaceAll(clean, nil)
	clean = foreignObjectRegex.ReplaceAll(clean, nil)
	clean = eventAttrPattern.ReplaceAll(clean, nil)
	clean = jsHrefPattern.ReplaceAll(clean, nil)
	return clean, nil
}
