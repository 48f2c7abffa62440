package parser

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"scribe/internal/domain"
)

type hit struct {
	label      int
	start      int
	valueStart int
}

var cleaner = strings.NewReplacer("**", "", "*", "", "[", "", "]", "")

// Parse extracts the schema's labelled fields from raw. It never fails: when no
// label yields a value, the whole text becomes the primary field under the
// placeholder title. raw is always kept verbatim on the artifact.
func Parse(schema Schema, raw string) (artifact domain.Artifact) {
	defer func() {
		if r := recover(); r != nil {
			artifact = fallback(schema, raw)
		}
	}()

	hits := make([]hit, 0, len(schema.Labels))
	for i, label := range schema.Labels {
		if h, ok := locate(raw, label); ok {
			h.label = i
			hits = append(hits, h)
		}
	}
	if len(hits) == 0 {
		return fallback(schema, raw)
	}
	sort.Slice(hits, func(a, b int) bool { return hits[a].start < hits[b].start })

	values := make(map[string]string, len(hits))
	for i, h := range hits {
		end := len(raw)
		if i+1 < len(hits) {
			end = hits[i+1].start
		}
		if end < h.valueStart {
			end = h.valueStart
		}
		label := schema.Labels[h.label]
		value := raw[h.valueStart:end]
		if label.SingleLine {
			value = strings.TrimLeft(value, " \t")
			if idx := strings.IndexByte(value, '\n'); idx >= 0 {
				value = value[:idx]
			}
		}
		values[label.Key] = clean(value)
	}

	empty := true
	for _, v := range values {
		if v != "" {
			empty = false
			break
		}
	}
	if empty {
		return fallback(schema, raw)
	}

	artifact = domain.Artifact{RawResponse: raw}
	for _, label := range schema.Labels {
		artifact.Set(label.Key, values[label.Key])
	}
	if artifact.Get(schema.Title) == "" {
		artifact.Set(schema.Title, schema.Placeholder)
	}
	return artifact
}

func fallback(schema Schema, raw string) domain.Artifact {
	artifact := domain.Artifact{RawResponse: raw}
	for _, label := range schema.Labels {
		artifact.Set(label.Key, "")
	}
	artifact.Set(schema.Title, schema.Placeholder)
	artifact.Set(schema.Primary, strings.TrimSpace(raw))
	return artifact
}

func clean(s string) string {
	return strings.TrimSpace(cleaner.Replace(s))
}

// locate returns the earliest occurrence of any spelling of label.
func locate(text string, label Label) (hit, bool) {
	best := hit{start: -1}
	try := func(spelling string, lineOnly bool) {
		for offset := 0; offset < len(text); {
			idx := strings.Index(text[offset:], spelling)
			if idx < 0 {
				return
			}
			pos := offset + idx
			offset = pos + len(spelling)
			if best.start >= 0 && pos >= best.start {
				return
			}
			start, ok := labelStart(text, pos, lineOnly)
			if !ok {
				continue
			}
			valueStart, ok := afterColon(text, pos+len(spelling))
			if !ok {
				continue
			}
			if best.start < 0 || start < best.start {
				best = hit{start: start, valueStart: valueStart}
			}
			return
		}
	}
	for _, s := range label.Spellings {
		try(s, false)
	}
	for _, s := range label.LineSpellings {
		try(s, true)
	}
	return best, best.start >= 0
}

// labelStart checks the word boundary before pos and widens the match over any
// leading heading or emphasis markers on the same line.
func labelStart(text string, pos int, lineOnly bool) (int, bool) {
	if pos > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:pos])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return 0, false
		}
	}
	start := pos
	for start > 0 {
		c := text[start-1]
		if c == '#' || c == '*' || c == ' ' || c == '\t' {
			start--
			continue
		}
		break
	}
	if lineOnly && start > 0 && text[start-1] != '\n' && text[start-1] != '\r' {
		return 0, false
	}
	// Leave ordinary spacing with the previous value.
	for start < pos && (text[start] == ' ' || text[start] == '\t') {
		start++
	}
	return start, true
}

// afterColon accepts optional emphasis and horizontal space between the label
// and its colon, and emphasis right after the colon.
func afterColon(text string, i int) (int, bool) {
	i = skipPrefix(text, i, "**")
	for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
		i++
	}
	i = skipPrefix(text, i, "**")
	if i >= len(text) || text[i] != ':' {
		return 0, false
	}
	i++
	return skipPrefix(text, i, "**"), true
}

func skipPrefix(text string, i int, prefix string) int {
	if strings.HasPrefix(text[i:], prefix) {
		return i + len(prefix)
	}
	return i
}
