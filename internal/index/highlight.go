package index

import (
	"regexp"
	"sort"
	"strings"
)

// highlight wraps every occurrence of every term in '*' markers.
// Overlapping and adjacent matches merge into a single marked span.
func highlight(s string, terms []string, matchCase bool) string {
	subject := s
	if !matchCase {
		subject = strings.ToLower(s)
	}

	var spans [][2]int
	for _, term := range terms {
		if term == "" {
			continue
		}
		needle := term
		if !matchCase {
			needle = strings.ToLower(term)
		}
		for from := 0; ; {
			idx := strings.Index(subject[from:], needle)
			if idx < 0 {
				break
			}
			idx += from
			spans = append(spans, [2]int{idx, idx + len(needle)})
			from = idx + len(needle)
		}
	}

	return markSpans(s, spans)
}

// highlightRegex wraps every regex match in '*' markers.
func highlightRegex(s string, re *regexp.Regexp) string {
	matches := re.FindAllStringIndex(s, -1)
	if len(matches) == 0 {
		return s
	}

	spans := make([][2]int, 0, len(matches))
	for _, m := range matches {
		if m[0] == m[1] {
			continue
		}
		spans = append(spans, [2]int{m[0], m[1]})
	}

	return markSpans(s, spans)
}

// markSpans merges overlapping spans and rebuilds the string with '*'
// delimiters around each merged span.
func markSpans(s string, spans [][2]int) string {
	if len(spans) == 0 {
		return s
	}

	sort.Slice(spans, func(i, j int) bool {
		if spans[i][0] != spans[j][0] {
			return spans[i][0] < spans[j][0]
		}
		return spans[i][1] < spans[j][1]
	})

	merged := spans[:1]
	for _, span := range spans[1:] {
		last := &merged[len(merged)-1]
		if span[0] <= last[1] {
			if span[1] > last[1] {
				last[1] = span[1]
			}
			continue
		}
		merged = append(merged, span)
	}

	var b strings.Builder
	b.Grow(len(s) + 2*len(merged))
	prev := 0
	for _, span := range merged {
		b.WriteString(s[prev:span[0]])
		b.WriteByte('*')
		b.WriteString(s[span[0]:span[1]])
		b.WriteByte('*')
		prev = span[1]
	}
	b.WriteString(s[prev:])

	return b.String()
}
