package index

import (
	"fmt"
	"strconv"
	"strings"

	"filedex/internal/indexclient"
)

// Spec is a fully resolved query against the store: the parsed search
// string plus the match flags, sort order, and paging window configured
// on the client.
type Spec struct {
	// Terms are plain search words matched as substrings against the
	// file name (or full path when MatchPath is set).
	Terms []string
	// Excludes removes results whose full path contains any of these
	// strings, compared case-insensitively.
	Excludes []string

	Ext    string
	HasExt bool

	Size    int64
	HasSize bool

	// Parent restricts results to paths under this directory.
	Parent string

	OnlyFiles   bool
	OnlyFolders bool

	MatchCase      bool
	MatchPath      bool
	MatchWholeWord bool

	// Regex holds the whole search string when regex mode is active.
	// Regex mode bypasses the query mini-language entirely.
	Regex string

	Sort   indexclient.SortKey
	Limit  int
	Offset int
}

// ParseQuery parses the query mini-language into a Spec.
//
// Syntax, applied token by token (tokens split on unquoted whitespace,
// double quotes group):
//
//	ext:mp3        extension equals mp3 (leading dot and case ignored)
//	size:1024      size equals 1024 bytes
//	parent:"/dir"  path is under /dir
//	file:          files only
//	folder:        folders only
//	!text          exclude paths containing text
//	anything else  substring term
func ParseQuery(text string) (Spec, error) {
	var spec Spec

	for _, tok := range tokenize(text) {
		switch {
		case strings.HasPrefix(tok, "!"):
			if v := tok[1:]; v != "" {
				spec.Excludes = append(spec.Excludes, v)
			}
		case hasFoldPrefix(tok, "ext:"):
			spec.Ext = strings.TrimPrefix(strings.ToLower(tok[len("ext:"):]), ".")
			spec.HasExt = true
		case hasFoldPrefix(tok, "size:"):
			v := tok[len("size:"):]
			size, err := strconv.ParseInt(v, 10, 64)
			if err != nil || size < 0 {
				return Spec{}, fmt.Errorf("invalid size filter %q", v)
			}
			spec.Size = size
			spec.HasSize = true
		case hasFoldPrefix(tok, "parent:"):
			spec.Parent = tok[len("parent:"):]
		case strings.EqualFold(tok, "file:"):
			spec.OnlyFiles = true
		case strings.EqualFold(tok, "folder:"):
			spec.OnlyFolders = true
		default:
			spec.Terms = append(spec.Terms, tok)
		}
	}

	return spec, nil
}

// hasFoldPrefix reports whether s starts with prefix, ignoring case.
func hasFoldPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// tokenize splits on unquoted whitespace. Double quotes group and are
// stripped; an unterminated quote runs to the end of the string.
func tokenize(text string) []string {
	var tokens []string
	var b strings.Builder
	inQuote := false

	flush := func() {
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}

	for _, r := range text {
		switch {
		case r == '"':
			inQuote = !inQuote
		case !inQuote && (r == ' ' || r == '\t'):
			flush()
		default:
			b.WriteRune(r)
		}
	}
	flush()

	return tokens
}
