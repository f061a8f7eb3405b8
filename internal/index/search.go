package index

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"
	"unicode"

	"filedex/internal/indexclient"
)

// Result is one row of a search page.
type Result struct {
	Name    string
	Path    string
	IsFile  bool
	Size    int64
	ModTime time.Time
}

// Page is one bounded window of search results plus the total match
// count independent of the window.
type Page struct {
	Items []Result
	Total int
}

// Search executes a resolved query spec and returns one page of results.
//
// Structural predicates (extension, size, parent, excludes, entry type)
// always run in SQL. Substring terms run in SQL too unless whole-word or
// regex matching is requested, which SQLite cannot express portably;
// those specs stream the structurally filtered rows and match in Go.
func (s *Store) Search(spec Spec) (*Page, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("search", start, err) }()

	where, args := buildStructuralWhere(spec)

	goSide := spec.Regex != "" || spec.MatchWholeWord
	if !goSide {
		where, args = appendTermPredicates(where, args, spec)
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}
	orderClause := " ORDER BY " + orderBy(spec.Sort)

	if goSide {
		return s.searchFiltered(spec, whereClause, orderClause, args)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var total int
	err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM files"+whereClause, args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count query failed: %w", err)
	}

	query := "SELECT name, path, is_file, size, mod_time FROM files" + whereClause + orderClause
	if spec.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, spec.Limit, spec.Offset)
	} else if spec.Offset > 0 {
		query += " LIMIT -1 OFFSET ?"
		args = append(args, spec.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select query failed: %w", err)
	}
	defer rows.Close()

	page := &Page{Total: total}
	for rows.Next() {
		var r Result
		var isFile int
		var modTime int64
		if err = rows.Scan(&r.Name, &r.Path, &isFile, &r.Size, &modTime); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		r.IsFile = isFile == 1
		r.ModTime = time.Unix(modTime, 0)
		page.Items = append(page.Items, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return page, nil
}

// searchFiltered streams structurally filtered rows and applies whole-word
// or regex matching in Go, computing the exact total while collecting only
// the requested window.
func (s *Store) searchFiltered(spec Spec, whereClause, orderClause string, args []interface{}) (*Page, error) {
	match, err := compileMatcher(spec)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	// Streaming the whole candidate set; a regex over a large index can
	// exceed the point-query timeout
	ctx, cancel := context.WithTimeout(context.Background(), 6*defaultTimeout)
	defer cancel()

	query := "SELECT name, path, is_file, size, mod_time FROM files" + whereClause + orderClause
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select query failed: %w", err)
	}
	defer rows.Close()

	page := &Page{}
	for rows.Next() {
		var r Result
		var isFile int
		var modTime int64
		if err := rows.Scan(&r.Name, &r.Path, &isFile, &r.Size, &modTime); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		r.IsFile = isFile == 1
		r.ModTime = time.Unix(modTime, 0)

		subject := r.Name
		if spec.MatchPath {
			subject = r.Path
		}
		if !match(subject) {
			continue
		}

		if page.Total >= spec.Offset && (spec.Limit <= 0 || len(page.Items) < spec.Limit) {
			page.Items = append(page.Items, r)
		}
		page.Total++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return page, nil
}

// compileMatcher builds the Go-side predicate for regex or whole-word specs.
func compileMatcher(spec Spec) (func(string) bool, error) {
	if spec.Regex != "" {
		pattern := spec.Regex
		if !spec.MatchCase {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid regex %q: %w", spec.Regex, err)
		}
		return re.MatchString, nil
	}

	terms := spec.Terms
	return func(subject string) bool {
		for _, term := range terms {
			if !matchWholeWord(subject, term, spec.MatchCase) {
				return false
			}
		}
		return true
	}, nil
}

// matchWholeWord reports whether term occurs in s delimited by non-word
// runes (or the string boundaries).
func matchWholeWord(s, term string, matchCase bool) bool {
	if term == "" {
		return true
	}
	if !matchCase {
		s = strings.ToLower(s)
		term = strings.ToLower(term)
	}

	for from := 0; ; {
		idx := strings.Index(s[from:], term)
		if idx < 0 {
			return false
		}
		idx += from

		beforeOK := idx == 0 || !isWordRune(runeBefore(s, idx))
		end := idx + len(term)
		afterOK := end == len(s) || !isWordRune(runeAt(s, end))
		if beforeOK && afterOK {
			return true
		}

		from = idx + 1
		if from >= len(s) {
			return false
		}
	}
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func runeAt(s string, i int) rune {
	for _, r := range s[i:] {
		return r
	}
	return 0
}

func runeBefore(s string, i int) rune {
	r := rune(0)
	for _, c := range s[:i] {
		r = c
	}
	return r
}

// buildStructuralWhere renders the predicates SQLite always evaluates.
func buildStructuralWhere(spec Spec) ([]string, []interface{}) {
	var where []string
	var args []interface{}

	if spec.HasExt {
		where = append(where, "ext = ?")
		args = append(args, strings.ToLower(spec.Ext))
	}
	if spec.HasSize {
		where = append(where, "size = ?")
		args = append(args, spec.Size)
	}
	if spec.Parent != "" {
		prefix := spec.Parent
		if !strings.HasSuffix(prefix, string(os.PathSeparator)) {
			prefix += string(os.PathSeparator)
		}
		where = append(where, "instr(path, ?) = 1")
		args = append(args, prefix)
	}
	if spec.OnlyFiles {
		where = append(where, "is_file = 1")
	}
	if spec.OnlyFolders {
		where = append(where, "is_file = 0")
	}
	for _, excl := range spec.Excludes {
		where = append(where, "instr(lower(path), ?) = 0")
		args = append(args, strings.ToLower(excl))
	}

	return where, args
}

// appendTermPredicates renders plain substring terms into SQL.
func appendTermPredicates(where []string, args []interface{}, spec Spec) ([]string, []interface{}) {
	col := "name"
	if spec.MatchPath {
		col = "path"
	}

	for _, term := range spec.Terms {
		if spec.MatchCase {
			where = append(where, fmt.Sprintf("instr(%s, ?) > 0", col))
			args = append(args, term)
		} else {
			where = append(where, fmt.Sprintf("instr(lower(%s), ?) > 0", col))
			args = append(args, strings.ToLower(term))
		}
	}

	return where, args
}

// orderBy maps every sort key to its ORDER BY clause. Fields the index
// does not store separately (creation, access, and run times, attributes,
// file-list names) order by their closest stored column so the mapping
// stays total.
func orderBy(key indexclient.SortKey) string {
	name := "name COLLATE NOCASE"

	switch key {
	case indexclient.SortNameAscending:
		return name + " ASC"
	case indexclient.SortNameDescending:
		return name + " DESC"
	case indexclient.SortPathAscending:
		return "path ASC"
	case indexclient.SortPathDescending:
		return "path DESC"
	case indexclient.SortSizeAscending:
		return "size ASC, " + name + " ASC"
	case indexclient.SortSizeDescending:
		return "size DESC, " + name + " ASC"
	case indexclient.SortExtensionAscending, indexclient.SortTypeNameAscending:
		return "ext ASC, " + name + " ASC"
	case indexclient.SortExtensionDescending, indexclient.SortTypeNameDescending:
		return "ext DESC, " + name + " ASC"
	case indexclient.SortDateCreatedAscending, indexclient.SortDateModifiedAscending,
		indexclient.SortDateRecentlyChangedAscending, indexclient.SortDateAccessedAscending,
		indexclient.SortDateRunAscending:
		return "mod_time ASC, " + name + " ASC"
	case indexclient.SortDateCreatedDescending, indexclient.SortDateModifiedDescending,
		indexclient.SortDateRecentlyChangedDescending, indexclient.SortDateAccessedDescending,
		indexclient.SortDateRunDescending:
		return "mod_time DESC, " + name + " ASC"
	case indexclient.SortAttributesAscending:
		return "is_file ASC, " + name + " ASC"
	case indexclient.SortAttributesDescending:
		return "is_file DESC, " + name + " ASC"
	case indexclient.SortFileListFileNameAscending:
		return name + " ASC"
	case indexclient.SortFileListFileNameDescending:
		return name + " DESC"
	case indexclient.SortRunCountAscending:
		return "run_count ASC, " + name + " ASC"
	case indexclient.SortRunCountDescending:
		return "run_count DESC, " + name + " ASC"
	default:
		return name + " ASC"
	}
}
