// Package catalog is the catalog state engine: it owns the fetched recipes,
// derives the filtered view from a text query and a cuisine filter, and pages
// through that view.
package catalog

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/pders01/larder/internal/domain"
)

// PageSize is the number of records exposed per page.
const PageSize = 8

// haystackSep joins the searchable fields of a record.
const haystackSep = " "

// Page is one visible slice of the filtered view.
type Page struct {
	Items   []domain.Recipe
	HasMore bool
}

// Store holds the catalog state. It is not safe for concurrent use; the
// Controller serializes access to it.
type Store struct {
	all       []domain.Recipe
	haystacks []string
	query     string
	cuisine   string
	filtered  []domain.Recipe
	page      int
	fold      cases.Caser
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{fold: cases.Fold()}
}

// Load replaces the catalog wholesale, recomputes the filtered view under the
// current query and filter and rewinds to the first page.
func (s *Store) Load(records []domain.Recipe) {
	s.all = records
	s.haystacks = make([]string, len(records))
	for i, r := range records {
		s.haystacks[i] = s.haystack(r)
	}
	s.refilter()
}

// SetQuery stores the trimmed, case-folded query. It reports whether the
// normalized value changed; an unchanged value leaves all state untouched.
func (s *Store) SetQuery(text string) bool {
	q := s.normalize(text)
	if q == s.query {
		return false
	}
	s.query = q
	s.refilter()
	return true
}

// SetCuisineFilter selects an exact, case-sensitive cuisine label. The empty
// string clears the filter.
func (s *Store) SetCuisineFilter(label string) bool {
	if label == s.cuisine {
		return false
	}
	s.cuisine = label
	s.refilter()
	return true
}

// NextPage advances the cursor without clamping; past the end VisiblePage
// is simply empty.
func (s *Store) NextPage() {
	s.page++
}

// VisiblePage returns the records of the current page in catalog order.
func (s *Store) VisiblePage() Page {
	start := s.page * PageSize
	end := start + PageSize
	n := len(s.filtered)
	if start > n {
		start = n
	}
	if end > n {
		end = n
	}
	return Page{
		Items:   s.filtered[start:end:end],
		HasMore: (s.page+1)*PageSize < n,
	}
}

// AvailableCuisines lists the distinct non-empty cuisines across the whole
// catalog in ascending order.
func (s *Store) AvailableCuisines() []string {
	seen := make(map[string]struct{}, len(s.all))
	out := make([]string, 0)
	for _, r := range s.all {
		if r.Cuisine == "" {
			continue
		}
		if _, ok := seen[r.Cuisine]; ok {
			continue
		}
		seen[r.Cuisine] = struct{}{}
		out = append(out, r.Cuisine)
	}
	sort.Strings(out)
	return out
}

// Lookup finds a record in the full catalog by id.
func (s *Store) Lookup(id int) (domain.Recipe, bool) {
	for _, r := range s.all {
		if r.ID == id {
			return r, true
		}
	}
	return domain.Recipe{}, false
}

// Query returns the normalized query.
func (s *Store) Query() string { return s.query }

// CuisineFilter returns the active cuisine label.
func (s *Store) CuisineFilter() string { return s.cuisine }

// PageIndex returns the zero-based page cursor.
func (s *Store) PageIndex() int { return s.page }

// Filtered returns the current filtered view. Callers must not modify it.
func (s *Store) Filtered() []domain.Recipe { return s.filtered }

// Len is the size of the full catalog.
func (s *Store) Len() int { return len(s.all) }

func (s *Store) normalize(text string) string {
	return s.fold.String(strings.TrimSpace(text))
}

func (s *Store) haystack(r domain.Recipe) string {
	parts := make([]string, 0, 2+len(r.Ingredients)+len(r.Tags))
	parts = append(parts, r.Name, r.Cuisine)
	parts = append(parts, r.Ingredients...)
	parts = append(parts, r.Tags...)
	return s.fold.String(strings.Join(parts, haystackSep))
}

func (s *Store) refilter() {
	filtered := make([]domain.Recipe, 0, len(s.all))
	for i, r := range s.all {
		if s.cuisine != "" && r.Cuisine != s.cuisine {
			continue
		}
		if s.query != "" && !strings.Contains(s.haystacks[i], s.query) {
			continue
		}
		filtered = append(filtered, r)
	}
	s.filtered = filtered
	s.page = 0
}
