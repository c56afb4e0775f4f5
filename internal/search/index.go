// Package search ranks recipes with an in-memory bleve index. It backs the
// `larder search` command; the catalog view keeps its own substring filter.
package search

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/pders01/larder/internal/domain"
)

// MinQueryRunes is the shortest query that is searched at all.
const MinQueryRunes = 2

type fieldBoost struct {
	name   string
	match  float64
	prefix float64
}

var boosts = []fieldBoost{
	{"name", 4.0, 3.5},
	{"tags", 2.0, 1.8},
	{"ingredients", 1.5, 1.2},
	{"cuisine", 1.0, 0.8},
}

// Result is one ranked hit.
type Result struct {
	Recipe domain.Recipe
	Score  float64
}

type Index struct {
	idx     bleve.Index
	recipes map[string]domain.Recipe
}

// NewIndex indexes recipes into a memory-only bleve index.
func NewIndex(recipes []domain.Recipe) (*Index, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating index: %w", err)
	}

	ix := &Index{idx: idx, recipes: make(map[string]domain.Recipe, len(recipes))}
	batch := idx.NewBatch()
	for _, r := range recipes {
		id := strconv.Itoa(r.ID)
		ix.recipes[id] = r
		if err := batch.Index(id, map[string]any{
			"name":        r.Name,
			"tags":        strings.Join(r.Tags, " "),
			"ingredients": strings.Join(r.Ingredients, " "),
			"cuisine":     r.Cuisine,
			"cuisine_tag": r.Cuisine,
		}); err != nil {
			idx.Close()
			return nil, fmt.Errorf("indexing recipe %d: %w", r.ID, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		idx.Close()
		return nil, fmt.Errorf("indexing batch: %w", err)
	}
	return ix, nil
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()
	for _, f := range boosts {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = standard.Name
		fm.Store = false
		fm.IncludeTermVectors = f.name == "name"
		dm.AddFieldMappingsAt(f.name, fm)
	}

	// exact label for cuisine filtering
	tag := bleve.NewTextFieldMapping()
	tag.Analyzer = keyword.Name
	tag.Store = false
	dm.AddFieldMappingsAt("cuisine_tag", tag)

	im.DefaultMapping = dm
	return im
}

func (ix *Index) Close() error {
	return ix.idx.Close()
}

// Len reports the number of indexed recipes.
func (ix *Index) Len() int {
	return len(ix.recipes)
}

// Search ranks recipes for query, optionally restricted to one exact cuisine
// label. A limit of 0 or less returns every hit.
func (ix *Index) Search(query, cuisine string, limit int) ([]Result, error) {
	if utf8.RuneCountInString(strings.TrimSpace(query)) < MinQueryRunes {
		return []Result{}, nil
	}
	tokens := tokenize(query)
	if len(tokens) == 0 {
		return []Result{}, nil
	}

	var qs []bleveQuery.Query
	for _, tok := range tokens {
		for _, f := range boosts {
			m := bleve.NewMatchQuery(tok)
			m.SetField(f.name)
			m.SetBoost(f.match)
			qs = append(qs, m)

			p := bleve.NewPrefixQuery(tok)
			p.SetField(f.name)
			p.SetBoost(f.prefix)
			qs = append(qs, p)
		}
	}
	var q bleveQuery.Query = bleve.NewDisjunctionQuery(qs...)
	if cuisine != "" {
		tq := bleve.NewTermQuery(cuisine)
		tq.SetField("cuisine_tag")
		q = bleve.NewConjunctionQuery(q, tq)
	}

	size := limit
	if size <= 0 {
		size = len(ix.recipes)
	}
	req := bleve.NewSearchRequestOptions(q, size, 0, false)
	res, err := ix.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}

	out := make([]Result, 0, len(res.Hits))
	for _, h := range res.Hits {
		r, ok := ix.recipes[h.ID]
		if !ok {
			continue
		}
		out = append(out, Result{Recipe: r, Score: h.Score})
	}
	return out, nil
}

// tokenize lowercases text and splits it on anything that is not a letter
// or digit, dropping single characters.
func tokenize(text string) []string {
	var terms []string
	current := strings.Builder{}

	flush := func() {
		if utf8.RuneCountInString(current.String()) > 1 {
			terms = append(terms, current.String())
		}
		current.Reset()
	}
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(unicode.ToLower(r))
		} else {
			flush()
		}
	}
	flush()

	return terms
}
