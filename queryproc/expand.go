package queryproc

import (
	"strings"

	"github.com/briefcasebrain/uir-gateway/request"
)

// synonyms grounds QueryExpander.expand's synonym table: the first
// synonym listed for each matching term is appended once.
var synonyms = map[string][]string{
	"machine learning": {"ML", "artificial intelligence", "AI", "deep learning"},
	"transformer":      {"attention mechanism", "self-attention", "bert", "gpt"},
	"search":           {"retrieval", "query", "find", "lookup"},
	"database":         {"datastore", "repository", "storage", "db"},
}

// synonymOrder fixes iteration order over synonyms so expansion is
// deterministic (Go map order isn't, unlike the source's Python dict).
var synonymOrder = []string{"machine learning", "transformer", "search", "database"}

// ExpandQuery appends the first synonym of every matching term, plus one
// related term per TECHNOLOGY entity found, matching QueryExpander.expand.
func ExpandQuery(query string, entities []request.Entity) string {
	terms := []string{query}
	lower := strings.ToLower(query)

	for _, term := range synonymOrder {
		syns := synonyms[term]
		if strings.Contains(lower, term) && len(syns) > 0 {
			terms = append(terms, syns[0])
		}
	}
	for _, e := range entities {
		if e.Type != "TECHNOLOGY" {
			continue
		}
		if related, ok := synonyms[strings.ToLower(e.Value)]; ok && len(related) > 0 {
			terms = append(terms, related[0])
		}
	}
	return strings.Join(terms, " ")
}
