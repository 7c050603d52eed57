package queryproc

import (
	"regexp"
	"strings"

	"github.com/briefcasebrain/uir-gateway/request"
)

var (
	datePattern  = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}/\d{4})\b`)
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
)

// technologyTerms lists keyword-matched TECHNOLOGY entities, grounded on
// MockEntityExtractor.keyword_entities["TECHNOLOGY"] (a representative
// subset of the source's much larger list).
var technologyTerms = []string{
	"transformer", "attention", "bert", "gpt", "machine learning",
	"deep learning", "neural network", "nlp", "computer vision",
	"tensorflow", "pytorch", "elasticsearch", "postgresql", "redis",
	"kubernetes", "docker", "kafka",
}

// organizationTerms grounds the ORGANIZATION keyword-entity list.
var organizationTerms = []string{
	"google", "microsoft", "amazon", "meta", "openai", "nvidia",
	"mit", "stanford", "ieee", "arxiv",
}

// locationTerms grounds a representative subset of the LOCATION list.
var locationTerms = []string{
	"new york", "san francisco", "london", "tokyo", "berlin",
}

// ExtractEntities finds DATE and EMAIL entities by pattern, and
// TECHNOLOGY/ORGANIZATION/LOCATION entities by keyword match, matching
// MockEntityExtractor.extract's combined regex-and-keyword strategy.
func ExtractEntities(text string) []request.Entity {
	var entities []request.Entity

	for _, loc := range datePattern.FindAllStringIndex(text, -1) {
		value := text[loc[0]:loc[1]]
		entities = append(entities, request.Entity{Text: value, Type: "DATE", Value: value, Confidence: 0.9, Start: loc[0], End: loc[1]})
	}
	for _, loc := range emailPattern.FindAllStringIndex(text, -1) {
		value := text[loc[0]:loc[1]]
		entities = append(entities, request.Entity{Text: value, Type: "EMAIL", Value: value, Confidence: 0.95, Start: loc[0], End: loc[1]})
	}

	lower := strings.ToLower(text)
	for _, term := range technologyTerms {
		if idx := strings.Index(lower, term); idx >= 0 {
			entities = append(entities, request.Entity{Text: term, Type: "TECHNOLOGY", Value: term, Confidence: 0.85, Start: idx, End: idx + len(term)})
		}
	}
	for _, term := range organizationTerms {
		if idx := strings.Index(lower, term); idx >= 0 {
			entities = append(entities, request.Entity{Text: term, Type: "ORGANIZATION", Value: term, Confidence: 0.8, Start: idx, End: idx + len(term)})
		}
	}
	for _, term := range locationTerms {
		if idx := strings.Index(lower, term); idx >= 0 {
			entities = append(entities, request.Entity{Text: term, Type: "LOCATION", Value: term, Confidence: 0.75, Start: idx, End: idx + len(term)})
		}
	}

	return entities
}
