package queryproc

import (
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"
)

// corrections is a dictionary of common misspellings in retrieval queries,
// grounded on MockSpellChecker's corrections table.
var corrections = map[string]string{
	"transformr":  "transformer",
	"atention":    "attention",
	"mechanizm":   "mechanism",
	"machien":     "machine",
	"leraning":    "learning",
	"learnign":    "learning",
	"artifical":   "artificial",
	"inteligence": "intelligence",
	"nueral":      "neural",
	"netowrk":     "network",
	"netwrok":     "network",
	"algoritm":    "algorithm",
	"serch":       "search",
	"seach":       "search",
	"databse":     "database",
	"databas":     "database",
	"retreival":   "retrieval",
	"retreval":    "retrieval",
	"informaton":  "information",
	"teh":         "the",
	"hte":         "the",
	"adn":         "and",
	"nad":         "and",
	"wiht":        "with",
	"taht":        "that",
	"wich":        "which",
	"recieve":     "receive",
	"seperate":    "separate",
	"occured":     "occurred",
	"begining":    "beginning",
	"comming":     "coming",
	"runing":      "running",
	"reserch":     "research",
	"anaylsis":    "analysis",
	"expirment":   "experiment",
	"comparision": "comparison",
	"performace":  "performance",
	"docuemnt":    "document",
	"relavent":    "relevant",
	"similiar":    "similar",
	"accross":     "across",
	"procces":     "process",
}

// validWords are accepted as-is by the fuzzy matcher, grounded on
// MockSpellChecker.valid_words.
var validWords = []string{
	"machine", "learning", "deep", "neural", "network", "transformer",
	"attention", "mechanism", "algorithm", "search", "retrieval",
	"database", "document", "query", "vector", "semantic", "model",
	"training", "inference", "prediction", "classification", "clustering",
	"artificial", "intelligence", "data", "mining", "analysis", "processing",
	"embedding", "similarity", "research", "paper", "study", "experiment",
	"method", "approach", "technique", "framework", "system", "performance",
}

var wordPattern = regexp.MustCompile(`[A-Za-z]+|[^A-Za-z]+`)

// SpellCheck corrects common misspellings word by word, preserving
// surrounding punctuation and whitespace, case, and falling back to a
// Levenshtein-distance fuzzy match against the correction dictionary and
// the accepted-word list. Matches MockSpellChecker.correct.
func SpellCheck(text string) string {
	tokens := wordPattern.FindAllString(text, -1)
	var b strings.Builder
	for _, tok := range tokens {
		if !isAlpha(tok) {
			b.WriteString(tok)
			continue
		}
		lower := strings.ToLower(tok)
		if fixed, ok := corrections[lower]; ok {
			b.WriteString(matchCase(tok, fixed))
			continue
		}
		if fixed, ok := fuzzyCorrect(lower); ok {
			b.WriteString(matchCase(tok, fixed))
			continue
		}
		b.WriteString(tok)
	}
	return b.String()
}

func isAlpha(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return len(s) > 0
}

func matchCase(original, replacement string) string {
	if original == strings.ToUpper(original) {
		return strings.ToUpper(replacement)
	}
	if original == strings.Title(strings.ToLower(original)) { //nolint:staticcheck
		return strings.Title(replacement) //nolint:staticcheck
	}
	return replacement
}

// fuzzyCorrect finds the closest match among validWords and the
// correction keys whose length differs by at most two, and accepts it
// only at an edit distance of at most one; it stands in for
// MockSpellChecker._fuzzy_correct's similar-ratio threshold.
func fuzzyCorrect(word string) (string, bool) {
	if len(word) < 3 {
		return word, false
	}
	best := ""
	bestDist := -1
	consider := func(candidate, result string) {
		if abs(len(word)-len(candidate)) > 2 {
			return
		}
		d := levenshtein.ComputeDistance(word, candidate)
		if bestDist < 0 || d < bestDist {
			bestDist = d
			best = result
		}
	}
	for _, v := range validWords {
		consider(v, v)
	}
	for typo, fix := range corrections {
		consider(typo, fix)
	}
	if bestDist >= 0 && bestDist <= 1 {
		return best, true
	}
	return word, false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
