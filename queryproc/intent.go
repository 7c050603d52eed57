package queryproc

import (
	"strings"

	"github.com/briefcasebrain/uir-gateway/request"
)

type intentRule struct {
	keywords   []string
	intentType string
	confidence float64
}

// intentRules matches IntentClassifier.classify's ordered keyword checks
// exactly: first matching rule wins.
var intentRules = []intentRule{
	{[]string{"explain", "what is", "how does", "define"}, "explanation", 0.85},
	{[]string{"compare", "difference", "versus", "vs"}, "comparison", 0.80},
	{[]string{"latest", "recent", "new", "news"}, "news", 0.75},
	{[]string{"paper", "research", "study", "academic"}, "academic", 0.80},
	{[]string{"tutorial", "guide", "how to", "example"}, "tutorial", 0.85},
}

// ClassifyIntent returns the first matching rule's intent, or "general"
// at 0.60 confidence if nothing matches.
func ClassifyIntent(query string) request.Intent {
	lower := strings.ToLower(query)
	for _, rule := range intentRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return request.Intent{Type: rule.intentType, Confidence: rule.confidence}
			}
		}
	}
	return request.Intent{Type: "general", Confidence: 0.60}
}
