package queryproc

import "github.com/briefcasebrain/uir-gateway/request"

// GenerateFilters derives suggested filters from extracted entities and
// classified intent, matching QueryProcessor.generate_filters.
func GenerateFilters(entities []request.Entity, intent *request.Intent) []request.Filter {
	var filters []request.Filter

	for _, e := range entities {
		switch e.Type {
		case "DATE":
			filters = append(filters, request.Filter{Field: "date_range", Op: request.OpEq, Value: e.Value})
		case "LOCATION":
			filters = append(filters, request.Filter{Field: "location", Op: request.OpEq, Value: e.Value})
		case "ORGANIZATION":
			filters = append(filters, request.Filter{Field: "organization", Op: request.OpEq, Value: e.Value})
		}
	}

	if intent != nil {
		switch intent.Type {
		case "academic":
			filters = append(filters, request.Filter{Field: "document_type", Op: request.OpIn, Value: []string{"paper", "article", "thesis"}})
		case "news":
			filters = append(filters, request.Filter{Field: "document_type", Op: request.OpIn, Value: []string{"news", "blog"}})
		}
	}

	return filters
}
