package request

import (
	"strconv"

	"github.com/briefcasebrain/uir-gateway/kinderror"
)

// ValidateSearch checks a text-search request against the invariants in
// the data model: non-empty query, at least one provider, options within
// range.
func ValidateSearch(r SearchRequest) error {
	if len(r.Providers) == 0 {
		return kinderror.New(kinderror.Validation, "at least one provider is required")
	}
	if r.Query == "" {
		return kinderror.New(kinderror.Validation, "query must not be empty")
	}
	return validateOptions(r.Options)
}

// ValidateVectorSearch checks a vector-search request: either a vector or
// text must be supplied.
func ValidateVectorSearch(r VectorSearchRequest) error {
	if len(r.Providers) == 0 {
		return kinderror.New(kinderror.Validation, "at least one provider is required")
	}
	if len(r.Vector) == 0 && r.Text == "" {
		return kinderror.New(kinderror.Validation, "either vector or text is required")
	}
	return validateOptions(r.Options)
}

// ValidateHybridSearch checks a hybrid-search request: at least one
// strategy, every strategy weight in [0,1], and a recognized fusion
// method.
func ValidateHybridSearch(r HybridSearchRequest) error {
	if len(r.Strategies) == 0 {
		return kinderror.New(kinderror.Validation, "at least one strategy is required")
	}
	for i, s := range r.Strategies {
		if s.Weight < 0 || s.Weight > 1 {
			return kinderror.New(kinderror.Validation, "strategy weight must be between 0 and 1")
		}
		if s.Provider == "" {
			return kinderror.New(kinderror.Validation, "strategy provider is required")
		}
		switch s.Type {
		case StrategyKeyword, StrategyVector, StrategyGraph:
		default:
			return kinderror.New(kinderror.Validation, "unrecognized strategy type at index "+strconv.Itoa(i))
		}
	}
	switch r.FusionMethod {
	case FusionReciprocalRank, FusionWeightedSum, FusionMaxScore, "":
	default:
		return kinderror.New(kinderror.Validation, "unrecognized fusion method")
	}
	return validateOptions(r.Options)
}

func validateOptions(o SearchOptions) error {
	if o.Limit != 0 && (o.Limit < 1 || o.Limit > 1000) {
		return kinderror.New(kinderror.Validation, "limit must be between 1 and 1000")
	}
	if o.Offset < 0 {
		return kinderror.New(kinderror.Validation, "offset must not be negative")
	}
	if o.TimeoutMS != 0 && (o.TimeoutMS < 100 || o.TimeoutMS > 60000) {
		return kinderror.New(kinderror.Validation, "timeout_ms must be between 100 and 60000")
	}
	for _, f := range o.Filters {
		switch f.Op {
		case OpEq, OpNe, OpGt, OpGte, OpLt, OpLte, OpIn, OpContains, OpRange:
		default:
			return kinderror.New(kinderror.Validation, "unrecognized filter operator: "+string(f.Op))
		}
		if f.Field == "" {
			return kinderror.New(kinderror.Validation, "filter field must not be empty")
		}
	}
	return nil
}
