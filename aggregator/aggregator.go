// Package aggregator merges, deduplicates, fuses, reranks, and
// diversifies result sets gathered from multiple providers, grounded on
// aggregator.py's ResultAggregator line-by-line.
package aggregator

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"

	"github.com/briefcasebrain/uir-gateway/request"
)

// Aggregate deduplicates (if requested) and sorts results by score
// descending. Matches ResultAggregator.aggregate.
func Aggregate(results []request.Result, deduplicate bool) []request.Result {
	if len(results) == 0 {
		return nil
	}
	if deduplicate {
		results = Deduplicate(results)
	}
	sorted := append([]request.Result(nil), results...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })
	return sorted
}

// contentHash fingerprints a result for deduplication/fusion keying: the
// MD5 of its URL if present, otherwise the MD5 of title+content+snippet
// concatenated with no separator, matching _get_content_hash exactly
// (including its quirk of not separating the three fields, which can
// collide across differently-split title/content boundaries - kept as-is
// to preserve the source's exact grouping behavior).
func contentHash(r request.Result) string {
	var sum [16]byte
	if r.URL != "" {
		sum = md5.Sum([]byte(r.URL))
	} else {
		sum = md5.Sum([]byte(r.Title + r.Content + r.Snippet))
	}
	return hex.EncodeToString(sum[:])
}

// Deduplicate removes duplicate results by content fingerprint, keeping
// whichever duplicate has the higher score. Matches _deduplicate.
func Deduplicate(results []request.Result) []request.Result {
	seenIdx := make(map[string]int, len(results))
	unique := make([]request.Result, 0, len(results))
	for _, r := range results {
		hash := contentHash(r)
		if idx, ok := seenIdx[hash]; ok {
			if r.Score > unique[idx].Score {
				unique[idx] = r
			}
			continue
		}
		seenIdx[hash] = len(unique)
		unique = append(unique, r)
	}
	return unique
}

// scored pairs a fingerprint with its fused score and representative
// result, used by all three fusion methods below.
type scored struct {
	hash   string
	score  float64
	result request.Result
}

func sortByScoreDesc(entries []scored) []request.Result {
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].score > entries[j].score })
	out := make([]request.Result, len(entries))
	for i, e := range entries {
		r := e.result
		r.Score = e.score
		out[i] = r
	}
	return out
}

// ReciprocalRankFusion combines multiple ranked lists by summing
// 1/(k+rank) per appearance, rank 1-indexed within each list. Matches
// reciprocal_rank_fusion with its default k=60.
func ReciprocalRankFusion(resultLists [][]request.Result, k int) []request.Result {
	if k <= 0 {
		k = 60
	}
	scores := make(map[string]float64)
	representative := make(map[string]request.Result)
	var order []string

	for _, list := range resultLists {
		for i, r := range list {
			rank := i + 1
			hash := contentHash(r)
			if _, ok := representative[hash]; !ok {
				representative[hash] = r
				order = append(order, hash)
			}
			scores[hash] += 1.0 / float64(k+rank)
		}
	}

	entries := make([]scored, 0, len(order))
	for _, hash := range order {
		entries = append(entries, scored{hash: hash, score: scores[hash], result: representative[hash]})
	}
	return sortByScoreDesc(entries)
}

// WeightedSumFusion combines multiple result lists by summing each
// fingerprint's scores across every list, keeping the single
// highest-individually-scoring representative on collision (it does not
// merge fields from different occurrences). Matches weighted_sum_fusion.
func WeightedSumFusion(resultLists [][]request.Result) []request.Result {
	scores := make(map[string]float64)
	representative := make(map[string]request.Result)
	var order []string

	for _, list := range resultLists {
		for _, r := range list {
			hash := contentHash(r)
			if _, ok := representative[hash]; !ok {
				order = append(order, hash)
				representative[hash] = r
			} else if r.Score > representative[hash].Score {
				representative[hash] = r
			}
			scores[hash] += r.Score
		}
	}

	entries := make([]scored, 0, len(order))
	for _, hash := range order {
		entries = append(entries, scored{hash: hash, score: scores[hash], result: representative[hash]})
	}
	return sortByScoreDesc(entries)
}

// MaxScoreFusion keeps, per fingerprint, whichever occurrence scored
// highest across every list. Matches max_score_fusion.
func MaxScoreFusion(resultLists [][]request.Result) []request.Result {
	best := make(map[string]float64)
	representative := make(map[string]request.Result)
	var order []string

	for _, list := range resultLists {
		for _, r := range list {
			hash := contentHash(r)
			if prev, ok := best[hash]; !ok || r.Score > prev {
				if !ok {
					order = append(order, hash)
				}
				best[hash] = r.Score
				representative[hash] = r
			}
		}
	}

	entries := make([]scored, 0, len(order))
	for _, hash := range order {
		entries = append(entries, scored{hash: hash, score: best[hash], result: representative[hash]})
	}
	return sortByScoreDesc(entries)
}

// Rerank applies a term-overlap relevance boost and re-sorts by the
// boosted score. Matches rerank's formula exactly: boost =
// matching_terms/len(query_terms), score *= (1 + boost*0.5).
func Rerank(results []request.Result, query string) []request.Result {
	queryTerms := uniqueTerms(strings.Fields(strings.ToLower(query)))
	out := append([]request.Result(nil), results...)
	for i, r := range out {
		content := strings.ToLower(r.Title + " " + r.Content + " " + r.Snippet)
		matching := 0
		for term := range queryTerms {
			if strings.Contains(content, term) {
				matching++
			}
		}
		var boost float64
		if len(queryTerms) > 0 {
			boost = float64(matching) / float64(len(queryTerms))
		}
		out[i].Score = r.Score * (1 + boost*0.5)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func uniqueTerms(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// DefaultMaxSimilar matches diversify_results's max_similar default of 2.
const DefaultMaxSimilar = 2

// Diversify drops results too similar to ones already selected, capping
// at maxSimilar occurrences per similarity group. The top result is
// always kept. Matches diversify_results/_are_similar/_get_domain.
func Diversify(results []request.Result, maxSimilar int) []request.Result {
	if len(results) == 0 {
		return nil
	}
	if maxSimilar <= 0 {
		maxSimilar = DefaultMaxSimilar
	}
	diversified := []request.Result{results[0]}
	similarityCounts := make(map[string]int)

	for _, r := range results[1:] {
		tooSimilar := false
		for _, selected := range diversified {
			if !areSimilar(r, selected) {
				continue
			}
			domain := domainOf(r)
			similarityCounts[domain]++
			if similarityCounts[domain] >= maxSimilar {
				tooSimilar = true
				break
			}
		}
		if !tooSimilar {
			diversified = append(diversified, r)
		}
	}
	return diversified
}

func areSimilar(a, b request.Result) bool {
	if a.URL != "" && b.URL != "" {
		return domainOf(a) == domainOf(b)
	}
	if a.Title != "" && b.Title != "" {
		return titlePrefix(a.Title) == titlePrefix(b.Title)
	}
	return false
}

// titlePrefix truncates to the first 50 characters after lowercasing,
// matching the source's title.lower()[:50] comparison exactly (the
// quirk of comparing only a fixed-width prefix, allowing longer titles
// that diverge only after 50 characters to still count as similar, is
// kept as-is).
func titlePrefix(title string) string {
	lower := strings.ToLower(title)
	if len(lower) <= 50 {
		return lower
	}
	return lower[:50]
}

func domainOf(r request.Result) string {
	if r.URL == "" {
		return ""
	}
	parsed, err := url.Parse(r.URL)
	if err != nil {
		return ""
	}
	return parsed.Host
}
