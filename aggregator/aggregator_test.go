package aggregator

import (
	"testing"

	"github.com/briefcasebrain/uir-gateway/request"
)

func TestAggregateSortsByScoreDescending(t *testing.T) {
	results := []request.Result{
		{ID: "a", URL: "https://a.example", Score: 0.2},
		{ID: "b", URL: "https://b.example", Score: 0.9},
		{ID: "c", URL: "https://c.example", Score: 0.5},
	}
	out := Aggregate(results, false)
	if out[0].ID != "b" || out[1].ID != "c" || out[2].ID != "a" {
		t.Fatalf("expected b,c,a order, got %v,%v,%v", out[0].ID, out[1].ID, out[2].ID)
	}
}

func TestDeduplicateKeepsHigherScore(t *testing.T) {
	results := []request.Result{
		{ID: "a1", URL: "https://dup.example", Score: 0.3},
		{ID: "a2", URL: "https://dup.example", Score: 0.8},
	}
	out := Deduplicate(results)
	if len(out) != 1 {
		t.Fatalf("expected 1 result after dedup, got %d", len(out))
	}
	if out[0].ID != "a2" {
		t.Fatalf("expected the higher-scoring duplicate to survive, got %s", out[0].ID)
	}
}

func TestDeduplicateFallsBackToTitleContentSnippetHash(t *testing.T) {
	results := []request.Result{
		{ID: "x1", Title: "same", Content: "thing", Score: 0.1},
		{ID: "x2", Title: "same", Content: "thing", Score: 0.9},
	}
	out := Deduplicate(results)
	if len(out) != 1 || out[0].ID != "x2" {
		t.Fatalf("expected dedup by title+content hash to keep x2, got %+v", out)
	}
}

func TestReciprocalRankFusionSumsAcrossLists(t *testing.T) {
	listA := []request.Result{{ID: "1", URL: "https://a.example", Score: 0.9}}
	listB := []request.Result{{ID: "1", URL: "https://a.example", Score: 0.1}}
	out := ReciprocalRankFusion([][]request.Result{listA, listB}, 60)
	if len(out) != 1 {
		t.Fatalf("expected 1 fused result, got %d", len(out))
	}
	want := 1.0/61.0 + 1.0/61.0
	if out[0].Score < want-1e-9 || out[0].Score > want+1e-9 {
		t.Fatalf("expected RRF score %f, got %f", want, out[0].Score)
	}
}

func TestWeightedSumFusionAddsScores(t *testing.T) {
	listA := []request.Result{{ID: "1", URL: "https://a.example", Score: 0.4}}
	listB := []request.Result{{ID: "1", URL: "https://a.example", Score: 0.3}}
	out := WeightedSumFusion([][]request.Result{listA, listB})
	if len(out) != 1 || out[0].Score < 0.69 || out[0].Score > 0.71 {
		t.Fatalf("expected summed score ~0.7, got %+v", out)
	}
}

func TestMaxScoreFusionKeepsHighest(t *testing.T) {
	listA := []request.Result{{ID: "1", URL: "https://a.example", Score: 0.4}}
	listB := []request.Result{{ID: "1", URL: "https://a.example", Score: 0.9}}
	out := MaxScoreFusion([][]request.Result{listA, listB})
	if len(out) != 1 || out[0].Score != 0.9 {
		t.Fatalf("expected max score 0.9, got %+v", out)
	}
}

func TestRerankBoostsMatchingTerms(t *testing.T) {
	results := []request.Result{
		{ID: "nomatch", Title: "unrelated content", Score: 0.5},
		{ID: "match", Title: "golang concurrency patterns", Score: 0.5},
	}
	out := Rerank(results, "golang concurrency")
	if out[0].ID != "match" {
		t.Fatalf("expected the matching result to rank first after boost, got %s", out[0].ID)
	}
}

func TestDiversifyLimitsPerDomain(t *testing.T) {
	results := []request.Result{
		{ID: "1", URL: "https://news.example/a", Score: 0.9},
		{ID: "2", URL: "https://news.example/b", Score: 0.8},
		{ID: "3", URL: "https://news.example/c", Score: 0.7},
		{ID: "4", URL: "https://other.example/d", Score: 0.6},
	}
	out := Diversify(results, 2)
	ids := make(map[string]bool)
	for _, r := range out {
		ids[r.ID] = true
	}
	if ids["3"] {
		t.Fatal("expected the third same-domain result to be dropped once max_similar is reached")
	}
	if !ids["4"] {
		t.Fatal("expected the differently-domained result to survive")
	}
}

func TestDiversifyAlwaysKeepsTopResult(t *testing.T) {
	results := []request.Result{{ID: "top", Score: 1.0}}
	out := Diversify(results, 2)
	if len(out) != 1 || out[0].ID != "top" {
		t.Fatal("expected sole top result to survive")
	}
}
