package queryproc

import (
	"context"
	"testing"

	"github.com/briefcasebrain/uir-gateway/request"
)

func TestSpellCheckAppliesKnownCorrections(t *testing.T) {
	got := SpellCheck("the transformr mechanizm")
	if got != "the transformer mechanism" {
		t.Fatalf("expected corrected text, got %q", got)
	}
}

func TestSpellCheckPreservesCase(t *testing.T) {
	got := SpellCheck("Transformr")
	if got != "Transformer" {
		t.Fatalf("expected title case preserved, got %q", got)
	}
}

func TestExtractEntitiesFindsDateAndEmail(t *testing.T) {
	entities := ExtractEntities("meeting on 2024-01-15, contact me at a@b.com")
	var foundDate, foundEmail bool
	for _, e := range entities {
		if e.Type == "DATE" {
			foundDate = true
		}
		if e.Type == "EMAIL" {
			foundEmail = true
		}
	}
	if !foundDate || !foundEmail {
		t.Fatalf("expected both DATE and EMAIL entities, got %+v", entities)
	}
}

func TestExtractEntitiesFindsTechnologyKeyword(t *testing.T) {
	entities := ExtractEntities("how does the transformer architecture work")
	found := false
	for _, e := range entities {
		if e.Type == "TECHNOLOGY" && e.Value == "transformer" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a TECHNOLOGY entity for 'transformer'")
	}
}

func TestClassifyIntentMatchesExplanation(t *testing.T) {
	intent := ClassifyIntent("what is a neural network")
	if intent.Type != "explanation" {
		t.Fatalf("expected explanation intent, got %q", intent.Type)
	}
}

func TestClassifyIntentDefaultsToGeneral(t *testing.T) {
	intent := ClassifyIntent("cats and dogs")
	if intent.Type != "general" {
		t.Fatalf("expected general intent, got %q", intent.Type)
	}
}

func TestExtractKeywordsDropsStopwordsAndShortWords(t *testing.T) {
	keywords := ExtractKeywords("the quick search of a database")
	want := map[string]bool{"quick": true, "search": true, "database": true}
	if len(keywords) != len(want) {
		t.Fatalf("expected %d keywords, got %v", len(want), keywords)
	}
	for _, k := range keywords {
		if !want[k] {
			t.Fatalf("unexpected keyword %q in %v", k, keywords)
		}
	}
}

func TestExpandQueryAddsSynonym(t *testing.T) {
	expanded := ExpandQuery("machine learning basics", nil)
	if expanded == "machine learning basics" {
		t.Fatal("expected expansion to append a synonym")
	}
}

func TestGenerateFiltersFromAcademicIntent(t *testing.T) {
	intent := &request.Intent{Type: "academic", Confidence: 0.8}
	filters := GenerateFilters(nil, intent)
	if len(filters) != 1 || filters[0].Field != "document_type" {
		t.Fatalf("expected one document_type filter, got %+v", filters)
	}
}

func TestMockEmbeddingIsDeterministic(t *testing.T) {
	svc := NewMockEmbedding()
	v1, err := svc.Embed(context.Background(), "machine learning search")
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	v2, err := svc.Embed(context.Background(), "machine learning search")
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	if len(v1) != embeddingDimension {
		t.Fatalf("expected %d dims, got %d", embeddingDimension, len(v1))
	}
	for i := range v1 {
		if v1[i] != v2[i] {
			t.Fatalf("expected identical embedding for same text at dim %d", i)
		}
	}
}

func TestProcessorProcessRunsAllStages(t *testing.T) {
	p := New()
	result := p.Process(context.Background(), "what is a transformr neural network")
	if result.Corrected == "" {
		t.Fatal("expected a spelling correction to be applied")
	}
	if result.Intent == nil || result.Intent.Type != "explanation" {
		t.Fatalf("expected explanation intent, got %+v", result.Intent)
	}
	if len(result.Embedding) != embeddingDimension {
		t.Fatalf("expected embedding of dimension %d, got %d", embeddingDimension, len(result.Embedding))
	}
}
