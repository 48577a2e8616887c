package extract_test

import (
	"testing"

	"review_scraper/internal/extract"
)

func TestParseJSONLD_WrappedArrayRecovery(t *testing.T) {
	nodes, err := extract.ParseJSONLD(`{"a":1},{"b":2}`)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("want 2 objects, got %d", len(nodes))
	}
	if !nodes[0].Has("a") || !nodes[1].Has("b") {
		t.Fatalf("unexpected objects: %+v", nodes)
	}
}

func TestParseJSONLD_SingleDocument(t *testing.T) {
	nodes, err := extract.ParseJSONLD(`[{"a":1},{"b":2}]`)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	// A well-formed array is one candidate; the flattener walks into it.
	if len(nodes) != 1 || nodes[0].Kind != extract.Array {
		t.Fatalf("got %+v", nodes)
	}
}

func TestParseJSONLD_Garbage(t *testing.T) {
	if _, err := extract.ParseJSONLD(`{"a":`); err == nil {
		t.Fatal("expected error")
	}
	nodes, err := extract.ParseJSONLD(``)
	if err != nil || len(nodes) != 0 {
		t.Fatalf("empty script: %v %v", nodes, err)
	}
}

func TestLocateCandidates_WholeScript(t *testing.T) {
	text := `
	  {"review":[{"reviewBody":"a","reviewRating":{"ratingValue":4}}]}
	`
	nodes, skips := extract.LocateCandidates(text)
	if len(nodes) != 1 || !nodes[0].Has("review") {
		t.Fatalf("want the whole document, got %+v", nodes)
	}
	// The lazy fragment stops at the first closing brace and does not parse.
	if len(skips) != 1 || skips[0].Stage != extract.StageScript {
		t.Fatalf("skips: %+v", skips)
	}
}

func TestLocateCandidates_Fragments(t *testing.T) {
	text := `window.state = {"id": 7, "Review": "short"};
	init({"rating": 5,
	      "review": "multi line"});`
	nodes, skips := extract.LocateCandidates(text)
	if len(skips) != 0 {
		t.Fatalf("unexpected skips: %+v", skips)
	}
	if len(nodes) != 2 {
		t.Fatalf("want 2 fragments, got %d: %+v", len(nodes), nodes)
	}
	if !nodes[0].Has("Review") || !nodes[1].Has("rating") {
		t.Fatalf("fragments out of order: %+v", nodes)
	}
}

func TestLocateCandidates_NothingUsable(t *testing.T) {
	nodes, _ := extract.LocateCandidates(`console.log("no json here about reviews")`)
	if len(nodes) != 0 {
		t.Fatalf("got %+v", nodes)
	}
}
