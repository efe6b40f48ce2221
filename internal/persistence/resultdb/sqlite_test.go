package resultdb

import (
	"path/filepath"
	"testing"

	"blockstack.ai/internal/protocol"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestWriteResult_AndSuccessRates(t *testing.T) {
	db := openTestDB(t)

	results := []protocol.ResultMsg{
		{Method: "llm", Run: "run1", Domain: "p01", Steps: 3, Errors: []string{}},
		{Method: "llm", Run: "run1", Domain: "p02", Steps: 1, Errors: []string{"Evaluator: b1 is not on top of b2"}},
		{Method: "ChunksGPT4", Run: "run1", Domain: "p01", Steps: 3, Errors: []string{}},
		{Method: "ChunksGPT4", Run: "run2", Domain: "p01", Steps: 3, Errors: []string{}},
	}
	for _, r := range results {
		if err := db.WriteResult(r); err != nil {
			t.Fatalf("write %s/%s/%s: %v", r.Method, r.Run, r.Domain, err)
		}
	}

	rates, err := db.SuccessRates()
	if err != nil {
		t.Fatalf("rates: %v", err)
	}
	if rates["llm"] != 0.5 {
		t.Fatalf("llm rate: got %v want 0.5", rates["llm"])
	}
	if rates["ChunksGPT4"] != 1.0 {
		t.Fatalf("ChunksGPT4 rate: got %v want 1.0", rates["ChunksGPT4"])
	}

	msgs, err := db.Errors("llm", "run1", "p02")
	if err != nil {
		t.Fatalf("errors: %v", err)
	}
	if len(msgs) != 1 || msgs[0] != "Evaluator: b1 is not on top of b2" {
		t.Fatalf("errors: %v", msgs)
	}
}

func TestWriteResult_ReplacesPreviousRecord(t *testing.T) {
	db := openTestDB(t)

	first := protocol.ResultMsg{
		Method: "llm", Run: "run1", Domain: "p01",
		Steps: 0, Errors: []string{"Evaluator: 'b1' is not clear: 'b2' is positioned on top of it!"},
	}
	if err := db.WriteResult(first); err != nil {
		t.Fatalf("write first: %v", err)
	}
	second := protocol.ResultMsg{Method: "llm", Run: "run1", Domain: "p01", Steps: 2, Errors: []string{}}
	if err := db.WriteResult(second); err != nil {
		t.Fatalf("write second: %v", err)
	}

	rates, err := db.SuccessRates()
	if err != nil {
		t.Fatalf("rates: %v", err)
	}
	if rates["llm"] != 1.0 {
		t.Fatalf("replacement not applied: %v", rates)
	}
	msgs, err := db.Errors("llm", "run1", "p01")
	if err != nil {
		t.Fatalf("errors: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("stale errors kept after replace: %v", msgs)
	}
}
