package runlog

import (
	"testing"

	"blockstack.ai/internal/protocol"
)

func TestWriter_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}

	step := protocol.StepMsg{
		Method: "llm", Run: "run1", Domain: "p01",
		Index: 0, Instruction: "move b1 on b2",
	}
	if err := w.WriteStep(step); err != nil {
		t.Fatalf("write step: %v", err)
	}
	result := protocol.ResultMsg{
		Method: "llm", Run: "run1", Domain: "p01",
		Steps: 1, Errors: []string{},
	}
	if err := w.WriteResult(result); err != nil {
		t.Fatalf("write result: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := w.WriteStep(step); err == nil {
		t.Fatalf("write after close should fail")
	}

	files, err := ListFiles(dir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 1 || files[0] != w.Path() {
		t.Fatalf("list: %v want [%s]", files, w.Path())
	}

	var entries []Entry
	if err := ForEach(w.Path(), func(e Entry) error {
		entries = append(entries, e)
		return nil
	}); err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries: got %d want 2", len(entries))
	}
	if entries[0].Step == nil || entries[0].Step.Instruction != "move b1 on b2" {
		t.Fatalf("first entry: %+v", entries[0])
	}
	if entries[1].Result == nil || entries[1].Result.Steps != 1 {
		t.Fatalf("second entry: %+v", entries[1])
	}
	if entries[0].At == "" {
		t.Fatalf("entries should be timestamped")
	}
}

func TestListFiles_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	_ = w.Close()

	files, err := ListFiles(dir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("list: %v", files)
	}
}
