// Package runlog persists the step-by-step history of an evaluation as
// zstd-compressed JSONL, one file per evaluation invocation. The log is the
// durable record; the SQLite index is derived and rebuildable from it.
package runlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"blockstack.ai/internal/protocol"
)

// Entry is one line of the log. Exactly one of Step or Result is set.
type Entry struct {
	At     string              `json:"at"`
	Step   *protocol.StepMsg   `json:"step,omitempty"`
	Result *protocol.ResultMsg `json:"result,omitempty"`
}

type Writer struct {
	path string

	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

// NewWriter opens a fresh runs-<timestamp>.jsonl.zst under dir.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, fmt.Sprintf("runs-%s.jsonl.zst", time.Now().UTC().Format("2006-01-02-150405")))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &Writer{
		path: path,
		f:    f,
		enc:  enc,
		w:    bufio.NewWriterSize(enc, 128*1024),
	}, nil
}

func (w *Writer) Path() string { return w.path }

func (w *Writer) WriteStep(s protocol.StepMsg) error {
	return w.write(Entry{At: now(), Step: &s})
}

func (w *Writer) WriteResult(r protocol.ResultMsg) error {
	return w.write(Entry{At: now(), Result: &r})
}

func (w *Writer) write(e Entry) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.w == nil {
		return fmt.Errorf("runlog: writer closed")
	}
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	var err error
	if w.w != nil {
		_ = w.w.Flush()
		w.w = nil
	}
	if w.enc != nil {
		err = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	return err
}

func now() string { return time.Now().UTC().Format(time.RFC3339) }

// ForEach streams every entry of one log file in order.
func ForEach(path string, fn func(Entry) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return fmt.Errorf("runlog: %s line %d: %w", path, line, err)
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return sc.Err()
}

// ListFiles returns the run logs under dir, oldest first.
func ListFiles(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if len(name) > 10 && name[:5] == "runs-" && filepath.Ext(name) == ".zst" {
			out = append(out, filepath.Join(dir, name))
		}
	}
	return out, nil
}
