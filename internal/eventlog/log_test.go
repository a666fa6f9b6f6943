package eventlog

import (
	"path/filepath"
	"testing"
)

func TestWriteThenLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "events.log")

	w, err := OpenWriter(path)
	if err != nil {
		t.Fatalf("open writer: %v", err)
	}

	events := []MarketDataEvent{sampleEvent(), sampleEvent()}
	events[1].Sequence = 8

	for _, e := range events {
		if err := w.Append(e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 events, got %d", len(loaded))
	}
	if loaded[0].Sequence != 7 || loaded[1].Sequence != 8 {
		t.Errorf("sequence numbers not preserved: %d, %d", loaded[0].Sequence, loaded[1].Sequence)
	}
}

func TestLoadEmptyLogFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.log")

	w, err := OpenWriter(path)
	if err != nil {
		t.Fatalf("open writer: %v", err)
	}
	w.Close()

	if _, err := Load(path); err == nil {
		t.Fatal("expected error loading an empty log")
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load("/nonexistent/path/to/events.log"); err == nil {
		t.Fatal("expected error loading a missing file")
	}
}
