package id

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestGenerate(t *testing.T) {
	gen := NewGenerator()

	id1 := gen.Generate()
	id2 := gen.Generate()

	if id1.String() == id2.String() {
		t.Error("Generated IDs should be unique")
	}
}

func TestGenerateString(t *testing.T) {
	gen := NewGenerator()

	id := gen.GenerateString()

	if len(id) != 26 {
		t.Errorf("ULID should be 26 characters, got %d", len(id))
	}
}

func TestGenerateWithPrefix(t *testing.T) {
	gen := NewGenerator()

	id := gen.GenerateWithPrefix(RunPrefix)

	prefix, raw, ok := strings.Cut(id, "_")
	if !ok || prefix != RunPrefix {
		t.Fatalf("Prefixed ID should have format 'run_ulid', got: %s", id)
	}
	if !IsValid(raw) {
		t.Errorf("ULID part should be valid: %s", raw)
	}
}

func TestDeterministicEntropy(t *testing.T) {
	seed := bytes.Repeat([]byte{7}, 64)
	a := NewGeneratorWithEntropy(bytes.NewReader(seed)).Generate()
	b := NewGeneratorWithEntropy(bytes.NewReader(seed)).Generate()

	if !bytes.Equal(a.Entropy(), b.Entropy()) {
		t.Error("Same entropy source should produce the same random component")
	}
}

func TestRunID(t *testing.T) {
	before := time.Now().Add(-time.Second)
	run := NewRunID()

	if !strings.HasPrefix(run.String(), RunPrefix+"_") {
		t.Errorf("RunID should carry the run prefix, got: %s", run)
	}

	tag := run.Tag("rtpipe")
	if tag != "{rtpipe:"+run.String()+"}" {
		t.Errorf("Unexpected tag: %s", tag)
	}

	if started := run.Time(); started.Before(before) {
		t.Errorf("RunID time %v should not precede %v", started, before)
	}
}

func TestRunIDTimeMalformed(t *testing.T) {
	if !RunID("garbage").Time().IsZero() {
		t.Error("Malformed RunID should yield zero time")
	}
	if !RunID("run_garbage").Time().IsZero() {
		t.Error("Malformed ULID part should yield zero time")
	}
}

func TestConcurrentGeneration(t *testing.T) {
	gen := NewGenerator()

	const workers = 8
	const perWorker = 100

	var mu sync.Mutex
	seen := make(map[string]bool, workers*perWorker)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id := gen.GenerateString()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != workers*perWorker {
		t.Errorf("Expected %d unique IDs, got %d", workers*perWorker, len(seen))
	}
}

func TestNewRequestID(t *testing.T) {
	id := NewRequestID()

	if !strings.HasPrefix(string(id), RequestPrefix+"_") {
		t.Errorf("Request ID should start with %q, got: %s", RequestPrefix, id)
	}
	if id == NewRequestID() {
		t.Error("Request IDs should be unique")
	}
}
