package watch

/*
 Copyright 2019 - 2025 Crunchy Data Solutions, Inc.
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at
      http://www.apache.org/licenses/LICENSE-2.0
 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

type countingReloader struct {
	calls atomic.Int32
}

func (r *countingReloader) Reload() error {
	r.calls.Add(1)
	return nil
}

func TestRunCoalescesBurstOfWritesIntoOneReload(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "region.map")
	if err := os.WriteFile(file, []byte("initial"), 0o644); err != nil {
		t.Fatal(err)
	}

	reloader := &countingReloader{}
	w, err := New(reloader, []string{dir})
	if err != nil {
		t.Fatal(err)
	}
	w.debounce = 50 * time.Millisecond
	go w.Run()
	defer w.Close()

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(file, []byte("change"), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(200 * time.Millisecond)

	if got := reloader.calls.Load(); got != 1 {
		t.Fatalf("Reload called %d times, want exactly 1 for a coalesced burst", got)
	}
}

func TestRunIgnoresQuiescentPeriodsWithNoEvents(t *testing.T) {
	dir := t.TempDir()
	reloader := &countingReloader{}
	w, err := New(reloader, []string{dir})
	if err != nil {
		t.Fatal(err)
	}
	w.debounce = 20 * time.Millisecond
	go w.Run()
	defer w.Close()

	time.Sleep(100 * time.Millisecond)

	if got := reloader.calls.Load(); got != 0 {
		t.Fatalf("Reload called %d times with no filesystem activity, want 0", got)
	}
}

func TestCloseStopsTheRunLoop(t *testing.T) {
	dir := t.TempDir()
	reloader := &countingReloader{}
	w, err := New(reloader, []string{dir})
	if err != nil {
		t.Fatal(err)
	}
	done := make(chan struct{})
	go func() {
		w.Run()
		close(done)
	}()

	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Close")
	}
}
