package confloader

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func newTestWatcher(t *testing.T, opts ...WatcherOption) *Watcher {
	t.Helper()
	w, err := NewWatcher(opts...)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	t.Cleanup(func() { _ = w.Stop() })
	return w
}

func TestWatcher_Watch_NonexistentDir(t *testing.T) {
	w := newTestWatcher(t)
	if err := w.Watch("/nonexistent/dir/tracklog.yaml"); err == nil {
		t.Fatal("Watch should fail for a missing directory")
	}
}

func TestWatcher_FileChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tracklog.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: info\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	w := newTestWatcher(t, WithDebounce(20*time.Millisecond))
	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	changed := make(chan string, 10)
	w.OnChange(func(p string) { changed <- p })
	w.StartAsync()

	if err := os.WriteFile(path, []byte("log:\n  level: debug\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	select {
	case got := <-changed:
		if got != path {
			t.Errorf("callback path = %q, want %q", got, path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("callback not triggered")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tracklog.yaml")
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	w := newTestWatcher(t, WithDebounce(0))
	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	var calls atomic.Int32
	w.OnChange(func(string) { calls.Add(1) })
	w.StartAsync()

	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	time.Sleep(200 * time.Millisecond)
	if n := calls.Load(); n != 0 {
		t.Fatalf("callback ran %d times for an unwatched file", n)
	}
}

func TestWatcher_Debounce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tracklog.yaml")
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	w := newTestWatcher(t, WithDebounce(300*time.Millisecond))
	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	var calls atomic.Int32
	w.OnChange(func(string) { calls.Add(1) })
	w.StartAsync()

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	time.Sleep(400 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Fatalf("callback ran %d times, want 1", n)
	}
}

func TestWatcher_StopTwice(t *testing.T) {
	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	w.StartAsync()
	if err := w.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}
