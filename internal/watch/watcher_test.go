// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

type changeRecorder struct {
	mu      sync.Mutex
	batches [][]string
	notify  chan struct{}
}

func newChangeRecorder() *changeRecorder {
	return &changeRecorder{notify: make(chan struct{}, 16)}
}

func (r *changeRecorder) onChange(_ context.Context, changed []string) error {
	r.mu.Lock()
	r.batches = append(r.batches, changed)
	r.mu.Unlock()
	r.notify <- struct{}{}
	return nil
}

func (r *changeRecorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.notify:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change notification")
	}
}

func (r *changeRecorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, b := range r.batches {
		out = append(out, b...)
	}
	return out
}

func (r *changeRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.batches)
}

// startWatcher runs w until the test ends and fails the test if Run errors.
func startWatcher(t *testing.T, w *Watcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-errCh; err != nil {
			t.Errorf("Run() error = %v", err)
		}
	})
}

func write(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("module.exports = {};"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWatcher_CoalescesChanges(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rec := newChangeRecorder()
	w, err := New(Config{Root: dir, Debounce: 150 * time.Millisecond, OnChange: rec.onChange})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	startWatcher(t, w)

	for _, name := range []string{"mikro-orm.config.js", "db.js", "entities.js"} {
		write(t, filepath.Join(dir, name))
		time.Sleep(10 * time.Millisecond)
	}
	rec.wait(t)
	time.Sleep(300 * time.Millisecond)

	if n := rec.count(); n != 1 {
		t.Errorf("got %d batches, want 1", n)
	}
	got := rec.all()
	for _, want := range []string{"db.js", "entities.js", "mikro-orm.config.js"} {
		if !slices.Contains(got, want) {
			t.Errorf("changed = %v, missing %q", got, want)
		}
	}
	if !slices.IsSorted(got) {
		t.Errorf("changed = %v, want sorted", got)
	}
}

func TestWatcher_PatternsAndIgnores(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "node_modules", "pkg"), 0o755); err != nil {
		t.Fatal(err)
	}
	rec := newChangeRecorder()
	w, err := New(Config{
		Root:     dir,
		Patterns: PatternsFor(".ts", ".js"),
		Ignore:   []string{"**/*.gen.ts"},
		Debounce: 50 * time.Millisecond,
		OnChange: rec.onChange,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	startWatcher(t, w)

	write(t, filepath.Join(dir, "README.md"))
	write(t, filepath.Join(dir, "schema.gen.ts"))
	write(t, filepath.Join(dir, "node_modules", "pkg", "index.js"))
	time.Sleep(50 * time.Millisecond)
	write(t, filepath.Join(dir, "mikro-orm.config.ts"))
	rec.wait(t)

	if got := rec.all(); !slices.Equal(got, []string{"mikro-orm.config.ts"}) {
		t.Errorf("changed = %v, want only mikro-orm.config.ts", got)
	}
}

func TestWatcher_NewDirectories(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rec := newChangeRecorder()
	w, err := New(Config{
		Root:     dir,
		Patterns: PatternsFor(".ts"),
		Debounce: 50 * time.Millisecond,
		OnChange: rec.onChange,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	startWatcher(t, w)

	if err := os.Mkdir(filepath.Join(dir, "src"), 0o755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)
	write(t, filepath.Join(dir, "src", "mikro-orm.config.ts"))

	deadline := time.After(5 * time.Second)
	for !slices.Contains(rec.all(), "src/mikro-orm.config.ts") {
		select {
		case <-rec.notify:
		case <-deadline:
			t.Fatalf("changed = %v, want src/mikro-orm.config.ts", rec.all())
		}
	}
}

func TestWatcher_RunOnce(t *testing.T) {
	t.Parallel()

	w, err := New(Config{Root: t.TempDir()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	startWatcher(t, w)
	time.Sleep(20 * time.Millisecond)

	if err := w.Run(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run() error = %v, want ErrAlreadyRunning", err)
	}
}

func TestNew_InvalidPatterns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  Config
	}{
		{"watch pattern", Config{Patterns: []string{"src/[.ts"}}},
		{"ignore pattern", Config{Ignore: []string{"{a,b"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tt.cfg.Root = t.TempDir()
			if _, err := New(tt.cfg); !errors.Is(err, doublestar.ErrBadPattern) {
				t.Errorf("New() error = %v, want ErrBadPattern", err)
			}
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, err := New(Config{Root: dir})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = w.fsw.Close() })

	if w.debounce != DefaultDebounce {
		t.Errorf("debounce = %v, want %v", w.debounce, DefaultDebounce)
	}
	if w.Root() != dir {
		t.Errorf("Root() = %q, want %q", w.Root(), dir)
	}
}

func TestDefaultIgnores(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rel  string
		want bool
	}{
		{".git/HEAD", true},
		{"node_modules/esbuild/bin/esbuild", true},
		{"packages/api/node_modules/x/index.js", true},
		{"src/.mikro-orm.config.ts.swp", true},
		{"mikro-orm.config.ts~", true},
		{".DS_Store", true},
		{"mikro-orm.config.ts", false},
		{"dist/mikro-orm.config.js", false},
	}

	ignores := DefaultIgnores()
	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			t.Parallel()

			if got := matchAny(ignores, tt.rel); got != tt.want {
				t.Errorf("ignored(%q) = %v, want %v", tt.rel, got, tt.want)
			}
		})
	}

	ignores[0] = "changed"
	if DefaultIgnores()[0] == "changed" {
		t.Error("DefaultIgnores() should return a copy")
	}
}

func TestPatternsFor(t *testing.T) {
	t.Parallel()

	got := PatternsFor(".ts", ".mjs")
	if want := []string{"**/*.ts", "**/*.mjs"}; !slices.Equal(got, want) {
		t.Errorf("PatternsFor() = %v, want %v", got, want)
	}
	if ok, _ := doublestar.Match(got[0], "src/db/mikro-orm.config.ts"); !ok {
		t.Error("pattern should match nested modules")
	}
}
