package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_Relevant(t *testing.T) {
	root := newCrate(t)
	g, _ := newTestGenerator(t, root, func(c *Config) { c.Exclude = []string{"src/gen/**"} })
	w := NewWatcher(g)

	tests := []struct {
		name     string
		event    fsnotify.Event
		expected bool
	}{
		{name: "source write", event: fsnotify.Event{Name: filepath.Join(root, "src", "lib.rs"), Op: fsnotify.Write}, expected: true},
		{name: "source removed", event: fsnotify.Event{Name: filepath.Join(root, "src", "old.rs"), Op: fsnotify.Remove}, expected: true},
		{name: "generated output", event: fsnotify.Event{Name: filepath.Join(root, "src", "lib.expanded.rs"), Op: fsnotify.Write}},
		{name: "other extension", event: fsnotify.Event{Name: filepath.Join(root, "Cargo.toml"), Op: fsnotify.Write}},
		{name: "chmod only", event: fsnotify.Event{Name: filepath.Join(root, "src", "lib.rs"), Op: fsnotify.Chmod}},
		{name: "excluded", event: fsnotify.Event{Name: filepath.Join(root, "src", "gen", "a.rs"), Op: fsnotify.Create}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, w.relevant(tt.event))
		})
	}
}

func TestWatcher_Directories(t *testing.T) {
	root := newCrate(t)
	writeTree(t, root, map[string]string{
		"src/nested/a.rs": "",
		".git/HEAD":       "",
	})
	g, _ := newTestGenerator(t, root, nil)

	dirs, err := NewWatcher(g).directories()
	require.NoError(t, err)
	assert.Equal(t, []string{
		root,
		filepath.Join(root, "src"),
		filepath.Join(root, "src", "nested"),
	}, dirs)
}

func TestWatcher_RegeneratesOnChange(t *testing.T) {
	root := newCrate(t)
	g, _ := newTestGenerator(t, root, nil)

	w := NewWatcher(g)
	w.SetDebounce(20 * time.Millisecond)

	var mu sync.Mutex
	runs := 0
	w.OnRun(func(error) {
		mu.Lock()
		runs++
		mu.Unlock()
	})
	runCount := func() int {
		mu.Lock()
		defer mu.Unlock()
		return runs
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	outPath := filepath.Join(root, "src", "lib.expanded.rs")
	require.Eventually(t, func() bool { return runCount() >= 1 }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, erasedBanner+erasedExpanded, readFile(t, outPath))

	updated := strings.Replace(erasedSource, `"erased"`, `"renamed"`, 1)
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "lib.rs"), []byte(updated), 0644))

	require.Eventually(t, func() bool {
		content, err := os.ReadFile(outPath)
		return err == nil && strings.Contains(string(content), `"renamed"`)
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop after cancellation")
	}
}
