package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/handiism/artinject/internal/logging"
)

func startWatcher(t *testing.T, root string) <-chan string {
	t.Helper()

	dirs := make(chan string, 16)
	w, err := New(root, 50*time.Millisecond, func(_ context.Context, dir string) {
		dirs <- dir
	}, logging.Discard())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		<-done
		w.Close()
	})

	return dirs
}

func waitFor(t *testing.T, dirs <-chan string, want string) {
	t.Helper()

	timeout := time.After(5 * time.Second)
	for {
		select {
		case dir := <-dirs:
			if dir == want {
				return
			}
		case <-timeout:
			t.Fatalf("handler was not called for %s", want)
		}
	}
}

func TestWatcher_FileInExistingSubdirectory(t *testing.T) {
	root := t.TempDir()
	album := filepath.Join(root, "Artist", "Album")
	if err := os.MkdirAll(album, 0755); err != nil {
		t.Fatal(err)
	}

	dirs := startWatcher(t, root)

	if err := os.WriteFile(filepath.Join(album, "cover.jpg"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	waitFor(t, dirs, album)
}

func TestWatcher_NewDirectory(t *testing.T) {
	root := t.TempDir()
	dirs := startWatcher(t, root)

	album := filepath.Join(root, "New Album")
	if err := os.Mkdir(album, 0755); err != nil {
		t.Fatal(err)
	}

	waitFor(t, dirs, album)

	// The new directory is watched from now on.
	if err := os.WriteFile(filepath.Join(album, "01.mp3"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	waitFor(t, dirs, album)
}

func TestNew_MissingRoot(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope"), time.Second, func(context.Context, string) {}, logging.Discard())
	if err == nil {
		t.Error("New() should fail for a missing root")
	}
}
