package fixer

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/handiism/artinject/internal/audio"
	"github.com/handiism/artinject/internal/audio/audiotest"
	"github.com/handiism/artinject/internal/config"
	"github.com/handiism/artinject/internal/journal"
)

type eventLog struct {
	events []ProgressEvent
}

func (l *eventLog) add(e ProgressEvent) {
	l.events = append(l.events, e)
}

func (l *eventLog) count(level ProgressLevel) int {
	n := 0
	for _, e := range l.events {
		if e.Level == level {
			n++
		}
	}
	return n
}

func (l *eventLog) contains(substr string) bool {
	for _, e := range l.events {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func newFixer(t *testing.T, opts ...Option) (*Fixer, *eventLog) {
	t.Helper()
	log := &eventLog{}
	return New(config.DefaultSettings(), log.add, opts...), log
}

func hasArt(t *testing.T, path string) bool {
	t.Helper()
	probe := audio.NewInspector().Inspect(path)
	if probe.Skipped() {
		t.Fatalf("Inspect(%s) skipped: %v", path, probe.Err)
	}
	return probe.HasArt
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestProcessFolder_AlbumX(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "AlbumX")
	if err := os.Mkdir(dir, 0755); err != nil {
		t.Fatal(err)
	}
	audiotest.WriteImage(t, dir, "cover.jpg", audiotest.JPEG)
	mp3 := audiotest.WriteMP3(t, dir, "01.mp3", false)
	flac := audiotest.WriteFLAC(t, dir, "02.flac", true)
	flacBefore := readFile(t, flac)

	f, log := newFixer(t)
	if got := f.ProcessFolder(context.Background(), dir); got != 1 {
		t.Fatalf("ProcessFolder() = %d, want 1", got)
	}

	if !hasArt(t, mp3) {
		t.Error("01.mp3 should have art after processing")
	}
	if !bytes.Equal(readFile(t, flac), flacBefore) {
		t.Error("02.flac already had art and must not be modified")
	}
	if !log.contains("FIXED: 'AlbumX' (1 tracks updated)") {
		t.Errorf("missing success line, events: %+v", log.events)
	}
	if log.count(LevelError) != 0 {
		t.Errorf("unexpected error events: %+v", log.events)
	}
}

func TestProcessFolder_AlbumY(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"01.m4a", "02.m4a", "03.m4a"} {
		audiotest.WriteM4A(t, dir, name, false)
	}

	inspector := &countingInspector{Inspector: audio.NewInspector()}
	f, log := newFixer(t, WithInspector(inspector))

	if got := f.ProcessFolder(context.Background(), dir); got != 0 {
		t.Errorf("ProcessFolder() = %d, want 0", got)
	}
	if len(log.events) != 0 {
		t.Errorf("a folder without cover should be silent, events: %+v", log.events)
	}
	if inspector.calls != 0 {
		t.Errorf("audio files were inspected %d times without a cover", inspector.calls)
	}
}

func TestProcessFolder_Idempotent(t *testing.T) {
	dir := t.TempDir()
	audiotest.WriteImage(t, dir, "folder.jpg", audiotest.JPEG)
	audiotest.WriteMP3(t, dir, "01.mp3", false)
	audiotest.WriteMP3(t, dir, "02.mp3", false)
	audiotest.WriteFLAC(t, dir, "03.flac", false)

	f, _ := newFixer(t)
	ctx := context.Background()

	if got := f.ProcessFolder(ctx, dir); got != 3 {
		t.Fatalf("first ProcessFolder() = %d, want 3", got)
	}
	if got := f.ProcessFolder(ctx, dir); got != 0 {
		t.Errorf("second ProcessFolder() = %d, want 0", got)
	}
}

func TestProcessFolder_CoverPriority(t *testing.T) {
	dir := t.TempDir()
	audiotest.WriteImage(t, dir, "cover.png", audiotest.PNG)
	audiotest.WriteImage(t, dir, "folder.jpg", audiotest.JPEG)
	audiotest.WriteMP3(t, dir, "01.mp3", false)

	embedder := &recordingEmbedder{}
	f, _ := newFixer(t, WithEmbedder(embedder))

	if got := f.ProcessFolder(context.Background(), dir); got != 1 {
		t.Fatalf("ProcessFolder() = %d, want 1", got)
	}
	if !bytes.Equal(embedder.images[0], audiotest.JPEG) {
		t.Error("folder.jpg should win over cover.png")
	}
}

func TestProcessFolder_CaseSensitive(t *testing.T) {
	tests := []struct {
		name  string
		cover string
		audio string
		want  int
	}{
		{"upper case extension ignored", "cover.jpg", "track.MP3", 0},
		{"ogg ignored", "cover.jpg", "track.ogg", 0},
		{"upper case cover ignored", "Cover.jpg", "track.mp3", 0},
		{"exact names", "cover.jpg", "track.mp3", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			audiotest.WriteImage(t, dir, tt.cover, audiotest.JPEG)
			audiotest.WriteMP3(t, dir, tt.audio, false)

			f, _ := newFixer(t, WithEmbedder(&recordingEmbedder{}))
			if got := f.ProcessFolder(context.Background(), dir); got != tt.want {
				t.Errorf("ProcessFolder() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestProcessFolder_InjectionFailureContinues(t *testing.T) {
	dir := t.TempDir()
	audiotest.WriteImage(t, dir, "cover.jpg", audiotest.JPEG)
	bad := audiotest.WriteMP3(t, dir, "01.mp3", false)
	audiotest.WriteMP3(t, dir, "02.mp3", false)

	embedder := &recordingEmbedder{fail: map[string]error{bad: errors.New("disk full")}}
	f, log := newFixer(t, WithEmbedder(embedder))

	stats := f.processFolder(context.Background(), dir)
	if stats.Fixed != 1 || stats.Failed != 1 {
		t.Errorf("processFolder() = %+v, want 1 fixed and 1 failed", stats)
	}
	if !log.contains("Error injecting into 01.mp3: disk full") {
		t.Errorf("missing failure line, events: %+v", log.events)
	}
}

func TestProcessFolder_SkipsUnreadableAudio(t *testing.T) {
	dir := t.TempDir()
	audiotest.WriteImage(t, dir, "cover.jpg", audiotest.JPEG)
	if err := os.WriteFile(filepath.Join(dir, "broken.mp3"), []byte("OggS not really an mp3"), 0644); err != nil {
		t.Fatal(err)
	}
	mp3 := audiotest.WriteMP3(t, dir, "ok.mp3", false)

	f, log := newFixer(t)
	stats := f.processFolder(context.Background(), dir)

	if stats.Fixed != 1 || stats.Skipped != 1 {
		t.Errorf("processFolder() = %+v, want 1 fixed and 1 skipped", stats)
	}
	if !hasArt(t, mp3) {
		t.Error("ok.mp3 should have art")
	}
	if log.count(LevelError) != 0 {
		t.Errorf("a skipped file is not an error, events: %+v", log.events)
	}
}

func TestProcessFolder_DryRun(t *testing.T) {
	dir := t.TempDir()
	audiotest.WriteImage(t, dir, "cover.jpg", audiotest.JPEG)
	mp3 := audiotest.WriteMP3(t, dir, "01.mp3", false)
	before := readFile(t, mp3)

	settings := config.DefaultSettings()
	settings.DryRun = true
	log := &eventLog{}
	f := New(settings, log.add)

	if got := f.ProcessFolder(context.Background(), dir); got != 1 {
		t.Errorf("ProcessFolder() = %d, want 1", got)
	}
	if !bytes.Equal(readFile(t, mp3), before) {
		t.Error("dry run must not modify files")
	}
	if !log.contains("WOULD FIX") {
		t.Errorf("missing dry run line, events: %+v", log.events)
	}
}

func TestProcessFolder_RecordsJournal(t *testing.T) {
	dir := t.TempDir()
	cover := audiotest.WriteImage(t, dir, "album.jpg", audiotest.JPEG)
	mp3 := audiotest.WriteMP3(t, dir, "01.mp3", false)

	store := &memoryStore{}
	f, _ := newFixer(t, WithJournal(store), WithEmbedder(&recordingEmbedder{}))
	f.ProcessFolder(context.Background(), dir)

	if len(store.entries) != 1 {
		t.Fatalf("journal has %d entries, want 1", len(store.entries))
	}
	got := store.entries[0]
	if got.Path != mp3 || got.Cover != cover || got.Format != audio.FormatID3.String() {
		t.Errorf("journal entry = %+v", got)
	}
}

func TestProcessFolder_JournalFailureIsWarning(t *testing.T) {
	dir := t.TempDir()
	audiotest.WriteImage(t, dir, "cover.jpg", audiotest.JPEG)
	audiotest.WriteMP3(t, dir, "01.mp3", false)

	store := &memoryStore{err: errors.New("read-only database")}
	f, log := newFixer(t, WithJournal(store), WithEmbedder(&recordingEmbedder{}))

	if got := f.ProcessFolder(context.Background(), dir); got != 1 {
		t.Errorf("ProcessFolder() = %d, want 1", got)
	}
	if log.count(LevelWarning) != 1 {
		t.Errorf("want one warning, events: %+v", log.events)
	}
}

func TestRun(t *testing.T) {
	root := t.TempDir()

	albumX := filepath.Join(root, "Artist", "AlbumX")
	albumY := filepath.Join(root, "Artist", "AlbumY")
	for _, dir := range []string{albumX, albumY} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
	}

	audiotest.WriteImage(t, root, "folder.jpg", audiotest.JPEG)
	audiotest.WriteMP3(t, root, "single.mp3", false)

	audiotest.WriteImage(t, albumX, "cover.jpg", audiotest.JPEG)
	audiotest.WriteMP3(t, albumX, "01.mp3", false)
	audiotest.WriteFLAC(t, albumX, "02.flac", true)

	audiotest.WriteM4A(t, albumY, "01.m4a", false)

	f, log := newFixer(t)
	stats, err := f.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if stats.Fixed != 2 {
		t.Errorf("Fixed = %d, want 2", stats.Fixed)
	}
	if stats.Folders != 4 {
		t.Errorf("Folders = %d, want 4", stats.Folders)
	}
	if !log.contains("Task Complete. Total tracks fixed: 2") {
		t.Errorf("missing summary, events: %+v", log.events)
	}
	if log.count(LevelSuccess) != 2 {
		t.Errorf("want 2 success lines, events: %+v", log.events)
	}

	visited, _, fixed := f.GetProgress()
	if visited != 4 || fixed != 2 {
		t.Errorf("GetProgress() = %d visited, %d fixed", visited, fixed)
	}

	again, err := f.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if again.Fixed != 0 {
		t.Errorf("second Run() fixed %d, want 0", again.Fixed)
	}
}

func TestRun_BadRoot(t *testing.T) {
	dir := t.TempDir()
	file := audiotest.WriteImage(t, dir, "cover.jpg", audiotest.JPEG)

	tests := []struct {
		name string
		root string
		want error
	}{
		{"missing", filepath.Join(dir, "nope"), ErrRootNotFound},
		{"file", file, ErrRootNotDirectory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, log := newFixer(t)
			_, err := f.Run(context.Background(), tt.root)
			if !errors.Is(err, tt.want) {
				t.Errorf("Run() error = %v, want %v", err, tt.want)
			}
			if !errors.Is(err, ErrFixer) {
				t.Errorf("Run() error = %v, want wrapped ErrFixer", err)
			}
			if len(log.events) != 0 {
				t.Errorf("no events expected before startup succeeds: %+v", log.events)
			}
		})
	}
}

func TestRun_Cancelled(t *testing.T) {
	root := t.TempDir()
	audiotest.WriteImage(t, root, "cover.jpg", audiotest.JPEG)
	mp3 := audiotest.WriteMP3(t, root, "01.mp3", false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f, _ := newFixer(t)
	_, err := f.Run(ctx, root)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if hasArt(t, mp3) {
		t.Error("a cancelled run must not touch files")
	}
}

func TestRun_SymlinkedRoot(t *testing.T) {
	base := t.TempDir()
	library := filepath.Join(base, "real")
	if err := os.MkdirAll(filepath.Join(library, "Disc 2"), 0755); err != nil {
		t.Fatal(err)
	}
	audiotest.WriteImage(t, library, "cover.jpg", audiotest.JPEG)
	mp3 := audiotest.WriteMP3(t, library, "01.mp3", false)

	music := filepath.Join(base, "music")
	if err := os.Symlink(library, music); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	f, _ := newFixer(t)

	count, err := f.CountFolders(context.Background(), music)
	if err != nil {
		t.Fatalf("CountFolders() error = %v", err)
	}
	if count != 2 {
		t.Errorf("CountFolders() = %d, want 2", count)
	}

	stats, err := f.Run(context.Background(), music)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats.Fixed != 1 || stats.Folders != 2 {
		t.Errorf("Run() = %+v, want 1 fixed in 2 folders", stats)
	}
	if !hasArt(t, mp3) {
		t.Error("01.mp3 behind the symlinked root should have art")
	}
}

func TestCountFolders(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"a/b", "a/c", "d"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0755); err != nil {
			t.Fatal(err)
		}
	}
	audiotest.WriteImage(t, root, "cover.jpg", audiotest.JPEG)

	f, _ := newFixer(t)
	got, err := f.CountFolders(context.Background(), root)
	if err != nil {
		t.Fatalf("CountFolders() error = %v", err)
	}
	if got != 5 {
		t.Errorf("CountFolders() = %d, want 5", got)
	}
	if _, total, _ := f.GetProgress(); total != 5 {
		t.Errorf("GetProgress() total = %d, want 5", total)
	}
}

type countingInspector struct {
	Inspector
	calls int
}

func (c *countingInspector) Inspect(path string) audio.Probe {
	c.calls++
	return c.Inspector.Inspect(path)
}

type recordingEmbedder struct {
	fail   map[string]error
	paths  []string
	images [][]byte
}

func (r *recordingEmbedder) EmbedCover(path string, _ audio.Format, image []byte) error {
	if err := r.fail[path]; err != nil {
		return err
	}
	r.paths = append(r.paths, path)
	r.images = append(r.images, image)
	return nil
}

type memoryStore struct {
	journal.Nop
	entries []journal.Entry
	err     error
}

func (m *memoryStore) Record(_ context.Context, e journal.Entry) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, e)
	return nil
}
