package ioutils

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

var coverNames = []string{"folder.jpg", "cover.jpg", "album.jpg", "folder.png", "cover.png"}

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestFindCover(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  string
	}{
		{"none", []string{"01.mp3", "notes.txt"}, ""},
		{"single", []string{"album.jpg"}, "album.jpg"},
		{"folder.jpg beats cover.png", []string{"cover.png", "folder.jpg"}, "folder.jpg"},
		{"cover.jpg beats album.jpg", []string{"album.jpg", "cover.jpg"}, "cover.jpg"},
		{"jpg beats png", []string{"folder.png", "album.jpg"}, "album.jpg"},
		{"case sensitive", []string{"Folder.jpg", "COVER.JPG"}, ""},
		{"other images ignored", []string{"front.jpg", "cover.jpeg"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			touch(t, dir, tt.files...)

			got := FindCover(dir, coverNames)
			want := ""
			if tt.want != "" {
				want = filepath.Join(dir, tt.want)
			}
			if got != want {
				t.Errorf("FindCover() = %q, want %q", got, want)
			}
		})
	}
}

func TestFindCover_IgnoresDirectories(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "folder.jpg"), 0755); err != nil {
		t.Fatal(err)
	}
	touch(t, dir, "cover.png")

	if got, want := FindCover(dir, coverNames), filepath.Join(dir, "cover.png"); got != want {
		t.Errorf("FindCover() = %q, want %q", got, want)
	}
}

func TestFindCover_MissingDir(t *testing.T) {
	if got := FindCover(filepath.Join(t.TempDir(), "nope"), coverNames); got != "" {
		t.Errorf("FindCover() = %q, want empty", got)
	}
}

func TestListAudio(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "b.flac", "02.mp3", "01.mp3", "a.m4a", "track.MP3", "track.ogg", "cover.jpg", "x.Flac")
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}
	touch(t, filepath.Join(dir, "sub"), "03.mp3")

	got, err := ListAudio(dir, []string{".mp3", ".flac", ".m4a"})
	if err != nil {
		t.Fatalf("ListAudio() error = %v", err)
	}

	want := []string{
		filepath.Join(dir, "01.mp3"),
		filepath.Join(dir, "02.mp3"),
		filepath.Join(dir, "b.flac"),
		filepath.Join(dir, "a.m4a"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ListAudio() = %v, want %v", got, want)
	}
}

func TestListAudio_DuplicateExtensions(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "01.mp3")

	got, err := ListAudio(dir, []string{".mp3", ".mp3"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("ListAudio() = %v, want one entry", got)
	}
}

func TestReadImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cover.png")
	if err := os.WriteFile(path, []byte{1, 2, 3}, 0644); err != nil {
		t.Fatal(err)
	}

	data, err := ReadImage(path)
	if err != nil {
		t.Fatalf("ReadImage() error = %v", err)
	}
	if !reflect.DeepEqual(data, []byte{1, 2, 3}) {
		t.Errorf("ReadImage() = %v", data)
	}

	if _, err := ReadImage(filepath.Join(dir, "missing.jpg")); err == nil {
		t.Error("ReadImage() should fail for a missing file")
	}
}

func TestEnsureDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "c")
	if err := EnsureDir(path); err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		t.Errorf("EnsureDir() did not create %s", path)
	}
	if err := EnsureDir(path); err != nil {
		t.Errorf("EnsureDir() on existing dir error = %v", err)
	}
}
