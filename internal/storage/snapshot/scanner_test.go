package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0644); err != nil {
		t.Fatalf("WriteFile(%s): %v", name, err)
	}
}

func TestNewestFile_Empty(t *testing.T) {
	_, ok, err := NewestFile(t.TempDir())
	if err != nil {
		t.Fatalf("NewestFile: %v", err)
	}
	if ok {
		t.Fatal("NewestFile on empty dir should report no file")
	}
}

func TestNewestFile_PicksLargestTimestamp(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"100.json", "9.json", "1500.json", "20.json"} {
		touch(t, dir, name)
	}

	got, ok, err := NewestFile(dir)
	if err != nil {
		t.Fatalf("NewestFile: %v", err)
	}
	if !ok {
		t.Fatal("NewestFile found nothing")
	}
	want := FileRef{Timestamp: 1500, Path: filepath.Join(dir, "1500.json")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("NewestFile mismatch (-want +got):\n%s", diff)
	}
}

func TestNewestFile_IgnoresNonNumericNames(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"README.md",
		"notes",
		".hidden",
		"-5.json",
		"99999999999999999999999.json", // overflows uint64
		"tmp-12345.json",
		"12a.json",
		"7.json",
	} {
		touch(t, dir, name)
	}

	got, ok, err := NewestFile(dir)
	if err != nil {
		t.Fatalf("NewestFile: %v", err)
	}
	if !ok || got.Timestamp != 7 {
		t.Fatalf("NewestFile = %+v, %v; want timestamp 7", got, ok)
	}
}

func TestNewestFile_OnlyNonNumeric(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "config.yaml")
	touch(t, dir, "abc.json")

	_, ok, err := NewestFile(dir)
	if err != nil {
		t.Fatalf("NewestFile: %v", err)
	}
	if ok {
		t.Fatal("non-numeric files must not be selected")
	}
}

func TestNewestFile_StemBeforeFirstDot(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "300.json.bak")
	touch(t, dir, "200.json")

	got, _, err := NewestFile(dir)
	if err != nil {
		t.Fatalf("NewestFile: %v", err)
	}
	if got.Timestamp != 300 {
		t.Fatalf("Timestamp = %d, want 300", got.Timestamp)
	}
}

func TestNewestFile_MissingDir(t *testing.T) {
	_, _, err := NewestFile(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, ErrIO) {
		t.Fatalf("NewestFile err = %v, want ErrIO", err)
	}
}

func TestNewestFile_InvalidNameAbortsScan(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("needs a filesystem that accepts non-UTF-8 names")
	}

	dir := t.TempDir()
	touch(t, dir, "10.json")
	touch(t, dir, "\xff\xfe.json")

	_, _, err := NewestFile(dir)
	if !errors.Is(err, ErrFilenameDecode) {
		t.Fatalf("NewestFile err = %v, want ErrFilenameDecode", err)
	}
}

func TestListFiles_Sorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"30.json", "x.json", "10.json", "20.json"} {
		touch(t, dir, name)
	}

	refs, err := ListFiles(dir)
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}

	var got []uint64
	for _, r := range refs {
		got = append(got, r.Timestamp)
	}
	if diff := cmp.Diff([]uint64{10, 20, 30}, got); diff != "" {
		t.Fatalf("ListFiles mismatch (-want +got):\n%s", diff)
	}
}

func TestFilePath(t *testing.T) {
	if got, want := FilePath("/data/loc", 1500), filepath.Join("/data/loc", "1500.json"); got != want {
		t.Fatalf("FilePath = %q, want %q", got, want)
	}
}
