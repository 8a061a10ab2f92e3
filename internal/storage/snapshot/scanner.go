package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// FileExtension is appended to every snapshot file written by the store.
const FileExtension = ".json"

// FileRef identifies a snapshot file by the timestamp encoded in its name.
type FileRef struct {
	Timestamp uint64 `json:"timestamp"`
	Path      string `json:"path"`
}

// NewestFile returns the snapshot file in dir with the largest timestamp.
//
// Entries whose stem (the part before the first '.') is not an unsigned
// integer are skipped. An entry whose name is not valid text fails the
// whole scan.
func NewestFile(dir string) (FileRef, bool, error) {
	var (
		newest FileRef
		found  bool
	)

	err := scan(dir, func(ref FileRef) {
		if !found || ref.Timestamp > newest.Timestamp {
			newest = ref
			found = true
		}
	})
	if err != nil {
		return FileRef{}, false, err
	}
	return newest, found, nil
}

// ListFiles returns every snapshot file in dir, oldest first.
func ListFiles(dir string) ([]FileRef, error) {
	var refs []FileRef
	if err := scan(dir, func(ref FileRef) {
		refs = append(refs, ref)
	}); err != nil {
		return nil, err
	}

	sort.SliceStable(refs, func(i, j int) bool {
		return refs[i].Timestamp < refs[j].Timestamp
	})
	return refs, nil
}

// FilePath returns the path of the snapshot file for timestamp ts in dir.
func FilePath(dir string, ts uint64) string {
	return filepath.Join(dir, strconv.FormatUint(ts, 10)+FileExtension)
}

func scan(dir string, visit func(FileRef)) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return newError(KindIO, "scan", dir, err)
	}

	for _, e := range entries {
		name := e.Name()
		if !utf8.ValidString(name) {
			return newError(KindFilenameDecode, "scan", dir, fmt.Errorf("entry name %q", name))
		}

		stem, _, _ := strings.Cut(name, ".")
		ts, err := strconv.ParseUint(stem, 10, 64)
		if err != nil {
			continue
		}

		visit(FileRef{Timestamp: ts, Path: filepath.Join(dir, name)})
	}
	return nil
}
