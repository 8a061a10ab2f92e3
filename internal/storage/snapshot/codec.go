package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// EntityMap maps an entity id to its most recent payload.
type EntityMap[P any] map[string]P

// BatchLog maps a batch timestamp (decimal milliseconds) to the full entity
// view recorded at that instant. It is the content of one snapshot file.
type BatchLog[P any] map[string]EntityMap[P]

// WriteMode selects how a snapshot file is replaced on disk.
type WriteMode string

const (
	// WriteAtomic writes a temp file in the same directory, syncs it and
	// renames it over the target.
	WriteAtomic WriteMode = "atomic"

	// WriteTruncate truncates the target and rewrites it in place. A crash
	// mid-write leaves a truncated file that later fails to decode.
	WriteTruncate WriteMode = "truncate"
)

// tempPattern never yields a numeric stem, so the scanner ignores temp files.
const tempPattern = "tmp-*" + FileExtension

// Encode serializes a batch log. Strings are written without HTML escaping
// so batches carried over from an existing file keep their bytes.
func Encode[P any](log BatchLog[P]) ([]byte, error) {
	if log == nil {
		log = BatchLog[P]{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(log); err != nil {
		return nil, newError(KindDecode, "encode", "", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Decode parses the content of a snapshot file.
func Decode[P any](data []byte) (BatchLog[P], error) {
	var log BatchLog[P]
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, newError(KindDecode, "decode", "", err)
	}
	if log == nil {
		log = BatchLog[P]{}
	}
	return log, nil
}

// ReadFile reads and decodes the snapshot file at path.
func ReadFile[P any](path string) (BatchLog[P], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newError(KindIO, "read", path, err)
	}

	log, err := Decode[P](data)
	if err != nil {
		var se *Error
		if errors.As(err, &se) {
			se.Path = path
		}
		return nil, err
	}
	return log, nil
}

// WriteFile encodes log and replaces the file at path with it.
func WriteFile[P any](path string, log BatchLog[P], mode WriteMode) error {
	data, err := Encode(log)
	if err != nil {
		return err
	}

	switch mode {
	case WriteTruncate:
		return writeTruncate(path, data)
	case WriteAtomic, "":
		return writeAtomic(path, data)
	default:
		return fmt.Errorf("snapshot: unknown write mode %q", mode)
	}
}

func writeTruncate(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return newError(KindIO, "write", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return newError(KindIO, "write", path, err)
	}
	if err := f.Close(); err != nil {
		return newError(KindIO, "write", path, err)
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), tempPattern)
	if err != nil {
		return newError(KindIO, "write", path, fmt.Errorf("create temp file: %w", err))
	}
	tempPath := f.Name()
	defer os.Remove(tempPath)

	if _, err := f.Write(data); err != nil {
		f.Close()
		return newError(KindIO, "write", path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return newError(KindIO, "write", path, fmt.Errorf("sync: %w", err))
	}
	if err := f.Close(); err != nil {
		return newError(KindIO, "write", path, fmt.Errorf("close: %w", err))
	}
	if err := os.Chmod(tempPath, 0644); err != nil {
		return newError(KindIO, "write", path, err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return newError(KindIO, "write", path, fmt.Errorf("rename: %w", err))
	}
	return nil
}
