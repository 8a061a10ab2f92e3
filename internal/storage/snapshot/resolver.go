package snapshot

import (
	"math"
	"strconv"
	"time"
)

// LatestBatchKey returns the key of the batch with the largest timestamp.
// Every key must parse as an unsigned integer.
func LatestBatchKey[P any](log BatchLog[P]) (string, bool, error) {
	var (
		latestKey string
		latest    uint64
		found     bool
	)
	for key := range log {
		ts, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			return "", false, newError(KindNumericKey, "latest batch", "", err)
		}
		if !found || ts > latest {
			latest, latestKey, found = ts, key, true
		}
	}
	return latestKey, found, nil
}

// LatestEntityMap returns the most recent merged entity view stored in dir.
//
// It always reads the newest file on disk, however old, so that entity
// state survives rotation.
func LatestEntityMap[P any](dir string) (EntityMap[P], bool, error) {
	newest, ok, err := NewestFile(dir)
	if err != nil || !ok {
		return nil, false, err
	}

	log, err := ReadFile[P](newest.Path)
	if err != nil {
		return nil, false, err
	}

	key, ok, err := LatestBatchKey(log)
	if err != nil {
		if se, isErr := err.(*Error); isErr {
			se.Path = newest.Path
		}
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	return log[key], true, nil
}

// ResolveCurrent decides which file the next write goes to.
//
// The newest file is reused while it is younger than window; otherwise a new
// file named after now is started with an empty batch log. rotated reports
// that an older file existed but was too old to reuse.
func ResolveCurrent[P any](dir string, window time.Duration, now uint64) (target uint64, log BatchLog[P], rotated bool, err error) {
	newest, ok, err := NewestFile(dir)
	if err != nil {
		return 0, nil, false, err
	}
	if !ok {
		return now, BatchLog[P]{}, false, nil
	}

	if fileAge(now, newest.Timestamp) < window {
		log, err := ReadFile[P](newest.Path)
		if err != nil {
			return 0, nil, false, err
		}
		return newest.Timestamp, log, false, nil
	}

	return now, BatchLog[P]{}, true, nil
}

const maxAgeMillis = uint64(math.MaxInt64 / int64(time.Millisecond))

// fileAge is negative when the clock is behind the file's timestamp.
func fileAge(now, fileTS uint64) time.Duration {
	if now < fileTS {
		return -millis(fileTS - now)
	}
	return millis(now - fileTS)
}

func millis(ms uint64) time.Duration {
	if ms > maxAgeMillis {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ms) * time.Millisecond
}
