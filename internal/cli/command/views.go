package command

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/yndnr/tracklog-go/internal/cli/output"
	"github.com/yndnr/tracklog-go/internal/core/domain"
	"github.com/yndnr/tracklog-go/internal/storage/snapshot"
)

// columns describes how one payload type is laid out in a table row.
type columns[P any] struct {
	headers func(wide bool) []string
	cells   func(p P, wide bool) []string
}

var locationColumns = columns[domain.LocationSnapshot]{
	headers: func(bool) []string {
		return []string{"LATITUDE", "LONGITUDE", "ADDRESS"}
	},
	cells: func(l domain.LocationSnapshot, _ bool) []string {
		return []string{l.Latitude, l.Longitude, address(l.Address)}
	},
}

var dataColumns = columns[domain.UserDataSnapshot]{
	headers: func(wide bool) []string {
		h := []string{"NAME", "LATITUDE", "LONGITUDE", "ADDRESS", "BATTERY"}
		if wide {
			h = append(h, "AVATAR")
		}
		return h
	},
	cells: func(d domain.UserDataSnapshot, wide bool) []string {
		row := []string{
			output.Dash(d.FirstName + " " + d.LastName),
			d.Location.Latitude,
			d.Location.Longitude,
			address(d.Location.Address),
			strconv.Itoa(int(d.Location.Battery)) + "%",
		}
		if wide {
			row = append(row, output.Dash(d.Avatar))
		}
		return row
	},
}

// entityTable lays out an entity map sorted by entity ID.
func entityTable[P any](m snapshot.EntityMap[P], cols columns[P], wide bool) *output.Table {
	t := output.NewTable(append([]string{"ENTITY"}, cols.headers(wide)...)...)
	for _, id := range sortedKeys(m) {
		t.AddRow(append([]string{id}, cols.cells(m[id], wide)...)...)
	}
	return t
}

// locationView renders a location entity map.
type locationView snapshot.EntityMap[domain.LocationSnapshot]

func (v locationView) Tables(wide bool) []*output.Table {
	return []*output.Table{entityTable(snapshot.EntityMap[domain.LocationSnapshot](v), locationColumns, wide)}
}

// dataView renders a user data entity map.
type dataView snapshot.EntityMap[domain.UserDataSnapshot]

func (v dataView) Tables(wide bool) []*output.Table {
	return []*output.Table{entityTable(snapshot.EntityMap[domain.UserDataSnapshot](v), dataColumns, wide)}
}

// latestAll holds the latest view of both stores.
type latestAll struct {
	Location locationView `json:"location"`
	Data     dataView     `json:"data"`
}

func (v latestAll) Tables(wide bool) []*output.Table {
	loc := v.Location.Tables(wide)[0]
	loc.Title = "LOCATION"
	data := v.Data.Tables(wide)[0]
	data.Title = "DATA"
	return []*output.Table{loc, data}
}

// batchView renders a whole snapshot file, one row per entity per batch.
// It encodes to JSON and YAML exactly like the file itself.
type batchView[P any] struct {
	log  snapshot.BatchLog[P]
	cols columns[P]
}

func (v batchView[P]) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.log)
}

func (v batchView[P]) Tables(wide bool) []*output.Table {
	t := output.NewTable(append([]string{"BATCH", "TIME", "ENTITY"}, v.cols.headers(wide)...)...)
	for _, b := range sortedBatches(v.log) {
		m := v.log[b.key]
		for _, id := range sortedKeys(m) {
			row := append([]string{b.key, output.FormatTime(batchTime(b.ts)), id}, v.cols.cells(m[id], wide)...)
			t.AddRow(row...)
		}
	}
	return []*output.Table{t}
}

type batchKey struct {
	key string
	ts  uint64
}

// sortedBatches orders batch keys numerically. Call validateBatchKeys first.
func sortedBatches[P any](log snapshot.BatchLog[P]) []batchKey {
	keys := make([]batchKey, 0, len(log))
	for k := range log {
		ts, _ := strconv.ParseUint(k, 10, 64)
		keys = append(keys, batchKey{key: k, ts: ts})
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].ts < keys[j].ts
	})
	return keys
}

func validateBatchKeys[P any](path string, log snapshot.BatchLog[P]) error {
	for k := range log {
		if _, err := strconv.ParseUint(k, 10, 64); err != nil {
			return fmt.Errorf("%s: batch key %q is not a millisecond timestamp", path, k)
		}
	}
	return nil
}

func address(a *string) string {
	if a == nil {
		return "-"
	}
	return output.Dash(*a)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
