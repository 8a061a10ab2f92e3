package command

import (
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tracklog-go/internal/cli/output"
	"github.com/yndnr/tracklog-go/internal/storage/snapshot"
)

// Snapshot file states.
const (
	fileActive  = "active"  // newest file, still inside the window
	fileHistory = "history" // superseded or expired
)

type fileInfo struct {
	Timestamp uint64    `json:"timestamp"`
	Time      time.Time `json:"time"`
	Path      string    `json:"path"`
	State     string    `json:"state"`
}

type fileList []fileInfo

func (l fileList) Tables(bool) []*output.Table {
	t := output.NewTable("TIMESTAMP", "TIME", "STATE", "PATH")
	for _, f := range l {
		t.AddRow(formatUint(f.Timestamp), output.FormatTime(f.Time), f.State, f.Path)
	}
	return []*output.Table{t}
}

// FilesCommand returns the files command.
func FilesCommand() *cli.Command {
	return &cli.Command{
		Name:   "files",
		Usage:  "List the snapshot files of a store, oldest first",
		Flags:  []cli.Flag{kindFlag(), dirFlag()},
		Action: filesAction,
	}
}

func filesAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	kind, err := parseKind(c.String("kind"))
	if err != nil {
		return err
	}

	refs, err := snapshot.ListFiles(storeDir(c, cfg, kind))
	if err != nil {
		return err
	}
	return render(c, listFiles(refs, storeWindow(cfg, kind), time.Now()))
}

// listFiles marks the newest file active if a write at now would reuse it.
func listFiles(refs []snapshot.FileRef, window time.Duration, now time.Time) fileList {
	out := make(fileList, 0, len(refs))
	for i, ref := range refs {
		state := fileHistory
		if i == len(refs)-1 && now.Sub(batchTime(ref.Timestamp)) < window {
			state = fileActive
		}
		out = append(out, fileInfo{
			Timestamp: ref.Timestamp,
			Time:      batchTime(ref.Timestamp).UTC(),
			Path:      ref.Path,
			State:     state,
		})
	}
	return out
}
