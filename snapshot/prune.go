package snapshot

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"
)

var snapshotName = regexp.MustCompile("^[0-9a-fA-F]{8}-([0-9a-fA-F]{4}-){3}[0-9a-fA-F]{12}.dat$")

// Prune deletes the oldest snapshots in dir beyond keep, by modification
// time, and returns how many went. Files that are not snapshots are left
// alone.
func Prune(dir string, keep int) int {
	if keep < 0 {
		keep = 0
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0
		}
		panic("Could not read dir because: " + err.Error())
	}

	type stamped struct {
		name string
		mod  time.Time
	}
	var snaps []stamped
	for _, entry := range entries {
		if entry.IsDir() || !snapshotName.MatchString(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		snaps = append(snaps, stamped{name: entry.Name(), mod: info.ModTime()})
	}
	if len(snaps) <= keep {
		return 0
	}

	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].mod.Before(snaps[j].mod)
	})

	removed := 0
	for _, s := range snaps[:len(snaps)-keep] {
		if os.Remove(filepath.Join(dir, s.name)) == nil {
			removed++
		}
	}
	return removed
}
