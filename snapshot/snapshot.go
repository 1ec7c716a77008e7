package snapshot

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/google/uuid"

	"chartcore/chart"
	"chartcore/model"
	"chartcore/util"
)

// Create writes the raw events into dir as a snapshot under a fresh name
// and returns its path.
func Create(dir string, raws []model.RawEvent) string {
	util.EnsureDir(dir)
	path := filepath.Join(dir, uuid.New().String()+".dat")
	util.CreateBinary(path, raws)
	return path
}

// Read loads a snapshot written by Create.
func Read(path string) []model.RawEvent {
	return util.ReadBinaryOrPanic[[]model.RawEvent](path)
}

// Autosaver observes a chart and keeps a snapshot of it on disk, writing
// at most once per debounce interval however fast edits come in. The
// events are captured synchronously inside the callbacks, on the editing
// goroutine, so the chart itself is never read off thread; only the disk
// write is deferred.
type Autosaver struct {
	chart     *chart.Chart
	dir       string
	debounced func(func())

	mu      sync.Mutex
	pending []model.RawEvent
	dirty   bool
	last    string
	keep    int
}

var _ chart.Observer = (*Autosaver)(nil)

func NewAutosaver(c *chart.Chart, dir string, interval time.Duration) *Autosaver {
	a := &Autosaver{chart: c, dir: dir, debounced: debounce.New(interval)}
	c.AddObserver(a)
	return a
}

func (a *Autosaver) EventsAdded(events []*chart.Event) { a.capture() }

func (a *Autosaver) EventsDeleted(events []*chart.Event) { a.capture() }

func (a *Autosaver) EventModified(e *chart.Event) { a.capture() }

func (a *Autosaver) TimingRecomputed() { a.capture() }

func (a *Autosaver) capture() {
	raws := a.chart.RawEvents()
	a.mu.Lock()
	a.pending = raws
	a.dirty = true
	a.mu.Unlock()
	a.debounced(a.write)
}

func (a *Autosaver) write() {
	a.mu.Lock()
	if !a.dirty {
		a.mu.Unlock()
		return
	}
	raws := a.pending
	a.dirty = false
	a.mu.Unlock()

	path := Create(a.dir, raws)

	a.mu.Lock()
	a.last = path
	keep := a.keep
	a.mu.Unlock()

	if keep > 0 {
		Prune(a.dir, keep)
	}
}

// KeepLast caps how many snapshots pile up on disk; each write prunes the
// directory down to the newest n. Zero, the default, keeps everything.
func (a *Autosaver) KeepLast(n int) {
	a.mu.Lock()
	a.keep = n
	a.mu.Unlock()
}

// Flush writes any captured state now instead of waiting out the
// interval.
func (a *Autosaver) Flush() {
	a.write()
}

// Last returns the path of the most recent snapshot written, empty before
// the first write.
func (a *Autosaver) Last() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last
}
