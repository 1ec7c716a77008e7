//go:build e2e
// +build e2e

package e2e_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"chartcore/action"
	"chartcore/chart"
	"chartcore/cmd"
	"chartcore/constants"
	"chartcore/model"
	"chartcore/sample"
	"chartcore/snapshot"
)

var midiPath string

func TestMain(m *testing.M) {
	// Write code here to run before tests
	dir, err := os.MkdirTemp("", "chartcore-e2e")
	if err != nil {
		panic(err.Error())
	}
	os.Setenv("CHART_SNAPSHOT_PATH", filepath.Join(dir, "out"))

	midiPath = filepath.Join(dir, "sample.mid")
	if err := sample.CreateWithHolds(120, 4, 2).WriteFile(midiPath); err != nil {
		panic(err.Error())
	}

	// Run tests
	exitVal := m.Run()

	os.RemoveAll(dir)
	os.Exit(exitVal)
}

func rowZeroTempo(c *chart.Chart) *chart.Event {
	cur := c.Events().FindBestByPosition(0)
	for cur != nil {
		e := cur.Event()
		if e == nil || e.Row > 0 {
			return nil
		}
		if e.Kind == model.KindTempo {
			return e
		}
		if !cur.MoveNext() {
			return nil
		}
	}
	return nil
}

func TestConvertEditUndoPipelineE2E(t *testing.T) {
	snapPath := cmd.Convert(midiPath, 4)
	raws := snapshot.Read(snapPath)

	c, removed, err := chart.FromRawEvents(4, raws)
	if err != nil {
		panic(err.Error())
	}

	assert := assert.New(t)
	assert.Equal(len(removed), 0)
	assert.Equal(c.RawEvents(), raws)
	assert.InDelta(c.TimeForPosition(96), 1.0, 1e-9)

	q := action.NewQueue(100)

	stop := &chart.Event{Kind: model.KindStop, Row: 96, Seconds: 0.5}
	q.Do(c, &action.AddEvents{Events: []*chart.Event{stop}})
	assert.InDelta(c.TimeForPosition(192), 2.5, 1e-9)

	q.Do(c, &action.SetTempo{Event: rowZeroTempo(c), Old: 120, New: 240})
	assert.InDelta(c.TimeForPosition(192), 1.5, 1e-9)

	assert.True(q.Undo(c))
	assert.True(q.Undo(c))
	assert.Equal(c.RawEvents(), raws)

	second := snapshot.Create(constants.GetSnapshotDir(), c.RawEvents())
	assert.Equal(snapshot.Read(second), raws)
}

func TestAutosaveKeepsUpWithEditsE2E(t *testing.T) {
	snapPath := cmd.Convert(midiPath, 4)

	c, _, err := chart.FromRawEvents(4, snapshot.Read(snapPath))
	if err != nil {
		panic(err.Error())
	}

	saver := snapshot.NewAutosaver(c, constants.GetSnapshotDir(), time.Minute)
	c.AddEvent(&chart.Event{Kind: model.KindTap, Row: 240, Lane: 2})
	saver.Flush()

	assert := assert.New(t)
	assert.Equal(snapshot.Read(saver.Last()), c.RawEvents())
}
