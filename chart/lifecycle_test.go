package chart

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"chartcore/model"
)

type recordingObserver struct {
	added      [][]*Event
	deleted    [][]*Event
	modified   []*Event
	recomputed int
}

func (r *recordingObserver) EventsAdded(events []*Event)   { r.added = append(r.added, events) }
func (r *recordingObserver) EventsDeleted(events []*Event) { r.deleted = append(r.deleted, events) }
func (r *recordingObserver) EventModified(e *Event)        { r.modified = append(r.modified, e) }
func (r *recordingObserver) TimingRecomputed()             { r.recomputed++ }

func eventAt(c *Chart, kind model.EventKind, row int) *Event {
	var found *Event
	c.events.each(func(e *Event) {
		if found == nil && e.Kind == kind && e.Row == row {
			found = e
		}
	})
	return found
}

func TestAddedStopRetimesLaterEvents(t *testing.T) {
	c := New(4)
	tap := &Event{Kind: model.KindTap, Row: 192}
	c.AddEvent(tap)

	assert := assert.New(t)
	assert.InDelta(tap.ChartTime, 2.0, 1e-9)

	c.AddEvent(&Event{Kind: model.KindStop, Row: 96, Seconds: 0.5})
	assert.InDelta(tap.ChartTime, 2.5, 1e-9)
}

func TestRowZeroSingletonsAreFixed(t *testing.T) {
	c := New(4)

	assert := assert.New(t)
	assert.Panics(func() { c.AddEvent(&Event{Kind: model.KindTempo, Row: 0, BPM: 60}) })
	assert.Panics(func() { c.DeleteEvent(eventAt(c, model.KindTempo, 0)) })
}

func TestOffGridTimeSignatureIsNotAdded(t *testing.T) {
	c := New(4)
	added, _ := c.AddEvent(&Event{Kind: model.KindTimeSignature, Row: 100, Numerator: 3, Denominator: 4})

	assert := assert.New(t)
	assert.Equal(len(added), 0)
	assert.Nil(eventAt(c, model.KindTimeSignature, 100))
}

func TestChangingASignatureCascadesThroughLaterOnes(t *testing.T) {
	c := New(4)
	ts192 := &Event{Kind: model.KindTimeSignature, Row: 192, Numerator: 4, Denominator: 4}
	added, _ := c.AddEvent(ts192)

	assert := assert.New(t)
	assert.Equal(added, []*Event{ts192})

	// row 288 sits off every boundary grid in play, so no add path takes
	// it; plant it directly to model a stale chart
	ts288 := &Event{Kind: model.KindTimeSignature, Row: 288, Numerator: 4, Denominator: 4}
	c.insertEvent(ts288)

	sigZero := eventAt(c, model.KindTimeSignature, 0)
	sigZero.Numerator = 3
	cascade := c.EventModified(sigZero)

	assert.Contains(cascade, ts192)
	assert.Contains(cascade, ts288)
	assert.False(c.events.contains(ts192))
	assert.False(c.events.contains(ts288))
}

func TestSignatureKilledByItsOwnBatchLeavesBothResultSets(t *testing.T) {
	c := New(4)
	ts384 := &Event{Kind: model.KindTimeSignature, Row: 384, Numerator: 4, Denominator: 4}
	c.AddEvent(ts384)

	// the 3/4 meter re-grids everything behind it; the 4/4 at 576 is
	// valid on arrival but dies once the recompute settles
	ts192 := &Event{Kind: model.KindTimeSignature, Row: 192, Numerator: 3, Denominator: 4}
	ts576 := &Event{Kind: model.KindTimeSignature, Row: 576, Numerator: 4, Denominator: 4}
	added, removed := c.AddEvents([]*Event{ts192, ts576})

	assert := assert.New(t)
	assert.Equal(added, []*Event{ts192})
	assert.Equal(removed, []*Event{ts384})
	assert.True(c.events.contains(ts192))
	assert.False(c.events.contains(ts576))
}

func TestHoldsAddAndDeleteAsAUnit(t *testing.T) {
	c := New(4)
	hold, err := NewHold(2, 96, 192, false)

	assert := assert.New(t)
	assert.Nil(err)

	c.AddEvent(hold)
	assert.True(c.events.contains(hold))
	assert.True(c.events.contains(hold.Pair))

	assert.Panics(func() { c.DeleteEvent(hold.Pair) })

	removed := c.DeleteEvent(hold)
	assert.Equal(removed, []*Event{hold, hold.Pair})
	assert.False(c.events.contains(hold))
	assert.False(c.events.contains(hold.Pair))
}

func TestInterpolatedChainRepairsAroundEdits(t *testing.T) {
	c := New(4)
	first := &Event{Kind: model.KindInterpolatedRate, Row: 0, Speed: model.SpeedDescriptor{Rate: 1, PeriodRows: 48}}
	mid := &Event{Kind: model.KindInterpolatedRate, Row: 96, Speed: model.SpeedDescriptor{Rate: 2, PeriodRows: 48}}
	last := &Event{Kind: model.KindInterpolatedRate, Row: 192, Speed: model.SpeedDescriptor{Rate: 1.5, PeriodRows: 48}}
	c.AddEvents([]*Event{first, mid, last})

	assert := assert.New(t)
	assert.Equal(first.PreviousRate, 1.0)
	assert.Equal(mid.PreviousRate, 1.0)
	assert.Equal(last.PreviousRate, 2.0)

	c.DeleteEvent(mid)
	assert.Equal(last.PreviousRate, 1.0)

	readd := &Event{Kind: model.KindInterpolatedRate, Row: 96, Speed: model.SpeedDescriptor{Rate: 3, PeriodRows: 48}}
	c.AddEvent(readd)
	assert.Equal(readd.PreviousRate, 1.0)
	assert.Equal(last.PreviousRate, 3.0)
}

func TestForceAddTruncatesACoveringHold(t *testing.T) {
	c := New(4)
	hold, _ := NewHold(1, 96, 288, false)
	c.AddEvent(hold)

	tap := &Event{Kind: model.KindTap, Row: 192, Lane: 1}
	added, deleted := c.ForceAddEvents([]*Event{tap})

	assert := assert.New(t)
	assert.Equal(len(added), 2)
	assert.Contains(added, tap)
	assert.Contains(deleted, hold)
	assert.Contains(deleted, hold.Pair)

	repl := c.coveringHold(1, 150)
	assert.Equal(repl.Row, 96)
	assert.Equal(repl.Pair.Row, 191)
	assert.Nil(c.coveringHold(1, 192))
}

func TestForceAddTurnsATooShortTruncationIntoATap(t *testing.T) {
	c := New(4)
	hold, _ := NewHold(0, 96, 192, false)
	c.AddEvent(hold)

	added, deleted := c.ForceAddEvents([]*Event{{Kind: model.KindTap, Row: 97, Lane: 0}})

	assert := assert.New(t)
	assert.Equal(len(added), 2)
	assert.Equal(len(deleted), 2)
	assert.Equal(c.Holds().Len(), 0)
	assert.NotNil(eventAt(c, model.KindTap, 96))
	assert.NotNil(eventAt(c, model.KindTap, 97))
}

func TestForceAddDeletesNotesUnderANewHold(t *testing.T) {
	c := New(4)
	c.AddEvents([]*Event{
		{Kind: model.KindTap, Row: 96, Lane: 0},
		{Kind: model.KindTap, Row: 144, Lane: 0},
		{Kind: model.KindTap, Row: 144, Lane: 3},
	})

	hold, _ := NewHold(0, 48, 192, true)
	added, deleted := c.ForceAddEvents([]*Event{hold})

	assert := assert.New(t)
	assert.Equal(added, []*Event{hold})
	assert.Equal(len(deleted), 2)
	assert.Nil(eventAt(c, model.KindTap, 96))
	assert.Equal(eventAt(c, model.KindTap, 144).Lane, 3)
}

func TestForceAddReplacesSameKindOnTheRow(t *testing.T) {
	c := New(4)
	c.AddEvent(&Event{Kind: model.KindLabel, Row: 96, Text: "verse"})

	repl := &Event{Kind: model.KindLabel, Row: 96, Text: "chorus"}
	added, deleted := c.ForceAddEvents([]*Event{repl})

	assert := assert.New(t)
	assert.Equal(added, []*Event{repl})
	assert.Equal(len(deleted), 1)
	assert.Equal(deleted[0].Text, "verse")
	assert.Equal(eventAt(c, model.KindLabel, 96).Text, "chorus")
}

func TestForceAddReportsOnlyPriorCasualties(t *testing.T) {
	c := New(4)
	ts192 := &Event{Kind: model.KindTimeSignature, Row: 192, Numerator: 4, Denominator: 4}
	ts384 := &Event{Kind: model.KindTimeSignature, Row: 384, Numerator: 4, Denominator: 4}
	c.AddEvents([]*Event{ts192, ts384})

	repl := &Event{Kind: model.KindTimeSignature, Row: 192, Numerator: 3, Denominator: 4}
	doomed := &Event{Kind: model.KindTimeSignature, Row: 576, Numerator: 4, Denominator: 4}
	added, deleted := c.ForceAddEvents([]*Event{repl, doomed})

	assert := assert.New(t)
	assert.Equal(added, []*Event{repl})
	assert.Equal(len(deleted), 2)
	assert.Contains(deleted, ts192)
	assert.Contains(deleted, ts384)
	assert.NotContains(deleted, doomed)
	assert.False(c.events.contains(doomed))
}

func TestForceAddGivesRowZeroSingletonsNewPayloads(t *testing.T) {
	c := New(4)
	added, deleted := c.ForceAddEvents([]*Event{{Kind: model.KindTempo, Row: 0, BPM: 180}})

	assert := assert.New(t)
	assert.Equal(len(added), 1)
	assert.Equal(len(deleted), 1)
	assert.Equal(deleted[0].BPM, 120.0)
	assert.InDelta(c.TimeForPosition(144), 1.0, 1e-9)
}

func TestForceAddStillRefusesOffGridTimeSignatures(t *testing.T) {
	c := New(4)
	added, deleted := c.ForceAddEvents([]*Event{{Kind: model.KindTimeSignature, Row: 100, Numerator: 3, Denominator: 4}})

	assert := assert.New(t)
	assert.Equal(len(added), 0)
	assert.Equal(len(deleted), 0)
	assert.Nil(eventAt(c, model.KindTimeSignature, 100))
}

func TestPreviewRegionDerivesAMarker(t *testing.T) {
	c := New(4)

	assert := assert.New(t)
	assert.Nil(c.PreviewMarker())

	assert.True(c.SetPreview(1.0, 5.0))
	marker := c.PreviewMarker()
	assert.Equal(marker.Row, 96)
	assert.Equal(marker.StartSeconds, 1.0)
	assert.Equal(marker.Seconds, 5.0)

	// a stop now pauses the row under the preview start, the marker pins
	// to the stop's row
	c.AddEvent(&Event{Kind: model.KindStop, Row: 48, Seconds: 0.5})
	assert.Equal(c.PreviewMarker().Row, 48)

	assert.True(c.SetPreview(1.0, 0))
	assert.Nil(c.PreviewMarker())
}

func TestSetPreviewRejectsBadRegions(t *testing.T) {
	c := New(4)

	assert := assert.New(t)
	assert.False(c.SetPreview(-1, 5))
	assert.False(c.SetPreview(math.NaN(), 5))
	assert.False(c.SetPreview(1, math.Inf(1)))
	assert.Nil(c.PreviewMarker())
}

func TestNotificationsFireOncePerOperation(t *testing.T) {
	c := New(4)
	rec := &recordingObserver{}
	c.AddObserver(rec)

	stop := &Event{Kind: model.KindStop, Row: 96, Seconds: 0.5}
	c.AddEvent(stop)

	assert := assert.New(t)
	assert.Equal(len(rec.added), 1)
	assert.Equal(rec.recomputed, 1)

	tap := &Event{Kind: model.KindTap, Row: 48, Lane: 0}
	c.AddEvent(tap)
	assert.Equal(len(rec.added), 2)
	assert.Equal(rec.recomputed, 1)

	c.EventModified(tap)
	assert.Equal(rec.modified, []*Event{tap})

	c.DeleteEvent(stop)
	assert.Equal(len(rec.deleted), 1)
	assert.Equal(rec.recomputed, 2)
}

func TestFromRawEventsRejectsBrokenInput(t *testing.T) {
	assert := assert.New(t)

	_, _, err := FromRawEvents(4, []model.RawEvent{{Kind: model.KindHoldEnd, Row: 96, Lane: 1}})
	assert.NotNil(err)

	_, _, err = FromRawEvents(4, []model.RawEvent{{Kind: model.KindHoldStart, Row: 96, Lane: 1}})
	assert.NotNil(err)

	_, _, err = FromRawEvents(4, []model.RawEvent{
		{Kind: model.KindHoldStart, Row: 96, Lane: 1},
		{Kind: model.KindHoldEnd, Row: 96, Lane: 1},
	})
	assert.NotNil(err)

	_, _, err = FromRawEvents(4, []model.RawEvent{tempoRaw(0, 120), tempoRaw(0, 60)})
	assert.NotNil(err)

	_, _, err = FromRawEvents(4, []model.RawEvent{tapRaw(0, 9)})
	assert.NotNil(err)

	_, _, err = FromRawEvents(4, []model.RawEvent{tapRaw(96, 0), {Kind: model.EventKind(99), Row: 96}})
	assert.NotNil(err)
}
