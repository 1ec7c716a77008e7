package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"chartcore/model"
)

func regionKinds(events []*Event) []model.EventKind {
	var kinds []model.EventKind
	for _, e := range events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

func TestHoldsOverlappingReportsPerLane(t *testing.T) {
	c := New(4)
	hold, _ := NewHold(2, 50, 150, false)
	c.AddEvent(hold)

	assert := assert.New(t)

	got := c.GetHoldsOverlapping(100)
	assert.Equal(len(got), 4)
	assert.Nil(got[0])
	assert.Nil(got[1])
	assert.Equal(got[2], hold)
	assert.Nil(got[3])

	// both ends count as inside
	assert.Equal(c.GetHoldsOverlapping(50)[2], hold)
	assert.Equal(c.GetHoldsOverlapping(150)[2], hold)
	assert.Nil(c.GetHoldsOverlapping(49)[2])
	assert.Nil(c.GetHoldsOverlapping(151)[2])
}

func TestNextInputsPerLane(t *testing.T) {
	c := New(4)
	tap := &Event{Kind: model.KindTap, Row: 200, Lane: 0}
	running, _ := NewHold(1, 50, 150, false)
	starting, _ := NewHold(2, 100, 200, false)
	c.AddEvents([]*Event{tap, running, starting})

	assert := assert.New(t)
	assert.Equal(c.GetNextInputs(100), []NextInput{
		{Row: 200, Event: tap},
		{Row: 150, Event: running.Pair, Release: true},
		{Row: 100, Event: starting},
		{Row: -1},
	})
}

func TestRegionsOverlappingChecksEachKindOnItsOwnAxis(t *testing.T) {
	c := mustChart(t, 4, []model.RawEvent{
		tempoRaw(0, 120),
		stopRaw(96, 0.5),
		warpRaw(192, 48),
		{Kind: model.KindPattern, Row: 192, LengthRows: 48},
		{Kind: model.KindFakeRegion, Row: 288, LengthRows: 96},
		stopRaw(480, -0.5),
	})

	assert := assert.New(t)

	// a stop overlaps by time while its row holds still
	assert.Equal(regionKinds(c.GetRegionsOverlapping(96, 1.2)), []model.EventKind{model.KindStop})
	assert.Equal(len(c.GetRegionsOverlapping(96, 1.5)), 0)

	// warps and patterns overlap by row, exclusive of their end
	assert.Equal(regionKinds(c.GetRegionsOverlapping(200, 2.5)), []model.EventKind{model.KindPattern, model.KindWarp})
	assert.Equal(len(c.GetRegionsOverlapping(240, 2.5)), 0)

	// a fake region's rows are converted to a time window
	assert.Equal(regionKinds(c.GetRegionsOverlapping(300, 3.125)), []model.EventKind{model.KindFakeRegion})

	// a negative stop pauses nothing, so it never overlaps
	assert.Equal(len(c.GetRegionsOverlapping(480, c.TimeForPosition(480))), 0)
}

func TestStackedStopsTileTheCombinedPause(t *testing.T) {
	c := mustChart(t, 4, []model.RawEvent{
		tempoRaw(0, 120),
		stopRaw(96, 0.5),
		stopRaw(96, 0.25),
	})

	assert := assert.New(t)

	// row 96 arrives at 1.0s and holds still until 1.75s
	assert.InDelta(c.PositionForTime(1.7), 96.0, 1e-9)

	early := c.GetRegionsOverlapping(96, 1.2)
	late := c.GetRegionsOverlapping(96, 1.6)
	assert.Equal(regionKinds(early), []model.EventKind{model.KindStop})
	assert.Equal(regionKinds(late), []model.EventKind{model.KindStop})
	assert.Equal(early[0].Seconds, 0.5)
	assert.Equal(late[0].Seconds, 0.25)
	assert.Equal(len(c.GetRegionsOverlapping(96, 1.75)), 0)
}

func TestPreviewCountsAsARegion(t *testing.T) {
	c := New(4)
	c.SetPreview(1.0, 0.5)

	assert := assert.New(t)
	assert.Equal(regionKinds(c.GetRegionsOverlapping(96, 1.2)), []model.EventKind{model.KindPreview})
	assert.Equal(len(c.GetRegionsOverlapping(144, 1.5)), 0)
}

func TestActiveRateAlteringLookups(t *testing.T) {
	c := mustChart(t, 4, []model.RawEvent{tempoRaw(0, 120), stopRaw(96, 0.5)})

	assert := assert.New(t)

	assert.Equal(c.FindActiveRateAlteringEventForPosition(96, true).Kind, model.KindStop)
	assert.Equal(c.FindActiveRateAlteringEventForPosition(96, false).Kind, model.KindScrollRate)
	assert.Equal(c.FindActiveRateAlteringEventForPosition(-5, true).Kind, model.KindTimeSignature)

	assert.Equal(c.FindActiveRateAlteringEventForTime(1.2, true).Kind, model.KindStop)
	assert.Equal(c.FindActiveRateAlteringEventForTime(1.0, true).Kind, model.KindStop)
	assert.Equal(c.FindActiveRateAlteringEventForTime(1.0, false).Kind, model.KindScrollRate)
	assert.Equal(c.FindActiveRateAlteringEventForTime(-1, false).Kind, model.KindTimeSignature)
}

func TestInterpolatedScrollRateBlendsOverRows(t *testing.T) {
	c := New(4)
	c.AddEvents([]*Event{
		{Kind: model.KindInterpolatedRate, Row: 0, Speed: model.SpeedDescriptor{Rate: 1, PeriodRows: 48}},
		{Kind: model.KindInterpolatedRate, Row: 96, Speed: model.SpeedDescriptor{Rate: 3, PeriodRows: 96}},
	})

	assert := assert.New(t)
	assert.InDelta(c.InterpolatedScrollRateAt(48, 0.5), 1.0, 1e-9)
	assert.InDelta(c.InterpolatedScrollRateAt(144, 1.5), 2.0, 1e-9)
	assert.InDelta(c.InterpolatedScrollRateAt(192, 2.0), 3.0, 1e-9)
	assert.InDelta(c.InterpolatedScrollRateAt(288, 3.0), 3.0, 1e-9)
}

func TestInterpolatedScrollRateBlendsOverTime(t *testing.T) {
	c := New(4)
	c.AddEvents([]*Event{
		{Kind: model.KindInterpolatedRate, Row: 0, Speed: model.SpeedDescriptor{Rate: 1, PeriodRows: 48}},
		{Kind: model.KindInterpolatedRate, Row: 96, Speed: model.SpeedDescriptor{Rate: 3, PeriodSeconds: 2, OverTime: true}},
	})

	assert := assert.New(t)
	assert.InDelta(c.InterpolatedScrollRateAt(96, 1.0), 1.0, 1e-9)
	assert.InDelta(c.InterpolatedScrollRateAt(192, 2.0), 2.0, 1e-9)
	assert.InDelta(c.InterpolatedScrollRateAt(480, 6.0), 3.0, 1e-9)
}

func TestInterpolatedScrollRateZeroPeriodJumps(t *testing.T) {
	c := New(4)
	c.AddEvent(&Event{Kind: model.KindInterpolatedRate, Row: 96, Speed: model.SpeedDescriptor{Rate: 5}})

	assert := assert.New(t)
	assert.InDelta(c.InterpolatedScrollRateAt(96, 1.0), 5.0, 1e-9)
	assert.InDelta(c.InterpolatedScrollRateAt(500, 6.0), 5.0, 1e-9)
}

func TestNoteCountsTallyPerLane(t *testing.T) {
	c := mustChart(t, 4, []model.RawEvent{
		tapRaw(0, 0),
		tapRaw(48, 0),
		{Kind: model.KindMine, Row: 96, Lane: 1},
		{Kind: model.KindHoldStart, Row: 96, Lane: 2},
		{Kind: model.KindHoldEnd, Row: 192, Lane: 2},
		{Kind: model.KindHoldStart, Row: 240, Lane: 3, IsRoll: true},
		{Kind: model.KindHoldEnd, Row: 288, Lane: 3},
	})

	assert := assert.New(t)
	assert.Equal(c.NoteCounts(), []LaneCounts{
		{Taps: 2},
		{Mines: 1},
		{Holds: 1},
		{Rolls: 1},
	})
}
