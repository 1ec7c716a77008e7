package chart

import (
	"fmt"
	"math"
	"sort"

	"chartcore/constants"
	"chartcore/model"
)

const maxLanes = constants.MaxLanes

// singletonKinds must each appear exactly once at row 0. They are seeded
// with defaults when missing and cannot be deleted.
var singletonKinds = []model.EventKind{
	model.KindTempo,
	model.KindTimeSignature,
	model.KindScrollRate,
	model.KindTickCount,
	model.KindMultipliers,
}

// Observer receives synchronous notifications after a lifecycle operation
// completes. Callbacks run on the mutating goroutine and must not mutate
// the chart; they may read it freely because the chart is consistent again
// by the time they fire.
type Observer interface {
	EventsAdded(events []*Event)
	EventsDeleted(events []*Event)
	EventModified(e *Event)
	TimingRecomputed()
}

// Chart owns every index over one chart's events and keeps the derived
// timing of all of them consistent across edits. It is single-writer: all
// mutation and all queries must come from one goroutine, with background
// work handing finished event batches back to it.
type Chart struct {
	lanes   int
	nextSeq int64

	events       *Tree
	holds        *Tree
	miscEvents   *Tree
	fakes        *Tree
	stops        *Tree
	delays       *Tree
	warps        *Tree
	rateAltering *Tree
	interpolated *Tree
	patterns     *Tree

	previewStart  float64
	previewLength float64
	preview       *Event

	// conservative span bounds per region kind, refreshed by the timing
	// recompute, letting region scans stop early
	maxStopSeconds  float64
	maxDelaySeconds float64
	maxFakeSeconds  float64
	maxWarpRows     int
	maxPatternRows  int

	minTempo        float64
	maxTempo        float64
	mostCommonTempo float64

	observers []Observer
}

// New builds an empty chart with the row 0 defaults in place.
func New(lanes int) *Chart {
	c := newEmpty(lanes)
	if err := c.ensureRowZeroDefaults(); err != nil {
		panic(err.Error())
	}
	c.updateTimingData()
	return c
}

func newEmpty(lanes int) *Chart {
	if lanes < 1 || lanes > maxLanes {
		panic(fmt.Sprintf("chart lanes %v, want 1..%v", lanes, maxLanes))
	}
	return &Chart{
		lanes:        lanes,
		events:       newTree(),
		holds:        newTree(),
		miscEvents:   newTree(),
		fakes:        newTree(),
		stops:        newTree(),
		delays:       newTree(),
		warps:        newTree(),
		rateAltering: newTree(),
		interpolated: newTree(),
		patterns:     newTree(),
	}
}

// FromRawEvents builds a chart from a loader's raw event list. Malformed
// input fails the whole load. Time signatures that sit off their measure
// boundary in the loaded data are removed by the initial recompute and
// returned, matching what a later edit would do to them.
func FromRawEvents(lanes int, raws []model.RawEvent) (*Chart, []*Event, error) {
	c := newEmpty(lanes)

	// validate before sorting; the kind order of garbage is undefined
	for _, raw := range raws {
		if err := raw.Validate(lanes); err != nil {
			return nil, nil, err
		}
	}

	sorted := make([]model.RawEvent, len(raws))
	copy(sorted, raws)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Row != sorted[j].Row {
			return sorted[i].Row < sorted[j].Row
		}
		if kindOrder(sorted[i].Kind) != kindOrder(sorted[j].Kind) {
			return kindOrder(sorted[i].Kind) < kindOrder(sorted[j].Kind)
		}
		return sorted[i].Lane < sorted[j].Lane
	})

	var pending [maxLanes][]*Event
	for _, raw := range sorted {
		switch raw.Kind {
		case model.KindPreview:
			c.previewStart = raw.StartSeconds
			c.previewLength = raw.Seconds
		case model.KindHoldStart:
			start := &Event{Kind: model.KindHoldStart, Row: raw.Row, Lane: raw.Lane, IsRoll: raw.IsRoll}
			pending[raw.Lane] = append(pending[raw.Lane], start)
		case model.KindHoldEnd:
			stack := pending[raw.Lane]
			if len(stack) == 0 {
				return nil, nil, fmt.Errorf("hold end at row %v lane %v has no start", raw.Row, raw.Lane)
			}
			start := stack[len(stack)-1]
			pending[raw.Lane] = stack[:len(stack)-1]
			if raw.Row-start.Row < 1 {
				return nil, nil, fmt.Errorf("hold [%v,%v] lane %v is shorter than one row", start.Row, raw.Row, raw.Lane)
			}
			end := &Event{Kind: model.KindHoldEnd, Row: raw.Row, Lane: raw.Lane}
			start.Pair = end
			end.Pair = start
			c.insertEvent(start)
			c.insertEvent(end)
		default:
			e, err := EventFromRaw(raw)
			if err != nil {
				return nil, nil, err
			}
			c.insertEvent(e)
		}
	}
	for lane := 0; lane < lanes; lane++ {
		if len(pending[lane]) > 0 {
			return nil, nil, fmt.Errorf("hold start at row %v lane %v has no end", pending[lane][0].Row, lane)
		}
	}

	if err := c.ensureRowZeroDefaults(); err != nil {
		return nil, nil, err
	}
	c.repairAllInterpolated()
	removed := c.updateTimingData()
	return c, removed, nil
}

// ensureRowZeroDefaults seeds the missing row 0 singletons and rejects
// duplicated ones.
func (c *Chart) ensureRowZeroDefaults() error {
	for _, kind := range singletonKinds {
		n := 0
		cur := c.miscEvents.firstAtOrAfter(0)
		for cur != nil {
			e := cur.Event()
			if e == nil || e.Row > 0 {
				break
			}
			if e.Kind == kind {
				n++
			}
			cur.MoveNext()
		}
		if n > 1 {
			return fmt.Errorf("chart has %v row 0 %v events, want exactly one", n, kind)
		}
		if n == 0 {
			c.insertEvent(defaultSingleton(kind))
		}
	}
	return nil
}

func defaultSingleton(kind model.EventKind) *Event {
	e := &Event{Kind: kind}
	switch kind {
	case model.KindTempo:
		e.BPM = constants.DefaultTempo
	case model.KindTimeSignature:
		e.Numerator = constants.DefaultTimeSigNumerator
		e.Denominator = constants.DefaultTimeSigDenominator
	case model.KindScrollRate:
		e.Rate = constants.DefaultScrollRate
	case model.KindTickCount:
		e.Ticks = constants.DefaultTickCount
	case model.KindMultipliers:
		e.HitMult = constants.DefaultHitMultiplier
		e.MissMult = constants.DefaultMissMultiplier
	}
	return e
}

// assertWellFormed panics when a row 0 singleton is missing. The chart is
// guaranteed well formed at construction, so a miss is a caller bug.
func (c *Chart) assertWellFormed() {
	for _, kind := range singletonKinds {
		found := false
		cur := c.miscEvents.firstAtOrAfter(0)
		for cur != nil {
			e := cur.Event()
			if e == nil || e.Row > 0 {
				break
			}
			if e.Kind == kind {
				found = true
				break
			}
			cur.MoveNext()
		}
		if !found {
			panic(fmt.Sprintf("chart has no row 0 %v", kind))
		}
	}
}

// RawEvents materializes the chart back into row-sorted raw events, holds
// expanded into their start and end rows.
func (c *Chart) RawEvents() []model.RawEvent {
	res := make([]model.RawEvent, 0, c.events.Len())
	c.events.each(func(e *Event) {
		res = append(res, e.toRaw())
	})
	return res
}

func (c *Chart) Lanes() int {
	return c.lanes
}

func (c *Chart) Events() *Tree       { return c.events }
func (c *Chart) Holds() *Tree        { return c.holds }
func (c *Chart) MiscEvents() *Tree   { return c.miscEvents }
func (c *Chart) Fakes() *Tree        { return c.fakes }
func (c *Chart) Stops() *Tree        { return c.stops }
func (c *Chart) Delays() *Tree       { return c.delays }
func (c *Chart) Warps() *Tree        { return c.warps }
func (c *Chart) RateAltering() *Tree { return c.rateAltering }
func (c *Chart) Interpolated() *Tree { return c.interpolated }
func (c *Chart) Patterns() *Tree     { return c.patterns }

// Tempo statistics gathered by the last timing recompute. The most common
// tempo is the one active for the longest total time, first seen winning
// ties.
func (c *Chart) MinTempo() float64        { return c.minTempo }
func (c *Chart) MaxTempo() float64        { return c.maxTempo }
func (c *Chart) MostCommonTempo() float64 { return c.mostCommonTempo }

// LaneCounts tallies the notes on one lane.
type LaneCounts struct {
	Taps  int
	Holds int
	Rolls int
	Mines int
}

// NoteCounts tallies notes lane by lane in one walk.
func (c *Chart) NoteCounts() []LaneCounts {
	res := make([]LaneCounts, c.lanes)
	c.events.each(func(e *Event) {
		if !e.IsLane() || e.Lane >= c.lanes {
			return
		}
		switch e.Kind {
		case model.KindTap:
			res[e.Lane].Taps++
		case model.KindMine:
			res[e.Lane].Mines++
		case model.KindHoldStart:
			if e.IsRoll {
				res[e.Lane].Rolls++
			} else {
				res[e.Lane].Holds++
			}
		}
	})
	return res
}

// Preview returns the preview region in seconds. The marker event holding
// its derived row position is nil while the length is zero.
func (c *Chart) Preview() (start, length float64) {
	return c.previewStart, c.previewLength
}

func (c *Chart) PreviewMarker() *Event {
	return c.preview
}

// SetPreview moves the preview region and re-derives its marker row.
// Invalid values are refused and it reports whether the change applied.
func (c *Chart) SetPreview(start, length float64) bool {
	if math.IsNaN(start) || math.IsInf(start, 0) || start < 0 {
		return false
	}
	if math.IsNaN(length) || math.IsInf(length, 0) || length < 0 {
		return false
	}
	c.previewStart = start
	c.previewLength = length
	removed := c.updateTimingData()
	c.notifyDeleted(removed)
	c.notifyTimingRecomputed()
	return true
}

func (c *Chart) AddObserver(o Observer) {
	c.observers = append(c.observers, o)
}

func (c *Chart) notifyAdded(events []*Event) {
	if len(events) == 0 {
		return
	}
	for _, o := range c.observers {
		o.EventsAdded(events)
	}
}

func (c *Chart) notifyDeleted(events []*Event) {
	if len(events) == 0 {
		return
	}
	for _, o := range c.observers {
		o.EventsDeleted(events)
	}
}

func (c *Chart) notifyModified(e *Event) {
	for _, o := range c.observers {
		o.EventModified(e)
	}
}

func (c *Chart) notifyTimingRecomputed() {
	for _, o := range c.observers {
		o.TimingRecomputed()
	}
}
