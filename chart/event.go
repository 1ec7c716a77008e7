package chart

import (
	"fmt"

	"chartcore/model"
)

// Event is one chart entity. Identity is the pointer: two events are the
// same only if they are the same object. The sequence number breaks ties
// between events sharing a position and never changes once assigned, so a
// deleted event re-added by an undo keeps its place. Row and Lane must not
// be mutated while the event is inserted in a chart; payload fields may be
// edited in place followed by EventModified on the owning chart.
type Event struct {
	Kind model.EventKind
	Row  int
	Lane int

	// ChartTime is the derived absolute time of the event in seconds,
	// refreshed by the owning chart's timing recompute. For a stop or delay
	// it is the arrival time at the row, before the pause it introduces.
	ChartTime float64

	BPM          float64
	Seconds      float64
	StartSeconds float64
	LengthRows   int
	Rate         float64
	Speed        model.SpeedDescriptor
	PreviousRate float64
	Numerator    int
	Denominator  int
	Ticks        int
	HitMult      int
	MissMult     int
	IsRoll       bool
	Text         string

	// Pair joins the two halves of a hold. Non-owning.
	Pair *Event

	seq    int64
	timing RateSnapshot
}

// RateSnapshot is the accumulated timing state as of one rate-altering
// event. Snapshots let row and time queries be answered from the nearest
// preceding rate event without re-walking the chart.
type RateSnapshot struct {
	Row  int
	Time float64

	ScrollRate         float64
	Tempo              float64
	SecondsPerRow      float64
	RowsPerSecond      float64
	TimeSigNumerator   int
	TimeSigDenominator int
	WarpRowsRemaining  int
	StopTimeRemaining  float64

	// PositionImmutable marks the first tempo, time signature and scroll
	// rate, which are pinned to row 0.
	PositionImmutable bool
}

// Init writes the seven running-state fields captured by the timing sweep.
func (s *RateSnapshot) Init(scrollRate, tempo, secondsPerRow, rowsPerSecond float64, sigNum, sigDen, warpRows int, stopSeconds float64) {
	s.ScrollRate = scrollRate
	s.Tempo = tempo
	s.SecondsPerRow = secondsPerRow
	s.RowsPerSecond = rowsPerSecond
	s.TimeSigNumerator = sigNum
	s.TimeSigDenominator = sigDen
	s.WarpRowsRemaining = warpRows
	s.StopTimeRemaining = stopSeconds
}

// TimingSnapshot returns the state captured by the last timing recompute.
// Only meaningful on rate-altering events.
func (e *Event) TimingSnapshot() RateSnapshot {
	return e.timing
}

func (e *Event) IsLane() bool {
	return e.Kind.IsLane()
}

func (e *Event) IsRateAltering() bool {
	return e.Kind.IsRateAltering()
}

// EndRow returns the row a hold's release lands on, or the exclusive end
// of a row-denominated region.
func (e *Event) EndRow() int {
	switch e.Kind {
	case model.KindHoldStart:
		return e.Pair.Row
	case model.KindWarp, model.KindFakeRegion, model.KindPattern:
		return e.Row + e.LengthRows
	}
	return e.Row
}

// kindOrder fixes the sort position of each kind within one row. Time
// signatures precede tempos so a tempo on the row picks up the new
// signature's subdivision. Delays precede warps and stops so a delay's
// pause lands before the row's notes and a stop's after them. Lane events
// sort last, hold ends ahead of new heads on the same row.
func kindOrder(k model.EventKind) int {
	switch k {
	case model.KindTimeSignature:
		return 0
	case model.KindTempo:
		return 1
	case model.KindScrollRate:
		return 2
	case model.KindInterpolatedRate:
		return 3
	case model.KindTickCount:
		return 4
	case model.KindMultipliers:
		return 5
	case model.KindLabel:
		return 6
	case model.KindFakeRegion:
		return 7
	case model.KindPattern:
		return 8
	case model.KindPreview:
		return 9
	case model.KindDelay:
		return 10
	case model.KindWarp:
		return 11
	case model.KindStop:
		return 12
	case model.KindHoldEnd:
		return 20
	case model.KindTap:
		return 21
	case model.KindHoldStart:
		return 22
	case model.KindMine:
		return 23
	}
	panic(fmt.Sprintf("unknown event kind %d", int(k)))
}

// EventFromRaw builds a live event from its interchange form, validating
// the payload. Hold halves are rejected; build holds with NewHold so the
// two halves are paired. Preview markers are derived by the chart and
// cannot be built directly.
func EventFromRaw(raw model.RawEvent) (*Event, error) {
	switch raw.Kind {
	case model.KindHoldStart, model.KindHoldEnd:
		return nil, fmt.Errorf("hold at row %v: build holds with NewHold", raw.Row)
	case model.KindPreview:
		return nil, fmt.Errorf("preview marker is derived from the chart's preview region")
	}
	if err := raw.Validate(maxLanes); err != nil {
		return nil, err
	}
	e := &Event{
		Kind:        raw.Kind,
		Row:         raw.Row,
		Lane:        raw.Lane,
		BPM:         raw.BPM,
		Seconds:     raw.Seconds,
		LengthRows:  raw.LengthRows,
		Rate:        raw.Rate,
		Numerator:   raw.Numerator,
		Denominator: raw.Denominator,
		Ticks:       raw.Ticks,
		HitMult:     raw.HitMult,
		MissMult:    raw.MissMult,
		Text:        raw.Text,
	}
	if raw.Kind == model.KindInterpolatedRate {
		speed, err := model.ParseSpeed(raw.Text)
		if err != nil {
			return nil, err
		}
		e.Speed = speed
		e.Text = ""
	}
	return e, nil
}

// NewHold builds a paired hold and returns its start half. The end row is
// inclusive and must leave at least one row of length.
func NewHold(lane, startRow, endRow int, roll bool) (*Event, error) {
	if startRow < 0 || endRow-startRow < 1 {
		return nil, fmt.Errorf("hold rows [%v,%v] need a length of at least one row", startRow, endRow)
	}
	if lane < 0 || lane >= maxLanes {
		return nil, fmt.Errorf("hold lane %v, want 0..%v", lane, maxLanes-1)
	}
	start := &Event{Kind: model.KindHoldStart, Row: startRow, Lane: lane, IsRoll: roll}
	end := &Event{Kind: model.KindHoldEnd, Row: endRow, Lane: lane}
	start.Pair = end
	end.Pair = start
	return start, nil
}

// toRaw converts back to the interchange form for materialization.
func (e *Event) toRaw() model.RawEvent {
	raw := model.RawEvent{
		Kind:         e.Kind,
		Row:          e.Row,
		Lane:         e.Lane,
		BPM:          e.BPM,
		Seconds:      e.Seconds,
		StartSeconds: e.StartSeconds,
		LengthRows:   e.LengthRows,
		Rate:         e.Rate,
		Numerator:    e.Numerator,
		Denominator:  e.Denominator,
		Ticks:        e.Ticks,
		HitMult:      e.HitMult,
		MissMult:     e.MissMult,
		IsRoll:       e.IsRoll,
		Text:         e.Text,
	}
	if e.Kind == model.KindInterpolatedRate {
		raw.Text = e.Speed.String()
	}
	return raw
}
