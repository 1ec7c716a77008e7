package chart

import (
	"math"

	"chartcore/model"
)

// FindActiveRateAlteringEventForPosition returns the rate altering event
// governing row: the greatest one before it, at or before it when
// allowEqual. Positions before every event fall back to the first one.
func (c *Chart) FindActiveRateAlteringEventForPosition(row int, allowEqual bool) *Event {
	cur := c.rateAltering.FindGreatestPreceding(row, allowEqual)
	if cur == nil {
		return c.rateAltering.First()
	}
	return cur.Event()
}

// FindActiveRateAlteringEventForTime is the time axis counterpart,
// comparing against snapshot times.
func (c *Chart) FindActiveRateAlteringEventForTime(t float64, allowEqual bool) *Event {
	cur := c.rateAltering.greatestAtTime(t, allowEqual)
	if cur == nil {
		return c.rateAltering.First()
	}
	return cur.Event()
}

// GetRegionsOverlapping returns every region event whose span covers the
// given spot, probed on the axis native to each kind: warps and pattern
// markers span rows, stops, delays and fakes span time, as does the
// preview region. Spans are half open, start included, end excluded.
// Stops stacked on one row spend their pauses in sequence, so their
// spans tile the combined pause.
func (c *Chart) GetRegionsOverlapping(row int, t float64) []*Event {
	var res []*Event

	scanRows := func(tree *Tree, maxRows int) {
		cur := tree.FindGreatestPreceding(row, true)
		for cur != nil {
			e := cur.Event()
			if e == nil || row-e.Row >= maxRows {
				break
			}
			if row < e.Row+e.LengthRows {
				res = append(res, e)
			}
			if !cur.MovePrev() {
				break
			}
		}
	}
	scanRows(c.warps, c.maxWarpRows)
	scanRows(c.patterns, c.maxPatternRows)

	timeRow := int(math.Floor(c.PositionForTime(t)))
	scanTime := func(tree *Tree, maxSeconds float64, spanOf func(*Event) (float64, float64)) {
		cur := tree.FindGreatestPreceding(timeRow, true)
		for cur != nil {
			e := cur.Event()
			if e == nil || (e.ChartTime <= t && t-e.ChartTime >= maxSeconds) {
				break
			}
			if from, to := spanOf(e); from <= t && t < to {
				res = append(res, e)
			}
			if !cur.MovePrev() {
				break
			}
		}
	}
	scanTime(c.stops, c.maxStopSeconds, func(e *Event) (float64, float64) {
		// the snapshot's pending stop time places this stop's slice of
		// the pause behind its same-row predecessors
		to := e.timing.Time + e.timing.StopTimeRemaining
		from := to - e.Seconds
		if from < e.timing.Time {
			from = e.timing.Time
		}
		return from, to
	})
	scanTime(c.delays, c.maxDelaySeconds, func(e *Event) (float64, float64) {
		return e.ChartTime, e.ChartTime + e.Seconds
	})
	scanTime(c.fakes, c.maxFakeSeconds, func(e *Event) (float64, float64) {
		return e.ChartTime, c.TimeForPosition(float64(e.Row + e.LengthRows))
	})

	if c.preview != nil && c.previewStart <= t && t < c.previewStart+c.previewLength {
		res = append(res, c.preview)
	}

	return sortEventBatch(res)
}

// GetHoldsOverlapping returns, lane by lane, the hold covering row, nil
// for lanes without one. Both endpoints count as covered. The scan walks
// hold starts backwards and stops once every lane has answered.
func (c *Chart) GetHoldsOverlapping(row int) []*Event {
	res := make([]*Event, c.lanes)
	seen := make([]bool, c.lanes)
	remaining := c.lanes
	cur := c.holds.FindGreatestPreceding(row, true)
	for cur != nil && remaining > 0 {
		e := cur.Event()
		if e == nil {
			break
		}
		if e.Lane < c.lanes && !seen[e.Lane] {
			seen[e.Lane] = true
			remaining--
			if e.Pair.Row >= row {
				res[e.Lane] = e
			}
		}
		if !cur.MovePrev() {
			break
		}
	}
	return res
}

// NextInput is one lane's answer from GetNextInputs: the event the player
// must act on and the row it lands on. Release marks the let-go point of
// a hold already in progress, carried by the hold's end event. A lane
// with nothing ahead reports a nil event and row -1.
type NextInput struct {
	Row     int
	Event   *Event
	Release bool
}

// GetNextInputs returns, lane by lane, the next input at or after row:
// the first tap or hold start ahead, or the release of a hold already
// underway when the lane is occupied. Mines ask for avoidance rather
// than input and never count.
func (c *Chart) GetNextInputs(row int) []NextInput {
	res := make([]NextInput, c.lanes)
	seen := make([]bool, c.lanes)
	remaining := c.lanes
	for lane := range res {
		res[lane] = NextInput{Row: -1}
	}

	for lane, h := range c.GetHoldsOverlapping(row) {
		if h == nil || h.Row >= row {
			// a hold starting right here is a press, the scan below finds it
			continue
		}
		res[lane] = NextInput{Row: h.Pair.Row, Event: h.Pair, Release: true}
		seen[lane] = true
		remaining--
	}

	cur := c.events.firstAtOrAfter(row)
	for cur != nil && remaining > 0 {
		e := cur.Event()
		if e == nil {
			break
		}
		if e.IsLane() && e.Lane < c.lanes && !seen[e.Lane] {
			switch e.Kind {
			case model.KindTap, model.KindHoldStart:
				res[e.Lane] = NextInput{Row: e.Row, Event: e}
				seen[e.Lane] = true
				remaining--
			}
		}
		if !cur.MoveNext() {
			break
		}
	}
	return res
}

// InterpolatedScrollRateAt evaluates the interpolated scroll rate at a
// spot, easing linearly from the governing event's starting rate to its
// target over its period, in rows or in seconds as the event prefers.
// 1.0 with no event in effect.
func (c *Chart) InterpolatedScrollRateAt(row int, t float64) float64 {
	cur := c.interpolated.FindGreatestPreceding(row, true)
	if cur == nil {
		return 1.0
	}
	e := cur.Event()
	if e == nil {
		return 1.0
	}
	var frac float64
	if e.Speed.OverTime {
		if e.Speed.PeriodSeconds <= 0 {
			return e.Speed.Rate
		}
		frac = (t - e.ChartTime) / e.Speed.PeriodSeconds
	} else {
		if e.Speed.PeriodRows <= 0 {
			return e.Speed.Rate
		}
		frac = float64(row-e.Row) / float64(e.Speed.PeriodRows)
	}
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	return e.PreviousRate + (e.Speed.Rate-e.PreviousRate)*frac
}
