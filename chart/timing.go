package chart

import (
	"math"

	"chartcore/constants"
	"chartcore/model"
	"chartcore/util"
)

// secondsPerRowFor derives the row duration from a tempo and the beat
// subdivision of the active time signature. The denominator decides how
// many rows one beat of the tempo spans, so the same BPM runs faster row
// wise under an x/8 signature than under x/4.
func secondsPerRowFor(bpm float64, sigDen int) float64 {
	rowsPerBeat := float64(constants.RowsPerMeasure / sigDen)
	return 60 / (bpm * rowsPerBeat)
}

func rowsPerMeasureOf(sigNum, sigDen int) int {
	return sigNum * (constants.RowsPerMeasure / sigDen)
}

// cleanRateAlteringEvents sweeps the rate altering view in order, rebuilds
// every event's cached timing snapshot and the chart's tempo statistics,
// and collects time signatures that no longer fall on a measure boundary
// of the signature seen before them. The caller deletes those and sweeps
// again until the pass comes back empty.
func (c *Chart) cleanRateAlteringEvents() []*Event {
	c.assertWellFormed()

	var (
		curRow  int
		curTime float64

		scrollRate    = constants.DefaultScrollRate
		tempo         = constants.DefaultTempo
		sigNum        = constants.DefaultTimeSigNumerator
		sigDen        = constants.DefaultTimeSigDenominator
		secondsPerRow = secondsPerRowFor(constants.DefaultTempo, constants.DefaultTimeSigDenominator)
		rowsPerSecond = 1 / secondsPerRowFor(constants.DefaultTempo, constants.DefaultTimeSigDenominator)

		warpRows int
		stopTime float64

		sawTempo  bool
		sawScroll bool
		preTempo  []*Event
		preScroll []*Event

		// the signature last seen in the sweep, valid or not, anchoring
		// the boundary check for the next one
		lastSigRow int
		lastSigNum = constants.DefaultTimeSigNumerator
		lastSigDen = constants.DefaultTimeSigDenominator

		invalid []*Event

		tempoDurations = map[float64]float64{}
		tempoOrder     []float64
		tempoSince     float64
	)

	// advance consumes rows up to toRow: warped rows first, which take no
	// time, then any pending stop. Positive stop time releases in full
	// before the remaining rows elapse; negative stop time is a debt that
	// eats the elapsed time of the rows themselves.
	advance := func(toRow int) {
		drow := toRow - curRow
		curRow = toRow
		if drow <= 0 {
			return
		}
		warped := drow
		if warped > warpRows {
			warped = warpRows
		}
		warpRows -= warped
		elapsed := float64(drow-warped) * secondsPerRow
		if stopTime > 0 {
			curTime += stopTime
			stopTime = 0
		}
		if stopTime < 0 {
			if elapsed+stopTime >= 0 {
				curTime += elapsed + stopTime
				stopTime = 0
			} else {
				stopTime += elapsed
			}
		} else {
			curTime += elapsed
		}
	}

	c.rateAltering.each(func(e *Event) {
		advance(e.Row)
		e.ChartTime = curTime

		switch e.Kind {
		case model.KindTempo:
			if sawTempo {
				tempoDurations[tempo] += curTime - tempoSince
			}
			tempo = e.BPM
			tempoSince = curTime
			if _, ok := tempoDurations[tempo]; !ok {
				tempoDurations[tempo] = 0
				tempoOrder = append(tempoOrder, tempo)
			}
			secondsPerRow = secondsPerRowFor(tempo, sigDen)
			rowsPerSecond = 1 / secondsPerRow
			if !sawTempo {
				sawTempo = true
				for _, p := range preTempo {
					p.timing.Tempo = tempo
					p.timing.SecondsPerRow = secondsPerRow
					p.timing.RowsPerSecond = rowsPerSecond
				}
				preTempo = nil
			}
		case model.KindStop:
			stopTime += e.Seconds
		case model.KindDelay:
			curTime += e.Seconds
		case model.KindWarp:
			if e.LengthRows > warpRows {
				warpRows = e.LengthRows
			}
		case model.KindScrollRate:
			scrollRate = e.Rate
			if !sawScroll {
				sawScroll = true
				for _, p := range preScroll {
					p.timing.ScrollRate = scrollRate
				}
				preScroll = nil
			}
		case model.KindTimeSignature:
			boundary := rowsPerMeasureOf(lastSigNum, lastSigDen)
			valid := (e.Row-lastSigRow)%boundary == 0
			lastSigRow = e.Row
			lastSigNum = e.Numerator
			lastSigDen = e.Denominator
			if !valid {
				invalid = append(invalid, e)
				return
			}
			sigNum = e.Numerator
			sigDen = e.Denominator
		}

		if !sawTempo && e.Kind != model.KindTempo {
			preTempo = append(preTempo, e)
		}
		if !sawScroll && e.Kind != model.KindScrollRate {
			preScroll = append(preScroll, e)
		}

		e.timing.Init(scrollRate, tempo, secondsPerRow, rowsPerSecond, sigNum, sigDen, warpRows, stopTime)
		e.timing.Row = e.Row
		e.timing.Time = curTime
		e.timing.PositionImmutable = e.Row == 0 &&
			(e.Kind == model.KindTempo || e.Kind == model.KindTimeSignature || e.Kind == model.KindScrollRate)
	})

	if sawTempo {
		tempoDurations[tempo] += curTime - tempoSince
	}
	c.minTempo = 0
	c.maxTempo = 0
	c.mostCommonTempo = 0
	if len(tempoOrder) > 0 {
		c.minTempo = tempoOrder[0]
		c.maxTempo = tempoOrder[0]
		c.mostCommonTempo = tempoOrder[0]
		best := tempoDurations[tempoOrder[0]]
		for _, bpm := range tempoOrder[1:] {
			if bpm < c.minTempo {
				c.minTempo = bpm
			}
			if bpm > c.maxTempo {
				c.maxTempo = bpm
			}
			if tempoDurations[bpm] > best {
				best = tempoDurations[bpm]
				c.mostCommonTempo = bpm
			}
		}
	}

	return invalid
}

// updateTimingData rebuilds all derived timing after a structural change:
// it re-sweeps the rate altering events until no invalid time signature
// remains, refreshes the chart time of everything else, and re-derives
// the preview marker. Events cascade-deleted along the way are returned,
// already detached; the caller reports them.
func (c *Chart) updateTimingData() []*Event {
	c.removePreviewMarker()
	var removed []*Event
	for {
		invalid := c.cleanRateAlteringEvents()
		if len(invalid) == 0 {
			break
		}
		for _, e := range invalid {
			removed = append(removed, c.deleteForCascade(e)...)
		}
	}
	c.refreshEventTimes()
	c.derivePreviewMarker()
	return removed
}

// refreshEventTimes recomputes the chart time of every event that does
// not carry its own timing snapshot, then the conservative span bounds
// the region queries use to cut their scans short.
func (c *Chart) refreshEventTimes() {
	c.events.each(func(e *Event) {
		if e.IsRateAltering() || e.Kind == model.KindPreview {
			return
		}
		e.ChartTime = c.TimeForPosition(float64(e.Row))
	})

	c.maxStopSeconds = 0
	c.stops.each(func(e *Event) {
		// stacked same-row stops spend their pauses in sequence, so the
		// span bound is the pending stop time, not the event's own length
		if pending := e.timing.StopTimeRemaining; pending > c.maxStopSeconds {
			c.maxStopSeconds = pending
		}
	})
	c.maxDelaySeconds = 0
	c.delays.each(func(e *Event) {
		if e.Seconds > c.maxDelaySeconds {
			c.maxDelaySeconds = e.Seconds
		}
	})
	c.maxWarpRows = 0
	c.warps.each(func(e *Event) {
		c.maxWarpRows = util.Max(c.maxWarpRows, e.LengthRows)
	})
	c.maxPatternRows = 0
	c.patterns.each(func(e *Event) {
		c.maxPatternRows = util.Max(c.maxPatternRows, e.LengthRows)
	})
	c.maxFakeSeconds = 0
	c.fakes.each(func(e *Event) {
		dur := c.TimeForPosition(float64(e.Row+e.LengthRows)) - e.ChartTime
		if dur > c.maxFakeSeconds {
			c.maxFakeSeconds = dur
		}
	})
}

func (c *Chart) removePreviewMarker() {
	if c.preview != nil {
		c.removeEvent(c.preview)
	}
}

// derivePreviewMarker places the preview marker at the row playing when
// the preview starts. The marker object is reused across recomputes so
// references to it stay valid; a zero length preview has no marker.
func (c *Chart) derivePreviewMarker() {
	if c.previewLength <= 0 {
		c.preview = nil
		return
	}
	row := int(math.Floor(c.PositionForTime(c.previewStart)))
	if row < 0 {
		row = 0
	}
	if c.preview == nil {
		c.preview = &Event{Kind: model.KindPreview}
	}
	c.preview.Row = row
	c.preview.StartSeconds = c.previewStart
	c.preview.Seconds = c.previewLength
	c.preview.ChartTime = c.previewStart
	c.insertEvent(c.preview)
}

// TimeForPosition converts a row, fractional rows included, to the chart
// time a note on that row would sound at. Rows inside a warp collapse to
// the warp's instant, rows during a stop sound before the stop's pause
// and rows at a delay sound after it.
func (c *Chart) TimeForPosition(row float64) float64 {
	anchor := c.rateAltering.FindGreatestPreceding(int(math.Floor(row)), true)
	if anchor == nil {
		snap := c.rateAltering.First().TimingSnapshot()
		return snap.Time + (row-float64(snap.Row))*snap.SecondsPerRow
	}
	snap := anchor.Event().TimingSnapshot()
	drow := row - float64(snap.Row)
	if drow <= 0 {
		return snap.Time
	}
	elapsed := (drow - float64(snap.WarpRowsRemaining)) * snap.SecondsPerRow
	if elapsed < 0 {
		elapsed = 0
	}
	if snap.StopTimeRemaining > 0 {
		return snap.Time + snap.StopTimeRemaining + elapsed
	}
	if snap.StopTimeRemaining < 0 {
		rest := elapsed + snap.StopTimeRemaining
		if rest < 0 {
			rest = 0
		}
		return snap.Time + rest
	}
	return snap.Time + elapsed
}

// PositionForTime converts a chart time to the row playing at that time.
// During a stop's pause the row holds at the stop; during a delay's wait
// it holds at the delay. The inverse of TimeForPosition up to those
// plateaus.
func (c *Chart) PositionForTime(t float64) float64 {
	anchor := c.rateAltering.greatestAtTime(t, true)
	if anchor == nil {
		snap := c.rateAltering.First().TimingSnapshot()
		return float64(snap.Row) + (t-snap.Time)*snap.RowsPerSecond
	}
	snap := anchor.Event().TimingSnapshot()
	dt := t - snap.Time
	if snap.StopTimeRemaining > 0 {
		if dt < snap.StopTimeRemaining {
			return float64(snap.Row)
		}
		dt -= snap.StopTimeRemaining
	}
	if snap.StopTimeRemaining < 0 {
		dt += -snap.StopTimeRemaining
	}
	row := float64(snap.Row+snap.WarpRowsRemaining) + dt*snap.RowsPerSecond

	// a delay further on pauses the row while time keeps running; never
	// extrapolate past the next rate altering event
	anchor.MoveNext()
	if next := anchor.Event(); next != nil && row > float64(next.Row) {
		row = float64(next.Row)
	}
	return row
}
