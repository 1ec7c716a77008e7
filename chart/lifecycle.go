package chart

import (
	"sort"

	"chartcore/model"
)

// IsSingletonKind reports whether events of this kind are fixed row 0
// singletons, replaceable through ForceAddEvents but never added or
// deleted outright.
func IsSingletonKind(k model.EventKind) bool {
	for _, s := range singletonKinds {
		if k == s {
			return true
		}
	}
	return false
}

// insertEvent adds e to the master tree and every view its kind belongs
// to, assigning a sequence number on first insert. Re-inserted events
// keep their old sequence so their position among equals is stable across
// delete and undo.
func (c *Chart) insertEvent(e *Event) {
	if e.seq == 0 {
		c.nextSeq++
		e.seq = c.nextSeq
	}
	c.events.insert(e)
	if e.IsLane() {
		if e.Kind == model.KindHoldStart {
			c.holds.insert(e)
		}
		return
	}
	c.miscEvents.insert(e)
	if e.IsRateAltering() {
		c.rateAltering.insert(e)
	}
	switch e.Kind {
	case model.KindStop:
		c.stops.insert(e)
	case model.KindDelay:
		c.delays.insert(e)
	case model.KindWarp:
		c.warps.insert(e)
	case model.KindFakeRegion:
		c.fakes.insert(e)
	case model.KindInterpolatedRate:
		c.interpolated.insert(e)
	case model.KindPattern:
		c.patterns.insert(e)
	}
}

func (c *Chart) removeEvent(e *Event) bool {
	if !c.events.remove(e) {
		return false
	}
	if e.IsLane() {
		if e.Kind == model.KindHoldStart {
			c.holds.remove(e)
		}
		return true
	}
	c.miscEvents.remove(e)
	if e.IsRateAltering() {
		c.rateAltering.remove(e)
	}
	switch e.Kind {
	case model.KindStop:
		c.stops.remove(e)
	case model.KindDelay:
		c.delays.remove(e)
	case model.KindWarp:
		c.warps.remove(e)
	case model.KindFakeRegion:
		c.fakes.remove(e)
	case model.KindInterpolatedRate:
		c.interpolated.remove(e)
	case model.KindPattern:
		c.patterns.remove(e)
	}
	return true
}

// deleteForCascade removes e and everything bound to it: a hold start
// takes its end along, an interpolated scroll hands its rate chain to the
// neighbors. Returns every event actually detached. Callers notify.
func (c *Chart) deleteForCascade(e *Event) []*Event {
	if !c.removeEvent(e) {
		panic("Could not delete event not in chart: " + e.Kind.String())
	}
	removed := []*Event{e}
	if e.Kind == model.KindHoldStart && e.Pair != nil {
		c.removeEvent(e.Pair)
		removed = append(removed, e.Pair)
	}
	if e.Kind == model.KindInterpolatedRate {
		c.repairInterpolatedAfterDelete(e)
	}
	return removed
}

func sortEventBatch(events []*Event) []*Event {
	batch := make([]*Event, len(events))
	copy(batch, events)
	sort.SliceStable(batch, func(i, j int) bool {
		if batch[i].Row != batch[j].Row {
			return batch[i].Row < batch[j].Row
		}
		if kindOrder(batch[i].Kind) != kindOrder(batch[j].Kind) {
			return kindOrder(batch[i].Kind) < kindOrder(batch[j].Kind)
		}
		return batch[i].Lane < batch[j].Lane
	})
	return batch
}

// checkAddable panics on events that can never go through an add call.
// It reports false for a hold end riding along with its start, which the
// start's insert already covers.
func checkAddable(e *Event, startsInBatch map[*Event]bool) bool {
	if e == nil {
		panic("Could not add nil event")
	}
	switch e.Kind {
	case model.KindPreview:
		panic("Preview markers are derived, set the preview region instead")
	case model.KindHoldEnd:
		if e.Pair != nil && startsInBatch[e.Pair] {
			return false
		}
		panic("Add holds by their start event")
	case model.KindHoldStart:
		if e.Pair == nil {
			panic("Hold start has no end")
		}
	}
	return true
}

// AddEvents inserts a batch the caller already knows is conflict free and
// returns what was added plus anything cascade-deleted by the timing
// recompute. A batch event the recompute itself invalidates never became
// visible, so it is left out of both sets. A time signature off its
// measure boundary is refused and left out of the added set. Adding over
// an existing note or duplicating a one-per-row event is the caller's
// bug; use ForceAddEvents when the target rows may be occupied.
func (c *Chart) AddEvents(events []*Event) (added, removed []*Event) {
	batch := sortEventBatch(events)
	startsInBatch := map[*Event]bool{}
	for _, e := range batch {
		if e != nil && e.Kind == model.KindHoldStart {
			startsInBatch[e] = true
		}
	}

	touchedRate := false
	for _, e := range batch {
		if !checkAddable(e, startsInBatch) {
			continue
		}
		if e.Row == 0 && IsSingletonKind(e.Kind) {
			panic("Row 0 " + e.Kind.String() + " is fixed, modify it instead")
		}
		if e.Kind == model.KindTimeSignature && !c.timeSignatureRowValid(e.Row) {
			continue
		}
		c.insertEvent(e)
		if e.Kind == model.KindHoldStart {
			c.insertEvent(e.Pair)
		}
		added = append(added, e)
		if e.IsRateAltering() {
			touchedRate = true
		}
		if e.Kind == model.KindInterpolatedRate {
			c.repairInterpolatedAround(e)
		}
	}

	if touchedRate {
		added, removed = reconcileCascade(added, c.updateTimingData())
	} else {
		for _, e := range added {
			e.ChartTime = c.TimeForPosition(float64(e.Row))
			if e.Kind == model.KindHoldStart {
				e.Pair.ChartTime = c.TimeForPosition(float64(e.Pair.Row))
			}
		}
	}
	c.notifyAdded(added)
	c.notifyDeleted(removed)
	if touchedRate {
		c.notifyTimingRecomputed()
	}
	return added, removed
}

func (c *Chart) AddEvent(e *Event) (added, removed []*Event) {
	return c.AddEvents([]*Event{e})
}

// DeleteEvents removes the given events and returns everything removed,
// the requested ones and the full cascade behind them. Deleting an event
// that is not in the chart, a hold end, the preview marker or a fixed
// row 0 event is a caller bug and panics.
func (c *Chart) DeleteEvents(events []*Event) []*Event {
	var removed []*Event
	touchedRate := false
	for _, e := range events {
		if e == nil {
			panic("Could not delete nil event")
		}
		if e.Kind == model.KindHoldEnd {
			panic("Delete holds by their start event")
		}
		if e.Kind == model.KindPreview {
			panic("Preview markers are derived, set the preview region instead")
		}
		if e.Row == 0 && IsSingletonKind(e.Kind) {
			panic("Row 0 " + e.Kind.String() + " is fixed, modify it instead")
		}
		if e.IsRateAltering() {
			touchedRate = true
		}
		removed = append(removed, c.deleteForCascade(e)...)
	}
	if touchedRate {
		removed = append(removed, c.updateTimingData()...)
	}
	c.notifyDeleted(removed)
	if touchedRate {
		c.notifyTimingRecomputed()
	}
	return removed
}

func (c *Chart) DeleteEvent(e *Event) []*Event {
	return c.DeleteEvents([]*Event{e})
}

// ForceAddEvents inserts a batch into possibly occupied rows, resolving
// every conflict in favor of the incoming events: notes under a new note
// or hold are deleted, a hold reaching into a new note is cut short just
// before it, and a one-per-row event replaces its same-row same-kind
// predecessor. The added set holds what landed, replacement holds from
// truncation included; the deleted set holds every casualty that predates
// the call. A batch event killed by its own recompute cascade counts as
// neither. The two together are exactly what an undo needs.
func (c *Chart) ForceAddEvents(events []*Event) (added, deleted []*Event) {
	batch := sortEventBatch(events)
	startsInBatch := map[*Event]bool{}
	for _, e := range batch {
		if e != nil && e.Kind == model.KindHoldStart {
			startsInBatch[e] = true
		}
	}

	for _, e := range batch {
		if !checkAddable(e, startsInBatch) {
			continue
		}
		if e.IsLane() {
			c.forcePlaceLane(e, &added, &deleted)
		} else {
			c.forcePlaceMisc(e, &added, &deleted)
		}
	}

	touchedRate := false
	for _, e := range added {
		if e.IsRateAltering() {
			touchedRate = true
		}
	}
	for _, e := range deleted {
		if e.IsRateAltering() {
			touchedRate = true
		}
	}

	if touchedRate {
		var prior []*Event
		added, prior = reconcileCascade(added, c.updateTimingData())
		deleted = append(deleted, prior...)
	} else {
		for _, e := range added {
			e.ChartTime = c.TimeForPosition(float64(e.Row))
			if e.Kind == model.KindHoldStart {
				e.Pair.ChartTime = c.TimeForPosition(float64(e.Pair.Row))
			}
		}
	}
	c.notifyAdded(added)
	c.notifyDeleted(deleted)
	if touchedRate {
		c.notifyTimingRecomputed()
	}
	return added, deleted
}

// forcePlaceLane clears the lane span the incoming note or hold covers,
// truncating a hold that reaches into it from an earlier row, then
// inserts it.
func (c *Chart) forcePlaceLane(e *Event, added, deleted *[]*Event) {
	startRow := e.Row
	endRow := e.Row
	if e.Kind == model.KindHoldStart {
		endRow = e.Pair.Row
	}

	if covering := c.coveringHold(e.Lane, startRow); covering != nil && covering.Row < startRow {
		*deleted = append(*deleted, c.deleteForCascade(covering)...)
		newEnd := startRow - 1
		if newEnd-covering.Row >= 1 {
			repl, err := NewHold(covering.Lane, covering.Row, newEnd, covering.IsRoll)
			if err != nil {
				panic("Could not rebuild truncated hold: " + err.Error())
			}
			c.insertEvent(repl)
			c.insertEvent(repl.Pair)
			*added = append(*added, repl)
		} else {
			tap := &Event{Kind: model.KindTap, Row: covering.Row, Lane: covering.Lane}
			c.insertEvent(tap)
			*added = append(*added, tap)
		}
	}

	var victims []*Event
	cur := c.events.firstAtOrAfter(startRow)
	for cur != nil {
		x := cur.Event()
		if x == nil || x.Row > endRow {
			break
		}
		if x.IsLane() && x.Lane == e.Lane && x.Kind != model.KindHoldEnd {
			victims = append(victims, x)
		}
		if !cur.MoveNext() {
			break
		}
	}
	for _, v := range victims {
		*deleted = append(*deleted, c.deleteForCascade(v)...)
	}

	c.insertEvent(e)
	if e.Kind == model.KindHoldStart {
		c.insertEvent(e.Pair)
	}
	*added = append(*added, e)
}

// forcePlaceMisc replaces any same-kind event on the row, which is also
// how the fixed row 0 events get new payloads through a force add. An
// off-boundary time signature is refused before anything is touched.
func (c *Chart) forcePlaceMisc(e *Event, added, deleted *[]*Event) {
	if e.Kind == model.KindTimeSignature && !c.timeSignatureRowValid(e.Row) {
		return
	}

	var old *Event
	cur := c.miscEvents.firstAtOrAfter(e.Row)
	for cur != nil {
		x := cur.Event()
		if x == nil || x.Row > e.Row {
			break
		}
		if x.Kind == e.Kind {
			old = x
			break
		}
		if !cur.MoveNext() {
			break
		}
	}
	if old != nil {
		*deleted = append(*deleted, c.deleteForCascade(old)...)
	}

	c.insertEvent(e)
	*added = append(*added, e)
	if e.Kind == model.KindInterpolatedRate {
		c.repairInterpolatedAround(e)
	}
}

// coveringHold returns the hold on lane whose span contains row. Holds on
// one lane never overlap, so the nearest start at or before row decides.
func (c *Chart) coveringHold(lane, row int) *Event {
	cur := c.holds.FindGreatestPreceding(row, true)
	for cur != nil {
		e := cur.Event()
		if e == nil {
			return nil
		}
		if e.Lane == lane {
			if e.Pair.Row >= row {
				return e
			}
			return nil
		}
		if !cur.MovePrev() {
			return nil
		}
	}
	return nil
}

// EventModified re-derives whatever depends on an event whose payload the
// caller just changed in place, returning anything cascade-deleted along
// the way. Row, lane and kind are part of the event's identity; moving an
// event is a delete plus an add.
func (c *Chart) EventModified(e *Event) []*Event {
	if !c.events.contains(e) {
		panic("Modified event is not in chart: " + e.Kind.String())
	}
	switch {
	case e.Kind == model.KindInterpolatedRate:
		c.repairInterpolatedAround(e)
		c.notifyModified(e)
		return nil
	case e.IsRateAltering():
		removed := c.updateTimingData()
		c.notifyModified(e)
		c.notifyDeleted(removed)
		c.notifyTimingRecomputed()
		return removed
	default:
		c.notifyModified(e)
		return nil
	}
}

// UpdateEventTimingData recomputes all derived timing from scratch and
// returns any events that had to go, invalidated time signatures mostly.
func (c *Chart) UpdateEventTimingData() []*Event {
	removed := c.updateTimingData()
	c.notifyDeleted(removed)
	c.notifyTimingRecomputed()
	return removed
}

// previousTimeSignature returns the last time signature strictly before
// row, nil at row 0.
func (c *Chart) previousTimeSignature(row int) *Event {
	cur := c.rateAltering.FindGreatestPreceding(row, false)
	for cur != nil {
		e := cur.Event()
		if e == nil {
			return nil
		}
		if e.Kind == model.KindTimeSignature {
			return e
		}
		if !cur.MovePrev() {
			return nil
		}
	}
	return nil
}

// timeSignatureRowValid reports whether row sits on a measure boundary of
// the signature governing it.
func (c *Chart) timeSignatureRowValid(row int) bool {
	prev := c.previousTimeSignature(row)
	if prev == nil {
		return true
	}
	return (row-prev.Row)%rowsPerMeasureOf(prev.Numerator, prev.Denominator) == 0
}

// repairInterpolatedAround rebuilds the previous-rate chain around an
// interpolated scroll that was just inserted or had its target changed:
// the event takes its predecessor's target as its starting rate and hands
// its own target to its successor.
func (c *Chart) repairInterpolatedAround(e *Event) {
	cur := c.interpolated.Find(e)
	if cur == nil {
		return
	}
	if cur.MovePrev() {
		e.PreviousRate = cur.Event().Speed.Rate
	} else {
		e.PreviousRate = e.Speed.Rate
	}
	cur = c.interpolated.Find(e)
	if cur.MoveNext() {
		cur.Event().PreviousRate = e.Speed.Rate
	}
}

// repairInterpolatedAfterDelete closes the chain over a removed event.
// Call after the removal; the gone event's neighbors find each other by
// position.
func (c *Chart) repairInterpolatedAfterDelete(gone *Event) {
	succ := c.interpolated.firstAtOrAfter(gone.Row)
	if succ == nil {
		return
	}
	e := succ.Event()
	if e == nil {
		return
	}
	if succ.MovePrev() {
		e.PreviousRate = succ.Event().Speed.Rate
	} else {
		e.PreviousRate = e.Speed.Rate
	}
}

func (c *Chart) repairAllInterpolated() {
	var prev *Event
	c.interpolated.each(func(e *Event) {
		if prev == nil {
			e.PreviousRate = e.Speed.Rate
		} else {
			e.PreviousRate = prev.Speed.Rate
		}
		prev = e
	})
}

func filterEvents(events, drop []*Event) []*Event {
	gone := map[*Event]bool{}
	for _, e := range drop {
		gone[e] = true
	}
	kept := events[:0]
	for _, e := range events {
		if !gone[e] {
			kept = append(kept, e)
		}
	}
	return kept
}

// reconcileCascade settles a recompute's casualties against the batch
// that triggered it. A batch event the cascade killed was never visible
// to the caller and leaves both result sets; casualties that predate the
// call stay in the deleted set.
func reconcileCascade(added, cascade []*Event) (kept, prior []*Event) {
	if len(cascade) == 0 {
		return added, nil
	}
	own := map[*Event]bool{}
	for _, e := range added {
		own[e] = true
	}
	for _, e := range cascade {
		if !own[e] {
			prior = append(prior, e)
		}
	}
	return filterEvents(added, cascade), prior
}
