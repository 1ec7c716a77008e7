package action

import (
	"fmt"

	"chartcore/chart"
	"chartcore/model"
)

// Action is one undoable edit against a chart. Actions capture the event
// sets their first run added and displaced, and undo and redo replay
// those exact objects, so references held by actions deeper in the
// history stay valid.
type Action interface {
	Do(c *chart.Chart)
	Undo(c *chart.Chart)
	Description() string
}

// deletable strips what an undo cannot delete outright: hold ends go
// with their starts, and the fixed row 0 events are swapped back by
// force re-adding their displaced originals.
func deletable(events []*chart.Event) []*chart.Event {
	res := make([]*chart.Event, 0, len(events))
	for _, e := range events {
		if e.Kind == model.KindHoldEnd {
			continue
		}
		if e.Row == 0 && chart.IsSingletonKind(e.Kind) {
			continue
		}
		res = append(res, e)
	}
	return res
}

// AddEvents places a batch of events the way a paste does, displacing
// whatever is in the way. Redo replays the resolved set through the same
// force placement, so the identical objects land and the identical
// objects are displaced.
type AddEvents struct {
	Events []*chart.Event

	added   []*chart.Event
	deleted []*chart.Event
	applied bool
}

func (a *AddEvents) Do(c *chart.Chart) {
	if !a.applied {
		a.applied = true
		a.added, a.deleted = c.ForceAddEvents(a.Events)
		return
	}
	c.ForceAddEvents(a.added)
}

// Undo deletes what the batch landed and force re-adds what it displaced.
// A fixed row 0 event cannot be deleted; a batch that replaced one gets
// its original object back through the same force placement, so
// references held by older actions stay valid.
func (a *AddEvents) Undo(c *chart.Chart) {
	c.DeleteEvents(deletable(a.added))
	if len(a.deleted) > 0 {
		c.ForceAddEvents(a.deleted)
	}
}

func (a *AddEvents) Description() string {
	return fmt.Sprintf("add %v events", len(a.Events))
}

// DeleteEvents removes a batch of events.
type DeleteEvents struct {
	Events []*chart.Event

	removed []*chart.Event
	applied bool
}

func (a *DeleteEvents) Do(c *chart.Chart) {
	removed := c.DeleteEvents(a.Events)
	if !a.applied {
		a.applied = true
		a.removed = removed
	}
}

func (a *DeleteEvents) Undo(c *chart.Chart) {
	c.AddEvents(a.removed)
}

func (a *DeleteEvents) Description() string {
	return fmt.Sprintf("delete %v events", len(a.Events))
}

// SetTempo changes a tempo event's BPM. A target that cannot drive the
// timing sweep is refused and the whole action is inert.
type SetTempo struct {
	Event *chart.Event
	Old   float64
	New   float64
}

func (a *SetTempo) Do(c *chart.Chart) {
	if !model.ValidTempo(a.New) {
		return
	}
	a.Event.BPM = a.New
	c.EventModified(a.Event)
}

func (a *SetTempo) Undo(c *chart.Chart) {
	if !model.ValidTempo(a.New) {
		return
	}
	a.Event.BPM = a.Old
	c.EventModified(a.Event)
}

func (a *SetTempo) Description() string {
	return fmt.Sprintf("set tempo to %g", a.New)
}

// SetTimeSignature changes a time signature's meter. Later signatures
// knocked off their measure boundary by the change are deleted with it;
// undo restores the old meter and brings them back.
type SetTimeSignature struct {
	Event  *chart.Event
	OldNum int
	OldDen int
	NewNum int
	NewDen int

	cascade []*chart.Event
	applied bool
}

func (a *SetTimeSignature) Do(c *chart.Chart) {
	a.Event.Numerator = a.NewNum
	a.Event.Denominator = a.NewDen
	removed := c.EventModified(a.Event)
	if !a.applied {
		a.applied = true
		a.cascade = removed
	}
}

func (a *SetTimeSignature) Undo(c *chart.Chart) {
	a.Event.Numerator = a.OldNum
	a.Event.Denominator = a.OldDen
	c.AddEvents(a.cascade)
	c.EventModified(a.Event)
}

func (a *SetTimeSignature) Description() string {
	return fmt.Sprintf("set time signature to %v/%v", a.NewNum, a.NewDen)
}

// SetStopLength changes the pause of a stop or delay event. An unusable
// length is refused and the whole action is inert.
type SetStopLength struct {
	Event *chart.Event
	Old   float64
	New   float64
}

func (a *SetStopLength) Do(c *chart.Chart) {
	if !model.ValidPause(a.Event.Kind, a.New) {
		return
	}
	a.Event.Seconds = a.New
	c.EventModified(a.Event)
}

func (a *SetStopLength) Undo(c *chart.Chart) {
	if !model.ValidPause(a.Event.Kind, a.New) {
		return
	}
	a.Event.Seconds = a.Old
	c.EventModified(a.Event)
}

func (a *SetStopLength) Description() string {
	return fmt.Sprintf("set stop to %.3fs", a.New)
}

// SetLabel renames a label event.
type SetLabel struct {
	Event *chart.Event
	Old   string
	New   string
}

func (a *SetLabel) Do(c *chart.Chart) {
	a.Event.Text = a.New
	c.EventModified(a.Event)
}

func (a *SetLabel) Undo(c *chart.Chart) {
	a.Event.Text = a.Old
	c.EventModified(a.Event)
}

func (a *SetLabel) Description() string {
	return "set label to " + a.New
}

// SetSpeed changes an interpolated scroll event's target.
type SetSpeed struct {
	Event *chart.Event
	Old   model.SpeedDescriptor
	New   model.SpeedDescriptor
}

func (a *SetSpeed) Do(c *chart.Chart) {
	a.Event.Speed = a.New
	c.EventModified(a.Event)
}

func (a *SetSpeed) Undo(c *chart.Chart) {
	a.Event.Speed = a.Old
	c.EventModified(a.Event)
}

func (a *SetSpeed) Description() string {
	return "set speed to " + a.New.String()
}

// SetPreview moves the preview region.
type SetPreview struct {
	OldStart  float64
	OldLength float64
	NewStart  float64
	NewLength float64
}

func (a *SetPreview) Do(c *chart.Chart) {
	c.SetPreview(a.NewStart, a.NewLength)
}

func (a *SetPreview) Undo(c *chart.Chart) {
	c.SetPreview(a.OldStart, a.OldLength)
}

func (a *SetPreview) Description() string {
	return fmt.Sprintf("set preview to %.3fs", a.NewStart)
}

// Queue is a bounded undo history. Done actions push onto the undo stack
// and clear the redo stack; past the limit the oldest falls off.
type Queue struct {
	limit int
	undo  []Action
	redo  []Action
}

func NewQueue(limit int) *Queue {
	if limit < 1 {
		panic(fmt.Sprintf("action queue limit %v, want at least 1", limit))
	}
	return &Queue{limit: limit}
}

func (q *Queue) Do(c *chart.Chart, a Action) {
	a.Do(c)
	q.undo = append(q.undo, a)
	if len(q.undo) > q.limit {
		q.undo = append(q.undo[:0], q.undo[1:]...)
	}
	q.redo = q.redo[:0]
}

func (q *Queue) Undo(c *chart.Chart) bool {
	if len(q.undo) == 0 {
		return false
	}
	a := q.undo[len(q.undo)-1]
	q.undo = q.undo[:len(q.undo)-1]
	a.Undo(c)
	q.redo = append(q.redo, a)
	return true
}

func (q *Queue) Redo(c *chart.Chart) bool {
	if len(q.redo) == 0 {
		return false
	}
	a := q.redo[len(q.redo)-1]
	q.redo = q.redo[:len(q.redo)-1]
	a.Do(c)
	q.undo = append(q.undo, a)
	return true
}

func (q *Queue) CanUndo() bool {
	return len(q.undo) > 0
}

func (q *Queue) CanRedo() bool {
	return len(q.redo) > 0
}

// UndoDescription names the action Undo would take back, empty when the
// stack is empty. RedoDescription mirrors it.
func (q *Queue) UndoDescription() string {
	if len(q.undo) == 0 {
		return ""
	}
	return q.undo[len(q.undo)-1].Description()
}

func (q *Queue) RedoDescription() string {
	if len(q.redo) == 0 {
		return ""
	}
	return q.redo[len(q.redo)-1].Description()
}
