package model

import (
	"fmt"
	"math"

	"chartcore/constants"
)

// RawEvent is the flat interchange form of a chart event, used by loaders,
// the materialize walk and snapshot files. Which payload fields are
// meaningful depends on Kind. Holds appear as separate start and end rows;
// interpolated rate events carry their descriptor in Text.
type RawEvent struct {
	Kind EventKind
	Row  int
	Lane int

	BPM          float64 // KindTempo
	Seconds      float64 // KindStop, KindDelay, KindPreview length
	StartSeconds float64 // KindPreview
	LengthRows   int     // KindWarp, KindFakeRegion, KindPattern
	Rate         float64 // KindScrollRate
	Numerator    int     // KindTimeSignature
	Denominator  int     // KindTimeSignature
	Ticks        int     // KindTickCount
	HitMult      int     // KindMultipliers
	MissMult     int     // KindMultipliers
	IsRoll       bool    // KindHoldStart
	Text         string  // KindLabel, KindPattern name, KindInterpolatedRate descriptor
}

// Validate checks the payload for the event's kind. maxLanes bounds the lane
// of lane events; the owning chart may restrict it further.
func (e RawEvent) Validate(maxLanes int) error {
	if e.Row < 0 {
		return fmt.Errorf("%v at negative row %v", e.Kind, e.Row)
	}
	if e.Kind.IsLane() && (e.Lane < 0 || e.Lane >= maxLanes) {
		return fmt.Errorf("%v at row %v has lane %v, want 0..%v", e.Kind, e.Row, e.Lane, maxLanes-1)
	}
	switch e.Kind {
	case KindTap, KindHoldStart, KindHoldEnd, KindMine, KindLabel:
		// no payload beyond the lane and free text
	case KindTempo:
		if !ValidTempo(e.BPM) {
			return fmt.Errorf("tempo at row %v has bpm %v", e.Row, e.BPM)
		}
	case KindStop:
		if !ValidPause(KindStop, e.Seconds) {
			return fmt.Errorf("stop at row %v has length %v", e.Row, e.Seconds)
		}
	case KindDelay:
		if !ValidPause(KindDelay, e.Seconds) {
			return fmt.Errorf("delay at row %v has length %v", e.Row, e.Seconds)
		}
	case KindWarp, KindFakeRegion, KindPattern:
		if e.LengthRows <= 0 {
			return fmt.Errorf("%v at row %v has length %v rows", e.Kind, e.Row, e.LengthRows)
		}
	case KindScrollRate:
		if !isFinite(e.Rate) {
			return fmt.Errorf("scroll rate at row %v has rate %v", e.Row, e.Rate)
		}
	case KindInterpolatedRate:
		if _, err := ParseSpeed(e.Text); err != nil {
			return err
		}
	case KindTimeSignature:
		if e.Numerator < 1 || e.Denominator < 1 || constants.RowsPerMeasure%e.Denominator != 0 {
			return fmt.Errorf("time signature %v/%v at row %v", e.Numerator, e.Denominator, e.Row)
		}
	case KindTickCount:
		if e.Ticks < 0 {
			return fmt.Errorf("tick count at row %v is %v", e.Row, e.Ticks)
		}
	case KindMultipliers:
		if e.HitMult < 0 || e.MissMult < 0 {
			return fmt.Errorf("multipliers at row %v are %vx/%vx", e.Row, e.HitMult, e.MissMult)
		}
	case KindPreview:
		if !isFinite(e.Seconds) || e.Seconds < 0 || !isFinite(e.StartSeconds) || e.StartSeconds < 0 {
			return fmt.Errorf("preview region %v+%v", e.StartSeconds, e.Seconds)
		}
	default:
		return fmt.Errorf("unknown event kind %d at row %v", int(e.Kind), e.Row)
	}
	return nil
}

// ValidTempo reports whether bpm can drive the timing sweep.
func ValidTempo(bpm float64) bool {
	return isFinite(bpm) && bpm > 0
}

// ValidPause reports whether secs is a usable pause for the kind. Stops
// take any nonzero finite length, negative ones acting as time debt;
// delays must be positive.
func ValidPause(kind EventKind, secs float64) bool {
	if !isFinite(secs) {
		return false
	}
	if kind == KindDelay {
		return secs > 0
	}
	return secs != 0
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
