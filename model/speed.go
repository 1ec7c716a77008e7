package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SpeedDescriptor is the editable form of an interpolated scroll rate: the
// target rate and the window over which the previous rate blends into it.
// The window is measured in rows or in seconds, e.g. "1.5x/4.000s" or
// "2x/192rows". A zero window switches instantly.
type SpeedDescriptor struct {
	Rate          float64
	PeriodRows    int
	PeriodSeconds float64
	OverTime      bool
}

// ParseSpeed parses a descriptor string. It rejects anything malformed so
// callers can refuse the edit without touching chart state.
func ParseSpeed(s string) (SpeedDescriptor, error) {
	var d SpeedDescriptor
	ratePart, periodPart, ok := strings.Cut(s, "/")
	if !ok {
		return d, fmt.Errorf("invalid speed %q: want <rate>x/<period>s or <rate>x/<period>rows", s)
	}
	if !strings.HasSuffix(ratePart, "x") {
		return d, fmt.Errorf("invalid speed %q: rate needs an x suffix", s)
	}
	rate, err := strconv.ParseFloat(strings.TrimSuffix(ratePart, "x"), 64)
	if err != nil || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return d, fmt.Errorf("invalid speed %q: bad rate", s)
	}
	d.Rate = rate

	switch {
	// check rows before s, "rows" ends with an s too
	case strings.HasSuffix(periodPart, "rows"):
		rows, err := strconv.Atoi(strings.TrimSuffix(periodPart, "rows"))
		if err != nil || rows < 0 {
			return d, fmt.Errorf("invalid speed %q: bad row period", s)
		}
		d.PeriodRows = rows
	case strings.HasSuffix(periodPart, "s"):
		secs, err := strconv.ParseFloat(strings.TrimSuffix(periodPart, "s"), 64)
		if err != nil || math.IsNaN(secs) || math.IsInf(secs, 0) || secs < 0 {
			return d, fmt.Errorf("invalid speed %q: bad time period", s)
		}
		d.PeriodSeconds = secs
		d.OverTime = true
	default:
		return d, fmt.Errorf("invalid speed %q: period needs an s or rows suffix", s)
	}
	return d, nil
}

func (d SpeedDescriptor) String() string {
	if d.OverTime {
		return fmt.Sprintf("%gx/%.3fs", d.Rate, d.PeriodSeconds)
	}
	return fmt.Sprintf("%gx/%drows", d.Rate, d.PeriodRows)
}
