package model

// EventKind discriminates every event a chart can hold. Lane kinds occupy a
// lane; every other kind is a misc event keyed by row alone.
type EventKind int

const (
	KindTap EventKind = iota
	KindHoldStart
	KindHoldEnd
	KindMine
	KindTempo
	KindStop
	KindDelay
	KindWarp
	KindScrollRate
	KindInterpolatedRate
	KindTimeSignature
	KindTickCount
	KindMultipliers
	KindFakeRegion
	KindLabel
	KindPreview
	KindPattern
)

func (k EventKind) String() string {
	switch k {
	case KindTap:
		return "Tap"
	case KindHoldStart:
		return "HoldStart"
	case KindHoldEnd:
		return "HoldEnd"
	case KindMine:
		return "Mine"
	case KindTempo:
		return "Tempo"
	case KindStop:
		return "Stop"
	case KindDelay:
		return "Delay"
	case KindWarp:
		return "Warp"
	case KindScrollRate:
		return "ScrollRate"
	case KindInterpolatedRate:
		return "InterpolatedRate"
	case KindTimeSignature:
		return "TimeSignature"
	case KindTickCount:
		return "TickCount"
	case KindMultipliers:
		return "Multipliers"
	case KindFakeRegion:
		return "FakeRegion"
	case KindLabel:
		return "Label"
	case KindPreview:
		return "Preview"
	case KindPattern:
		return "Pattern"
	}
	return "Unknown"
}

// IsLane reports whether events of this kind occupy a lane.
func (k EventKind) IsLane() bool {
	switch k {
	case KindTap, KindHoldStart, KindHoldEnd, KindMine:
		return true
	}
	return false
}

// IsRateAltering reports whether events of this kind change the row to time
// mapping.
func (k EventKind) IsRateAltering() bool {
	switch k {
	case KindTempo, KindStop, KindDelay, KindWarp, KindScrollRate, KindTimeSignature:
		return true
	}
	return false
}
