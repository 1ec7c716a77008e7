package constants

import "os"

func GetSnapshotDir() string {
	path := os.Getenv("CHART_SNAPSHOT_PATH")
	if path != "" {
		return path
	}
	return "./out"
}

// RowsPerMeasure is the fixed subdivision of one 4/4 measure. Every chart
// position is an integer count of these rows, so a quarter note is 48 rows
// and a 192nd note is the finest representable step.
const RowsPerMeasure = 192

const RowsPerBeat = RowsPerMeasure / 4

// MaxLanes bounds the per-lane arrays used by hold and input queries.
const MaxLanes = 16

const DefaultLanes = 4

// Values seeded at row 0 when a chart carries no explicit events for them.
const DefaultTempo = 120.0
const DefaultScrollRate = 1.0
const DefaultTickCount = 4
const DefaultHitMultiplier = 1
const DefaultMissMultiplier = 1
const DefaultTimeSigNumerator = 4
const DefaultTimeSigDenominator = 4
