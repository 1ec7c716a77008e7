package midi

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"chartcore/model"
	"chartcore/sample"
)

func TestConvertsShortNotesToTaps(t *testing.T) {
	raws, err := Convert(sample.Create(120, 4), 4)

	assert := assert.New(t)
	assert.Nil(err)
	assert.Equal(raws, []model.RawEvent{
		{Kind: model.KindTempo, Row: 0, BPM: 120},
		{Kind: model.KindTimeSignature, Row: 0, Numerator: 4, Denominator: 4},
		{Kind: model.KindTap, Row: 0, Lane: 0},
		{Kind: model.KindTap, Row: 48, Lane: 1},
		{Kind: model.KindTap, Row: 96, Lane: 2},
		{Kind: model.KindTap, Row: 144, Lane: 3},
	})
}

func TestConvertsLongNotesToHolds(t *testing.T) {
	raws, err := Convert(sample.CreateWithHolds(120, 2, 1), 4)

	assert := assert.New(t)
	assert.Nil(err)
	assert.Equal(raws, []model.RawEvent{
		{Kind: model.KindTempo, Row: 0, BPM: 120},
		{Kind: model.KindTimeSignature, Row: 0, Numerator: 4, Denominator: 4},
		{Kind: model.KindTap, Row: 0, Lane: 0},
		{Kind: model.KindTap, Row: 48, Lane: 1},
		{Kind: model.KindHoldStart, Row: 96, Lane: 0},
		{Kind: model.KindHoldEnd, Row: 192, Lane: 0},
	})
}

func TestDropsNotesWhenEveryLaneIsHeld(t *testing.T) {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(480)
	var tr smf.Track
	tr.Add(0, smf.MetaTempo(120))
	tr.Add(0, gomidi.NoteOn(0, 60, 100))
	tr.Add(0, gomidi.NoteOn(0, 61, 100))
	tr.Add(480, gomidi.NoteOff(0, 60))
	tr.Add(0, gomidi.NoteOff(0, 61))
	tr.Close(0)
	s.Add(tr)

	raws, err := Convert(s, 1)

	assert := assert.New(t)
	assert.Nil(err)
	assert.Equal(raws, []model.RawEvent{
		{Kind: model.KindTempo, Row: 0, BPM: 120},
		{Kind: model.KindHoldStart, Row: 0, Lane: 0},
		{Kind: model.KindHoldEnd, Row: 48, Lane: 0},
	})
}

func TestUnclosedNotesComeOutAsTaps(t *testing.T) {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(480)
	var tr smf.Track
	tr.Add(0, smf.MetaTempo(120))
	tr.Add(0, gomidi.NoteOn(0, 60, 100))
	tr.Close(480)
	s.Add(tr)

	raws, err := Convert(s, 4)

	assert := assert.New(t)
	assert.Nil(err)
	assert.Equal(raws, []model.RawEvent{
		{Kind: model.KindTempo, Row: 0, BPM: 120},
		{Kind: model.KindTap, Row: 0, Lane: 0},
	})
}

func TestConvertRejectsBadLaneCounts(t *testing.T) {
	s := sample.Create(120, 1)

	assert := assert.New(t)
	_, err := Convert(s, 0)
	assert.NotNil(err)
	_, err = Convert(s, 1000)
	assert.NotNil(err)
}

func TestReadMidiFileReportsMissingFiles(t *testing.T) {
	_, err := ReadMidiFile(filepath.Join(t.TempDir(), "nope.mid"))

	assert := assert.New(t)
	assert.NotNil(err)
	assert.True(strings.HasPrefix(err.Error(), "Error reading midi file..."))
}

func TestConvertFileRoundTripsThroughDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.mid")
	s := sample.Create(120, 4)

	assert := assert.New(t)
	assert.Nil(s.WriteFile(path))

	fromDisk, err := ConvertFile(path, 4)
	assert.Nil(err)

	direct, err := Convert(s, 4)
	assert.Nil(err)
	assert.Equal(fromDisk, direct)
}
