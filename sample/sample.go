package sample

import (
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const resolution = 480

func header(bpm float64) smf.Track {
	var tr smf.Track
	tr.Add(0, smf.MetaTempo(bpm))
	tr.Add(0, smf.MetaMeter(4, 4))
	return tr
}

// Create builds a single track midi file with a tempo, a 4/4 meter and
// numNotes short notes one beat apart.
func Create(bpm float64, numNotes int) *smf.SMF {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(resolution)

	tr := header(bpm)
	delta := uint32(0)
	for i := 0; i < numNotes; i++ {
		key := uint8(60 + i%4)
		tr.Add(delta, midi.NoteOn(0, key, 100))
		tr.Add(resolution/2, midi.NoteOff(0, key))
		delta = resolution / 2
	}
	tr.Close(0)
	s.Add(tr)
	return s
}

// CreateWithHolds appends numHolds two beat notes after the short ones,
// long enough to come out as holds on conversion.
func CreateWithHolds(bpm float64, numNotes, numHolds int) *smf.SMF {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(resolution)

	tr := header(bpm)
	delta := uint32(0)
	for i := 0; i < numNotes; i++ {
		key := uint8(60 + i%4)
		tr.Add(delta, midi.NoteOn(0, key, 100))
		tr.Add(resolution/2, midi.NoteOff(0, key))
		delta = resolution / 2
	}
	for i := 0; i < numHolds; i++ {
		key := uint8(60 + i%4)
		tr.Add(delta, midi.NoteOn(0, key, 100))
		tr.Add(2*resolution, midi.NoteOff(0, key))
		delta = 0
	}
	tr.Close(0)
	s.Add(tr)
	return s
}
