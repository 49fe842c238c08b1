package score_test

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	Ss "github.com/W-Mai/simple-compose/score"
	Sm "github.com/W-Mai/simple-compose/theory"
)

// Temporary OS file to use for testing score files
func createTempFile(t testing.TB, data string) (*os.File, func()) {
	t.Helper()
	tmpfile, err := os.CreateTemp("", "score")
	if err != nil {
		t.Fatalf("could not create temp file %v", err)
	}

	tmpfile.Write([]byte(data))
	removeFile := func() {
		tmpfile.Close()
		os.Remove(tmpfile.Name())
	}
	return tmpfile, removeFile
}

const twoTrackScore = `{
  "tracks": 2,
  "tempo": 96,
  "time_signature": {"beats": 3, "unit": "quarter"},
  "rows": [
    [ {"chord": {"root": "C4", "quality": "major"}}, {"rest": true} ],
    [ {"chord": {"root": "G3", "quality": "dominant7", "voicing": "open", "inversion": 1}},
      {"notes": [
        {"pitch": "E4", "duration": "quarter", "dots": 1},
        {"pitch": "D4", "duration": "eighth"},
        {"pitch": "C4", "duration": "eighth", "tuplet": "3:2", "velocity": 80},
        {"pitch": "R", "duration": "quarter"}
      ]} ]
  ]
}`

func TestLoadScoreFileName(t *testing.T) {
	configFile, delConfig := createTempFile(t, twoTrackScore)
	defer delConfig()
	fileName := configFile.Name()

	t.Run("Reads score settings", func(t *testing.T) {
		sf, err := Ss.LoadScoreFileName(fileName)
		assertError(t, err, nil)
		assertInt(t, sf.Tracks, 2)
		assertInt(t, len(sf.Rows), 2)
		assertString(t, sf.TimeSignature.Unit, "quarter")
	})

	t.Run("Errors with malformed JSON", func(t *testing.T) {
		configFile, delConfig := createTempFile(t, `{"tracks": "two"}`)
		defer delConfig()

		_, err := Ss.LoadScoreFileName(configFile.Name())
		assertGotError(t, err)
	})

	t.Run("Errors with unknown fields", func(t *testing.T) {
		configFile, delConfig := createTempFile(t, `{"tracks": 1, "tempi": 80}`)
		defer delConfig()

		_, err := Ss.LoadScoreFileName(configFile.Name())
		assertGotError(t, err)
	})

	t.Run("Errors with an empty file", func(t *testing.T) {
		configFile, delConfig := createTempFile(t, ``)
		defer delConfig()

		_, err := Ss.LoadScoreFileName(configFile.Name())
		assertGotError(t, err)
		assertStringContains(t, err.Error(), "file is empty")
	})

	t.Run("Errors with a missing file", func(t *testing.T) {
		_, err := Ss.LoadScoreFileName("/does/not/exist.json")
		assertError(t, err, os.ErrNotExist)
	})
}

func TestScoreFile_Build(t *testing.T) {
	sf, err := Ss.LoadScoreConfig(bytes.NewBufferString(twoTrackScore))
	assertError(t, err, nil)
	s, err := sf.Build()
	assertError(t, err, nil)

	t.Run("Applies tempo and time signature", func(t *testing.T) {
		if s.Tempo() != 96 {
			t.Errorf("got tempo %v", s.Tempo())
		}
		assertInt(t, int(s.TimeSignature().Beats), 3)
	})

	t.Run("Builds chords with voicing and inversion", func(t *testing.T) {
		c, ok := s.Track(0).Measure(1).Chord()
		if !ok {
			t.Fatal("expected a chord")
		}
		if c.Voicing != Sm.Open || c.Inversion != Sm.FirstInversion {
			t.Errorf("got voicing %s inversion %d", c.Voicing, c.Inversion)
		}
		if c.Type != Sm.SeventhChord {
			t.Errorf("got type %s", c.Type)
		}
	})

	t.Run("Builds notes with dots, tuplets and rests", func(t *testing.T) {
		notes := s.Track(1).Measure(1).Notes()
		assertInt(t, len(notes), 4)
		assertInt(t, int(notes[0].Duration.Dots), 1)
		if notes[2].Duration.Tuplet == nil {
			t.Fatal("expected a tuplet")
		}
		assertInt(t, int(notes[2].Velocity), 80)
		assertInt(t, int(notes[1].Velocity), int(Sm.DefaultVelocity))
		if !notes[3].IsRest() {
			t.Error("expected a rest")
		}
	})

	tests := []struct {
		name string
		json string
		want error
	}{
		{"Zero tracks", `{"tracks": 0, "rows": []}`, nil},
		{"Ragged row", `{"tracks": 2, "rows": [[{"rest": true}]]}`, Ss.ErrRowWidth},
		{"Bad tempo", `{"tracks": 1, "tempo": -3, "rows": []}`, Ss.ErrInvalidTempo},
		{"Bad pitch", `{"tracks": 1, "rows": [[{"notes": [{"pitch": "H4"}]}]]}`, Sm.ErrInvalidPitch},
		{"Bad quality", `{"tracks": 1, "rows": [[{"chord": {"root": "C4", "quality": "sus"}}]]}`, Sm.ErrUnsupportedChord},
		{"Unbuilt voicing", `{"tracks": 1, "rows": [[{"chord": {"root": "C4", "voicing": "drop2"}}]]}`, Sm.ErrUnsupportedVoicing},
		{"Bad tuplet", `{"tracks": 1, "rows": [[{"notes": [{"pitch": "C4", "tuplet": "2:3"}]}]]}`, Sm.ErrUnsupportedTuplet},
		{"Two contents", `{"tracks": 1, "rows": [[{"rest": true, "chord": {"root": "C4"}}]]}`, nil},
	}

	for _, tt := range tests {
		t.Run("Fails on "+tt.name, func(t *testing.T) {
			sf, err := Ss.LoadScoreConfig(bytes.NewBufferString(tt.json))
			assertError(t, err, nil)
			_, err = sf.Build()
			assertGotError(t, err)
			if tt.want != nil {
				assertError(t, err, tt.want)
			}
		})
	}
}

func TestToFile(t *testing.T) {
	s := Ss.New(2).WithTempo(72)
	b9, _ := Sm.NewInterval(Sm.Min, 9)
	tup, _ := Sm.NewTuplet(3, 2, Sm.Eighth)
	triplet, _ := Sm.NewDuration(Sm.Eighth).WithTuplet(tup)

	s.NewMeasures(func(row []Ss.Measure) {
		row[0].SetChord(Sm.Altered(Sm.NewTuning(Sm.G, 3), b9))
		row[1].SetNotes(
			Sm.NewNote(Sm.NewTuning(Sm.FSharp, 4), triplet),
			Sm.Rest(Sm.NewDuration(Sm.Half).Dotted(1)),
		)
	})

	t.Run("Round trips through JSON", func(t *testing.T) {
		sf := Ss.ToFile(s)
		raw, err := json.Marshal(sf)
		assertError(t, err, nil)

		back, err := Ss.LoadScoreConfig(bytes.NewReader(raw))
		assertError(t, err, nil)
		rebuilt, err := back.Build()
		assertError(t, err, nil)

		if rebuilt.Tempo() != 72 {
			t.Errorf("got tempo %v", rebuilt.Tempo())
		}
		c, _ := rebuilt.Track(0).Measure(0).Chord()
		want, _ := s.Track(0).Measure(0).Chord()
		gotMidi, err := c.MidiNumbers()
		assertError(t, err, nil)
		wantMidi, _ := want.MidiNumbers()
		assertString(t, string(gotMidi), string(wantMidi))

		notes := rebuilt.Track(1).Measure(0).Notes()
		assertString(t, notes[0].String(), "F#/Gb4 eighth(3:2)")
		assertString(t, notes[1].Duration.String(), "half.")
	})
}
