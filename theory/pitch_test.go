package theory_test

import (
	"errors"
	"strings"
	"testing"

	Sm "github.com/W-Mai/simple-compose/theory"
)

func TestPitchClass_Modulation(t *testing.T) {
	t.Run("Transposes up within the octave", func(t *testing.T) {
		assertPitchClass(t, Sm.C.Modulation(4), Sm.E)
		assertPitchClass(t, Sm.A.Modulation(3), Sm.C)
	})

	t.Run("Transposes down across C", func(t *testing.T) {
		assertPitchClass(t, Sm.C.Modulation(-1), Sm.B)
		assertPitchClass(t, Sm.D.Modulation(-5), Sm.A)
	})

	t.Run("Whole octaves of any size return the same class", func(t *testing.T) {
		for pc := Sm.C; pc <= Sm.B; pc++ {
			for _, k := range []int{-100, -12, -1, 0, 1, 12, 100} {
				assertPitchClass(t, pc.Modulation(12*k), pc)
			}
		}
	})

	t.Run("Silent absorbs every transposition", func(t *testing.T) {
		for _, d := range []int{-127, -13, -1, 0, 1, 7, 12, 127} {
			assertPitchClass(t, Sm.Silent.Modulation(d), Sm.Silent)
		}
	})
}

func TestPitchClass_NextBasicDegree(t *testing.T) {
	tests := []struct {
		name string
		from Sm.PitchClass
		nth  int
		want Sm.PitchClass
	}{
		{"Unison", Sm.C, 0, Sm.C},
		{"Third degree of C", Sm.C, 2, Sm.E},
		{"Fifth degree of G", Sm.G, 4, Sm.D},
		{"Wraps after seven", Sm.C, 8, Sm.D},
		{"Negative steps wrap backwards", Sm.C, -1, Sm.B},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertPitchClass(t, tt.from.NextBasicDegree(tt.nth), tt.want)
		})
	}
}

func TestPitchClass_CommonChord(t *testing.T) {
	t.Run("Builds the diatonic triads of C major", func(t *testing.T) {
		want := []struct {
			root    Sm.PitchClass
			quality Sm.ChordQuality
		}{
			{Sm.C, Sm.Major}, {Sm.D, Sm.Minor}, {Sm.E, Sm.Minor}, {Sm.F, Sm.Major},
			{Sm.G, Sm.Major}, {Sm.A, Sm.Minor}, {Sm.B, Sm.Diminished},
		}
		for i, w := range want {
			chord, err := Sm.C.CommonChord(i + 1)
			assertError(t, err, nil)
			assertPitchClass(t, chord.Root.Class, w.root)
			assertInt(t, chord.Root.Octave, 3)
			if chord.Quality != w.quality {
				t.Errorf("degree %d: got quality %s, want %s", i+1, chord.Quality, w.quality)
			}
		}
	})

	t.Run("Rejects degrees outside the key", func(t *testing.T) {
		for _, d := range []int{0, 8, -2} {
			_, err := Sm.C.CommonChord(d)
			assertError(t, err, Sm.ErrTheoryViolation)
		}
	})
}

func TestParsePitchClass(t *testing.T) {
	tests := []struct {
		in   string
		want Sm.PitchClass
	}{
		{"C", Sm.C}, {"C#", Sm.CSharp}, {"Db", Sm.CSharp}, {"bb", Sm.ASharp},
		{"Cb", Sm.B}, {"E#", Sm.F}, {"R", Sm.Silent},
	}
	for _, tt := range tests {
		t.Run("Reads "+tt.in, func(t *testing.T) {
			got, err := Sm.ParsePitchClass(tt.in)
			assertError(t, err, nil)
			assertPitchClass(t, got, tt.want)
		})
	}

	t.Run("Rejects unknown letters", func(t *testing.T) {
		_, err := Sm.ParsePitchClass("H")
		assertError(t, err, Sm.ErrInvalidPitch)
	})

	t.Run("Names sharps with their flat spelling", func(t *testing.T) {
		assertString(t, Sm.FSharp.String(), "F#/Gb")
		assertString(t, Sm.C.String(), "C")
	})
}

func assertPitchClass(t testing.TB, got, want Sm.PitchClass) {
	t.Helper()
	if got != want {
		t.Errorf("got pitch class %s, want %s", got, want)
	}
}

func assertTunings(t testing.TB, got, want []Sm.Tuning) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d tunings %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range got {
		if !got[i].Equal(want[i]) {
			t.Errorf("tone %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func assertError(t testing.TB, got, want error) {
	t.Helper()
	if !errors.Is(got, want) {
		t.Errorf("got error %q want %q", got, want)
	}
}

func assertGotError(t testing.TB, got error) {
	t.Helper()
	if got == nil {
		t.Errorf("Expected an error but got %q", got)
	}
}

func assertInt(t testing.TB, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("did not get correct value, got %d, want %d", got, want)
	}
}

func assertFloat(t testing.TB, got, want float64) {
	t.Helper()
	diff := got - want
	if diff < 0 {
		diff = -diff
	}
	if diff > 1e-9 {
		t.Errorf("did not get correct value, got %v, want %v", got, want)
	}
}

func assertString(t testing.TB, got, want string) {
	t.Helper()
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func assertStringContains(t testing.TB, full, want string) {
	t.Helper()
	if !strings.Contains(full, want) {
		t.Errorf("Did not find %q, expected string contains %q", want, full)
	}
}
