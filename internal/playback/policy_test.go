package playback

import "testing"

func fixedIntn(v int) func(int) int { return func(int) int { return v } }

func TestDecideNextWrapsToStart(t *testing.T) {
	d := Decide(ModeNext, true, 3, 2, fixedIntn(0))
	if d.Action != ActionPlayIndex || d.Index != 0 {
		t.Fatalf("decision = %+v, want play index 0", d)
	}
}

func TestDecideNextAdvancesAndHandlesNoSelection(t *testing.T) {
	if d := Decide(ModeNext, true, 3, 0, fixedIntn(0)); d.Action != ActionPlayIndex || d.Index != 1 {
		t.Fatalf("decision = %+v, want play index 1", d)
	}
	// No selected row: -1 advances to the first track.
	if d := Decide(ModeNext, true, 3, -1, fixedIntn(0)); d.Action != ActionPlayIndex || d.Index != 0 {
		t.Fatalf("decision = %+v, want play index 0", d)
	}
	// No playlist context at all: nothing happens.
	if d := Decide(ModeNext, true, 0, -1, fixedIntn(0)); d.Action != ActionNone {
		t.Fatalf("decision = %+v, want none", d)
	}
}

func TestDecideRandomSingleTrackAlwaysIndexZero(t *testing.T) {
	draws := 0
	intn := func(n int) int {
		draws++
		if n != 1 {
			t.Fatalf("intn bound = %d, want 1", n)
		}
		return 0
	}
	for i := 0; i < 5; i++ {
		d := Decide(ModeRandom, true, 1, 0, intn)
		if d.Action != ActionPlayIndex || d.Index != 0 {
			t.Fatalf("decision = %+v, want play index 0", d)
		}
	}
	if draws != 5 {
		t.Fatalf("draws = %d", draws)
	}
}

func TestDecideRandomNoPlaylistIsNoOp(t *testing.T) {
	if d := Decide(ModeRandom, true, 0, -1, fixedIntn(0)); d.Action != ActionNone {
		t.Fatalf("decision = %+v, want none", d)
	}
}

func TestDecideLoopReplaysCurrent(t *testing.T) {
	if d := Decide(ModeLoop, true, 3, 1, fixedIntn(0)); d.Action != ActionReplay {
		t.Fatalf("decision = %+v, want replay", d)
	}
	// Loop with no current track falls through to stop.
	if d := Decide(ModeLoop, false, 3, 1, fixedIntn(0)); d.Action != ActionStop {
		t.Fatalf("decision = %+v, want stop", d)
	}
}

func TestDecideStopIsDefault(t *testing.T) {
	if d := Decide(ModeStop, true, 3, 1, fixedIntn(0)); d.Action != ActionStop {
		t.Fatalf("decision = %+v, want stop", d)
	}
	if d := Decide(Mode(42), true, 3, 1, fixedIntn(0)); d.Action != ActionStop {
		t.Fatalf("unknown mode should stop, got %+v", d)
	}
}

func TestModeRoundTrip(t *testing.T) {
	for _, m := range []Mode{ModeStop, ModeLoop, ModeNext, ModeRandom} {
		if got := ModeFromString(m.String()); got != m {
			t.Errorf("ModeFromString(%q) = %v, want %v", m.String(), got, m)
		}
	}
	if got := ModeFromString("garbage"); got != ModeStop {
		t.Errorf("unknown mode name should parse as stop, got %v", got)
	}
}
