package playback

// Mode selects what happens automatically when a track reaches its
// declared duration.
type Mode int

const (
	ModeStop Mode = iota
	ModeLoop
	ModeNext
	ModeRandom
)

func (m Mode) String() string {
	switch m {
	case ModeLoop:
		return "loop"
	case ModeNext:
		return "next"
	case ModeRandom:
		return "random"
	default:
		return "stop"
	}
}

// ModeFromString parses a persisted mode name; unknown names fall back to
// stop, the safe default.
func ModeFromString(s string) Mode {
	switch s {
	case "loop":
		return ModeLoop
	case "next":
		return ModeNext
	case "random":
		return ModeRandom
	default:
		return ModeStop
	}
}

// Action is the outcome of the end-of-track policy.
type Action int

const (
	ActionNone Action = iota
	ActionReplay
	ActionPlayIndex
	ActionStop
)

// Decision is what the timer should do after a track ends. Index is only
// meaningful for ActionPlayIndex.
type Decision struct {
	Action Action
	Index  int
}

// Decide maps the playback mode and the user's playlist context to the
// next action. hasCurrent reports whether the track that just finished is
// still known; playlistLen is 0 when no playlist is selected; selectedIdx
// is -1 when no track row is selected; intn draws a uniform value in
// [0,n). Pure function.
func Decide(mode Mode, hasCurrent bool, playlistLen, selectedIdx int, intn func(int) int) Decision {
	switch mode {
	case ModeLoop:
		if hasCurrent {
			return Decision{Action: ActionReplay}
		}
		return Decision{Action: ActionStop}
	case ModeNext:
		if playlistLen <= 0 {
			return Decision{Action: ActionNone}
		}
		return Decision{Action: ActionPlayIndex, Index: (selectedIdx + 1) % playlistLen}
	case ModeRandom:
		if playlistLen <= 0 {
			return Decision{Action: ActionNone}
		}
		return Decision{Action: ActionPlayIndex, Index: intn(playlistLen)}
	default:
		return Decision{Action: ActionStop}
	}
}
