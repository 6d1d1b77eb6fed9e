package audio

// State is the playback state shown for one track.
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// IsActive returns true if playback is active (Playing or Paused).
func (s State) IsActive() bool {
	return s == Playing || s == Paused
}

// ButtonLabel is the text of a track's play button in this state.
func (s State) ButtonLabel() string {
	if s == Playing {
		return "Pause"
	}
	return "Play"
}
