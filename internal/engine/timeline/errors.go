package timeline

import (
	"errors"
	"fmt"
)

var (
	// ErrUnacceptableClipType is matched by *UnacceptableClipTypeError.
	ErrUnacceptableClipType = errors.New("track does not accept clip type")

	// ErrClipHasTrack indicates the clip must be removed from its track first.
	ErrClipHasTrack = errors.New("clip already belongs to a track")

	// ErrClipNotOnTrack indicates the clip is not on the expected track.
	ErrClipNotOnTrack = errors.New("clip is not on this track")

	// ErrTrackHasTimeline indicates the track must be removed from its
	// timeline first.
	ErrTrackHasTimeline = errors.New("track already belongs to a timeline")

	// ErrTrackNotFound indicates the track is not part of the timeline.
	ErrTrackNotFound = errors.New("track not found")

	// ErrIndexOutOfRange indicates an invalid track or clip index.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrNoRoom indicates there is no free space for a new clip.
	ErrNoRoom = errors.New("no room on track")

	// ErrEmptySelection indicates an operation needs at least one clip.
	ErrEmptySelection = errors.New("no clips selected")

	// ErrUnknownFactoryID indicates an unknown persisted clip or track kind.
	ErrUnknownFactoryID = errors.New("unknown factory id")
)

// UnacceptableClipTypeError is returned when a track's kind does not
// accept a clip's kind.
type UnacceptableClipTypeError struct {
	Track TrackKind
	Clip  ClipKind
}

// Error implements error.
func (e *UnacceptableClipTypeError) Error() string {
	return fmt.Sprintf("%s track does not accept %s clips", e.Track, e.Clip)
}

// Is matches ErrUnacceptableClipType.
func (e *UnacceptableClipTypeError) Is(target error) bool {
	return target == ErrUnacceptableClipType
}

// TrackCorruptionError is the panic value raised when a clip's track
// back-link disagrees with the track it is removed from.
type TrackCorruptionError struct {
	Op     string
	Reason string
}

// Error implements error.
func (e *TrackCorruptionError) Error() string {
	return fmt.Sprintf("timeline corruption in %s: %s", e.Op, e.Reason)
}
