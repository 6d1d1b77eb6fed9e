package shared

import (
	"errors"
	"fmt"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Feed errors. All three collapse to the same user-facing retry message.
	ErrFeedRequest   = fmt.Errorf("feed request failed")
	ErrFeedStatus    = fmt.Errorf("feed returned an error status")
	ErrMalformedFeed = fmt.Errorf("malformed feed response")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrTrackNotFound      = fmt.Errorf("track not found")

	// Playback errors
	ErrUnsupportedAudio = fmt.Errorf("unsupported audio format")
	ErrPlaybackFailed   = fmt.Errorf("playback failed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")

	// Export errors
	ErrExportLocked = fmt.Errorf("export directory is locked by another process")
)

// IsFeedError reports whether err is one of the feed error classes.
func IsFeedError(err error) bool {
	return errors.Is(err, ErrFeedRequest) || errors.Is(err, ErrFeedStatus) || errors.Is(err, ErrMalformedFeed)
}
