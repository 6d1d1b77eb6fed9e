// package player streams track audio to the system speaker
package player

import (
	"context"

	"github.com/desertthunder/mixfeed/internal/audio"
)

// Interface defines the player contract for dependency injection and testing.
//
// A player is an [audio.Element], so it can be registered with an [audio.Manager].
type Interface interface {
	audio.Element
	Play(ctx context.Context) error
	Toggle(ctx context.Context) error
	State() audio.State
	URL() string
	Close() error
}

// Verify Player implements Interface at compile time.
var _ Interface = (*Player)(nil)
var _ Interface = (*Mock)(nil)
