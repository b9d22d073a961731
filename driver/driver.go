// Package driver defines the boundary between the effects engine and the low-level audio API
// The engine only reads capabilities, writes per-channel parameters and checks the error state
package driver

import (
	"github.com/lixenwraith/sndfx/effects"
)

// Caps describes what the device supports, probed once at engine initialization
type Caps struct {
	EFX           bool   // effects extension present
	EFXVersion    string // semantic version of the extension
	MaxAuxSends   int    // auxiliary sends per channel
	MonoSources   int
	StereoSources int
}

// MaxChannels is the number of channels that can play concurrently
func (c Caps) MaxChannels() int {
	return c.MonoSources + c.StereoSources
}

// Driver is the audio API as seen by the engine
// SetChannelParams must not be called concurrently for the same channel id
type Driver interface {
	Caps() (Caps, error)
	SetChannelParams(id uint32, p effects.ChannelParams) error
	// LastError returns and clears the sticky error state, nil when clean
	LastError() error
}
