package source

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Category is the mixer category a sound plays under
type Category string

const (
	CategoryMaster  Category = "master"
	CategoryMusic   Category = "music"
	CategoryRecords Category = "records"
	CategoryWeather Category = "weather"
	CategoryBlocks  Category = "blocks"
	CategoryHostile Category = "hostile"
	CategoryNeutral Category = "neutral"
	CategoryPlayers Category = "players"
	CategoryAmbient Category = "ambient"
	CategoryVoice   Category = "voice"
)

// Sound is the playing sound a source is attached to
// The source never owns it; Position may be called from worker goroutines
type Sound interface {
	Position() mgl64.Vec3
	Category() Category
	String() string
}

type soundRef struct {
	Sound
}
