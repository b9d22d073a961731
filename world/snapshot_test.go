package world

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/sndfx/events"
)

type fakeWorld struct {
	raining bool
	rain    float32
	fluids  map[BlockPos]FluidID
	traces  int
}

func (w *fakeWorld) Trace(src, dst mgl64.Vec3, bm BlockMode, fm FluidMode) (Hit, bool) {
	w.traces++
	return Hit{Pos: dst}, true
}
func (w *fakeWorld) IsRaining() bool       { return w.raining }
func (w *fakeWorld) RainStrength() float32 { return w.rain }
func (w *fakeWorld) FluidAt(p BlockPos) (FluidID, bool) {
	id, ok := w.fluids[p]
	return id, ok
}

type fakeHost struct {
	inGame   bool
	listener ListenerState
	calls    int
}

func (h *fakeHost) InGame() bool { return h.inGame }
func (h *fakeHost) Listener() ListenerState {
	h.calls++
	return h.listener
}

func TestBuild_NotInGame(t *testing.T) {
	host := &fakeHost{inGame: false}
	b := &Builder{Host: host, Bus: NewPrecipitationBus()}
	s := b.Build()
	if s.Valid() {
		t.Fatal("snapshot valid without a listener")
	}
	if s.ListenerPosition() != (mgl64.Vec3{}) || s.PrecipitationStrength() != 0 || s.AuralDampening() != 0 {
		t.Error("invalid snapshot carries non-zero fields")
	}
	if _, hit := s.Trace(mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}); hit {
		t.Error("invalid snapshot reported a hit")
	}
	if host.calls != 0 {
		t.Error("listener queried while not in game")
	}
}

func TestBuild_CapturesListener(t *testing.T) {
	w := &fakeWorld{
		raining: true,
		rain:    0.6,
		fluids:  map[BlockPos]FluidID{{0, 1, -1}: "water"},
	}
	host := &fakeHost{inGame: true, listener: ListenerState{
		Position:    mgl64.Vec3{0.5, 0, -0.5},
		EyePosition: mgl64.Vec3{0.5, 1.62, -0.5},
		World:       w,
	}}
	b := &Builder{
		Host:   host,
		Bus:    NewPrecipitationBus(),
		Fluids: NewFluidRegistry(map[string]float32{"water": 0.8}),
	}

	s := b.Build()
	if !s.Valid() {
		t.Fatal("snapshot invalid while in game")
	}
	if host.calls != 1 {
		t.Errorf("Listener called %d times, want 1", host.calls)
	}
	if got := s.ListenerBlockPos(); got != (BlockPos{0, 0, -1}) {
		t.Errorf("ListenerBlockPos = %v", got)
	}
	if got := s.ListenerEyeBlockPos(); got != (BlockPos{0, 1, -1}) {
		t.Errorf("ListenerEyeBlockPos = %v", got)
	}
	if !s.IsPrecipitating() || s.PrecipitationStrength() != 0.6 {
		t.Errorf("precipitation = %v/%v", s.IsPrecipitating(), s.PrecipitationStrength())
	}
	if s.AuralDampening() != 0.8 {
		t.Errorf("AuralDampening = %v, want 0.8", s.AuralDampening())
	}
	if _, hit := s.Trace(mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}); !hit || w.traces != 1 {
		t.Error("Trace did not delegate to the world")
	}
}

func TestBuild_PrecipitationOverride(t *testing.T) {
	w := &fakeWorld{rain: 0.2}
	host := &fakeHost{inGame: true, listener: ListenerState{World: w}}
	bus := NewPrecipitationBus()
	bus.Subscribe(events.High, false, func(q *PrecipitationQuery) {
		q.Strength = 1.7
		q.Cancel()
	})

	s := (&Builder{Host: host, Bus: bus}).Build()
	if s.PrecipitationStrength() != 1 {
		t.Errorf("override strength = %v, want clamped 1", s.PrecipitationStrength())
	}
}

func TestBuild_UnknownFluid(t *testing.T) {
	w := &fakeWorld{fluids: map[BlockPos]FluidID{{0, 0, 0}: "slime"}}
	host := &fakeHost{inGame: true, listener: ListenerState{World: w}}
	s := (&Builder{Host: host, Fluids: NewFluidRegistry(map[string]float32{"water": 0.5})}).Build()
	if s.AuralDampening() != 0 {
		t.Errorf("unknown fluid dampening = %v", s.AuralDampening())
	}
}

func TestBlockPosOf_Negative(t *testing.T) {
	got := BlockPosOf(mgl64.Vec3{-0.5, -2, 3.99})
	if got != (BlockPos{-1, -2, 3}) {
		t.Errorf("BlockPosOf = %v", got)
	}
}

func TestFluidRegistry_Clamps(t *testing.T) {
	r := NewFluidRegistry(map[string]float32{"lava": 3, "air": -1})
	if r.Coefficient("lava") != 1 || r.Coefficient("air") != 0 {
		t.Error("coefficients not clamped")
	}
	var nilReg *FluidRegistry
	if nilReg.Coefficient("water") != 0 {
		t.Error("nil registry should report 0")
	}
}

func TestPrecipitationBus_DefaultAnswersAndCancels(t *testing.T) {
	bus := NewPrecipitationBus()
	if n := bus.HandlerCount(); n != 1 {
		t.Fatalf("handlers = %d, want the single default", n)
	}

	q := &PrecipitationQuery{World: &fakeWorld{rain: 0.4}}
	if !bus.Post(q) {
		t.Error("default handler left the query open")
	}
	if q.Strength != 0.4 {
		t.Errorf("strength = %v, want 0.4", q.Strength)
	}
}
