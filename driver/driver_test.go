package driver

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestHandle_ResolveOnce(t *testing.T) {
	h := NewHandle()
	if !h.Resolve(7) {
		t.Fatal("first Resolve must settle")
	}
	if h.Resolve(9) || h.Fail(errors.New("late")) {
		t.Fatal("settled handle accepted a second value")
	}
	id, err := h.Wait(time.Millisecond)
	if err != nil || id != 7 {
		t.Errorf("Wait = (%d, %v), want (7, nil)", id, err)
	}
}

func TestHandle_ResolvedAsync(t *testing.T) {
	h := NewHandle()
	go func() {
		time.Sleep(5 * time.Millisecond)
		h.Resolve(3)
	}()
	id, err := h.Wait(time.Second)
	if err != nil || id != 3 {
		t.Errorf("Wait = (%d, %v), want (3, nil)", id, err)
	}
}

func TestHandle_Timeout(t *testing.T) {
	h := NewHandle()
	_, err := h.Wait(5 * time.Millisecond)
	if !errors.Is(err, ErrHandleTimeout) {
		t.Errorf("Wait err = %v, want ErrHandleTimeout", err)
	}
}

func TestHandle_Fail(t *testing.T) {
	h := NewHandle()
	boom := errors.New("no voices")
	h.Fail(boom)
	if _, err := h.Wait(time.Millisecond); !errors.Is(err, boom) {
		t.Errorf("Wait err = %v, want %v", err, boom)
	}
}

func TestFault(t *testing.T) {
	f := NewFault(InvalidValue)
	if f.Name != "AL_INVALID_VALUE" {
		t.Errorf("Name = %q", f.Name)
	}
	wrapped := fmt.Errorf("commit: %w", f)
	if !IsFault(wrapped) {
		t.Error("IsFault lost the fault through wrapping")
	}
	if NewFault(12345).Name != "12345" {
		t.Error("unknown code should fall back to its number")
	}
}

func TestCaps_MaxChannels(t *testing.T) {
	c := Caps{MonoSources: 255, StereoSources: 1}
	if c.MaxChannels() != 256 {
		t.Errorf("MaxChannels = %d", c.MaxChannels())
	}
}
