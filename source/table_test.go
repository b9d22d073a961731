package source

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lixenwraith/sndfx/driver/drivertest"
	"github.com/lixenwraith/sndfx/effects"
)

func TestTable_Index(t *testing.T) {
	tbl := NewTable(4)
	tests := []struct {
		id   uint32
		want int
		err  bool
	}{
		{0, 0, true},
		{1, 0, false},
		{4, 3, false},
		{5, 0, true},
	}
	for _, tt := range tests {
		got, err := tbl.Index(tt.id)
		if tt.err {
			if !errors.Is(err, ErrInvalidChannel) {
				t.Errorf("Index(%d) err = %v, want ErrInvalidChannel", tt.id, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("Index(%d) = %d, %v; want %d", tt.id, got, err, tt.want)
		}
	}
}

func TestTable_StoreGetClear(t *testing.T) {
	tbl := NewTable(8)
	a, b := New(2, nil), New(5, nil)
	if err := tbl.Store(a); err != nil {
		t.Fatal(err)
	}
	if err := tbl.Store(b); err != nil {
		t.Fatal(err)
	}
	if err := tbl.Store(New(9, nil)); !errors.Is(err, ErrInvalidChannel) {
		t.Errorf("out of range store err = %v", err)
	}

	if got, _ := tbl.Get(2); got != a {
		t.Error("Get(2) returned wrong source")
	}
	if got, _ := tbl.Get(3); got != nil {
		t.Error("empty slot not nil")
	}
	if tbl.Active() != 2 {
		t.Errorf("Active = %d, want 2", tbl.Active())
	}

	var seen []uint32
	tbl.Range(func(s *Source) bool {
		seen = append(seen, s.ID())
		return true
	})
	if len(seen) != 2 || seen[0] != 2 || seen[1] != 5 {
		t.Errorf("Range visited %v", seen)
	}

	prev, err := tbl.Clear(2)
	if err != nil || prev != a {
		t.Errorf("Clear(2) = %v, %v", prev, err)
	}
	if prev, _ := tbl.Clear(2); prev != nil {
		t.Error("double clear returned a source")
	}
	if tbl.Active() != 1 {
		t.Errorf("Active = %d after clear", tbl.Active())
	}
}

func TestTable_RangeStops(t *testing.T) {
	tbl := NewTable(4)
	for id := uint32(1); id <= 4; id++ {
		_ = tbl.Store(New(id, nil))
	}
	n := 0
	tbl.Range(func(*Source) bool {
		n++
		return n < 2
	})
	if n != 2 {
		t.Errorf("Range visited %d after stop", n)
	}
}

// gatedDriver signals when the first write begins
type gatedDriver struct {
	*drivertest.Recorder
	once    sync.Once
	entered chan struct{}
}

func (d *gatedDriver) SetChannelParams(id uint32, p effects.ChannelParams) error {
	d.once.Do(func() { close(d.entered) })
	return d.Recorder.SetChannelParams(id, p)
}

func TestTable_ReusedSlotSerializesWrites(t *testing.T) {
	rec := drivertest.New(1)
	rec.WriteDelay = 30 * time.Millisecond
	drv := &gatedDriver{Recorder: rec, entered: make(chan struct{})}
	tbl := NewTable(1)

	prev := New(1, nil)
	prev.Attach(&stubSound{})
	if err := tbl.Store(prev); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() { done <- prev.Commit(drv) }()
	<-drv.entered

	// stop and restart the channel while the write is in flight
	old, _ := tbl.Clear(1)
	old.Detach()
	next := New(1, nil)
	next.Attach(&stubSound{})
	if err := tbl.Store(next); err != nil {
		t.Fatal(err)
	}
	if err := next.Commit(drv); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("in-flight Commit: %v", err)
	}

	if rec.Races() != 0 {
		t.Errorf("%d overlapping writes on the reused channel", rec.Races())
	}
	if rec.Writes(1) != 2 {
		t.Errorf("writes = %d, want 2", rec.Writes(1))
	}
}
