package core

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestRecover_StoresPanic(t *testing.T) {
	run := func() (err error) {
		defer Recover(quietLogger(), &err)
		panic("boom")
	}
	err := run()
	var perr *PanicError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *PanicError", err)
	}
	if perr.Value != "boom" || len(perr.Stack) == 0 {
		t.Errorf("PanicError = %+v", perr)
	}
}

func TestRecover_NoPanic(t *testing.T) {
	run := func() (err error) {
		defer Recover(quietLogger(), &err)
		return nil
	}
	if err := run(); err != nil {
		t.Errorf("err = %v, want nil", err)
	}
}

func TestGo_ContainsPanic(t *testing.T) {
	done := make(chan struct{})
	Go(quietLogger(), func() {
		defer close(done)
		panic("worker died")
	})
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("goroutine did not run")
	}
}
