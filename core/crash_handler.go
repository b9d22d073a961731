// Package core holds the panic containment used by every goroutine the engine starts
package core

import (
	"fmt"
	"runtime/debug"

	"github.com/sirupsen/logrus"
)

// PanicError carries a recovered panic value and the stack at the point of recovery
type PanicError struct {
	Value any
	Stack []byte
}

func (p *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", p.Value)
}

// HandleCrash logs a recovered panic with its stack trace and returns it as an error
// Returns nil when r is nil so it can be called unconditionally from a deferred recover
func HandleCrash(log logrus.FieldLogger, r any) error {
	if r == nil {
		return nil
	}
	perr := &PanicError{Value: r, Stack: debug.Stack()}
	if log != nil {
		log.WithField("stack", string(perr.Stack)).Errorf("recovered %v", perr)
	}
	return perr
}

// Recover is deferred directly: defer core.Recover(log, &err)
// A panic is logged and stored into *errp when errp is non-nil
func Recover(log logrus.FieldLogger, errp *error) {
	if err := HandleCrash(log, recover()); err != nil && errp != nil {
		*errp = err
	}
}

// Go runs fn in a new goroutine with panic recovery
// Use this instead of the 'go' keyword so a panic is logged instead of killing the host process
func Go(log logrus.FieldLogger, fn func()) {
	go func() {
		defer Recover(log, nil)
		fn()
	}()
}
