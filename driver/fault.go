package driver

import (
	"errors"
	"fmt"
)

// Error codes follow the AL error enumeration
const (
	NoError          = 0
	InvalidName      = 0xA001
	InvalidEnum      = 0xA002
	InvalidValue     = 0xA003
	InvalidOperation = 0xA004
	OutOfMemory      = 0xA005
)

var codeNames = map[int]string{
	InvalidName:      "AL_INVALID_NAME",
	InvalidEnum:      "AL_INVALID_ENUM",
	InvalidValue:     "AL_INVALID_VALUE",
	InvalidOperation: "AL_INVALID_OPERATION",
	OutOfMemory:      "AL_OUT_OF_MEMORY",
}

// Sentinel errors
var (
	ErrNoEFX          = errors.New("EFX audio extension not available on the current device")
	ErrHandleTimeout  = errors.New("timed out waiting for channel allocation")
	ErrUnknownChannel = errors.New("unknown channel")
)

// Fault is an error reported by the driver's error state
type Fault struct {
	Code int
	Name string
}

// NewFault resolves the symbolic name for code
func NewFault(code int) *Fault {
	name, ok := codeNames[code]
	if !ok {
		name = fmt.Sprintf("%d", code)
	}
	return &Fault{Code: code, Name: name}
}

func (f *Fault) Error() string {
	return fmt.Sprintf("audio driver error: %s", f.Name)
}

// IsFault reports whether err carries a driver Fault
func IsFault(err error) bool {
	var f *Fault
	return errors.As(err, &f)
}
