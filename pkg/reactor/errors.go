package reactor

import (
	"github.com/brickingsoft/errors"
)

var (
	ErrClosed      = errors.Define("reactor: closed")
	ErrUnsupported = errors.Define("reactor: platform is not supported")
	ErrRegistered  = errors.Define("reactor: source is already registered")
	ErrInterest    = errors.Define("reactor: interest is not registered")
)

// IsClosed reports whether err is ErrClosed.
func IsClosed(err error) bool {
	return errors.Is(err, ErrClosed)
}

// IsInterest reports whether err is ErrInterest.
func IsInterest(err error) bool {
	return errors.Is(err, ErrInterest)
}

// IsUnsupported reports whether err is ErrUnsupported.
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupported)
}

const (
	errMetaPkgKey = "pkg"
	errMetaPkgVal = "reactor"
)

const (
	errMetaOpKey        = "op"
	errMetaOpOpen       = "open"
	errMetaOpRegister   = "register"
	errMetaOpReregister = "reregister"
	errMetaOpDeregister = "deregister"
	errMetaOpWait       = "wait"
	errMetaOpWakeup     = "wakeup"
	errMetaOpClose      = "close"
)

func newPollerErr(msg string, op string, err error) error {
	return errors.New(
		msg,
		errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
		errors.WithMeta(errMetaOpKey, op),
		errors.WithWrap(err),
	)
}
