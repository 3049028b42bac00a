//go:build !linux

package cpu

import "errors"

var errPinUnsupported = errors.New("cpu pinning is only supported on linux")

func pinToCore(int) error { return errPinUnsupported }

// PinningSupported reports whether Bind can honor pin=true.
func PinningSupported() bool { return false }
