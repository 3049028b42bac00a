//go:build linux

package cpu

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// pinToCore restricts the calling OS thread to one core from the set the
// process is currently allowed to run on. workerID picks the core round-robin
// over that set. The caller must already hold runtime.LockOSThread.
func pinToCore(workerID int) error {
	var allowed unix.CPUSet
	if err := unix.SchedGetaffinity(0, &allowed); err != nil {
		return fmt.Errorf("read thread affinity: %w", err)
	}

	cores := make([]int, 0, allowed.Count())
	for c := 0; c < len(allowed)*64; c++ {
		if allowed.IsSet(c) {
			cores = append(cores, c)
		}
	}
	if len(cores) == 0 {
		return errors.New("empty cpu affinity set")
	}
	core := cores[((workerID%len(cores))+len(cores))%len(cores)]

	var mask unix.CPUSet
	mask.Zero()
	mask.Set(core)

	// pid 0 is the calling thread.
	if err := unix.SchedSetaffinity(0, &mask); err != nil {
		return fmt.Errorf("pin thread to cpu %d: %w", core, err)
	}
	return nil
}

// PinningSupported reports whether Bind can honor pin=true.
func PinningSupported() bool { return true }
