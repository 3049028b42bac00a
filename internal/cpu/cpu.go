// Package cpu binds pool workers to dedicated OS threads.
package cpu

import "runtime"

// Bind locks the calling goroutine to its OS thread and, when pin is set,
// restricts that thread to one of the cores the process may run on,
// chosen round-robin by workerID. The returned release
// func undoes the lock and must be called from the same goroutine. On error
// the thread lock has already been released.
func Bind(workerID int, pin bool) (release func(), err error) {
	runtime.LockOSThread()

	if pin {
		if err := pinToCore(workerID); err != nil {
			runtime.UnlockOSThread()
			return nil, err
		}
	}
	return runtime.UnlockOSThread, nil
}

// NumCPU returns the number of logical CPUs available.
func NumCPU() int {
	return runtime.NumCPU()
}
