package cpu

import "testing"

func TestBind_LockOnly(t *testing.T) {
	done := make(chan error)
	go func() {
		release, err := Bind(0, false)
		if err == nil {
			release()
		}
		done <- err
	}()

	if err := <-done; err != nil {
		t.Fatalf("Bind(0, false) = %v, want nil", err)
	}
}

func TestBind_Pin(t *testing.T) {
	done := make(chan error)
	go func() {
		release, err := Bind(NumCPU()+1, true)
		if err == nil {
			release()
		}
		done <- err
	}()

	err := <-done
	if PinningSupported() && err != nil {
		t.Fatalf("Bind with pinning failed: %v", err)
	}
	if !PinningSupported() && err == nil {
		t.Fatal("expected an error on a platform without pinning support")
	}
}
