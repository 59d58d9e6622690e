package trigger

import "sync/atomic"

// faultCell latches the first fatal scheduling fault a calendar trigger
// hits. Once latched, the trigger is non-functional: every Evaluate reports
// the same fault and never rotates, until the trigger is reconstructed.
type faultCell struct {
	err atomic.Pointer[error]
}

// get returns the latched fault, or nil.
func (f *faultCell) get() error {
	if err := f.err.Load(); err != nil {
		return *err
	}

	return nil
}

// latch stores the first fault and returns whichever fault is latched. A
// later fault loses: the first report is the one repeated forever.
func (f *faultCell) latch(err error) error {
	if f.err.CompareAndSwap(nil, &err) {
		return err
	}

	return *f.err.Load()
}
