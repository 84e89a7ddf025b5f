package reactor

// Waker is notified when the readiness a task waits for may have arrived.
// Wake must not block and may be called more than once.
type Waker interface {
	Wake()
}

// WakerFunc adapts a function to Waker.
type WakerFunc func()

func (fn WakerFunc) Wake() {
	fn()
}
