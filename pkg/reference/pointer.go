package reference

import (
	"io"
	"reflect"
	"sync/atomic"
)

func Make[E io.Closer](value E) *Pointer[E] {
	if reflect.ValueOf(value).IsNil() {
		panic("value is nil")
	}
	return &Pointer[E]{value: value}
}

// Pointer shares a closer between holders and closes it when the last holder
// releases it.
type Pointer[E io.Closer] struct {
	value E
	count atomic.Int64
}

// Acquire adds a holder and returns the value.
func (pointer *Pointer[E]) Acquire() E {
	pointer.count.Add(1)
	return pointer.value
}

// Value returns the value without adding a holder.
func (pointer *Pointer[E]) Value() E {
	return pointer.value
}

func (pointer *Pointer[E]) Count() int64 {
	return pointer.count.Load()
}

// Release drops a holder. The last release closes the value and reports
// closed.
func (pointer *Pointer[E]) Release() (closed bool, err error) {
	if n := pointer.count.Add(-1); n <= 0 {
		closed = true
		err = pointer.value.Close()
	}
	return
}
