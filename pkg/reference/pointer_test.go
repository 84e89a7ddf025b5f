package reference_test

import (
	"testing"

	"github.com/brickingsoft/asyncfd/pkg/reference"
)

type closer struct {
	closed int
}

func (c *closer) Close() error {
	c.closed++
	return nil
}

func TestPointer_Release(t *testing.T) {
	c := &closer{}
	p := reference.Make(c)
	p.Acquire()
	p.Acquire()
	if n := p.Count(); n != 2 {
		t.Fatalf("count=%d", n)
	}
	closed, err := p.Release()
	if err != nil || closed {
		t.Fatalf("closed=%v err=%v", closed, err)
	}
	closed, err = p.Release()
	if err != nil || !closed {
		t.Fatalf("closed=%v err=%v", closed, err)
	}
	if c.closed != 1 {
		t.Fatalf("value closed %d times", c.closed)
	}
}

func TestMake_Nil(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic")
		}
	}()
	var c *closer
	reference.Make(c)
}
