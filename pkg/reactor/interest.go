package reactor

// Interest is the set of readiness classes a registration listens for.
type Interest uint8

const (
	Readable Interest = 1 << iota
	Writable
)

func (i Interest) IsReadable() bool {
	return i&Readable != 0
}

func (i Interest) IsWritable() bool {
	return i&Writable != 0
}

func (i Interest) String() string {
	switch i {
	case Readable:
		return "readable"
	case Writable:
		return "writable"
	case Readable | Writable:
		return "readable|writable"
	default:
		return "none"
	}
}

// Ready is the readiness reported by a poller for one descriptor.
type Ready uint32

const (
	ReadReady Ready = 1 << iota
	WriteReady
	ErrorReady
	HupReady
)

// Matches reports whether r carries anything a waiter of interest cares about.
// Error and hang-up readiness matches every interest.
func (r Ready) Matches(interest Interest) bool {
	return r&interest.Ready() != 0
}

func (r Ready) IsEmpty() bool {
	return r == 0
}

// Ready returns the readiness bits that wake a waiter of i.
func (i Interest) Ready() (r Ready) {
	if i.IsReadable() {
		r |= ReadReady | ErrorReady | HupReady
	}
	if i.IsWritable() {
		r |= WriteReady | ErrorReady | HupReady
	}
	return
}

// PollOpt selects the trigger mode of a registration.
type PollOpt uint8

const (
	Edge PollOpt = 1 << iota
	Level
	Oneshot
)

func (opt PollOpt) IsEdge() bool {
	return opt&Edge != 0
}

func (opt PollOpt) IsOneshot() bool {
	return opt&Oneshot != 0
}

// Token identifies a registration inside a poller. Token 0 is reserved for the
// poller's own wakeup channel.
type Token uint64

const wakeupToken Token = 0

// Event is one readiness notification returned by Poller.Wait.
type Event struct {
	Token Token
	Ready Ready
}
