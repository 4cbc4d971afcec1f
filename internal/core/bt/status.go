package bt

// Status represents the outcome of a single node tick.
// Running is a returned value, not a suspended call: the caller ticks again next frame.
type Status int

const (
	StatusSuccess Status = iota
	StatusFailure
	StatusRunning
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "Success"
	case StatusFailure:
		return "Failure"
	case StatusRunning:
		return "Running"
	default:
		return "Invalid"
	}
}

// Done reports whether the status is terminal (Success or Failure).
func (s Status) Done() bool { return s == StatusSuccess || s == StatusFailure }
