package trailhead

// Enumerable is the interface implemented by types that can only be represented by enumerable, constant values.
type Enumerable interface {
	String() string
	Valid() error
}
