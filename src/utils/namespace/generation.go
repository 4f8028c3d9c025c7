package namespace

import "fmt"

// Generation of the contract family that emitted an event
type Generation int

const (
	Legacy Generation = iota
	Current
)

func (self Generation) String() string {
	switch self {
	case Legacy:
		return "legacy"
	case Current:
		return "current"
	}
	return fmt.Sprintf("generation(%d)", int(self))
}

func (self Generation) MarshalText() ([]byte, error) {
	return []byte(self.String()), nil
}

func (self *Generation) UnmarshalText(text []byte) error {
	switch string(text) {
	case "legacy":
		*self = Legacy
	case "current":
		*self = Current
	default:
		return fmt.Errorf("unknown generation %q", string(text))
	}
	return nil
}
