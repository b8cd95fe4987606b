package stgraph

import (
	"errors"
	"fmt"
	"strings"
)

// BoundaryType is the planning decision for how the ego vehicle relates to an
// obstacle boundary over time.
//
// Adding a value here requires a matching case in Boundary.UnblockSRange; the
// exhaustive linter fails the build until one exists.
type BoundaryType int

const (
	BoundaryTypeUnknown BoundaryType = iota
	BoundaryTypeStop
	BoundaryTypeFollow
	BoundaryTypeYield
	BoundaryTypeOvertake
)

// ErrUnknownBoundaryType is returned when a boundary type name cannot be parsed.
var ErrUnknownBoundaryType = errors.New("unknown boundary type")

// AllBoundaryTypes lists every defined type in declaration order.
func AllBoundaryTypes() []BoundaryType {
	return []BoundaryType{
		BoundaryTypeUnknown,
		BoundaryTypeStop,
		BoundaryTypeFollow,
		BoundaryTypeYield,
		BoundaryTypeOvertake,
	}
}

func (bt BoundaryType) String() string {
	switch bt {
	case BoundaryTypeUnknown:
		return "unknown"
	case BoundaryTypeStop:
		return "stop"
	case BoundaryTypeFollow:
		return "follow"
	case BoundaryTypeYield:
		return "yield"
	case BoundaryTypeOvertake:
		return "overtake"
	default:
		return fmt.Sprintf("boundary_type(%d)", int(bt))
	}
}

// IsValid reports whether bt is one of the defined types.
func (bt BoundaryType) IsValid() bool {
	return bt >= BoundaryTypeUnknown && bt <= BoundaryTypeOvertake
}

// ParseBoundaryType parses a case-insensitive type name. The empty string
// parses as BoundaryTypeUnknown.
func ParseBoundaryType(name string) (BoundaryType, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return BoundaryTypeUnknown, nil
	}
	for _, bt := range AllBoundaryTypes() {
		if bt.String() == key {
			return bt, nil
		}
	}
	return BoundaryTypeUnknown, fmt.Errorf("%w: %q", ErrUnknownBoundaryType, name)
}

// MarshalText implements encoding.TextMarshaler.
func (bt BoundaryType) MarshalText() ([]byte, error) {
	if !bt.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownBoundaryType, int(bt))
	}
	return []byte(bt.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (bt *BoundaryType) UnmarshalText(text []byte) error {
	parsed, err := ParseBoundaryType(string(text))
	if err != nil {
		return err
	}
	*bt = parsed
	return nil
}
