package source

import (
	"fmt"
	"strings"
)

// Edition selects language rules that changed over time.
type Edition uint8

const (
	Edition2015 Edition = iota
	Edition2018
	Edition2021
)

// DefaultEdition is used when configuration does not name one.
const DefaultEdition = Edition2021

func (e Edition) String() string {
	switch e {
	case Edition2015:
		return "2015"
	case Edition2018:
		return "2018"
	case Edition2021:
		return "2021"
	default:
		return "unknown"
	}
}

// ParseEdition converts "2015" / "2018" / "2021" into an Edition.
func ParseEdition(s string) (Edition, error) {
	switch strings.TrimSpace(s) {
	case "2015":
		return Edition2015, nil
	case "2018":
		return Edition2018, nil
	case "2021", "":
		return Edition2021, nil
	default:
		return DefaultEdition, fmt.Errorf("invalid edition: %q (expected: 2015|2018|2021)", s)
	}
}

// UnmarshalText lets editions appear directly in TOML and YAML documents.
func (e *Edition) UnmarshalText(text []byte) error {
	v, err := ParseEdition(string(text))
	if err != nil {
		return err
	}
	*e = v
	return nil
}

func (e Edition) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}
