package conf

import (
	"math"

	"github.com/stratadb/strata/pkg/value"
)

// timeUnits maps duration suffixes to seconds.
var timeUnits = map[string]uint64{
	"s": 1,
	"m": 60,
	"h": 3600,
	"d": 86400,
}

// sizeUnits maps size suffixes to bytes. Multiples are binary.
var sizeUnits = map[string]uint64{
	"B":   1,
	"K":   1 << 10,
	"KB":  1 << 10,
	"KiB": 1 << 10,
	"M":   1 << 20,
	"MB":  1 << 20,
	"MiB": 1 << 20,
	"G":   1 << 30,
	"GB":  1 << 30,
	"GiB": 1 << 30,
	"T":   1 << 40,
	"TB":  1 << 40,
	"TiB": 1 << 40,
	"P":   1 << 50,
	"PB":  1 << 50,
	"PiB": 1 << 50,
}

// normalizeUnit expands the structured {value, unit} representation
// into a single base-unit integer (seconds for durations, bytes for
// sizes). A value that is not unit-shaped — not a map, or a map
// missing either key — is not an error: nil is returned and the raw
// value passes through for the setter to interpret as already being
// in base units. A unit-shaped but malformed value fails.
func normalizeUnit(kind UnitKind, v *value.Value) (*value.Value, error) {
	if v.Kind() != value.KindMap {
		return nil, nil
	}
	rawValue, okValue := v.Field("value")
	rawUnit, okUnit := v.Field("unit")
	if !okValue || !okUnit {
		return nil, nil
	}

	n, ok := rawValue.AsInt()
	if !ok {
		return nil, configErrorf("unit value must be an integer, got %s", rawValue.Kind())
	}
	if n < 0 {
		return nil, configErrorf("unit value %d must not be negative", n)
	}

	suffix, ok := rawUnit.AsString()
	if !ok {
		return nil, configErrorf("unit suffix must be a string, got %s", rawUnit.Kind())
	}
	if suffix == "" {
		return nil, configErrorf("unit suffix must not be empty")
	}

	var units map[string]uint64
	switch kind {
	case UnitTime:
		units = timeUnits
	case UnitSize32, UnitSize64:
		units = sizeUnits
	default:
		return nil, internalErrorf("unit normalization requested for unit kind %d", kind)
	}

	mult, ok := units[suffix]
	if !ok {
		return nil, configErrorf("unrecognized unit %q", suffix)
	}

	u := uint64(n)
	if mult != 0 && u > math.MaxInt64/mult {
		return nil, configErrorf("value %d%s overflows", n, suffix)
	}
	total := u * mult
	if kind == UnitSize32 && total > math.MaxUint32 {
		return nil, configErrorf("value %d%s exceeds the 32-bit size limit", n, suffix)
	}

	return value.Int(int64(total)), nil
}
