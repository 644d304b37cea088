package provider

import (
	"fmt"
	"strconv"
)

// ErrUnableToConvertFeatureID is returned when an id column holds a non integer.
type ErrUnableToConvertFeatureID struct {
	val interface{}
}

func (e ErrUnableToConvertFeatureID) Error() string {
	return fmt.Sprintf("unable to convert feature id object %v (%T) to uint64", e.val, e.val)
}

// ConvertFeatureID attempts to convert an interface value to a uint64 feature id.
func ConvertFeatureID(v interface{}) (uint64, error) {
	switch aval := v.(type) {
	case float64:
		if aval < 0 || aval != float64(uint64(aval)) {
			return 0, ErrUnableToConvertFeatureID{v}
		}
		return uint64(aval), nil
	case int64:
		if aval < 0 {
			return 0, ErrUnableToConvertFeatureID{v}
		}
		return uint64(aval), nil
	case uint64:
		return aval, nil
	case uint32:
		return uint64(aval), nil
	case int32:
		if aval < 0 {
			return 0, ErrUnableToConvertFeatureID{v}
		}
		return uint64(aval), nil
	case int:
		if aval < 0 {
			return 0, ErrUnableToConvertFeatureID{v}
		}
		return uint64(aval), nil
	case uint:
		return uint64(aval), nil
	case []byte:
		return ConvertFeatureID(string(aval))
	case string:
		i, err := strconv.ParseUint(aval, 10, 64)
		if err != nil {
			return 0, ErrUnableToConvertFeatureID{v}
		}
		return i, nil
	default:
		return 0, ErrUnableToConvertFeatureID{v}
	}
}
