package attribs

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ErrUnableToConvertObjectID is returned when an object id value is not an integer.
type ErrUnableToConvertObjectID struct {
	val interface{}
}

func (e ErrUnableToConvertObjectID) Error() string {
	return fmt.Sprintf("unable to convert object id value (%v) of type %T to int64", e.val, e.val)
}

// ConvertObjectID attempts to convert an attribute value to an int64 object id.
func ConvertObjectID(v interface{}) (int64, error) {
	switch aval := v.(type) {
	case json.Number:
		if i, err := aval.Int64(); err == nil {
			return i, nil
		}
		f, err := aval.Float64()
		if err != nil {
			return 0, ErrUnableToConvertObjectID{v}
		}
		return ConvertObjectID(f)
	case float64:
		if aval != math.Trunc(aval) || aval >= math.MaxInt64 || aval < math.MinInt64 {
			return 0, ErrUnableToConvertObjectID{v}
		}
		return int64(aval), nil
	case float32:
		return ConvertObjectID(float64(aval))
	case int64:
		return aval, nil
	case int:
		return int64(aval), nil
	case int8:
		return int64(aval), nil
	case int16:
		return int64(aval), nil
	case int32:
		return int64(aval), nil
	case uint:
		return int64(aval), nil
	case uint8:
		return int64(aval), nil
	case uint16:
		return int64(aval), nil
	case uint32:
		return int64(aval), nil
	case uint64:
		if aval > math.MaxInt64 {
			return 0, ErrUnableToConvertObjectID{v}
		}
		return int64(aval), nil
	case string:
		i, err := strconv.ParseInt(aval, 10, 64)
		if err != nil {
			return 0, ErrUnableToConvertObjectID{v}
		}
		return i, nil
	default:
		return 0, ErrUnableToConvertObjectID{v}
	}
}
