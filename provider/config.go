package provider

import "fmt"

// Config is a driver's settings as decoded from the config file.
type Config map[string]interface{}

// ErrKeyRequired is returned when a required key is absent.
type ErrKeyRequired string

func (e ErrKeyRequired) Error() string {
	return fmt.Sprintf("config key %q is required", string(e))
}

// ErrKeyType is returned when a key holds a value of the wrong type.
type ErrKeyType struct {
	Key   string
	Value interface{}
	T     string
}

func (e ErrKeyType) Error() string {
	return fmt.Sprintf("config key %q: value %v (%T) is not a %v", e.Key, e.Value, e.Value, e.T)
}

// String returns the value of key. def is returned when the key is absent;
// a nil def makes the key required.
func (c Config) String(key string, def *string) (string, error) {
	v, ok := c[key]
	if !ok || v == nil {
		if def == nil {
			return "", ErrKeyRequired(key)
		}
		return *def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", ErrKeyType{Key: key, Value: v, T: "string"}
	}
	return s, nil
}

// Int returns the value of key, following the same default rules as String.
func (c Config) Int(key string, def *int) (int, error) {
	v, ok := c[key]
	if !ok || v == nil {
		if def == nil {
			return 0, ErrKeyRequired(key)
		}
		return *def, nil
	}
	switch i := v.(type) {
	case int:
		return i, nil
	case int64:
		return int(i), nil
	case float64:
		if i == float64(int(i)) {
			return int(i), nil
		}
	}
	return 0, ErrKeyType{Key: key, Value: v, T: "int"}
}

// StringSlice returns the value of key. A missing key is an empty slice.
func (c Config) StringSlice(key string) ([]string, error) {
	v, ok := c[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch s := v.(type) {
	case []string:
		return s, nil
	case []interface{}:
		out := make([]string, 0, len(s))
		for _, iv := range s {
			str, ok := iv.(string)
			if !ok {
				return nil, ErrKeyType{Key: key, Value: v, T: "[]string"}
			}
			out = append(out, str)
		}
		return out, nil
	}
	return nil, ErrKeyType{Key: key, Value: v, T: "[]string"}
}
