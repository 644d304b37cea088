package server

import "fmt"

type ErrBadParam struct {
	Param string
	Value string
}

func (e ErrBadParam) Error() string {
	return fmt.Sprintf("server: invalid %v %q", e.Param, e.Value)
}

type ErrNoAttributes struct {
	LayerID string
	Index   int
}

func (e ErrNoAttributes) Error() string {
	return fmt.Sprintf("server: layer (%v) sublayer %v has no attributes", e.LayerID, e.Index)
}
