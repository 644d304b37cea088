package register

import "fmt"

type ErrProviderNotFound struct {
	Driver  string
	LayerID string
}

func (e ErrProviderNotFound) Error() string {
	return fmt.Sprintf("register: layer (%v) uses unknown provider driver %q", e.LayerID, e.Driver)
}

type ErrInvalidLayer struct {
	LayerID string
	Err     error
}

func (e ErrInvalidLayer) Error() string {
	return fmt.Sprintf("register: layer (%v): %v", e.LayerID, e.Err)
}

func (e ErrInvalidLayer) Unwrap() error { return e.Err }
