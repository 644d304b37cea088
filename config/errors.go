package config

import "fmt"

type ErrLayerMissingID struct {
	Name string
}

func (e ErrLayerMissingID) Error() string {
	return fmt.Sprintf("config: layer %q has no id", e.Name)
}

type ErrDuplicateLayerID struct {
	ID string
}

func (e ErrDuplicateLayerID) Error() string {
	return fmt.Sprintf("config: layer id (%v) is used more than once", e.ID)
}

type ErrUnknownKind struct {
	LayerID string
	Kind    string
}

func (e ErrUnknownKind) Error() string {
	return fmt.Sprintf("config: layer (%v) has unknown kind %q", e.LayerID, e.Kind)
}

type ErrMissingURL struct {
	LayerID string
}

func (e ErrMissingURL) Error() string {
	return fmt.Sprintf("config: layer (%v) needs a url", e.LayerID)
}

type ErrMissingSource struct {
	LayerID string
}

func (e ErrMissingSource) Error() string {
	return fmt.Sprintf("config: file layer (%v) needs a source with a %q key", e.LayerID, SourceKeyType)
}
