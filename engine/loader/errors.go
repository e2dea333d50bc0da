package loader

import (
	"errors"
	"fmt"
)

// Kinds of asset failure. Every error returned by a Loader wraps exactly one of these inside an
// *AssetError.
var (
	// ErrIO means the asset could not be read from its source.
	ErrIO = errors.New("asset io error")

	// ErrDecode means the bytes were read but are not a decodable image.
	ErrDecode = errors.New("asset decode error")

	// ErrParse means a text asset (OBJ, MTL) is malformed.
	ErrParse = errors.New("asset parse error")
)

// AssetError describes a failed asset operation.
type AssetError struct {
	Op   string // load_text, load_binary, load_texture, load_model
	Name string
	Kind error
	Err  error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Name, e.Kind, e.Err)
}

// Unwrap exposes both the kind sentinel and the cause to errors.Is and errors.As.
func (e *AssetError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func newAssetError(op, name string, kind, err error) error {
	// keep the innermost classification when a nested load already failed
	var inner *AssetError
	if errors.As(err, &inner) {
		return &AssetError{Op: op, Name: name, Kind: inner.Kind, Err: err}
	}
	return &AssetError{Op: op, Name: name, Kind: kind, Err: err}
}
