//go:build !darwin && !linux

package engine

import "fmt"

// DefaultPCRELibrary is the library loaded when no path is configured.
var DefaultPCRELibrary = ""

// LoadPCRE always fails on this platform with an error wrapping
// ErrUnavailable.
func LoadPCRE(path string) (*PCRE, error) {
	return nil, fmt.Errorf("%w: runtime loading is not supported on this platform", ErrUnavailable)
}
