//go:build darwin || linux

package engine

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/ebitengine/purego"
	"golang.org/x/sys/unix"
)

// DefaultPCRELibrary is the library loaded when no path is configured.
var DefaultPCRELibrary = func() string {
	if runtime.GOOS == "darwin" {
		return "/opt/homebrew/lib/libpcre2-8.0.dylib"
	}
	return "libpcre2-8.so.0"
}()

// LoadPCRE loads libpcre2-8 from path (DefaultPCRELibrary when empty) and
// binds its entry points. It fails with an error wrapping ErrUnavailable
// when the library or any entry point is missing.
//
// Each call loads the library again; use Preferred for the cached,
// once-per-process resolution.
func LoadPCRE(path string) (*PCRE, error) {
	if path == "" {
		path = DefaultPCRELibrary
	}

	// Bare sonames are resolved by the dynamic loader's search path.
	if filepath.IsAbs(path) {
		if err := unix.Access(path, unix.R_OK); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, path, err)
		}
	}

	lib, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	api := &pcre2API{}
	for _, sym := range api.symbols() {
		addr, err := purego.Dlsym(lib, sym.name)
		if err != nil || addr == 0 {
			_ = purego.Dlclose(lib)
			return nil, fmt.Errorf("%w: %s: missing %s", ErrUnavailable, path, sym.name)
		}
		purego.RegisterFunc(sym.fn, addr)
	}

	return &PCRE{api: api, path: path}, nil
}
