package engine

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Resolution is the outcome of probing for the PCRE library: either
// Available with a loaded backend, or Unavailable with the reason.
type Resolution struct {
	// Path is the library path that was loaded.
	Path string
	// Err is the reason the library is unavailable; nil when available.
	Err error

	pcre *PCRE
}

// Available reports whether the library was loaded.
func (r Resolution) Available() bool {
	return r.pcre != nil
}

// Backend returns the loaded backend configured with opts, or false when the
// library is unavailable.
func (r Resolution) Backend(opts Options) (Backend, bool) {
	if r.pcre == nil {
		return nil, false
	}
	return r.pcre.withOptions(opts), true
}

// resolver loads the library at most once and caches the outcome, success or
// failure, for its lifetime.
type resolver struct {
	once sync.Once
	load func(path string) (*PCRE, error)
	res  Resolution
}

func (r *resolver) resolve(path string, log logrus.FieldLogger) Resolution {
	r.once.Do(func() {
		if path == "" {
			path = DefaultPCRELibrary
		}
		p, err := r.load(path)
		r.res = Resolution{Path: path, Err: err, pcre: p}

		entry := orDiscard(log).WithField("path", path)
		if err != nil {
			entry.WithError(err).Debug("pcre2 unavailable, using native regex engine")
			return
		}
		entry.Debug("pcre2 loaded")
	})
	return r.res
}

var preferred = &resolver{load: LoadPCRE}

// Preferred looks for the PCRE library on first use and returns the cached
// Resolution on every later call. path is only consulted by the first call;
// an empty path means DefaultPCRELibrary. Safe for concurrent use: exactly
// one load attempt happens and all callers observe its outcome.
func Preferred(path string, log logrus.FieldLogger) Resolution {
	return preferred.resolve(path, log)
}

// Select returns the backend for kind. KindAuto and KindPCRE use the
// process-wide Resolution and fall back to Native when PCRE is unavailable.
func Select(kind Kind, opts Options, path string, log logrus.FieldLogger) Backend {
	return selectFrom(preferred, kind, opts, path, log)
}

func selectFrom(r *resolver, kind Kind, opts Options, path string, log logrus.FieldLogger) Backend {
	switch kind {
	case KindNative:
		return NewNative(opts)
	case KindLiteral:
		return NewLiteral(opts)
	}

	res := r.resolve(path, log)
	if b, ok := res.Backend(opts); ok {
		return b
	}
	if kind == KindPCRE {
		orDiscard(log).WithError(res.Err).WithField("path", res.Path).
			Warn("pcre2 backend requested but unavailable, falling back to native")
	}
	return NewNative(opts)
}
