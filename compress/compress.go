// Package compress provides the pluggable compressors used by colblock for
// column binary bodies and block metadata sections.
//
// Compressors are identified by a stable short name which is embedded in
// every column binary and block header, so a reader can resolve the
// matching decompressor through Lookup. The following compressors are
// registered by default:
//
//	none    no compression
//	snappy  github.com/golang/snappy (default)
//	s2      github.com/klauspost/compress/s2
//	zstd    github.com/klauspost/compress/zstd
//	gzip    github.com/klauspost/compress/gzip
//	lz4     github.com/pierrec/lz4/v4 (frame format)
//
// All registered compressors must be safe for concurrent use.
package compress

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknown is returned by Lookup when no compressor is registered
// under a name.
var ErrUnknown = errors.New("compress: unknown compressor")

// Kind is a hint describing the data passed to Compress. Implementations
// may use it to tune their parameters, most ignore it.
type Kind byte

// Supported data kinds.
const (
	KindBinary Kind = iota
	KindNumber
	KindText
)

// Level is a generic compression level, mapped onto the algorithm
// specific levels.
type Level int

// Supported levels.
const (
	Fastest Level = 1
	Default Level = 5
	Best    Level = 9
)

// Compressor compresses and decompresses byte slices.
type Compressor interface {
	// Name returns the stable short name of the compressor.
	Name() string
	// Compress returns the compressed form of src. src is not modified.
	Compress(src []byte, kind Kind) ([]byte, error)
	// Decompress returns the original bytes. The result must not alias
	// src unless the compressor stores data verbatim.
	Decompress(src []byte) ([]byte, error)
}

var (
	registry   = make(map[string]Compressor)
	registryMu sync.RWMutex
)

// Register makes a compressor available by its name. A compressor
// registered under an existing name replaces the previous one.
func Register(c Compressor) {
	registryMu.Lock()
	defer registryMu.Unlock()

	registry[c.Name()] = c
}

// Lookup returns the compressor registered under name.
func Lookup(name string) (Compressor, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	if c, ok := registry[name]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknown, name)
}

// MustLookup is like Lookup but panics if the name is not registered.
func MustLookup(name string) Compressor {
	c, err := Lookup(name)
	if err != nil {
		panic(err)
	}
	return c
}

// Names returns the sorted names of all registered compressors.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register(None{})
	Register(Snappy{})
	Register(S2{})
	Register(NewZstd(Default))
	Register(NewGzip(Default))
	Register(NewLZ4(Default))
}
