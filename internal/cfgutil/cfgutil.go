// Package cfgutil loads configuration files.
package cfgutil

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// Parse decodes r in the given format ("toml" or "json") into dst. Keys not
// present in r leave dst untouched, so dst may be pre-filled with defaults.
func Parse(r io.Reader, format string, dst any) error {
	switch format {
	case "toml":
		return toml.NewDecoder(r).DisallowUnknownFields().Decode(dst)
	case "json":
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		return dec.Decode(dst)
	default:
		return fmt.Errorf("unsupported config format %q", format)
	}
}

// ParseFile parses the file at path into a new T. The file extension selects
// the format.
func ParseFile[T any](path string) (*T, error) {
	var v T
	if err := ParseFileInto(path, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// ParseFileInto parses the file at path over dst.
func ParseFileInto(path string, dst any) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "failed to open config file")
	}
	defer f.Close()

	format := strings.TrimPrefix(filepath.Ext(path), ".")
	if err := Parse(f, format, dst); err != nil {
		return errors.Wrapf(err, "failed to parse config file %q", path)
	}
	return nil
}

// Env is a value that may instead name an environment variable, written as
// $NAME or ${NAME}.
type Env[T ~string] string

var envCache sync.Map

func (env Env[T]) String() string {
	return string(env.Value())
}

// Value returns the value, expanding it if it references the environment.
// Expansions are cached for the life of the process.
func (env Env[T]) Value() T {
	if !strings.HasPrefix(string(env), "$") {
		return T(env)
	}

	if v, ok := envCache.Load(string(env)); ok {
		return T(v.(string))
	}

	v := os.ExpandEnv(string(env))
	envCache.Store(string(env), v)
	return T(v)
}

// EnvString is a string variant of Env.
type EnvString = Env[string]

// Duration is a [time.Duration] written as a string such as "30m" in config
// files.
type Duration time.Duration

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return errors.Wrapf(err, "invalid duration %q", b)
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements [encoding.TextMarshaler].
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}
