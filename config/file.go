// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// File reads the whole file at path into memory.
// An unset path results in an unset reader.
func File(path Reader[string]) Reader[io.Reader] {
	return Map(path, func(ctx context.Context, p string) (io.Reader, error) {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(b), nil
	})
}

func unmarshal[T any, R io.Reader](r Reader[R], decode func(io.Reader, *T) error) Reader[T] {
	return Map(r, func(ctx context.Context, src R) (T, error) {
		var t T
		err := decode(src, &t)
		return t, err
	})
}

// UnmarshalYAML decodes the YAML document read from r into a T.
func UnmarshalYAML[T any, R io.Reader](r Reader[R]) Reader[T] {
	return unmarshal(r, func(src io.Reader, t *T) error {
		err := yaml.NewDecoder(src).Decode(t)
		if err == io.EOF {
			return nil
		}
		return err
	})
}

// UnmarshalTOML decodes the TOML document read from r into a T.
func UnmarshalTOML[T any, R io.Reader](r Reader[R]) Reader[T] {
	return unmarshal(r, func(src io.Reader, t *T) error {
		_, err := toml.NewDecoder(src).Decode(t)
		return err
	})
}

// UnmarshalJSON decodes the JSON document read from r into a T.
func UnmarshalJSON[T any, R io.Reader](r Reader[R]) Reader[T] {
	return unmarshal(r, func(src io.Reader, t *T) error {
		return json.NewDecoder(src).Decode(t)
	})
}
