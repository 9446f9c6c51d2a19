package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v2"
)

type encodeFunc func(v interface{}, w io.Writer) error

var encoders = map[string]encodeFunc{
	"json": func(v interface{}, w io.Writer) error {
		return jsonEncode(v, w, false)
	},
	"prettyjson": func(v interface{}, w io.Writer) error {
		return jsonEncode(v, w, true)
	},
	"yaml": func(v interface{}, w io.Writer) error {
		e := yaml.NewEncoder(w)
		defer e.Close()
		return e.Encode(v)
	},
}

func jsonEncode(v interface{}, w io.Writer, pretty bool) error {
	e := json.NewEncoder(w)
	if pretty {
		e.SetIndent("", "  ")
	}
	return e.Encode(v)
}

func encode(format string, v interface{}, w io.Writer) error {
	fn, ok := encoders[format]
	if !ok {
		return fmt.Errorf("format %q not recognized, {json, prettyjson, yaml}", format)
	}
	return fn(v, w)
}
