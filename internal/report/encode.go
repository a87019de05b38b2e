package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Format selects an output encoding.
type Format uint8

const (
	FormatText Format = iota
	FormatJSON
	FormatYAML
	FormatMsgpack
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatMsgpack:
		return "msgpack"
	default:
		return "text"
	}
}

// ParseFormat accepts text, json, yaml (or yml) and msgpack.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "msgpack":
		return FormatMsgpack, nil
	default:
		return FormatText, fmt.Errorf("unknown format %q (want text, json, yaml or msgpack)", s)
	}
}

// Binary reports whether the format is unsuitable for a terminal.
func (f Format) Binary() bool {
	return f == FormatMsgpack
}

// WriteProgram encodes prog in format.
func WriteProgram(w io.Writer, format Format, prog *Program) error {
	if format == FormatText {
		return writeProgramText(w, prog)
	}
	return encode(w, format, prog)
}

// WritePlans encodes plans in format.
func WritePlans(w io.Writer, format Format, plans []Plan) error {
	if format == FormatText {
		return writePlansText(w, plans)
	}
	return encode(w, format, plans)
}

func encode(w io.Writer, format Format, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case FormatMsgpack:
		enc := msgpack.NewEncoder(w)
		enc.UseCompactInts(true)
		return enc.Encode(v)
	default:
		return fmt.Errorf("format %s has no structured encoder", format)
	}
}

// DecodePlans reads plans written with FormatMsgpack.
func DecodePlans(r io.Reader) ([]Plan, error) {
	var plans []Plan
	if err := msgpack.NewDecoder(r).Decode(&plans); err != nil {
		return nil, err
	}
	return plans, nil
}
