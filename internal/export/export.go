// Package export renders an exported environment (the plain-value globals of
// a run) as yaml, json, toml or dotenv. Keys are always written in sorted order.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/funvibe/envx/internal/vm"
)

type Format string

const (
	YAML   Format = "yaml"
	JSON   Format = "json"
	TOML   Format = "toml"
	Dotenv Format = "dotenv"
)

// DefaultFormat is used when neither a flag nor the config picks one.
const DefaultFormat = YAML

// Formats lists the supported output formats.
var Formats = []Format{YAML, JSON, TOML, Dotenv}

// ParseFormat maps a name (case-insensitive, "yml" and "env" accepted) to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "yaml", "yml":
		return YAML, nil
	case "json":
		return JSON, nil
	case "toml":
		return TOML, nil
	case "dotenv", "env":
		return Dotenv, nil
	}
	return "", fmt.Errorf("unknown format %q (want one of yaml, json, toml, dotenv)", name)
}

// Marshal renders env in the given format.
func Marshal(format Format, env map[string]interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, format, env); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write renders env to w.
func Write(w io.Writer, format Format, env map[string]interface{}) error {
	values := normalizeMap(env)
	switch format {
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(values); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(values); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	case TOML:
		// TOML has no null
		if err := toml.NewEncoder(w).Encode(dropNulls(values)); err != nil {
			return fmt.Errorf("encode toml: %w", err)
		}
		return nil
	case Dotenv:
		return writeDotenv(w, values)
	}
	return fmt.Errorf("unknown format %q", format)
}

// normalize turns whole numbers into int64 so every encoder prints them
// without a fraction or exponent.
func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case float64:
		if i, ok := vm.AsInteger(t); ok {
			return i
		}
		return t
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	case map[string]interface{}:
		return normalizeMap(t)
	}
	return v
}

func normalizeMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = normalize(v)
	}
	return out
}

func dropNulls(v interface{}) interface{} {
	switch t := v.(type) {
	case []interface{}:
		out := make([]interface{}, 0, len(t))
		for _, e := range t {
			if e != nil {
				out = append(out, dropNulls(e))
			}
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, e := range t {
			if e != nil {
				out[k] = dropNulls(e)
			}
		}
		return out
	}
	return v
}

// writeDotenv writes one KEY=value line per global. Nested values are
// JSON-encoded; null is an empty value.
func writeDotenv(w io.Writer, env map[string]interface{}) error {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		value, err := dotenvValue(env[k])
		if err != nil {
			return fmt.Errorf("encode dotenv %s: %w", k, err)
		}
		if _, err := fmt.Fprintf(w, "%s=%s\n", k, value); err != nil {
			return err
		}
	}
	return nil
}

func dotenvValue(v interface{}) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case bool:
		return strconv.FormatBool(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case float64:
		return vm.FormatNumber(t), nil
	case string:
		return quoteDotenv(t), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if !strings.Contains(string(data), "'") {
		return "'" + string(data) + "'", nil
	}
	return strconv.Quote(string(data)), nil
}

// quoteDotenv leaves simple words bare and double-quotes everything else.
func quoteDotenv(s string) string {
	if s == "" {
		return `""`
	}
	for _, r := range s {
		if r <= ' ' || strings.ContainsRune(`"'\#$=`+"`", r) {
			return strconv.Quote(s)
		}
	}
	return s
}
