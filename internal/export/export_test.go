package export

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

func sampleEnv() map[string]interface{} {
	return map[string]interface{}{
		"name":  "svc",
		"port":  8080.0,
		"ratio": 0.25,
		"debug": false,
		"empty": nil,
		"db": map[string]interface{}{
			"host":  "localhost",
			"ports": []interface{}{5432.0, 5433.0},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
	}{
		{"", YAML},
		{"yml", YAML},
		{"YAML", YAML},
		{"json", JSON},
		{" toml ", TOML},
		{"env", Dotenv},
		{"dotenv", Dotenv},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if err != nil {
			t.Fatalf("ParseFormat(%q): %s", tt.input, err)
		}
		if got != tt.expected {
			t.Errorf("ParseFormat(%q) = %s, want %s", tt.input, got, tt.expected)
		}
	}

	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected an error for an unknown format")
	}
}

func TestYAML(t *testing.T) {
	out, err := Marshal(YAML, sampleEnv())
	if err != nil {
		t.Fatalf("Marshal: %s", err)
	}
	expected := `db:
  host: localhost
  ports:
    - 5432
    - 5433
debug: false
empty: null
name: svc
port: 8080
ratio: 0.25
`
	if string(out) != expected {
		t.Errorf("yaml output:\n%s\nwant:\n%s", out, expected)
	}

	var back map[string]interface{}
	if err := yaml.Unmarshal(out, &back); err != nil {
		t.Fatalf("output is not valid yaml: %s", err)
	}
	if back["port"] != 8080 {
		t.Errorf("port decoded as %#v", back["port"])
	}
}

func TestJSON(t *testing.T) {
	out, err := Marshal(JSON, sampleEnv())
	if err != nil {
		t.Fatalf("Marshal: %s", err)
	}
	if !strings.HasPrefix(string(out), "{\n  \"db\": {") {
		t.Errorf("keys should be sorted with db first:\n%s", out)
	}
	if !strings.Contains(string(out), `"port": 8080,`) {
		t.Errorf("whole numbers should print without a fraction:\n%s", out)
	}

	var back map[string]interface{}
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("output is not valid json: %s", err)
	}
	if back["empty"] != nil || back["ratio"] != 0.25 {
		t.Errorf("unexpected round trip %#v", back)
	}
}

func TestTOML(t *testing.T) {
	out, err := Marshal(TOML, sampleEnv())
	if err != nil {
		t.Fatalf("Marshal: %s", err)
	}
	text := string(out)
	for _, want := range []string{`name = "svc"`, "port = 8080", "debug = false", "[db]", `host = "localhost"`, "ports = [5432, 5433]"} {
		if !strings.Contains(text, want) {
			t.Errorf("toml output missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "empty") {
		t.Errorf("null values should be left out of toml:\n%s", text)
	}

	var back map[string]interface{}
	if _, err := toml.Decode(text, &back); err != nil {
		t.Fatalf("output is not valid toml: %s", err)
	}
}

func TestDotenv(t *testing.T) {
	env := sampleEnv()
	env["greeting"] = "hello world"
	env["quote"] = []interface{}{"it's"}

	out, err := Marshal(Dotenv, env)
	if err != nil {
		t.Fatalf("Marshal: %s", err)
	}
	expected := `db='{"host":"localhost","ports":[5432,5433]}'
debug=false
empty=
greeting="hello world"
name=svc
port=8080
quote="[\"it's\"]"
ratio=0.25
`
	if string(out) != expected {
		t.Errorf("dotenv output:\n%s\nwant:\n%s", out, expected)
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	if _, err := Marshal(Format("ini"), sampleEnv()); err == nil {
		t.Error("expected an error for an unknown format")
	}
}
