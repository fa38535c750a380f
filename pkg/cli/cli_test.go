package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// project writes a config and the given scripts into a temp dir and
// returns the config path and the script directory.
func project(t *testing.T, scripts map[string]string) (string, string) {
	t.Helper()
	t.Setenv("ENVX_ENV", "")
	t.Setenv("NODE_ENV", "")

	root := t.TempDir()
	dir := filepath.Join(root, "envs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	cfg := "env: dev\ndir: envs\ncolor: never\nhistory:\n  path: state/history.db\n"
	cfgPath := filepath.Join(root, "envx.yaml")
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	for name, src := range scripts {
		writeScript(t, dir, name, src)
	}
	return cfgPath, dir
}

func writeScript(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun(t *testing.T) {
	cfg, _ := project(t, map[string]string{
		"dev.envx": `var port = 8080; var name = "api"; var _token = "x"; println("booting");`,
	})

	code, out, errOut := runCLI(t, "-c", cfg, "run", "-f", "json")
	if code != ExitOK {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	expected := "booting\n{\n  \"name\": \"api\",\n  \"port\": 8080\n}\n"
	if out != expected {
		t.Errorf("stdout = %q, want %q", out, expected)
	}
}

func TestRunSelectsEnvironment(t *testing.T) {
	cfg, dir := project(t, map[string]string{
		"dev.envx":  `var level = "debug";`,
		"prod.envx": `var level = "warn";`,
	})

	tests := []struct {
		name     string
		args     []string
		env      string
		expected string
	}{
		{"config default", []string{"run"}, "", "level: debug\n"},
		{"flag", []string{"run", "-e", "prod"}, "", "level: warn\n"},
		{"variable", []string{"run"}, "prod", "level: warn\n"},
		{"explicit file", []string{"run", filepath.Join(dir, "prod.envx")}, "", "level: warn\n"},
		{"dotenv", []string{"run", "-f", "env", "-e", "prod"}, "", "level=warn\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENVX_ENV", tt.env)
			code, out, errOut := runCLI(t, append([]string{"-c", cfg}, tt.args...)...)
			if code != ExitOK {
				t.Fatalf("exit %d: %s", code, errOut)
			}
			if out != tt.expected {
				t.Errorf("stdout = %q, want %q", out, tt.expected)
			}
		})
	}
}

func TestRunReportsDiagnostics(t *testing.T) {
	cfg, _ := project(t, map[string]string{
		"dev.envx": "const a = 1;\nconst a = 2;\n",
	})
	code, out, errOut := runCLI(t, "-c", cfg, "run")
	if code != ExitFailure {
		t.Fatalf("exit %d, want %d", code, ExitFailure)
	}
	if out != "" {
		t.Errorf("nothing should be exported, got %q", out)
	}
	if !strings.Contains(errOut, "CompileError: Identifier 'a' has already been declared") {
		t.Errorf("stderr = %q", errOut)
	}
	if !strings.Contains(errOut, " > const a = 2;") {
		t.Errorf("stderr should show the offending line: %q", errOut)
	}
}

func TestUsageErrors(t *testing.T) {
	cfg, _ := project(t, map[string]string{"dev.envx": `var x = 1;`})
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no command", nil, "usage: envx"},
		{"unknown command", []string{"deploy"}, "unknown command"},
		{"unknown global option", []string{"-z", "run"}, "usage: envx"},
		{"unknown command option", []string{"-c", cfg, "run", "-z"}, "usage: envx run"},
		{"bad format", []string{"-c", cfg, "run", "-f", "xml"}, "unknown format"},
		{"too many files", []string{"-c", cfg, "run", "a.envx", "b.envx"}, "at most one file"},
		{"call without name", []string{"-c", cfg, "call"}, "missing function name"},
		{"exec without bundle", []string{"-c", cfg, "exec"}, "expected one bundle"},
		{"bad env name", []string{"-c", cfg, "run", "-e", "../x"}, "invalid environment name"},
		{"bad count", []string{"-c", cfg, "history", "-n", "many"}, "-n must be"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := runCLI(t, tt.args...)
			if code != ExitUsage {
				t.Fatalf("exit %d, want %d (%s)", code, ExitUsage, errOut)
			}
			if !strings.Contains(errOut, tt.want) {
				t.Errorf("stderr %q does not contain %q", errOut, tt.want)
			}
		})
	}
}

func TestHelp(t *testing.T) {
	for _, args := range [][]string{{"help"}, {"-h"}} {
		code, out, _ := runCLI(t, args...)
		if code != ExitOK || !strings.Contains(out, "commands:") || !strings.Contains(out, "envx diff [-e env]") {
			t.Errorf("%v: exit %d, stdout %q", args, code, out)
		}
	}
}

func TestCheck(t *testing.T) {
	cfg, dir := project(t, map[string]string{
		"dev.envx": `var ok = true;`,
		"bad.envx": `break;`,
	})

	code, out, errOut := runCLI(t, "-c", cfg, "check")
	if code != ExitOK || !strings.Contains(out, "dev.envx: ok") {
		t.Fatalf("exit %d: %s %s", code, out, errOut)
	}

	code, out, errOut = runCLI(t, "-c", cfg, "check", filepath.Join(dir, "dev.envx"), filepath.Join(dir, "bad.envx"))
	if code != ExitFailure {
		t.Fatalf("exit %d, want %d", code, ExitFailure)
	}
	if !strings.Contains(out, "dev.envx: ok") || strings.Contains(out, "bad.envx: ok") {
		t.Errorf("stdout = %q", out)
	}
	if !strings.Contains(errOut, "CompileError") {
		t.Errorf("stderr = %q", errOut)
	}

	code, _, errOut = runCLI(t, "-c", cfg, "check", filepath.Join(dir, "missing.envx"))
	if code != ExitFailure || !strings.Contains(errOut, "reading source") {
		t.Errorf("missing file: exit %d, %q", code, errOut)
	}
}

func TestDisasm(t *testing.T) {
	cfg, _ := project(t, map[string]string{"dev.envx": `var x = 1; fn f() { return x; }`})
	code, out, errOut := runCLI(t, "-c", cfg, "disasm")
	if code != ExitOK {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	for _, want := range []string{"STORE_GLOBAL", "MAKE_FUNCTION", "RETURN"} {
		if !strings.Contains(out, want) {
			t.Errorf("disassembly missing %s:\n%s", want, out)
		}
	}
}

func TestCall(t *testing.T) {
	cfg, _ := project(t, map[string]string{
		"dev.envx": `
var greeting = "hello";
fn add(a, b) { return a + b; }
fn greet(name) { return greeting + " " + name; }
fn isNull(v) { return v == null; }
fn fail() { return Error.new("no luck"); }
fn _hidden() { return 1; }
`,
	})

	tests := []struct {
		name     string
		args     []string
		code     int
		expected string
	}{
		{"numbers", []string{"add", "2", "3.5"}, ExitOK, "5.5\n"},
		{"strings", []string{"greet", "world"}, ExitOK, "hello world\n"},
		{"null", []string{"isNull", "null"}, ExitOK, "true\n"},
		{"script error", []string{"fail"}, ExitFailure, ""},
		{"undefined", []string{"nope"}, ExitFailure, ""},
		{"private", []string{"_hidden"}, ExitFailure, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, errOut := runCLI(t, append([]string{"-c", cfg, "call"}, tt.args...)...)
			if code != tt.code {
				t.Fatalf("exit %d, want %d (%s)", code, tt.code, errOut)
			}
			if out != tt.expected {
				t.Errorf("stdout = %q, want %q", out, tt.expected)
			}
		})
	}
}

func TestParseArg(t *testing.T) {
	tests := []struct {
		in       string
		expected interface{}
	}{
		{"null", nil},
		{"true", true},
		{"false", false},
		{"42", 42.0},
		{"-1.5e3", -1500.0},
		{"localhost", "localhost"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := parseArg(tt.in); !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("parseArg(%q) = %#v, want %#v", tt.in, got, tt.expected)
		}
	}
}

func TestBuildAndExec(t *testing.T) {
	cfg, dir := project(t, map[string]string{"dev.envx": `var port = 8080; println("built");`})
	bundle := filepath.Join(dir, "out.envxb")

	code, out, errOut := runCLI(t, "-c", cfg, "build", "-o", bundle)
	if code != ExitOK {
		t.Fatalf("build: exit %d: %s", code, errOut)
	}
	if !strings.HasPrefix(out, bundle+": bundle ") {
		t.Errorf("build stdout = %q", out)
	}

	code, out, errOut = runCLI(t, "-c", cfg, "exec", "-f", "dotenv", bundle)
	if code != ExitOK {
		t.Fatalf("exec: exit %d: %s", code, errOut)
	}
	if out != "built\nport=8080\n" {
		t.Errorf("exec stdout = %q", out)
	}

	// a bundle is not a script
	code, _, errOut = runCLI(t, "-c", cfg, "run", bundle)
	if code != ExitFailure || !strings.Contains(errOut, "use envx exec") {
		t.Errorf("run bundle: exit %d, %q", code, errOut)
	}

	notBundle := writeScript(t, dir, "plain.envxb", "var x = 1;")
	code, _, errOut = runCLI(t, "-c", cfg, "exec", notBundle)
	if code != ExitFailure || !strings.Contains(errOut, "not an envx bundle") {
		t.Errorf("exec script: exit %d, %q", code, errOut)
	}
}

func TestBuildDefaultOutput(t *testing.T) {
	cfg, dir := project(t, map[string]string{"dev.envx": `var x = 1;`})
	if code, _, errOut := runCLI(t, "-c", cfg, "build"); code != ExitOK {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if _, err := os.Stat(filepath.Join(dir, "dev.envxb")); err != nil {
		t.Errorf("bundle not written next to the script: %v", err)
	}
}

func TestHistoryAndDiff(t *testing.T) {
	cfg, dir := project(t, map[string]string{"dev.envx": `var port = 8080; var host = "a";`})

	code, _, errOut := runCLI(t, "-c", cfg, "diff")
	if code != ExitFailure || !strings.Contains(errOut, "need two") {
		t.Errorf("diff without history: exit %d, %q", code, errOut)
	}

	if code, _, errOut := runCLI(t, "-c", cfg, "run", "-r"); code != ExitOK || !strings.Contains(errOut, "recorded snapshot") {
		t.Fatalf("first run: exit %d: %s", code, errOut)
	}
	writeScript(t, dir, "dev.envx", `var port = 9090; var debug = true;`)
	if code, _, errOut := runCLI(t, "-c", cfg, "run", "-r"); code != ExitOK {
		t.Fatalf("second run: exit %d: %s", code, errOut)
	}

	code, out, errOut := runCLI(t, "-c", cfg, "history")
	if code != ExitOK {
		t.Fatalf("history: exit %d: %s", code, errOut)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[0], "ID") {
		t.Errorf("history = %q", out)
	}

	code, out, errOut = runCLI(t, "-c", cfg, "history", "-n", "1")
	if code != ExitOK || len(strings.Split(strings.TrimSpace(out), "\n")) != 2 {
		t.Errorf("history -n 1: exit %d, %q %s", code, out, errOut)
	}

	code, out, errOut = runCLI(t, "-c", cfg, "diff")
	if code != ExitOK {
		t.Fatalf("diff: exit %d: %s", code, errOut)
	}
	for _, want := range []string{"+ debug = true\n", "- host = \"a\"\n", "~ port: 8080 -> 9090\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("diff output missing %q:\n%s", want, out)
		}
	}

	code, _, errOut = runCLI(t, "-c", cfg, "history", "-e", "prod")
	if code != ExitOK || !strings.Contains(errOut, "no snapshots of prod") {
		t.Errorf("empty history: exit %d, %q", code, errOut)
	}
}

func TestMissingConfig(t *testing.T) {
	code, _, errOut := runCLI(t, "-c", filepath.Join(t.TempDir(), "nope.yaml"), "run")
	if code != ExitFailure || !strings.Contains(errOut, "reading config") {
		t.Errorf("exit %d, %q", code, errOut)
	}
}

func TestUseColor(t *testing.T) {
	var buf bytes.Buffer
	if !useColor("always", &buf) || useColor("never", os.Stderr) || useColor("auto", &buf) {
		t.Error("useColor ignores the configured mode")
	}
}
