package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/funvibe/envx/internal/config"
)

// TestFunctional runs every testdata script that has a .want file through
// `envx run -f json` and compares stdout followed by stderr.
func TestFunctional(t *testing.T) {
	cfg, _ := project(t, nil)

	testdata, err := filepath.Abs("testdata")
	if err != nil {
		t.Fatalf("Failed to get testdata path: %v", err)
	}
	scripts, err := filepath.Glob(filepath.Join(testdata, "*"+config.SourceFileExt))
	if err != nil {
		t.Fatalf("Failed to list scripts: %v", err)
	}
	if len(scripts) == 0 {
		t.Skip("No test scripts found")
	}

	for _, script := range scripts {
		wantFile := config.TrimSourceExt(script) + ".want"
		wantBytes, err := os.ReadFile(wantFile)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			t.Fatalf("Failed to read %s: %v", wantFile, err)
		}

		name := filepath.Base(config.TrimSourceExt(script))
		t.Run(name, func(t *testing.T) {
			_, stdout, stderr := runCLI(t, "-c", cfg, "run", "-f", "json", script)
			got := normalizeOutput(stdout, stderr, testdata+string(filepath.Separator))
			want := strings.TrimSpace(string(wantBytes))
			if got != want {
				t.Errorf("output mismatch\n--- got ---\n%s\n--- want ---\n%s", got, want)
			}
		})
	}
}

// normalizeOutput joins stdout and stderr, strips the testdata prefix from
// paths and trailing whitespace from every line.
func normalizeOutput(stdout, stderr, prefix string) string {
	combined := strings.TrimSpace(stdout)
	if s := strings.TrimSpace(stderr); s != "" {
		if combined != "" {
			combined += "\n"
		}
		combined += strings.ReplaceAll(s, prefix, "")
	}
	lines := strings.Split(combined, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
