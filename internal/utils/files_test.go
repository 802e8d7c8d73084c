package utils_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/polittrack-cli/internal/utils"
)

func TestSafeWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.md")
	if err := utils.SafeWriteFile(path, []byte("hello")); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil || string(b) != "hello" {
		t.Fatalf("read back %q, %v", b, err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
}

func TestEncoders(t *testing.T) {
	v := map[string]any{"name": "A", "warnings": 1}
	j, err := utils.PrettyJSON(v)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(j), "\n  \"name\": \"A\"") || !strings.HasSuffix(string(j), "}\n") {
		t.Fatalf("json = %s", j)
	}
	y, err := utils.YAML(v)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(y), "name: A\n") {
		t.Fatalf("yaml = %s", y)
	}
}
