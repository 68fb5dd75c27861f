package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	contents := `# local overrides
PORTAL_TEST_PLAIN=hello
PORTAL_TEST_QUOTED="quoted value"
PORTAL_TEST_PRESET=from-file

not-a-pair
`
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	t.Setenv("PORTAL_TEST_PRESET", "from-env")
	t.Setenv("PORTAL_TEST_PLAIN", "")
	t.Setenv("PORTAL_TEST_QUOTED", "")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}

	if got := os.Getenv("PORTAL_TEST_PLAIN"); got != "hello" {
		t.Errorf("PORTAL_TEST_PLAIN = %q", got)
	}
	if got := os.Getenv("PORTAL_TEST_QUOTED"); got != "quoted value" {
		t.Errorf("PORTAL_TEST_QUOTED = %q", got)
	}
	if got := os.Getenv("PORTAL_TEST_PRESET"); got != "from-env" {
		t.Errorf("existing env was overridden: %q", got)
	}
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
