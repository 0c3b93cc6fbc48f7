package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPrintConfigDefaults(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)

	stdout := c.MustRun("print-config")
	AssertContains(t, stdout, `"data_dir": "`+c.DataDir+`"`)
	AssertContains(t, stdout, "# source: defaults only")
}

func TestPrintConfigFromFileMasksToken(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)

	path := filepath.Join(t.TempDir(), "config.json")

	content := `{
	// Test configuration.
	"token": "super-secret-session",
	"timeout_seconds": 30,
}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	stdout := c.MustRun("--config", path, "print-config")
	AssertContains(t, stdout, `"timeout_seconds": 30`)
	AssertContains(t, stdout, "# source: "+path)
	AssertNotContains(t, stdout, "super-secret-session")
}
