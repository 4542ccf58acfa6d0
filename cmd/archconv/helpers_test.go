package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fakeSevenZip emulates the 7z commands archconv issues. An "archive" is a
// text file holding one entry name per line.
const fakeSevenZip = `#!/bin/sh
cmd="$1"; shift
while [ "${1#-}" != "$1" ]; do shift; done
archive="$1"
case "$cmd" in
l)
  cat "$archive"
  ;;
x)
  dest="${2#-o}"
  while IFS= read -r name; do
    [ -z "$name" ] && continue
    printf 'content of %s\n' "$name" > "$dest/$name"
    echo "Extracting  $name"
  done < "$archive"
  echo "Everything is Ok"
  ;;
a)
  : > "$archive"
  for f in $2; do
    [ -f "$f" ] || continue
    basename "$f" >> "$archive"
    echo "+ $(basename "$f")"
  done
  echo "Everything is Ok"
  ;;
*)
  echo "unknown command $cmd" >&2
  exit 7
  ;;
esac
`

type cliTestEnv struct {
	baseDir    string
	configPath string
	tempDir    string
	logDir     string
	dataDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "config.toml"),
		tempDir:    filepath.Join(base, "tmp"),
		logDir:     filepath.Join(base, "logs"),
		dataDir:    filepath.Join(base, "data"),
	}
	if err := os.MkdirAll(env.dataDir, 0o755); err != nil {
		t.Fatalf("mkdir data: %v", err)
	}

	tool := filepath.Join(base, "bin", "7z")
	if err := os.MkdirAll(filepath.Dir(tool), 0o755); err != nil {
		t.Fatalf("mkdir bin: %v", err)
	}
	if err := os.WriteFile(tool, []byte(fakeSevenZip), 0o755); err != nil {
		t.Fatalf("write fake tool: %v", err)
	}

	content := fmt.Sprintf(`[paths]
temp_dir = %q
log_dir = %q
history_db = %q

[tools]
rar_extractor = %q
rar_packer = %q
zip_extractor = %q
zip_packer = %q
s7z_extractor = %q
s7z_packer = %q

[conversion]
target_format = "zip"

[logging]
level = "error"
`, env.tempDir, env.logDir, filepath.Join(base, "state", "history.db"),
		tool, tool, tool, tool, tool, tool)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func (e *cliTestEnv) writeArchive(t *testing.T, name string, entries ...string) string {
	t.Helper()
	path := filepath.Join(e.dataDir, name)
	if err := os.WriteFile(path, []byte(strings.Join(entries, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write archive: %v", err)
	}
	return path
}

func (e *cliTestEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return runCLI(t, append([]string{"--config", e.configPath}, args...))
}

func runCLI(t *testing.T, args []string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected %q to contain %q", haystack, needle)
	}
}
