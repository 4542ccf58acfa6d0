package archiver

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"archconv/internal/process"
)

// fakeSevenZip emulates the subset of the 7z CLI the builders emit. An
// "archive" is a text file holding one entry name per line. A first line of
// FAIL or SLEEP makes extraction fail or hang; archive names containing
// "fail" or "slow" do the same for packing.
const fakeSevenZip = `#!/bin/sh
cmd="$1"; shift
while [ "${1#-}" != "$1" ]; do shift; done
archive="$1"
case "$cmd" in
l)
  if [ "$(head -n1 "$archive")" = "FAIL" ]; then
    echo "ERROR: $archive" >&2
    echo "Can not open the file as archive" >&2
    exit 2
  fi
  cat "$archive"
  ;;
x)
  dest="${2#-o}"
  first="$(head -n1 "$archive")"
  if [ "$first" = "FAIL" ]; then echo "Data error" >&2; exit 2; fi
  if [ "$first" = "SLEEP" ]; then echo "started"; sleep 30; exit 0; fi
  while IFS= read -r name; do
    [ -z "$name" ] && continue
    printf 'content of %s\n' "$name" > "$dest/$name"
    echo "Extracting  $name"
  done < "$archive"
  echo "Everything is Ok"
  ;;
a)
  case "$(basename "$archive")" in
    *fail*) echo "WARNING: cannot write" >&2; echo "System ERROR" >&2; exit 2 ;;
    *slow*) sleep 30 ;;
  esac
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

func installFakeTool(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "7z")
	if err := os.WriteFile(path, []byte(fakeSevenZip), 0o755); err != nil {
		t.Fatalf("write fake tool: %v", err)
	}
	return path
}

func writeArchive(t *testing.T, dir, name string, entries ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	content := strings.Join(entries, "\n")
	if len(entries) > 0 {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write archive: %v", err)
	}
	return path
}

type recorder struct {
	mu       sync.Mutex
	counts   []int64
	messages []string
}

func (r *recorder) listeners() process.Listeners {
	return process.Listeners{
		Progress: func(n int64) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.counts = append(r.counts, n)
		},
		Message: func(line string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.messages = append(r.messages, line)
		},
	}
}

func (r *recorder) last() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.counts) == 0 {
		return 0
	}
	return r.counts[len(r.counts)-1]
}

// countingRunner records invocations and delegates to an ExecRunner.
type countingRunner struct {
	mu    sync.Mutex
	calls []process.Command
}

func (r *countingRunner) Run(ctx context.Context, cmd process.Command, spec process.Spec) (process.Result, error) {
	r.mu.Lock()
	r.calls = append(r.calls, cmd)
	r.mu.Unlock()
	return process.NewExecRunner().Run(ctx, cmd, spec)
}

func (r *countingRunner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}
