package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConvertCommandEndToEnd(t *testing.T) {
	env := setupCLITestEnv(t)
	source := env.writeArchive(t, "photos.rar", "a.jpg", "b.jpg", "c.jpg")
	dest := filepath.Join(env.baseDir, "out")

	out, _, err := env.run(t, "convert", source, "--dest", dest, "--option", "compare")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	requireContains(t, out, "Converted")
	requireContains(t, out, "(3 entries)")

	target := filepath.Join(dest, "photos.zip")
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read destination: %v", err)
	}
	if string(data) != "a.jpg\nb.jpg\nc.jpg\n" {
		t.Fatalf("unexpected destination content %q", data)
	}
	if _, err := os.Stat(filepath.Join(env.tempDir, "photos")); !os.IsNotExist(err) {
		t.Fatalf("working folder should be removed, stat err=%v", err)
	}

	_, _, err = env.run(t, "convert", source, "--dest", dest)
	if err == nil {
		t.Fatal("expected second conversion to fail")
	}
	requireContains(t, err.Error(), "START")
	requireContains(t, err.Error(), "already exists")

	out, _, err = env.run(t, "--json", "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var entries []map[string]any
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode history: %v\n%s", err, out)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(entries))
	}
	if entries[0]["step"] != "START" || entries[1]["step"] != "ALL" {
		t.Fatalf("unexpected history order: %v", entries)
	}
	if entries[0]["error_kind"] != "invalid_argument" || entries[1]["success"] != true {
		t.Fatalf("unexpected history outcome: %v", entries)
	}
	if entries[1]["target_format"] != "zip" || entries[1]["entries"] != float64(3) {
		t.Fatalf("unexpected history record: %v", entries[1])
	}
}

func TestConvertCommandJSONFailure(t *testing.T) {
	env := setupCLITestEnv(t)
	missing := filepath.Join(env.dataDir, "missing.rar")

	out, _, err := env.run(t, "--json", "convert", missing, "--no-history")
	if err == nil {
		t.Fatal("expected failure for missing source")
	}
	var summary map[string]any
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode summary: %v\n%s", err, out)
	}
	if summary["step"] != "START" || summary["error_kind"] != "not_found" || summary["success"] != false {
		t.Fatalf("unexpected summary %v", summary)
	}
}

func TestConvertCommandRejectsUnknownTarget(t *testing.T) {
	env := setupCLITestEnv(t)
	source := env.writeArchive(t, "a.rar", "x")
	_, _, err := env.run(t, "convert", source, "--to", "tar")
	if err == nil {
		t.Fatal("expected error for unsupported target")
	}
	requireContains(t, err.Error(), "unsupported target format")
}

func TestListExtractPackCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	source := env.writeArchive(t, "docs.7z", "one.txt", "two.txt")

	out, _, err := env.run(t, "list", source)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if out != "one.txt\ntwo.txt\n" {
		t.Fatalf("unexpected listing %q", out)
	}

	out, _, err = env.run(t, "list", "--table", source)
	if err != nil {
		t.Fatalf("list --table: %v", err)
	}
	requireContains(t, out, "Entry")
	requireContains(t, out, "two.txt")

	out, _, err = env.run(t, "--json", "list", source)
	if err != nil {
		t.Fatalf("list --json: %v", err)
	}
	var listing struct {
		Count   int      `json:"count"`
		Entries []string `json:"entries"`
	}
	if err := json.Unmarshal([]byte(out), &listing); err != nil {
		t.Fatalf("decode listing: %v\n%s", err, out)
	}
	if listing.Count != 2 || len(listing.Entries) != 2 || listing.Entries[1] != "two.txt" {
		t.Fatalf("unexpected listing %+v", listing)
	}

	folder := filepath.Join(env.baseDir, "unpacked")
	if err := os.MkdirAll(folder, 0o755); err != nil {
		t.Fatal(err)
	}
	out, _, err = env.run(t, "extract", "--quiet", source, folder)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	requireContains(t, out, "Extracted")
	if _, err := os.Stat(filepath.Join(folder, "two.txt")); err != nil {
		t.Fatalf("expected extracted file: %v", err)
	}
	if _, err := os.Stat(filepath.Join(folder, "docs.7z.log")); !os.IsNotExist(err) {
		t.Fatalf("transcript should be removed after success, stat err=%v", err)
	}

	target := filepath.Join(env.baseDir, "repacked", "docs.zip")
	out, _, err = env.run(t, "pack", "--quiet", folder, target)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	requireContains(t, out, "Packed")

	_, _, err = env.run(t, "pack", folder, filepath.Join(folder, "inside.zip"))
	if err == nil {
		t.Fatal("expected pack into the source folder to fail")
	}
}

func TestToolsCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := env.run(t, "tools")
	if err != nil {
		t.Fatalf("tools: %v\n%s", err, out)
	}
	requireContains(t, out, "ZIP packer")
	requireContains(t, out, "Temp directory")
}

func TestTempListAndClean(t *testing.T) {
	env := setupCLITestEnv(t)
	leftover := filepath.Join(env.tempDir, "old-run")
	if err := os.MkdirAll(leftover, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(leftover, "file.bin"), []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := env.run(t, "temp", "list")
	if err != nil {
		t.Fatalf("temp list: %v", err)
	}
	requireContains(t, out, "old-run")

	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(leftover, old, old); err != nil {
		t.Fatal(err)
	}
	out, _, err = env.run(t, "temp", "clean")
	if err != nil {
		t.Fatalf("temp clean: %v", err)
	}
	requireContains(t, out, "Removed 1 working folder(s)")
	if _, err := os.Stat(leftover); !os.IsNotExist(err) {
		t.Fatalf("leftover should be removed, stat err=%v", err)
	}
}

func TestLogsPrune(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.MkdirAll(env.tempDir, 0o755); err != nil {
		t.Fatal(err)
	}
	stale := filepath.Join(env.tempDir, "stale.log")
	fresh := filepath.Join(env.tempDir, "fresh.log")
	for _, p := range []string{stale, fresh} {
		if err := os.WriteFile(p, []byte("line\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	old := time.Now().AddDate(0, 0, -40)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatal(err)
	}

	out, _, err := env.run(t, "logs", "prune")
	if err != nil {
		t.Fatalf("logs prune: %v", err)
	}
	requireContains(t, out, "stale.log")
	if _, err := os.Stat(fresh); err != nil {
		t.Fatalf("fresh transcript should remain: %v", err)
	}
}

func TestLogsShowTranscript(t *testing.T) {
	env := setupCLITestEnv(t)
	transcript := filepath.Join(env.baseDir, "photos.log")
	if err := os.WriteFile(transcript, []byte("first\nsecond\nthird\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, _, err := env.run(t, "logs", "show", "--lines", "2", transcript)
	if err != nil {
		t.Fatalf("logs show: %v", err)
	}
	if out != "second\nthird\n" {
		t.Fatalf("unexpected output %q", out)
	}
}
