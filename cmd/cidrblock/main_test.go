package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"cidrblock/internal/config"
)

func TestNewRootCmd(t *testing.T) {
	cmd := newRootCmd()
	if cmd == nil {
		t.Fatal("newRootCmd returned nil")
	}
	if cmd.Name() != "cidrblock" {
		t.Errorf("Expected name 'cidrblock', got '%s'", cmd.Name())
	}
}

func writeList(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "ranges.txt")
	content := strings.Join([]string{
		"# sample",
		"0.0.0.1 - 0.0.0.3",
		"0.0.0.2/31",
		"10.0.0.5 - 10.0.0.5",
		"ignored line",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--env-file", "", "--log-file", filepath.Join(t.TempDir(), "test.log")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestRunDryRun(t *testing.T) {
	path := writeList(t, t.TempDir())

	out, err := execute(t, "", path, "--backend", "dry-run")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	want := []string{
		"Blocking 3 CIDR blocks.",
		"would run: sudo ufw deny from 0.0.0.1/32",
		"applied: 0.0.0.1/32",
		"would run: sudo ufw deny from 0.0.0.2/31",
		"applied: 0.0.0.2/31",
		"would run: sudo ufw deny from 10.0.0.5/32",
		"applied: 10.0.0.5/32",
		"Done.",
	}
	got := strings.Split(strings.TrimSpace(out), "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestRunDryRunIPTables(t *testing.T) {
	path := writeList(t, t.TempDir())

	out, err := execute(t, "", path, "--backend", "iptables", "--dry-run", "--chain", "BLOCKLIST", "--sudo=false", "--binary", "false")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(out, "would run: false -I BLOCKLIST -s 0.0.0.2/31 -j DROP\napplied: 0.0.0.2/31") {
		t.Fatalf("expected iptables preview, got %q", out)
	}
	if strings.Contains(out, "failed: ") {
		t.Fatalf("dry run must not execute the tool, got %q", out)
	}
}

func TestRunPromptsForFile(t *testing.T) {
	path := writeList(t, t.TempDir())

	out, err := execute(t, path+"\n", "--list-only")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.HasPrefix(out, "Enter the IP range file name: Blocking 3 CIDR blocks.") {
		t.Fatalf("expected prompt followed by summary, got %q", out)
	}
	if !strings.Contains(out, "0.0.0.2/31\n10.0.0.5/32\n") {
		t.Fatalf("expected sorted block listing, got %q", out)
	}
}

func TestRunReportsFailuresWithoutFailing(t *testing.T) {
	path := writeList(t, t.TempDir())

	out, err := execute(t, "", path, "--backend", "ufw", "--sudo=false", "--binary", "false")
	if err != nil {
		t.Fatalf("rule failures must not fail the run, got %v", err)
	}
	if strings.Count(out, "failed: ") != 3 || !strings.Contains(out, "Done.") {
		t.Fatalf("expected three failed lines and completion, got %q", out)
	}

	out, err = execute(t, "", path, "--backend", "iptables", "--sudo=false", "--binary", "true")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if strings.Count(out, "applied: ") != 3 {
		t.Fatalf("expected three applied lines, got %q", out)
	}
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()

	// Missing input file
	if _, err := execute(t, "", filepath.Join(dir, "nonexistent"), "--backend", "dry-run"); err == nil {
		t.Error("Expected error for nonexistent input file")
	}

	// Malformed range aborts before anything is applied
	bad := filepath.Join(dir, "bad.txt")
	os.WriteFile(bad, []byte("1.1.1.1/32\n10.0.0.9 - 10.0.0.1\n"), 0644)
	out, err := execute(t, "", bad, "--backend", "dry-run")
	if err == nil {
		t.Error("Expected error for reversed range")
	}
	if strings.Contains(out, "would run") {
		t.Errorf("expected no rules applied, got %q", out)
	}

	// Empty prompt answer
	if _, err := execute(t, "\n", "--backend", "dry-run"); err == nil {
		t.Error("Expected error for empty file name")
	}

	// Invalid backend and service
	list := writeList(t, dir)
	if _, err := execute(t, "", list, "--backend", "pf"); err == nil {
		t.Error("Expected error for invalid backend")
	}
	if _, err := execute(t, "", list, "--backend", "dry-run", "--service", "bogus"); err == nil {
		t.Error("Expected error for invalid service")
	}
}

func TestRunFortiGateProvider(t *testing.T) {
	dir := t.TempDir()
	conf := filepath.Join(dir, "fortigate.conf")
	os.WriteFile(conf, []byte(strings.Join([]string{
		"config firewall address",
		"edit \"bad-actors\"",
		"set type iprange",
		"set start-ip 0.0.0.0",
		"set end-ip 0.0.0.3",
		"next",
		"end",
		"config firewall addrgrp",
		"edit \"deny\"",
		"set member \"bad-actors\"",
		"next",
		"end",
	}, "\n")), 0644)

	out, err := execute(t, "", conf, "--provider", "fortigate", "--group", "deny", "--backend", "dry-run", "--sudo=false", "--service", "ssh")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(out, "would run: ufw deny from 0.0.0.0/30 to any port 22 proto tcp") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestLoadBlocks(t *testing.T) {
	// Test unknown provider
	if _, err := loadBlocks(&config.Config{Provider: "unknown"}, ""); err == nil {
		t.Error("Expected error for unknown provider")
	}

	if _, err := loadBlocks(&config.Config{Provider: "fortigate"}, "/nonexistent/rules"); err == nil {
		t.Error("Expected error for nonexistent fortigate config file")
	}

	// Test mariadb with missing DSN
	if _, err := loadBlocks(&config.Config{Provider: "mariadb"}, ""); err == nil {
		t.Error("Expected error for missing mariadb DSN")
	}

	// Test mariadb with invalid DSN (should fail on connection/parsing)
	if _, err := loadBlocks(&config.Config{Provider: "mariadb", DSN: "invalid-dsn"}, ""); err == nil {
		t.Error("Expected error for invalid mariadb DSN")
	}
}

func TestAddressCount(t *testing.T) {
	got := addressCount([]string{"10.0.0.0/24", "10.0.1.1/32", "garbage/99", "2001:db8::/64"})
	if got != 257 {
		t.Errorf("Expected 257 addresses, got %d", got)
	}
}

func TestPromptPath(t *testing.T) {
	var out bytes.Buffer
	path, err := promptPath(strings.NewReader("  ranges.txt  "), &out)
	if err != nil || path != "ranges.txt" {
		t.Fatalf("expected ranges.txt, got %q (%v)", path, err)
	}
}

func TestSetupLogger(t *testing.T) {
	levels := []string{"DEBUG", "INFO", "WARN", "ERROR", "UNKNOWN"}
	for _, lvl := range levels {
		for _, format := range []string{"json", "text"} {
			if l := setupLogger(lvl, format, ""); l == nil {
				t.Errorf("setupLogger returned nil for level %s format %s", lvl, format)
			}
		}
	}

	logFile := filepath.Join(t.TempDir(), "test.log")
	l := setupLogger("INFO", "json", logFile)
	l.Info("hello")
	data, err := os.ReadFile(logFile)
	if err != nil || !strings.Contains(string(data), "hello") {
		t.Errorf("expected log line in file, got %q (%v)", data, err)
	}
}
