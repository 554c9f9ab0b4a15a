package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ChestnutLUO/chromium-certificate/internal/config"
	"github.com/ChestnutLUO/chromium-certificate/internal/report"
)

// testApplicationsDir builds bundles that classify without running any tool
func testApplicationsDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	mkdir := func(parts ...string) {
		if err := os.MkdirAll(filepath.Join(append([]string{dir}, parts...)...), 0755); err != nil {
			t.Fatal(err)
		}
	}
	mkdir("Slack.app", "Contents", "Frameworks", "Electron Framework.framework")
	mkdir("Arc.app", "Contents", "Frameworks", "Chromium Embedded Framework.framework")
	mkdir("Notes.app", "Contents")
	mkdir(".Hidden.app", "Contents", "Frameworks", "Electron Framework.framework")
	return dir
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CI", "1")

	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootNonInteractivePrintsTable(t *testing.T) {
	out, err := runCLI(t, "--dir", testApplicationsDir(t))
	if err != nil {
		t.Fatalf("root failed: %v", err)
	}
	for _, want := range []string{"Arc", "Slack", "2 Chromium apps on this Mac"} {
		if !strings.Contains(out, want) {
			t.Errorf("Output should contain %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Hidden") || strings.Contains(out, "Notes") {
		t.Errorf("Output should not list hidden or unflagged bundles:\n%s", out)
	}
}

func TestCountCommand(t *testing.T) {
	out, err := runCLI(t, "count", "--dir", testApplicationsDir(t))
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if strings.TrimSpace(out) != "2" {
		t.Errorf("Expected 2, got %q", out)
	}
}

func TestNamesCommand(t *testing.T) {
	out, err := runCLI(t, "names", "--dir", testApplicationsDir(t))
	if err != nil {
		t.Fatalf("names failed: %v", err)
	}
	if out != "Arc\nSlack\n" {
		t.Errorf("Unexpected names output %q", out)
	}
}

func TestScanCommandJSON(t *testing.T) {
	out, err := runCLI(t, "scan", "--dir", testApplicationsDir(t), "-o", "json")
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	var inv struct {
		Total        int `json:"total"`
		Applications []struct {
			Name           string  `json:"name"`
			Category       string  `json:"category"`
			RuntimeVersion *string `json:"runtime_version"`
		} `json:"applications"`
	}
	if err := json.Unmarshal([]byte(out), &inv); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out)
	}
	if inv.Total != 2 || len(inv.Applications) != 2 {
		t.Fatalf("Expected 2 apps, got %+v", inv)
	}
	slack := inv.Applications[1]
	if slack.Name != "Slack" || slack.Category != "electron_runtime" {
		t.Errorf("Unexpected record %+v", slack)
	}
	if slack.RuntimeVersion != nil {
		t.Error("Version should be absent without the framework resources plist")
	}
}

func TestScanCommandEmptyDir(t *testing.T) {
	out, err := runCLI(t, "scan", "--dir", t.TempDir())
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if !strings.Contains(out, "No Chromium-based apps found") {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestScanCommandMissingDir(t *testing.T) {
	out, err := runCLI(t, "count", "--dir", filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("An unreadable directory should not fail the scan: %v", err)
	}
	if strings.TrimSpace(out) != "0" {
		t.Errorf("Expected 0, got %q", out)
	}
}

func TestGroupsCommandJSON(t *testing.T) {
	out, err := runCLI(t, "groups", "--dir", testApplicationsDir(t), "--output", "json")
	if err != nil {
		t.Fatalf("groups failed: %v", err)
	}

	var groups []report.Group
	if err := json.Unmarshal([]byte(out), &groups); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out)
	}
	if len(groups) != 4 {
		t.Fatalf("Expected 4 groups, got %d", len(groups))
	}
	counts := map[string]int{}
	for _, g := range groups {
		counts[string(g.Category)] = g.Count
	}
	if counts["electron_runtime"] != 1 || counts["chromium_framework"] != 1 ||
		counts["chromium_linked_library"] != 0 || counts["electron_identifier"] != 0 {
		t.Errorf("Unexpected group counts %v", counts)
	}
}

func TestOutputFormatIgnoresCase(t *testing.T) {
	out, err := runCLI(t, "count", "--dir", testApplicationsDir(t), "--output", "JSON")
	if err != nil {
		t.Fatalf("count --output JSON failed: %v", err)
	}
	var got map[string]int
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out)
	}
	if got["total"] != 2 {
		t.Errorf("Expected total 2, got %v", got)
	}
}

func TestInvalidOutputFormat(t *testing.T) {
	if _, err := runCLI(t, "scan", "--dir", t.TempDir(), "-o", "xml"); err == nil {
		t.Error("Expected error for unsupported output format")
	}
}

func TestCheckVersionCommand(t *testing.T) {
	out, err := runCLI(t, "check-version", "36.9.1", "38.2.0", "-o", "json")
	if err != nil {
		t.Fatalf("check-version failed: %v", err)
	}

	var verdicts []versionVerdict
	if err := json.Unmarshal([]byte(out), &verdicts); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out)
	}
	want := []versionVerdict{{"36.9.1", false}, {"38.2.0", true}}
	if len(verdicts) != len(want) {
		t.Fatalf("Expected %d verdicts, got %d", len(want), len(verdicts))
	}
	for i := range want {
		if verdicts[i] != want[i] {
			t.Errorf("verdict %d: got %+v, want %+v", i, verdicts[i], want[i])
		}
	}
}

func TestCheckVersionTable(t *testing.T) {
	out, err := runCLI(t, "check", "40.0.0", "35.1.0")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %q", out)
	}
	if !strings.HasPrefix(lines[0], "40.0.0") || !strings.HasSuffix(lines[0], "fixed") || strings.Contains(lines[0], "not") {
		t.Errorf("Unexpected line %q", lines[0])
	}
	if !strings.Contains(lines[1], "not fixed") {
		t.Errorf("Unexpected line %q", lines[1])
	}
}

func TestCheckVersionRequiresArgs(t *testing.T) {
	if _, err := runCLI(t, "check-version"); err == nil {
		t.Error("Expected error without versions")
	}
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	out, err := runCLI(t, "config", "init", "--config", path)
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Errorf("Expected written path in output, got %q", out)
	}

	if _, err := runCLI(t, "config", "init", "--config", path); err == nil {
		t.Error("Second init without --force should fail")
	}
	if _, err := runCLI(t, "config", "init", "--config", path, "--force"); err != nil {
		t.Errorf("init --force failed: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("written config does not load: %v", err)
	}
	if cfg.ApplicationsDir != "/Applications" {
		t.Errorf("Expected default applications dir, got %s", cfg.ApplicationsDir)
	}

	out, err = runCLI(t, "config", "show", "--config", path, "--dir", "/tmp/Apps")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if !strings.Contains(out, "applications_dir: /tmp/Apps") {
		t.Errorf("Flag override should be visible in config show:\n%s", out)
	}
}

func TestConfigMissingExplicitFile(t *testing.T) {
	if _, err := runCLI(t, "count", "--config", filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("A missing explicit config file should be an error")
	}
}

func TestDoctorReportsMissingDir(t *testing.T) {
	out, err := runCLI(t, "doctor", "--dir", filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Error("doctor should fail when the applications dir is missing")
	}
	if !strings.Contains(out, "applications dir") {
		t.Errorf("doctor output should list the directory check:\n%s", out)
	}
}

func TestRunDoctor(t *testing.T) {
	cfg := config.Default()
	cfg.ApplicationsDir = testApplicationsDir(t)
	cfg.OtoolPath = filepath.Join(t.TempDir(), "no-otool")

	checks := runDoctor(cfg)
	if len(checks) != 4 {
		t.Fatalf("Expected 4 checks, got %d", len(checks))
	}
	if checks[0].OK {
		t.Error("Missing otool should not pass")
	}
	dir := checks[3]
	if !dir.OK || !strings.Contains(dir.Info, "4 entries") {
		t.Errorf("Unexpected dir check %+v", dir)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "chromium-certificate dev") {
		t.Errorf("Unexpected version output %q", out)
	}
	if !strings.Contains(out, "36.9.2, 37.6.0, 38.2.0, 39.0.0") {
		t.Errorf("Version output should list fixed lines: %q", out)
	}
}
