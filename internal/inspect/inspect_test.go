package inspect

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

type recordedCall struct {
	name string
	args []string
}

func fakeRunner(out string, err error, calls *[]recordedCall) Runner {
	return func(name string, args ...string) ([]byte, error) {
		*calls = append(*calls, recordedCall{name: name, args: args})
		return []byte(out), err
	}
}

func TestNewOtool_Defaults(t *testing.T) {
	o := NewOtool("")
	if o.Path != DefaultOtoolPath {
		t.Errorf("Expected default path %s, got %s", DefaultOtoolPath, o.Path)
	}

	o = NewOtool("/opt/bin/otool")
	if o.Path != "/opt/bin/otool" {
		t.Errorf("Expected custom path, got %s", o.Path)
	}
}

func TestOtool_LinkedLibraries(t *testing.T) {
	var calls []recordedCall
	output := "/Applications/X.app/Contents/MacOS/X:\n\t@rpath/Chromium Embedded Framework.framework\n"
	o := &Otool{Path: "/usr/bin/otool", Run: fakeRunner(output, nil, &calls)}

	got, err := o.LinkedLibraries("/Applications/X.app/Contents/MacOS/X")
	if err != nil {
		t.Fatalf("LinkedLibraries failed: %v", err)
	}
	if got != output {
		t.Errorf("Expected raw output, got %q", got)
	}

	want := recordedCall{name: "/usr/bin/otool", args: []string{"-L", "/Applications/X.app/Contents/MacOS/X"}}
	if len(calls) != 1 || !reflect.DeepEqual(calls[0], want) {
		t.Errorf("Unexpected calls: %+v", calls)
	}
}

func TestOtool_Error(t *testing.T) {
	var calls []recordedCall
	o := &Otool{Path: "otool", Run: fakeRunner("", errors.New("exit status 1"), &calls)}
	if _, err := o.LinkedLibraries("/bin/x"); err == nil {
		t.Error("Expected error to be returned")
	}
}

func TestPlistTools_BundleIdentifier(t *testing.T) {
	var calls []recordedCall
	p := &PlistTools{PlistBuddy: "/usr/libexec/PlistBuddy", Run: fakeRunner("com.github.Electron\n", nil, &calls)}

	id, err := p.BundleIdentifier("/Applications/X.app/Contents/Info.plist")
	if err != nil {
		t.Fatalf("BundleIdentifier failed: %v", err)
	}
	if id != "com.github.Electron" {
		t.Errorf("Expected trimmed identifier, got %q", id)
	}

	want := recordedCall{
		name: "/usr/libexec/PlistBuddy",
		args: []string{"-c", "Print CFBundleIdentifier", "/Applications/X.app/Contents/Info.plist"},
	}
	if len(calls) != 1 || !reflect.DeepEqual(calls[0], want) {
		t.Errorf("Unexpected calls: %+v", calls)
	}
}

func TestPlistTools_RawValue(t *testing.T) {
	var calls []recordedCall
	p := &PlistTools{Plutil: "/usr/bin/plutil", Run: fakeRunner("  37.6.0\n", nil, &calls)}

	v, err := p.RawValue("CFBundleVersion", "/tmp/Info.plist")
	if err != nil {
		t.Fatalf("RawValue failed: %v", err)
	}
	if v != "37.6.0" {
		t.Errorf("Expected trimmed value, got %q", v)
	}

	want := recordedCall{name: "/usr/bin/plutil", args: []string{"-extract", "CFBundleVersion", "raw", "/tmp/Info.plist"}}
	if len(calls) != 1 || !reflect.DeepEqual(calls[0], want) {
		t.Errorf("Unexpected calls: %+v", calls)
	}
}

func TestPlistTools_Error(t *testing.T) {
	var calls []recordedCall
	p := NewPlistTools("", "")
	p.Run = fakeRunner("garbage", errors.New("exit status 1"), &calls)

	if _, err := p.RawValue("CFBundleVersion", "/tmp/Info.plist"); err == nil {
		t.Error("Expected error from RawValue")
	}
	if _, err := p.BundleIdentifier("/tmp/Info.plist"); err == nil {
		t.Error("Expected error from BundleIdentifier")
	}
	if calls[0].name != DefaultPlutilPath || calls[1].name != DefaultPlistBuddyPath {
		t.Errorf("Expected default tool paths, got %+v", calls)
	}
}

func TestExecRunner_MissingBinary(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")
	if _, err := ExecRunner(missing, "-L", "/bin/sh"); err == nil {
		t.Error("Expected launch failure to be an error")
	}
}

func TestAvailable(t *testing.T) {
	dir := t.TempDir()
	tool := filepath.Join(dir, "tool")
	if err := os.WriteFile(tool, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatalf("Failed to write tool: %v", err)
	}

	if !Available(tool) {
		t.Error("Expected executable to be available")
	}
	if Available(filepath.Join(dir, "missing")) {
		t.Error("Expected missing tool to be unavailable")
	}
}
