// Package inspect wraps the read-only macOS introspection tools the scanner
// shells out to. Output is treated as untyped text; any failure to launch
// or a non-zero exit is returned as an error for the caller to ignore.
package inspect

import (
	"fmt"
	"os/exec"
	"strings"
)

// Default tool locations on macOS
const (
	DefaultOtoolPath      = "/usr/bin/otool"
	DefaultPlistBuddyPath = "/usr/libexec/PlistBuddy"
	DefaultPlutilPath     = "/usr/bin/plutil"
)

// DependencyLister lists the dynamic libraries an executable links against
type DependencyLister interface {
	LinkedLibraries(path string) (string, error)
}

// MetadataReader reads fields from a bundle's property list
type MetadataReader interface {
	BundleIdentifier(plistPath string) (string, error)
	RawValue(key, plistPath string) (string, error)
}

// Runner executes a command and returns its standard output
type Runner func(name string, args ...string) ([]byte, error)

// ExecRunner runs the command with os/exec. Stderr is discarded.
func ExecRunner(name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	out, err := cmd.Output()
	if err != nil {
		return out, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// Otool lists linked libraries with `otool -L`
type Otool struct {
	Path string
	Run  Runner
}

// NewOtool creates an Otool using the given binary, or the system default
func NewOtool(path string) *Otool {
	if path == "" {
		path = DefaultOtoolPath
	}
	return &Otool{Path: path, Run: ExecRunner}
}

// LinkedLibraries returns the raw `otool -L` output for path
func (o *Otool) LinkedLibraries(path string) (string, error) {
	out, err := o.runner()(o.Path, "-L", path)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (o *Otool) runner() Runner {
	if o.Run == nil {
		return ExecRunner
	}
	return o.Run
}

// PlistTools reads property lists with PlistBuddy and plutil
type PlistTools struct {
	PlistBuddy string
	Plutil     string
	Run        Runner
}

// NewPlistTools creates PlistTools, falling back to system defaults for empty paths
func NewPlistTools(plistBuddy, plutil string) *PlistTools {
	if plistBuddy == "" {
		plistBuddy = DefaultPlistBuddyPath
	}
	if plutil == "" {
		plutil = DefaultPlutilPath
	}
	return &PlistTools{PlistBuddy: plistBuddy, Plutil: plutil, Run: ExecRunner}
}

// BundleIdentifier prints CFBundleIdentifier with PlistBuddy
func (p *PlistTools) BundleIdentifier(plistPath string) (string, error) {
	out, err := p.runner()(p.PlistBuddy, "-c", "Print CFBundleIdentifier", plistPath)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// RawValue extracts key as a raw string with `plutil -extract <key> raw`
func (p *PlistTools) RawValue(key, plistPath string) (string, error) {
	out, err := p.runner()(p.Plutil, "-extract", key, "raw", plistPath)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func (p *PlistTools) runner() Runner {
	if p.Run == nil {
		return ExecRunner
	}
	return p.Run
}

// Available reports whether a tool binary can be found
func Available(path string) bool {
	_, err := exec.LookPath(path)
	return err == nil
}
