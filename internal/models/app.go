package models

import (
	"github.com/ChestnutLUO/chromium-certificate/internal/electron"

	"github.com/google/uuid"
)

// DetectedApplication is a bundle that matched one of the classification rules.
// Values are built once per scan and never mutated afterwards.
type DetectedApplication struct {
	// ID is fresh per scan and only used for stable list rendering
	ID          string         `json:"-" yaml:"-"`
	Name        string         `json:"name" yaml:"name"`
	Category    Classification `json:"category" yaml:"category"`
	InstallPath string         `json:"install_path" yaml:"install_path"`

	// Electron only. Both are set together or not at all.
	RuntimeVersion     string `json:"runtime_version,omitempty" yaml:"runtime_version,omitempty"`
	KnownIssueResolved *bool  `json:"known_issue_resolved,omitempty" yaml:"known_issue_resolved,omitempty"`
}

// NewDetectedApplication creates a record for the classifications that carry no version
func NewDetectedApplication(name string, category Classification, installPath string) *DetectedApplication {
	return &DetectedApplication{
		ID:          uuid.NewString(),
		Name:        name,
		Category:    category,
		InstallPath: installPath,
	}
}

// NewElectronApplication creates an electron_runtime record.
// An empty version leaves both optional fields absent.
func NewElectronApplication(name, installPath, version string) *DetectedApplication {
	app := NewDetectedApplication(name, ElectronRuntime, installPath)
	if version == "" {
		return app
	}

	fixed := electron.IsVersionFixed(version)
	app.RuntimeVersion = version
	app.KnownIssueResolved = &fixed
	return app
}

// HasVersion reports whether a runtime version was extracted
func (a *DetectedApplication) HasVersion() bool {
	return a.RuntimeVersion != ""
}

// Resolved returns the known-issue verdict and whether one exists
func (a *DetectedApplication) Resolved() (resolved bool, ok bool) {
	if a.KnownIssueResolved == nil {
		return false, false
	}
	return *a.KnownIssueResolved, true
}

// StatusLabel returns "fixed", "not fixed" or "" when there is no verdict
func (a *DetectedApplication) StatusLabel() string {
	resolved, ok := a.Resolved()
	switch {
	case !ok:
		return ""
	case resolved:
		return "fixed"
	default:
		return "not fixed"
	}
}
