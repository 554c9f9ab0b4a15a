package models

import "fmt"

// Classification tags how a bundle was recognised as Chromium-based
type Classification string

const (
	ElectronRuntime       Classification = "electron_runtime"        // Embedded Electron Framework.framework
	ChromiumFramework     Classification = "chromium_framework"      // Frameworks/ entry mentioning chromium
	ChromiumLinkedLibrary Classification = "chromium_linked_library" // Main executable links a chromium library
	ElectronIdentifier    Classification = "electron_identifier"     // CFBundleIdentifier mentions electron
)

// ClassificationOrder returns all classifications in rule priority order
func ClassificationOrder() []Classification {
	return []Classification{
		ElectronRuntime,
		ChromiumFramework,
		ChromiumLinkedLibrary,
		ElectronIdentifier,
	}
}

// ParseClassification converts a snake_case tag into a Classification
func ParseClassification(s string) (Classification, error) {
	c := Classification(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown classification %q", s)
	}
	return c, nil
}

// Valid reports whether c is one of the known classifications
func (c Classification) Valid() bool {
	switch c {
	case ElectronRuntime, ChromiumFramework, ChromiumLinkedLibrary, ElectronIdentifier:
		return true
	}
	return false
}

func (c Classification) String() string {
	return string(c)
}

// DisplayName returns the human readable label
func (c Classification) DisplayName() string {
	switch c {
	case ElectronRuntime:
		return "Electron"
	case ChromiumFramework:
		return "Chromium"
	case ChromiumLinkedLibrary:
		return "Chromium library"
	case ElectronIdentifier:
		return "Electron identifier"
	}
	return "Unknown"
}

// Icon returns a single-glyph marker for list rendering
func (c Classification) Icon() string {
	switch c {
	case ElectronRuntime:
		return "⚛"
	case ChromiumFramework:
		return "◉"
	case ChromiumLinkedLibrary:
		return "⛓"
	case ElectronIdentifier:
		return "🏷"
	}
	return "•"
}

// MarshalText implements encoding.TextMarshaler
func (c Classification) MarshalText() ([]byte, error) {
	return []byte(c), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *Classification) UnmarshalText(text []byte) error {
	parsed, err := ParseClassification(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
