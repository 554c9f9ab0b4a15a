package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ChestnutLUO/chromium-certificate/internal/inspect"
	"github.com/ChestnutLUO/chromium-certificate/internal/models"

	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultApplicationsDir is where macOS installs application bundles
const DefaultApplicationsDir = "/Applications"

// Bundle layout
const (
	bundleExt             = ".app"
	electronFrameworkName = "Electron Framework.framework"
	versionKey            = "CFBundleVersion"
	chromiumMarker        = "chromium"
	electronMarker        = "electron"
)

// Options configures a Scanner. Zero values fall back to the system defaults.
type Options struct {
	ApplicationsDir string
	Libraries       inspect.DependencyLister
	Metadata        inspect.MetadataReader
	Logger          *zap.Logger
}

// Scanner detects Chromium and Electron based application bundles.
// It keeps no state between scans: every call re-reads the filesystem
// and re-runs the introspection tools.
type Scanner struct {
	dir       string
	libraries inspect.DependencyLister
	metadata  inspect.MetadataReader
	logger    *zap.Logger
}

// New creates a new Scanner
func New(opts Options) *Scanner {
	s := &Scanner{
		dir:       opts.ApplicationsDir,
		libraries: opts.Libraries,
		metadata:  opts.Metadata,
		logger:    opts.Logger,
	}

	if s.dir == "" {
		s.dir = DefaultApplicationsDir
	}
	if s.libraries == nil {
		s.libraries = inspect.NewOtool("")
	}
	if s.metadata == nil {
		s.metadata = inspect.NewPlistTools("", "")
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}

	return s
}

// Dir returns the applications directory being scanned
func (s *Scanner) Dir() string {
	return s.dir
}

// Scan lists the applications directory and returns every matching bundle
// sorted by name. An unreadable directory yields an empty result.
func (s *Scanner) Scan() []*models.DetectedApplication {
	start := time.Now()
	apps := []*models.DetectedApplication{}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.logger.Warn("Applications directory unreadable",
			zap.String("dir", s.dir),
			zap.Error(err))
		return apps
	}

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, bundleExt) {
			continue
		}

		if app := s.analyzeBundle(filepath.Join(s.dir, name)); app != nil {
			apps = append(apps, app)
		}
	}

	SortByName(apps)

	s.logger.Debug("Scan completed",
		zap.String("dir", s.dir),
		zap.Int("bundles", len(entries)),
		zap.Int("detected", len(apps)),
		zap.Duration("elapsed", time.Since(start)))

	return apps
}

// Count returns the number of detected applications
func (s *Scanner) Count() int {
	return len(s.Scan())
}

// Names returns the names of detected applications in scan order
func (s *Scanner) Names() []string {
	return NamesOf(s.Scan())
}

// GroupByClassification scans and groups the results by classification
func (s *Scanner) GroupByClassification() map[models.Classification][]*models.DetectedApplication {
	return Group(s.Scan())
}

// analyzeBundle applies the four rules in priority order, first match wins
func (s *Scanner) analyzeBundle(bundlePath string) *models.DetectedApplication {
	name := strings.TrimSuffix(filepath.Base(bundlePath), bundleExt)
	contents := filepath.Join(bundlePath, "Contents")
	frameworks := filepath.Join(contents, "Frameworks")

	electronFramework := filepath.Join(frameworks, electronFrameworkName)
	if s.pathExists(electronFramework) {
		return models.NewElectronApplication(name, bundlePath, s.electronVersion(electronFramework))
	}

	if s.hasChromiumFramework(frameworks) {
		return models.NewDetectedApplication(name, models.ChromiumFramework, bundlePath)
	}

	executable := filepath.Join(contents, "MacOS", name)
	if s.linksChromium(executable) {
		return models.NewDetectedApplication(name, models.ChromiumLinkedLibrary, bundlePath)
	}

	if s.hasElectronIdentifier(filepath.Join(contents, "Info.plist")) {
		return models.NewDetectedApplication(name, models.ElectronIdentifier, bundlePath)
	}

	s.logger.Debug("Bundle not flagged", zap.String("app", name))
	return nil
}

// hasChromiumFramework checks Frameworks/ for an entry mentioning chromium
func (s *Scanner) hasChromiumFramework(frameworksDir string) bool {
	entries, err := os.ReadDir(frameworksDir)
	if err != nil {
		return false
	}

	for _, entry := range entries {
		if containsFold(entry.Name(), chromiumMarker) {
			return true
		}
	}
	return false
}

// linksChromium checks the main executable's linked libraries
func (s *Scanner) linksChromium(executable string) bool {
	if !s.pathExists(executable) {
		return false
	}

	out, err := s.libraries.LinkedLibraries(executable)
	if err != nil {
		s.logger.Debug("Dependency listing failed",
			zap.String("path", executable),
			zap.Error(err))
		return false
	}
	return containsFold(out, chromiumMarker)
}

// hasElectronIdentifier checks CFBundleIdentifier in the bundle's Info.plist
func (s *Scanner) hasElectronIdentifier(infoPlist string) bool {
	if !s.pathExists(infoPlist) {
		return false
	}

	id, err := s.metadata.BundleIdentifier(infoPlist)
	if err != nil {
		s.logger.Debug("Bundle identifier unreadable",
			zap.String("path", infoPlist),
			zap.Error(err))
		return false
	}
	return containsFold(id, electronMarker)
}

// electronVersion reads CFBundleVersion from the framework's resources.
// Returns "" when the version cannot be determined.
func (s *Scanner) electronVersion(frameworkPath string) string {
	infoPlist := filepath.Join(frameworkPath, "Resources", "Info.plist")
	if !s.pathExists(infoPlist) {
		return ""
	}

	version, err := s.metadata.RawValue(versionKey, infoPlist)
	if err != nil {
		s.logger.Debug("Electron version unreadable",
			zap.String("path", infoPlist),
			zap.Error(err))
		return ""
	}
	return strings.TrimSpace(version)
}

// pathExists checks if a path exists
func (s *Scanner) pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// containsFold reports whether substr is within s, ignoring case
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}

// SortByName orders apps by locale-aware, case-insensitive name
func SortByName(apps []*models.DetectedApplication) {
	c := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(apps, func(i, j int) bool {
		if r := c.CompareString(apps[i].Name, apps[j].Name); r != 0 {
			return r < 0
		}
		return apps[i].Name < apps[j].Name
	})
}

// NamesOf projects apps onto their names
func NamesOf(apps []*models.DetectedApplication) []string {
	names := make([]string, 0, len(apps))
	for _, app := range apps {
		names = append(names, app.Name)
	}
	return names
}

// Group groups apps by classification. Every classification has a key,
// possibly with an empty slice. Input order is preserved within a group.
func Group(apps []*models.DetectedApplication) map[models.Classification][]*models.DetectedApplication {
	groups := make(map[models.Classification][]*models.DetectedApplication)
	for _, c := range models.ClassificationOrder() {
		groups[c] = []*models.DetectedApplication{}
	}

	for _, app := range apps {
		groups[app.Category] = append(groups[app.Category], app)
	}

	return groups
}

// AnyVersioned reports whether any app carries a known-issue verdict
func AnyVersioned(apps []*models.DetectedApplication) bool {
	for _, app := range apps {
		if _, ok := app.Resolved(); ok {
			return true
		}
	}
	return false
}

// Filter returns apps with the given classification
func Filter(apps []*models.DetectedApplication, category models.Classification) []*models.DetectedApplication {
	var filtered []*models.DetectedApplication
	for _, app := range apps {
		if app.Category == category {
			filtered = append(filtered, app)
		}
	}
	return filtered
}
