package components

import (
	"strings"
	"testing"

	"github.com/ChestnutLUO/chromium-certificate/internal/models"
)

func sampleApps() []*models.DetectedApplication {
	return []*models.DetectedApplication{
		models.NewDetectedApplication("Arc", models.ChromiumFramework, "/Applications/Arc.app"),
		models.NewElectronApplication("Discord", "/Applications/Discord.app", "37.5.0"),
		models.NewElectronApplication("Slack", "/Applications/Slack.app", "38.2.1"),
		models.NewDetectedApplication("Zoom", models.ChromiumLinkedLibrary, "/Applications/Zoom.app"),
	}
}

func TestNewAppList(t *testing.T) {
	list := NewAppList(sampleApps())

	if list == nil {
		t.Fatal("NewAppList should return an AppList")
	}
	if len(list.VisibleApps()) != 4 {
		t.Errorf("Expected 4 visible apps, got %d", len(list.VisibleApps()))
	}
	if list.Cursor != 0 {
		t.Errorf("Expected cursor at 0, got %d", list.Cursor)
	}
	if list.Filter != "" {
		t.Errorf("Expected no filter, got %q", list.Filter)
	}
	if !list.Focused {
		t.Error("Expected Focused to be true")
	}
}

func TestAppList_SetApps(t *testing.T) {
	list := NewAppList(nil)
	list.Cursor = 5

	list.SetApps(sampleApps()[:2])

	if len(list.Apps) != 2 {
		t.Errorf("Expected 2 apps, got %d", len(list.Apps))
	}
	if list.Cursor != 1 {
		t.Errorf("Cursor should be clamped to 1, got %d", list.Cursor)
	}
}

func TestAppList_Navigation(t *testing.T) {
	list := NewAppList(sampleApps())

	list.MoveUp()
	if list.Cursor != 0 {
		t.Errorf("Cursor should stay at 0, got %d", list.Cursor)
	}

	list.MoveDown()
	list.MoveDown()
	if list.Cursor != 2 {
		t.Errorf("Expected cursor at 2, got %d", list.Cursor)
	}

	list.GoToLast()
	list.MoveDown()
	if list.Cursor != 3 {
		t.Errorf("Cursor should stay at last item, got %d", list.Cursor)
	}

	list.GoToFirst()
	if list.Cursor != 0 {
		t.Errorf("Expected cursor at 0, got %d", list.Cursor)
	}
}

func TestAppList_Paging(t *testing.T) {
	var apps []*models.DetectedApplication
	for i := 0; i < 30; i++ {
		apps = append(apps, models.NewDetectedApplication("App", models.ChromiumFramework, "/Applications/App.app"))
	}
	list := NewAppList(apps)
	list.Height = 13

	list.PageDown()
	if list.Cursor != 10 {
		t.Errorf("Expected cursor at 10, got %d", list.Cursor)
	}
	list.PageDown()
	list.PageDown()
	if list.Cursor != 29 {
		t.Errorf("Expected cursor clamped at 29, got %d", list.Cursor)
	}
	list.PageUp()
	if list.Cursor != 19 {
		t.Errorf("Expected cursor at 19, got %d", list.Cursor)
	}
	list.PageUp()
	list.PageUp()
	if list.Cursor != 0 {
		t.Errorf("Expected cursor clamped at 0, got %d", list.Cursor)
	}
}

func TestAppList_Current(t *testing.T) {
	list := NewAppList(sampleApps())
	list.MoveDown()

	if got := list.Current(); got == nil || got.Name != "Discord" {
		t.Errorf("Expected Discord, got %+v", got)
	}

	empty := NewAppList(nil)
	if empty.Current() != nil {
		t.Error("Empty list should have no current app")
	}
}

func TestAppList_CycleFilter(t *testing.T) {
	list := NewAppList(sampleApps())

	want := []struct {
		filter models.Classification
		count  int
	}{
		{models.ElectronRuntime, 2},
		{models.ChromiumFramework, 1},
		{models.ChromiumLinkedLibrary, 1},
		{models.ElectronIdentifier, 0},
		{"", 4},
	}

	for _, w := range want {
		list.CycleFilter()
		if list.Filter != w.filter {
			t.Fatalf("Expected filter %q, got %q", w.filter, list.Filter)
		}
		if n := len(list.VisibleApps()); n != w.count {
			t.Errorf("Filter %q: expected %d apps, got %d", w.filter, w.count, n)
		}
	}
}

func TestAppList_FilterClampsCursor(t *testing.T) {
	list := NewAppList(sampleApps())
	list.GoToLast()

	list.SetFilter(models.ElectronRuntime)
	if list.Cursor != 1 {
		t.Errorf("Expected cursor clamped to 1, got %d", list.Cursor)
	}
	if list.Current().Name != "Slack" {
		t.Errorf("Expected Slack, got %s", list.Current().Name)
	}
}

func TestAppList_FilterLabel(t *testing.T) {
	list := NewAppList(nil)
	if list.FilterLabel() != "All" {
		t.Errorf("Expected All, got %s", list.FilterLabel())
	}
	list.SetFilter(models.ElectronRuntime)
	if list.FilterLabel() != models.ElectronRuntime.DisplayName() {
		t.Errorf("Unexpected label %s", list.FilterLabel())
	}
}

func TestAppList_View(t *testing.T) {
	list := NewAppList(sampleApps())
	list.Width = 120
	list.Height = 20

	view := list.View()

	for _, want := range []string{"Arc", "Discord", "Electron 37.5.0", "/Applications/Zoom.app", "✓", "✗"} {
		if !strings.Contains(view, want) {
			t.Errorf("View should contain %q", want)
		}
	}
}

func TestAppList_ViewEmpty(t *testing.T) {
	list := NewAppList(nil)

	if !strings.Contains(list.View(), EmptyMessage) {
		t.Errorf("Empty view should contain %q", EmptyMessage)
	}
}

func TestAppList_ViewEmptyAfterFilter(t *testing.T) {
	list := NewAppList(sampleApps())
	list.SetFilter(models.ElectronIdentifier)

	if !strings.Contains(list.View(), EmptyMessage) {
		t.Errorf("Filtered empty view should contain %q", EmptyMessage)
	}
}
