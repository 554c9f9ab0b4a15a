//go:build darwin

package reveal

import (
	"fmt"

	"github.com/progrium/darwinkit/macos/appkit"
)

func selectFile(path string) error {
	workspace := appkit.Workspace_SharedWorkspace()
	if !workspace.SelectFileInFileViewerRootedAtPath(path, "") {
		return fmt.Errorf("finder refused to reveal %s", path)
	}
	return nil
}
