//go:build windows

package render

import (
	"os/exec"
	"syscall"
)

// hideWindowOnWindows hides the console window spawned by the browser.
func hideWindowOnWindows(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: 0x08000000, // CREATE_NO_WINDOW
	}
}
