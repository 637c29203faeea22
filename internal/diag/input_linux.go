//go:build linux

package diag

import (
	"os"
	"os/user"
	"path/filepath"
	"strconv"

	"github.com/jjamesmartiin/voice-transcriber/config"
)

const inputCheckName = "input devices"

// checkInputAccess verifies the process can read /dev/input event devices,
// which the evdev keyboard source needs. Root and input-group membership
// are the two sanctioned ways in; a direct open probe catches looser setups
// like custom udev rules.
func checkInputAccess(*config.Config) Result {
	if os.Geteuid() == 0 {
		return Result{Name: inputCheckName, Status: StatusOK, Detail: "running as root"}
	}

	if inInputGroup() {
		return Result{Name: inputCheckName, Status: StatusOK, Detail: "user is in the input group"}
	}

	matches, _ := filepath.Glob("/dev/input/event*")
	if len(matches) == 0 {
		return Result{
			Name:   inputCheckName,
			Status: StatusWarn,
			Detail: "no /dev/input/event* devices visible, keyboard capture falls back to the portable hook",
		}
	}
	for _, path := range matches {
		f, err := os.Open(path)
		if err == nil {
			f.Close()
			return Result{Name: inputCheckName, Status: StatusOK, Detail: "event devices readable"}
		}
	}

	return Result{
		Name:   inputCheckName,
		Status: StatusFail,
		Detail: "cannot read /dev/input (fix: sudo usermod -a -G input $USER, then log out and back in)",
	}
}

func inInputGroup() bool {
	group, err := user.LookupGroup("input")
	if err != nil {
		return false
	}
	want, err := strconv.Atoi(group.Gid)
	if err != nil {
		return false
	}

	gids, err := os.Getgroups()
	if err != nil {
		return false
	}
	for _, gid := range gids {
		if gid == want {
			return true
		}
	}
	return false
}
