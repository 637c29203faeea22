//go:build !linux

package diag

import (
	"fmt"
	"runtime"

	"github.com/jjamesmartiin/voice-transcriber/config"
)

const inputCheckName = "input devices"

func checkInputAccess(*config.Config) Result {
	return Result{
		Name:   inputCheckName,
		Status: StatusOK,
		Detail: fmt.Sprintf("portable keyboard hook in use on %s", runtime.GOOS),
	}
}
