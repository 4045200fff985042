//go:build unix

package launcher

import (
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// caughtSignals keep the launcher alive while the child runs. Terminal
// signals (INT, QUIT) already reach the child through the shared foreground
// process group, so only TERM and HUP are relayed.
var caughtSignals = []os.Signal{unix.SIGINT, unix.SIGQUIT, unix.SIGTERM, unix.SIGHUP}

func relayed(sig os.Signal) bool {
	return sig == unix.SIGTERM || sig == unix.SIGHUP
}

// signalExitCode maps a child killed by a signal to the shell convention
// 128+signo.
func signalExitCode(state *os.ProcessState) (int, bool) {
	if state == nil {
		return 0, false
	}
	ws, ok := state.Sys().(syscall.WaitStatus)
	if !ok || !ws.Signaled() {
		return 0, false
	}
	return 128 + int(ws.Signal()), true
}
