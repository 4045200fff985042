//go:build !unix

package launcher

import "os"

// The console delivers Ctrl-C to the child directly.
var caughtSignals = []os.Signal{os.Interrupt}

func relayed(os.Signal) bool {
	return false
}

func signalExitCode(*os.ProcessState) (int, bool) {
	return 0, false
}
