package daemon

import (
	"os"
	"os/exec"
)

// StartDetached spawns a new watcher process running `acceptd watch` with
// the given extra arguments, detached from the current terminal so it
// keeps running after the launcher exits.
//
// Returns the PID of the spawned process.
func StartDetached(args ...string) (int, error) {
	executable, err := os.Executable()
	if err != nil {
		return 0, err
	}

	cmd := exec.Command(executable, append([]string{"watch"}, args...)...)
	cmd.SysProcAttr = detachedProcAttr()

	// Fully detached: the watcher logs through its own stdout redirect
	// when the caller wants one, not through ours.
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return 0, err
	}
	pid := cmd.Process.Pid

	// Reap the child when it eventually exits so it never zombies while
	// the launcher is still alive.
	go func() { _ = cmd.Wait() }()

	return pid, nil
}
