//go:build !windows

package daemon

import "syscall"

// detachedProcAttr detaches the child from the controlling terminal by
// giving it its own session.
func detachedProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}
