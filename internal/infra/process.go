package infra

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/acceptd/acceptd/internal/domain"
)

// ProcessManagerImpl implements domain.ProcessManager using gopsutil.
type ProcessManagerImpl struct{}

// NewProcessManager creates a new process manager.
func NewProcessManager() domain.ProcessManager {
	return &ProcessManagerImpl{}
}

// FindByName returns PIDs of processes whose executable name equals name,
// ignoring case and a trailing extension ("Antigravity" finds
// "Antigravity.exe" but not "AntigravityHelper").
func (pm *ProcessManagerImpl) FindByName(name string) ([]int, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, err
	}

	var found []int
	for _, p := range procs {
		procName, err := p.Name()
		if err != nil {
			continue // Process may have exited
		}
		if matchesProcessName(procName, name) {
			found = append(found, int(p.Pid))
		}
	}
	return found, nil
}

// matchesProcessName compares executable names exactly. Substring matching
// is deliberately avoided: the watcher's own name must not satisfy a
// target-application lookup.
func matchesProcessName(procName, want string) bool {
	if strings.EqualFold(procName, want) {
		return true
	}
	return strings.EqualFold(strings.TrimSuffix(procName, filepath.Ext(procName)), want)
}

// IsRunning checks if a PID exists and is running.
func (pm *ProcessManagerImpl) IsRunning(pid int) bool {
	exists, err := process.PidExists(int32(pid))
	return err == nil && exists
}

// GetCurrentPID returns the current process PID.
func (pm *ProcessManagerImpl) GetCurrentPID() int {
	return os.Getpid()
}

// Ensure ProcessManagerImpl implements domain.ProcessManager.
var _ domain.ProcessManager = (*ProcessManagerImpl)(nil)
