//go:build windows

package supervisor

import (
	"os/exec"
	"strconv"
	"syscall"
)

func configureProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP}
}

// terminateProcess asks taskkill to close the whole tree; /T follows child processes.
func terminateProcess(cmd *exec.Cmd) error {
	return exec.Command("taskkill", "/T", "/PID", strconv.Itoa(cmd.Process.Pid)).Run()
}

func killProcess(cmd *exec.Cmd) error {
	return exec.Command("taskkill", "/T", "/F", "/PID", strconv.Itoa(cmd.Process.Pid)).Run()
}

// groupAlive only tracks the backend itself; taskkill cannot find a tree
// whose root already exited.
func groupAlive(_ *exec.Cmd, exited <-chan struct{}) bool {
	return !isClosed(exited)
}
