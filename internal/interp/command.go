package interp

import (
	"bufio"
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

// Command builds an exec.Cmd that never opens a console window.
func Command(exe string, args ...string) *exec.Cmd {
	cmd := exec.Command(exe, args...)
	hideWindow(cmd)
	return cmd
}

// RunReadStdout executes exe with args in dir and returns its stdout.
// This is a blocking call that waits for the process to complete. A non-zero
// exit becomes a *SpawnError carrying whatever the process wrote to stderr.
func RunReadStdout(dir, exe string, args ...string) (string, error) {
	release := spawnLimit.Acquire()
	defer release()

	cmd := Command(exe, args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("error creating stdout pipe for %s: %w", exe, err)
	}
	if err := cmd.Start(); err != nil {
		return "", &SpawnError{Executable: exe, Message: err.Error(), Err: err}
	}

	// continue to read the output until there is no more
	var out strings.Builder
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		out.WriteString(scanner.Text())
		out.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		// The child, or a process it started, may be blocked writing to the
		// pipe; closing it unblocks them before Wait.
		_ = stdout.Close()
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return out.String(), &SpawnError{Executable: exe, Message: "failed to read output: " + err.Error(), Err: err}
	}
	if err := cmd.Wait(); err != nil {
		return out.String(), NewSpawnError(exe, stderr.String(), err)
	}
	return out.String(), nil
}
