/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package daemon

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ned0000/jiufeng-go/jferr"
)

// PidFile manages the lifecycle of /var/run/<name>.pid: refusing to start
// a second instance of the same program, and cleaning up on exit.
type PidFile struct {
	path string
	name string
}

// NewPidFile builds a PidFile at path, checked against the running
// program name progName (e.g. "configmgrd").
func NewPidFile(path, progName string) *PidFile {
	return &PidFile{path: path, name: progName}
}

// CheckNotRunning reads an existing PID file, if any, and inspects
// /proc/<pid>/status for a Name: line matching p.name. If it matches,
// another instance is live and this returns AlreadyRunning.
func (p *PidFile) CheckNotRunning() error {
	raw, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return jferr.New(jferr.NotInitialized, err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil
	}

	status, err := os.ReadFile(fmt.Sprintf("/proc/%d/status", pid))
	if err != nil {
		// Stale pid file: the process named no longer exists.
		return nil
	}

	for _, line := range strings.Split(string(status), "\n") {
		if !strings.HasPrefix(line, "Name:") {
			continue
		}
		procName := strings.TrimSpace(strings.TrimPrefix(line, "Name:"))
		if procName == p.name {
			return jferr.New(jferr.AlreadyRunning, nil)
		}
		break
	}
	return nil
}

// Write records the current process's PID, overwriting any existing file.
func (p *PidFile) Write() error {
	content := fmt.Sprintf("%d\n", os.Getpid())
	if err := os.WriteFile(p.path, []byte(content), 0644); err != nil {
		return jferr.New(jferr.NotInitialized, err)
	}
	return nil
}

// Remove deletes the PID file, tolerating "already gone".
func (p *PidFile) Remove() error {
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return jferr.New(jferr.NotInitialized, err)
	}
	return nil
}
