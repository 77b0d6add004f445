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
	"os"
	"os/signal"
	"syscall"

	"github.com/ned0000/jiufeng-go/chain"
	"github.com/ned0000/jiufeng-go/filemode"
	"github.com/ned0000/jiufeng-go/rawsocket"
)

// Config bundles everything a cmd/*d main needs to stand up one daemon:
// the PID-file already-running guard, one Server on a fixed Unix-domain
// path, and cooperative shutdown on SIGINT/SIGTERM. Per §9's "avoid a
// hidden singleton" design note, this struct is built and owned by main,
// never stashed in a package-level variable.
type Config struct {
	ProgName string
	PidPath  string
	SockPath string
	Magic    uint32
	PoolSize int
	Perm     filemode.Perm
	Handler  Handler
}

// Run performs the already-running check, binds the Server, traps
// SIGINT/SIGTERM to request a cooperative chain.Stop, runs the chain
// until it returns, and removes the PID file on the way out. It blocks
// until the chain exits.
func Run(cfg Config) error {
	pf := NewPidFile(cfg.PidPath, cfg.ProgName)
	if err := pf.CheckNotRunning(); err != nil {
		return err
	}
	if err := pf.Write(); err != nil {
		return err
	}
	defer func() { _ = pf.Remove() }()

	chn, err := chain.New()
	if err != nil {
		return err
	}

	srv, err := NewServer(
		rawsocket.UnixAddr(rawsocket.NetworkUnix, cfg.SockPath),
		cfg.Magic, cfg.PoolSize, cfg.Perm, chn.Wakeup, cfg.Handler,
	)
	if err != nil {
		return err
	}
	defer func() { _ = srv.Close() }()

	chn.Append(srv)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		chn.Stop()
	}()

	return chn.Run()
}
