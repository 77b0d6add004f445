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

// Command logd is the log-collection daemon. §6 assigns fixed UDS paths
// to the configuration-manager and service-manager daemons but not to
// this one; we register it as a dispatcher endpoint at
// /tmp/dispatcher/log, the one §6 naming scheme that does fit a daemon
// with no fixed path of its own (documented in DESIGN.md).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ned0000/jiufeng-go/daemon"
	"github.com/ned0000/jiufeng-go/filemode"
	"github.com/ned0000/jiufeng-go/jfconfig"
	"github.com/ned0000/jiufeng-go/jflog"
)

const (
	progName     = "logd"
	version      = "0.1.0"
	defaultSock  = "/tmp/dispatcher/log"
	defaultPid   = "/var/run/logd.pid"
	logMagic     = 0x4C4F4743 // "LOGC"
	connPoolSize = 32
)

// collectHandler forwards every received frame's payload to a Logger at
// Info level and acknowledges it; it implements no filtering or
// persistence policy of its own.
type collectHandler struct {
	log *jflog.Logger
}

func (h *collectHandler) Handle(req daemon.Header, body []byte) (daemon.Header, []byte) {
	h.log.Info("collected log record", string(body))
	return daemon.Header{MsgID: req.MsgID, Result: daemon.ResultOK}, nil
}

func main() {
	var (
		foreground bool
		settingsFp string
		showVer    bool
		logLevel   int
		logFile    string
		logStdout  bool
		logSize    int64
	)

	cmd := &cobra.Command{
		Use:   progName,
		Short: "Log collection daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVer {
				fmt.Println(progName, version)
				return nil
			}

			lvl, err := jflog.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			log := jflog.New(lvl)
			switch {
			case logFile != "":
				if err := log.SetOutputFile(logFile, logSize); err != nil {
					return err
				}
			case logStdout || foreground:
				log.SetOutputTTY()
			}

			if settingsFp != "" {
				s, err := jfconfig.Load(settingsFp)
				if err != nil {
					return err
				}
				if n, err := jflog.ParseLevel(s.GetInt(jfconfig.KeyLogLevel)); err == nil {
					log.SetLevel(n)
				}
			}

			return daemon.Run(daemon.Config{
				ProgName: progName,
				PidPath:  defaultPid,
				SockPath: defaultSock,
				Magic:    logMagic,
				PoolSize: connPoolSize,
				Perm:     filemode.Perm(0660),
				Handler:  &collectHandler{log: log},
			})
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&foreground, "foreground", "f", false, "run in the foreground")
	flags.StringVarP(&settingsFp, "setting", "s", "", "settings file path")
	flags.BoolVarP(&showVer, "version", "V", false, "print version and exit")
	flags.IntVarP(&logLevel, "log-level", "T", 3, "log level (0..5)")
	flags.StringVarP(&logFile, "log-file", "F", "", "log file path")
	flags.BoolVarP(&logStdout, "stdout", "O", false, "log to stdout")
	flags.Int64VarP(&logSize, "log-size", "S", 0, "log file size cap in bytes (0 = unbounded)")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
