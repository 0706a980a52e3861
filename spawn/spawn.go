/*
 * MIT License
 *
 * Copyright (c) 2024 stunnel contributors
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

// Package spawn runs a local program with the far end of a socket pair
// wired to its stdin/stdout, the §4.8 "exec" path: the peer side of a
// session that never leaves the machine.
package spawn

import (
	"context"
	"net"
	"os"
	"os/exec"

	"github.com/matthewcooper/stunnel/connectops"
)

// Child wraps a running local program plus the parent-held end of its
// stdio socket pair.
type Child struct {
	Cmd  *exec.Cmd
	Conn net.Conn
}

// Options configures a single Spawn call.
type Options struct {
	Name string
	Args []string
	Env  Env
	// Foreground, when false, redirects the child's stderr to the
	// socket pair too (matching the C original's "unless foreground"
	// rule); when true stderr is inherited from this process instead.
	Foreground bool
	// PTY requests a pty master/slave pair instead of a socket pair.
	// No pty-allocation library exists anywhere in the reference
	// corpus, so this is accepted for configuration fidelity and
	// rejected at spawn time.
	PTY bool
}

// Spawn starts opt.Name with opt.Args, connecting its stdio to a fresh
// socket pair per connectops.MakeSockets, and exporting opt.Env on top
// of the current process's environment. The returned Child's Conn is
// the parent-held end; closing it signals EOF to the child's stdin.
func Spawn(ctx context.Context, opt Options) (*Child, error) {
	if opt.PTY {
		return nil, ErrPtyUnsupported
	}

	keep, childFile, err := connectops.MakeSockets()
	if err != nil {
		return nil, ErrorSocketpair.Error(err)
	}

	cmd := exec.CommandContext(ctx, opt.Name, opt.Args...)
	cmd.Stdin = childFile
	cmd.Stdout = childFile
	if opt.Foreground {
		cmd.Stderr = os.Stderr
	} else {
		cmd.Stderr = childFile
	}
	cmd.Env = append(os.Environ(), opt.Env.Strings()...)

	if err = cmd.Start(); err != nil {
		childFile.Close()
		keep.Close()
		return nil, ErrorStart.Error(err)
	}

	// The child now holds its own dup of childFile's fd; this process's
	// copy must be closed or the child's stdin never sees EOF when keep
	// is later closed.
	childFile.Close()

	return &Child{Cmd: cmd, Conn: keep}, nil
}

// Wait blocks until the child exits.
func (c *Child) Wait() error {
	return c.Cmd.Wait()
}

// PID returns the child's process ID.
func (c *Child) PID() int {
	if c.Cmd.Process == nil {
		return 0
	}
	return c.Cmd.Process.Pid
}
