// Copyright 2016 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package build

import (
	"bytes"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"runtime"
	"strings"
)

// DryRunFlag dry run flag
var DryRunFlag = flag.Bool("n", false, "dry run, don't execute commands")

// MustRun prints and runs cmd, exiting the process on failure.
func MustRun(cmd *exec.Cmd) {
	fmt.Println(">>>", strings.Join(cmd.Args, " "))
	if *DryRunFlag {
		return
	}
	cmd.Stderr = os.Stderr
	cmd.Stdout = os.Stdout
	if err := cmd.Run(); err != nil {
		log.Fatal(err)
	}
}

var warnedAboutGit bool

// RunGit returns the trimmed output of a git subcommand, or "" when git
// is not installed.
func RunGit(args ...string) string {
	cmd := exec.Command("git", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout, cmd.Stderr = &stdout, &stderr
	if err := cmd.Run(); err != nil {
		if e, ok := err.(*exec.Error); ok && e.Err == exec.ErrNotFound {
			if !warnedAboutGit {
				log.Println("Warning: can't find 'git' in PATH")
				warnedAboutGit = true
			}
			return ""
		}
		log.Fatal(strings.Join(cmd.Args, " "), ": ", err, "\n", stderr.String())
	}
	return strings.TrimSpace(stdout.String())
}

func readGitFile(file string) string {
	content, err := ioutil.ReadFile(path.Join(".git", file))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(content))
}

// GoTool returns a go subcommand run with the go of the running GOROOT.
// gobin, when set, replaces any GOBIN of the environment.
func GoTool(gobin, subcmd string, args ...string) *exec.Cmd {
	args = append([]string{subcmd}, args...)
	cmd := exec.Command(filepath.Join(runtime.GOROOT(), "bin", "go"), args...) //nolint:gosec // fixed binary
	for _, e := range os.Environ() {
		if gobin != "" && strings.HasPrefix(e, "GOBIN=") {
			continue
		}
		cmd.Env = append(cmd.Env, e)
	}
	if gobin != "" {
		cmd.Env = append(cmd.Env, "GOBIN="+gobin)
	}
	return cmd
}

// CheckGoVersion exits when the running go is older than 1.minMinor.
func CheckGoVersion(minMinor int) {
	version := runtime.Version()
	if strings.Contains(version, "devel") {
		return
	}
	var minor int
	_, _ = fmt.Sscanf(strings.TrimPrefix(version, "go1."), "%d", &minor)
	if minor < minMinor {
		log.Printf("You have Go version %v, at least go1.%d is required", version, minMinor)
		os.Exit(1)
	}
}
