// Package build installs and tests the projector binaries, embedding the
// git commit and date into the version sub command.
//
//	go run build/ci.go install [ -git-commit=... ] [ packages ]
//	go run build/ci.go test [ -race ] [ packages ]
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/pakana/projector/internal/build"
)

const minGoMinor = 21

var (
	gobin, _ = filepath.Abs(filepath.Join("build", "bin"))

	binaries = []string{"./cmd/projector", "./cmd/projtools"}
)

func main() {
	log.SetFlags(log.Lshortfile)

	if _, err := os.Stat(filepath.Join("build", "ci.go")); os.IsNotExist(err) {
		log.Fatal("this script must be run from the root of the repository")
	}
	if len(os.Args) < 2 {
		log.Fatal("need subcommand as first argument: install | test")
	}
	build.CheckGoVersion(minGoMinor)
	switch os.Args[1] {
	case "install":
		doInstall(os.Args[2:])
	case "test":
		doTest(os.Args[2:])
	default:
		log.Fatal("unknown command ", os.Args[1])
	}
}

func doInstall(cmdline []string) {
	_ = flag.CommandLine.Parse(cmdline)
	env := build.Env()
	log.Println("build environment:", env)

	packages := binaries
	if flag.NArg() > 0 {
		packages = flag.Args()
	}
	args := append(ldflags(env), "-v")
	build.MustRun(build.GoTool(gobin, "install", append(args, packages...)...))
	log.Println("binaries installed into", gobin)
}

func doTest(cmdline []string) {
	race := flag.Bool("race", false, "run tests with the race detector")
	_ = flag.CommandLine.Parse(cmdline)

	packages := []string{"./..."}
	if flag.NArg() > 0 {
		packages = flag.Args()
	}
	args := []string{"-count=1"}
	if *race {
		args = append(args, "-race")
	}
	build.MustRun(build.GoTool("", "test", append(args, packages...)...))
}

func ldflags(env *build.Environment) []string {
	if env.Commit == "" {
		return nil
	}
	ld := []string{
		"-X", "main.gitCommit=" + env.Commit,
		"-X", "main.gitDate=" + env.Date,
	}
	return []string{"-ldflags", strings.Join(ld, " ")}
}
