package build

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

var (
	// These flags override values in build env.
	gitCommitFlag = flag.String("git-commit", "", `Overrides git commit hash embedded into executables`)
	gitDateFlag   = flag.String("git-date", "", `Overrides git commit date embedded into executables`)
)

// Environment contains metadata provided by the build environment.
type Environment struct {
	Commit string
	Date   string
}

func (env Environment) String() string {
	return fmt.Sprintf("commit=%s date=%s", env.Commit, env.Date)
}

// Env returns metadata about the current build environment. The flags
// and the PROJECTOR_GIT_COMMIT environment variable take precedence over git.
func Env() *Environment {
	env := &Environment{
		Commit: os.Getenv("PROJECTOR_GIT_COMMIT"),
	}
	if env.Commit == "" {
		env.Commit = currentCommit()
	}
	if env.Commit != "" {
		env.Date = RunGit("show", "-s", "--format=%cd", "--date=format:%Y%m%d", env.Commit)
	}
	if *gitCommitFlag != "" {
		env.Commit = *gitCommitFlag
	}
	if *gitDateFlag != "" {
		env.Date = *gitDateFlag
	}
	return env
}

// currentCommit reads HEAD from the .git directory, following one ref.
func currentCommit() string {
	head := readGitFile("HEAD")
	if strings.HasPrefix(head, "ref: ") {
		return readGitFile(strings.TrimPrefix(head, "ref: "))
	}
	return head
}
