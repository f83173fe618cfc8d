package utils

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/pakana/projector/log"
	"github.com/pakana/projector/params"
	"github.com/urfave/cli/v2"
)

var (
	clientIdentifier string
	gitCommit        string
	gitDate          string
)

var (
	// TopWaitGroup waits for the long running jobs to stop
	TopWaitGroup = new(sync.WaitGroup)
	// CleanupChan is closed when the process is asked to stop
	CleanupChan = make(chan struct{})

	cleanupOnce sync.Once
)

// NewApp creates an app with sane defaults.
func NewApp(identifier, gitcommit, gitdate, usage string) *cli.App {
	clientIdentifier = identifier
	gitCommit = gitcommit
	gitDate = gitdate
	app := cli.NewApp()
	app.Name = filepath.Base(os.Args[0])
	app.Version = params.VersionWithCommit(gitCommit, gitDate)
	app.Usage = usage
	return app
}

// TopContext returns a context cancelled once CleanupChan is closed
func TopContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-CleanupChan
		cancel()
	}()
	return ctx
}

// Cleanup closes CleanupChan, it is safe to call more than once
func Cleanup() {
	cleanupOnce.Do(func() {
		close(CleanupChan)
	})
}

// WaitAndCleanup waits for a stop signal, runs doCleanup and waits the jobs
func WaitAndCleanup(doCleanup func()) {
	go handleSignals()
	<-CleanupChan
	if doCleanup != nil {
		doCleanup()
	}
	TopWaitGroup.Wait()
	log.Info("all jobs are stopped")
}

func handleSignals() {
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-signalChan
	log.Info("receive signal, start cleanup", "signal", sig)
	Cleanup()
}
