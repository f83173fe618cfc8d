package worker

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pakana/projector/cmd/utils"
	"github.com/pakana/projector/log"
)

// StartBlockListJob calls reload whenever fileName is created or written.
// The directory is watched so that editors replacing the file are noticed.
func StartBlockListJob(ctx context.Context, fileName string, reload func(string) error) {
	if fileName == "" {
		log.Warn("block list file is empty")
		return
	}
	fileName, _ = filepath.Abs(fileName)

	watch, err := fsnotify.NewWatcher()
	if err != nil {
		log.Error("fsnotify.NewWatcher failed", "err", err)
		return
	}

	err = watch.Add(filepath.Dir(fileName))
	if err != nil {
		log.Error("watch.Add block list dir failed", "err", err)
		_ = watch.Close()
		return
	}

	utils.TopWaitGroup.Add(1)
	go startWatcher(ctx, watch, fileName, reload)
}

func startWatcher(ctx context.Context, watch *fsnotify.Watcher, fileName string, reload func(string) error) {
	logWorker("blocklist", "start fsnotify watch", "file", fileName)
	defer func() {
		logWorker("blocklist", "stop fsnotify watch")
		_ = watch.Close()
		utils.TopWaitGroup.Done()
	}()

	ops := []fsnotify.Op{
		fsnotify.Create,
		fsnotify.Write,
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-watch.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != fileName {
				continue
			}
			logWorkerTrace("blocklist", "fsnotify watch event", "event", ev)
			for _, op := range ops {
				if ev.Op&op == op {
					if err := reload(fileName); err != nil {
						logWorkerError("blocklist", "reload block list failed", err, "file", fileName)
					} else {
						logWorker("blocklist", "reload block list success", "file", fileName)
					}
					break
				}
			}
		case werr, ok := <-watch.Errors:
			if !ok {
				return
			}
			logWorkerWarn("blocklist", "fsnotify watch error", "err", werr)
		}
	}
}
