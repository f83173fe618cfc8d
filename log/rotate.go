package log

import (
	"io"
	"os"
	"path/filepath"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/sirupsen/logrus"
)

// SetLogFile also writes logs to filePath, rotated every rotation and
// removed after maxAge. A symlink at filePath points to the current file.
func SetLogFile(filePath string, rotation, maxAge uint64) error {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return err
	}
	if rotation == 0 {
		rotation = 24
	}
	if maxAge == 0 {
		maxAge = 7 * 24
	}
	writer, err := rotatelogs.New(
		absPath+".%Y%m%d%H%M",
		rotatelogs.WithLinkName(absPath),
		rotatelogs.WithRotationTime(time.Duration(rotation)*time.Hour),
		rotatelogs.WithMaxAge(time.Duration(maxAge)*time.Hour),
	)
	if err != nil {
		return err
	}
	logrus.SetOutput(io.MultiWriter(os.Stdout, writer))
	return nil
}
