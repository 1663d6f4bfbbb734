package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the service logger. With an empty logDirectory it logs to
// stdout, otherwise to <logDirectory>/<room>/<service>.log.
func New(logDirectory string, room string, service string) (*zap.SugaredLogger, error) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.DisableStacktrace = false
	config.InitialFields = map[string]interface{}{
		"service": service,
		"room":    room,
	}

	if logDirectory != "" {
		roomDirectory := filepath.Join(logDirectory, room)
		logPath := filepath.Join(roomDirectory, service+".log")

		if _, err := os.Stat(roomDirectory); os.IsNotExist(err) {
			if err := os.MkdirAll(roomDirectory, os.ModePerm); err != nil {
				return nil, err
			}
		}

		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_RDWR, os.ModePerm)
		if err != nil {
			return nil, err
		}
		f.Close()

		config.OutputPaths = []string{logPath}
	}

	log, err := config.Build()
	if err != nil {
		return nil, err
	}

	return log.Sugar(), nil
}
