package mazebot

import (
	"io"
	"os"

	"github.com/op/go-logging"
)

var Logger = logging.MustGetLogger("mazebot")

var logFormat = logging.MustStringFormatter(
	"%{time:15:04:05.000} %{level:.4s} %{message}",
)

// Log to stdout and, if file isn't nil, to the file as well
func ConfigureLogger(file *os.File, level string) error {
	var writers []io.Writer
	writers = append(writers, os.Stdout)
	if file != nil {
		writers = append(writers, file)
	}
	return configureBackends(level, writers...)
}

func configureBackends(level string, writers ...io.Writer) error {
	parsed, err := logging.LogLevel(level)
	if err != nil {
		return err
	}
	var backends []logging.Backend
	for _, writer := range writers {
		backend := logging.NewLogBackend(writer, "", 0)
		backends = append(backends, logging.NewBackendFormatter(backend, logFormat))
	}
	leveled := logging.SetBackend(backends...)
	leveled.SetLevel(parsed, "")
	return nil
}
