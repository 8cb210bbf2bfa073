package common

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hpcloud/tail"
	"github.com/sirupsen/logrus"
)

const redacted = "******"

// NewLogger returns new logger struct.
func NewLogger(w *os.File) (logger *logrus.Logger) {
	if w != nil {
		mw := io.MultiWriter(os.Stderr, w)
		logger = logrus.New()
		InitLogger(logger)
		logger.SetOutput(mw)
	} else {
		logger = logrus.StandardLogger()
	}

	return
}

func GetVMContextPath(index int) string {
	return filepath.Join(CfgPath, fmt.Sprintf("vm-%d", index))
}

func GetVMLogFilePath(index int) string {
	return filepath.Join(GetVMContextPath(index), LogFile)
}

// GetLogFile open and return log file.
func GetLogFile(index int) (logFile *os.File, err error) {
	logFilePath := GetVMLogFilePath(index)
	if err = os.MkdirAll(filepath.Dir(logFilePath), 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(logFilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
}

// NewVMLogger logs to stderr and the VM's log file with the VM password masked.
// The caller closes the returned file.
func NewVMLogger(index int, password string) (*logrus.Logger, *os.File, error) {
	f, err := GetLogFile(index)
	if err != nil {
		return nil, nil, err
	}
	logger := NewLogger(f)
	logger.AddHook(NewRedactHook(password))
	return logger, f, nil
}

// NewTailLog return new tail struct. Without follow the Lines channel closes at end of file.
func NewTailLog(logFilePath string, follow bool) (*tail.Tail, error) {
	return tail.TailFile(logFilePath, tail.Config{
		Follow:    follow,
		ReOpen:    follow,
		MustExist: true,
		Poll:      true,
		Logger:    tail.DiscardingLogger,
	})
}

// CloseLog used to close log tail.
func CloseLog(t *tail.Tail) {
	_ = t.Stop()
	t.Cleanup()
}

func InitLogger(logger *logrus.Logger) {
	if Debug {
		logger.SetLevel(logrus.DebugLevel)
	}
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

// RedactHook masks secrets in log messages and string fields.
type RedactHook struct {
	secrets []string
}

// NewRedactHook ignores empty secrets.
func NewRedactHook(secrets ...string) *RedactHook {
	h := &RedactHook{}
	for _, s := range secrets {
		if s != "" {
			h.secrets = append(h.secrets, s)
		}
	}
	return h
}

func (h *RedactHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *RedactHook) Fire(entry *logrus.Entry) error {
	entry.Message = h.Redact(entry.Message)
	for k, v := range entry.Data {
		if s, ok := v.(string); ok {
			entry.Data[k] = h.Redact(s)
		}
	}
	return nil
}

func (h *RedactHook) Redact(s string) string {
	for _, secret := range h.secrets {
		s = strings.ReplaceAll(s, secret, redacted)
	}
	return s
}
