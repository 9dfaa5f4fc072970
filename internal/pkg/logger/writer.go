package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogWriter 供 gorm logger 使用, Init 之后 SQL 日志以 "gorm" 组件写入 zap
type LogWriter struct {
	zapcore.WriteSyncer
	logger *zap.Logger
}

func (l *LogWriter) Printf(format string, args ...interface{}) {
	msg := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	if l.logger != nil {
		l.logger.Info(msg)
		return
	}
	_, _ = l.WriteSyncer.Write([]byte(msg + "\n"))
}

func GetWriter() *LogWriter {
	return logWriter
}
