package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"project-tracker/internal/pkg/config"
)

var Log *zap.Logger
var log *zap.Logger
var logWriter *LogWriter

// 未调用 Init 时(如单元测试)丢弃所有输出
func init() {
	Log = zap.NewNop()
	log = Log
	logWriter = &LogWriter{WriteSyncer: zapcore.AddSync(io.Discard)}
}

var (
	rootOnce sync.Once
	rootDir  string
)

// moduleRoot 向上查找 go.mod 所在目录, 只查找一次
func moduleRoot() string {
	rootOnce.Do(func() {
		_, currentFile, _, ok := runtime.Caller(0)
		if !ok {
			return
		}
		dir := filepath.Dir(currentFile)
		for i := 0; i < 10; i++ {
			if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
				rootDir = dir
				return
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				return
			}
			dir = parent
		}
	})
	return rootDir
}

// customTimeEncoder 输出格式: 2006-01-02 15:04:05.000
func customTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("2006-01-02 15:04:05.000"))
}

// customCallerEncoder 输出相对模块根目录的路径, 如 internal/core/pipeline/pipeline.go:120
func customCallerEncoder(caller zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
	if !caller.Defined {
		enc.AppendString("undefined")
		return
	}
	if root := moduleRoot(); root != "" {
		if rel, err := filepath.Rel(root, caller.File); err == nil && !strings.HasPrefix(rel, "..") {
			enc.AppendString(fmt.Sprintf("%s:%d", filepath.ToSlash(rel), caller.Line))
			return
		}
	}
	enc.AppendString(caller.TrimmedPath())
}

// Init 初始化日志
// output: stdout | file | both, 文件按大小滚动
func Init(cfg *config.LogConfig) error {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		NameKey:          "logger",
		CallerKey:        "caller",
		MessageKey:       "msg",
		StacktraceKey:    "stacktrace",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeTime:       customTimeEncoder,
		EncodeDuration:   zapcore.MillisDurationEncoder,
		EncodeCaller:     customCallerEncoder,
		ConsoleSeparator: " ",
	}

	var cores []zapcore.Core
	var syncers []zapcore.WriteSyncer

	if cfg.Output != "file" || cfg.FilePath == "" {
		consoleCfg := encoderConfig
		var encoder zapcore.Encoder
		if cfg.Format == "json" {
			consoleCfg.EncodeLevel = zapcore.CapitalLevelEncoder
			encoder = zapcore.NewJSONEncoder(consoleCfg)
		} else {
			// 时间 INFO 代码位置 日志消息 {json格式参数}
			consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
			encoder = zapcore.NewConsoleEncoder(consoleCfg)
		}
		stdout := zapcore.AddSync(os.Stdout)
		cores = append(cores, zapcore.NewCore(encoder, stdout, level))
		syncers = append(syncers, stdout)
	}

	if (cfg.Output == "file" || cfg.Output == "both") && cfg.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
			return fmt.Errorf("创建日志目录失败: %w", err)
		}
		file := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
		// 文件固定使用 JSON, 不带颜色
		fileCfg := encoderConfig
		fileCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), file, level))
		syncers = append(syncers, file)
	}

	core := zapcore.NewTee(cores...)
	Log = zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	log = Log.WithOptions(zap.AddCallerSkip(1))
	logWriter = &LogWriter{
		WriteSyncer: zapcore.NewMultiWriteSyncer(syncers...),
		logger:      Log.Named("gorm").WithOptions(zap.WithCaller(false)),
	}

	return nil
}

// Named 组件日志
func Named(name string) *zap.Logger {
	return Log.Named(name)
}

// Close 关闭日志
func Close() error {
	// 终端或管道上的 stdout 不支持 fsync, 忽略
	if err := Log.Sync(); err != nil && !strings.Contains(err.Error(), "invalid argument") && !strings.Contains(err.Error(), "inappropriate ioctl") {
		return fmt.Errorf("close log error: %w", err)
	}
	return nil
}

func Debug(msg string, fields ...zap.Field) {
	log.Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	log.Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	log.Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	log.Error(msg, fields...)
}

func Fatal(msg string, fields ...zap.Field) {
	log.Fatal(msg, fields...)
}
