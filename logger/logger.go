package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	charmlog "github.com/charmbracelet/log"

	"keyword_bot/config"
)

// Logger 全局日志记录器
var Logger *slog.Logger

// InitSlog 初始化slog日志系统
func InitSlog(cfg *config.Config) error {
	writer, err := openOutput(cfg.Log.Output, cfg.Log.FilePath)
	if err != nil {
		return err
	}

	Logger = slog.New(newHandler(writer, cfg.Log.Format, parseLevel(cfg.Log.Level)))
	slog.SetDefault(Logger)

	return nil
}

// openOutput 输出目标：stdout / file / both；未配置文件路径时退回 stdout
func openOutput(output, filePath string) (io.Writer, error) {
	mode := strings.ToLower(output)
	if (mode != "file" && mode != "both") || filePath == "" {
		return os.Stdout, nil
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, err
	}
	if mode == "both" {
		return io.MultiWriter(os.Stdout, file), nil
	}
	return file, nil
}

// newHandler 根据格式创建处理器：json / text / pretty
func newHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: level,
	}

	switch strings.ToLower(format) {
	case "json":
		return slog.NewJSONHandler(w, opts)
	case "pretty":
		return charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmlog.Level(level),
			ReportTimestamp: true,
			Formatter:       charmlog.TextFormatter,
		})
	default:
		return slog.NewTextHandler(w, opts)
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Init 使用配置文件初始化日志系统
func Init(cfg *config.Config) error {
	return InitSlog(cfg)
}

// current returns the configured logger, or slog's default before Init.
func current() *slog.Logger {
	if Logger != nil {
		return Logger
	}
	return slog.Default()
}

// Debug 记录调试级别的日志
func Debug(msg string, args ...any) {
	current().Debug(msg, args...)
}

// Info 记录信息级别的日志
func Info(msg string, args ...any) {
	current().Info(msg, args...)
}

// Warn 记录警告级别的日志
func Warn(msg string, args ...any) {
	current().Warn(msg, args...)
}

// Error 记录错误级别的日志
func Error(msg string, args ...any) {
	current().Error(msg, args...)
}
