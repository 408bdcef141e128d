package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	loggersMu sync.Mutex
	loggers   = make(map[string]*logrus.Logger)

	config  *LogConfig
	rootDir string
)

// Init khởi tạo hệ thống logging. cfg nil thì dùng DefaultConfig.
func Init(cfg *LogConfig) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	config = cfg

	if err := initRootDir(); err != nil {
		return fmt.Errorf("failed to initialize root directory: %w", err)
	}

	if err := os.MkdirAll(getLogPath(), 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}
	return nil
}

// initRootDir xác định thư mục gốc của project để đặt thư mục logs.
// Thứ tự ưu tiên: env LOG_ROOT_DIR, đường dẫn executable, rồi working directory.
func initRootDir() error {
	if rootDir != "" {
		return nil
	}

	if envRootDir := os.Getenv("LOG_ROOT_DIR"); envRootDir != "" {
		if resolved, err := filepath.EvalSymlinks(envRootDir); err == nil {
			rootDir = resolved
		} else {
			rootDir = envRootDir
		}
		return nil
	}

	if executable, err := os.Executable(); err == nil {
		// Resolve symlink, quan trọng khi binary chạy qua systemd
		if resolved, err := filepath.EvalSymlinks(executable); err == nil {
			executable = resolved
		}
		// Binary nằm ở <root>/cmd/server, đi lên 2 cấp
		candidate := filepath.Dir(filepath.Dir(filepath.Dir(executable)))
		if looksLikeProjectRoot(candidate) {
			rootDir = candidate
			return nil
		}
	}

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("could not get executable or working directory: %v", err)
	}

	// Đi lên tối đa 5 cấp từ working directory tìm thư mục gốc
	currentDir := wd
	for i := 0; i < 5; i++ {
		if looksLikeProjectRoot(currentDir) {
			rootDir = currentDir
			return nil
		}
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	rootDir = wd
	return nil
}

// looksLikeProjectRoot nhận diện thư mục gốc qua sự tồn tại của logs/ hoặc config/
func looksLikeProjectRoot(dir string) bool {
	if _, err := os.Stat(filepath.Join(dir, "logs")); err == nil {
		return true
	}
	if _, err := os.Stat(filepath.Join(dir, "config")); err == nil {
		return true
	}
	return false
}

func getLogPath() string {
	if filepath.IsAbs(config.LogPath) {
		return config.LogPath
	}
	return filepath.Join(rootDir, config.LogPath)
}

// GetLogger trả về logger theo tên (app, audit, error), tạo mới lần đầu gọi.
// Tự init với config mặc định nếu Init chưa được gọi, tiện cho test.
func GetLogger(name string) *logrus.Logger {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if config == nil {
		if err := Init(nil); err != nil {
			panic(fmt.Sprintf("Failed to initialize logger: %v", err))
		}
	}

	if logger, ok := loggers[name]; ok {
		return logger
	}

	logger := createLogger(name)
	loggers[name] = logger
	return logger
}

func createLogger(name string) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	logger.SetFormatter(newFormatter())
	logger.SetReportCaller(true)

	var writers []io.Writer
	if config.Output == "file" || config.Output == "both" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   getLogFilePath(name),
			MaxSize:    config.MaxSize, // MB
			MaxBackups: config.MaxBackups,
			MaxAge:     config.MaxAge, // ngày
			Compress:   config.Compress,
		})
	}
	if config.Output == "stdout" || config.Output == "both" {
		writers = append(writers, os.Stdout)
	}

	// Ghi log qua async hook thay vì MultiWriter: file I/O chậm sẽ không
	// block request handling. Output discard để khỏi ghi trùng.
	if len(writers) > 0 {
		logger.AddHook(NewAsyncHookWithWriters(writers, 1000))
		logger.SetOutput(io.Discard)
	}

	logger.WithFields(logrus.Fields{
		"log_file": getLogFilePath(name),
		"level":    logger.GetLevel().String(),
		"format":   config.Format,
		"output":   config.Output,
	}).Info("Logger initialized successfully")

	return logger
}

func newFormatter() logrus.Formatter {
	const timestampFormat = "2006-01-02 15:04:05.000"

	if config.Format == "json" {
		return &logrus.JSONFormatter{
			TimestampFormat: timestampFormat,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
				logrus.FieldKeyFunc:  "function",
				logrus.FieldKeyFile:  "file",
			},
		}
	}
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: timestampFormat,
		CallerPrettyfier: func(f *runtime.Frame) (string, string) {
			s := strings.Split(f.Function, ".")
			funcName := s[len(s)-1]
			return funcName, fmt.Sprintf("%s:%d", filepath.Base(f.File), f.Line)
		},
	}
}

func getLogFilePath(name string) string {
	var filename string
	switch name {
	case "app":
		filename = config.AppFile
	case "audit":
		filename = config.AuditFile
	case "error":
		filename = config.ErrorFile
	default:
		filename = fmt.Sprintf("%s.log", name)
	}
	return filepath.Join(getLogPath(), filename)
}

// GetAppLogger trả về logger chính của ứng dụng
func GetAppLogger() *logrus.Logger {
	return GetLogger("app")
}

// GetAuditLogger trả về logger cho audit trail
func GetAuditLogger() *logrus.Logger {
	return GetLogger("audit")
}

// GetErrorLogger trả về logger cho errors
func GetErrorLogger() *logrus.Logger {
	return GetLogger("error")
}

// Close flush các log entry còn trong buffer của mọi async hook
func Close() {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	for _, logger := range loggers {
		for _, hooks := range logger.Hooks {
			for _, hook := range hooks {
				if asyncHook, ok := hook.(*AsyncHook); ok {
					_ = asyncHook.Close()
				}
			}
		}
	}
}
