package logger

import "go.uber.org/zap"

var defaultLogger *Logger
var defaultLoggerL1 *Logger

func Default() *Logger {
	return defaultLogger
}

// DefaultL1 返回跳过一层调用栈的logger，供库内包装函数使用
func DefaultL1() *Logger {
	return defaultLoggerL1
}

func SetDefault(logger *Logger) {
	defaultLogger = logger
}

func SetDefaultL1(logger *Logger) {
	defaultLoggerL1 = logger
}

// Named 创建带名称的子logger
func Named(name string) *Logger {
	return defaultLogger.Named(name)
}

func Debug(msg string, fields ...Field) {
	defaultLogger.Debug(msg, fields...)
}

// Info logs a message at InfoLevel. The message includes any fields passed
// at the log site, as well as any fields accumulated on the logger.
func Info(msg string, fields ...Field) {
	defaultLogger.Info(msg, fields...)
}

// Warn logs a message at WarnLevel. The message includes any fields passed
// at the log site, as well as any fields accumulated on the logger.
func Warn(msg string, fields ...Field) {
	defaultLogger.Warn(msg, fields...)
}

// Error logs a message at ErrorLevel. The message includes any fields passed
// at the log site, as well as any fields accumulated on the logger.
func Error(msg string, fields ...Field) {
	defaultLogger.Error(msg, fields...)
}

// Panic logs a message at PanicLevel, then panics.
func Panic(msg string, fields ...Field) {
	defaultLogger.Panic(msg, fields...)
}

// Fatal logs a message at FatalLevel, then calls os.Exit(1).
func Fatal(msg string, fields ...Field) {
	defaultLogger.Fatal(msg, fields...)
}

func With(fields ...Field) *Logger {
	return defaultLogger.With(fields...)
}

func Sync() error {
	return defaultLogger.Sync()
}

func init() {
	// 默认logger，避免在InitLogger之前调用时panic
	defaultLogger = zap.NewNop()
	defaultLoggerL1 = zap.NewNop()
}
