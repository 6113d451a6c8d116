package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
	gormUtils "gorm.io/gorm/utils"

	"github.com/ninja0404/trade-journal/pkg/logger"
)

var _ gormLogger.Interface = &GormLogger{}

var (
	traceStr     = "%s\n[%.3fms] [rows:%v] %s"
	traceWarnStr = "%s %s\n[%.3fms] [rows:%v] %s"
	traceErrStr  = "%s %s\n[%.3fms] [rows:%v] %s"
)

func NewGormLogger(logger *logger.Logger, loggerLevel gormLogger.LogLevel) *GormLogger {
	l := GormLogger{
		logger:      logger,
		loggerLevel: loggerLevel,
	}
	if loggerLevel < gormLogger.Info {
		l.loggerConfig = gormLogger.Config{
			SlowThreshold:             1000 * time.Millisecond,
			LogLevel:                  gormLogger.Error,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  false,
		}
	} else {
		l.loggerConfig = gormLogger.Config{
			SlowThreshold:             1000 * time.Millisecond,
			LogLevel:                  gormLogger.Info,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  true,
		}
	}

	return &l
}

type GormLogger struct {
	logger       *logger.Logger
	loggerLevel  gormLogger.LogLevel
	loggerConfig gormLogger.Config
}

func (l *GormLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	newLogger := *l
	newLogger.loggerLevel = level
	return &newLogger
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.loggerLevel >= gormLogger.Info {
		l.logger.Info(fmt.Sprintf(msg, data...))
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.loggerLevel >= gormLogger.Warn {
		l.logger.Warn(fmt.Sprintf(msg, data...))
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.loggerLevel >= gormLogger.Error {
		l.logger.Error(fmt.Sprintf(msg, data...))
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.loggerLevel <= gormLogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && l.loggerLevel >= gormLogger.Error && (!errors.Is(err, gorm.ErrRecordNotFound) || !l.loggerConfig.IgnoreRecordNotFoundError):
		sql, rows := fc()
		if rows == -1 {
			l.logger.Error(fmt.Sprintf(traceErrStr, gormUtils.FileWithLineNum(), err, float64(elapsed.Nanoseconds())/1e6, "-", sql))
		} else {
			l.logger.Error(fmt.Sprintf(traceErrStr, gormUtils.FileWithLineNum(), err, float64(elapsed.Nanoseconds())/1e6, rows, sql))
		}
	case elapsed > l.loggerConfig.SlowThreshold && l.loggerConfig.SlowThreshold != 0 && l.loggerLevel >= gormLogger.Warn:
		sql, rows := fc()
		slowLog := fmt.Sprintf("SLOW SQL >= %v", l.loggerConfig.SlowThreshold)
		if rows == -1 {
			l.logger.Warn(fmt.Sprintf(traceWarnStr, gormUtils.FileWithLineNum(), slowLog, float64(elapsed.Nanoseconds())/1e6, "-", sql))
		} else {
			l.logger.Warn(fmt.Sprintf(traceWarnStr, gormUtils.FileWithLineNum(), slowLog, float64(elapsed.Nanoseconds())/1e6, rows, sql))
		}
	case l.loggerLevel == gormLogger.Info:
		sql, rows := fc()
		if rows == -1 {
			l.logger.Info(fmt.Sprintf(traceStr, gormUtils.FileWithLineNum(), float64(elapsed.Nanoseconds())/1e6, "-", sql))
		} else {
			l.logger.Info(fmt.Sprintf(traceStr, gormUtils.FileWithLineNum(), float64(elapsed.Nanoseconds())/1e6, rows, sql))
		}
	}
}

func mappingLoggerLevel(level string, openDebug bool) gormLogger.LogLevel {
	if openDebug {
		return gormLogger.Info
	}
	switch level {
	case "debug", "DEBUG", "info", "INFO", "": // make the zero value useful
		return gormLogger.Warn
	case "warn", "WARN":
		return gormLogger.Warn
	case "error", "ERROR", "dpanic", "DPANIC", "panic", "PANIC", "fatal", "FATAL":
		return gormLogger.Error
	default:
		return gormLogger.Silent
	}
}
