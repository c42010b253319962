// Package log 日志配置
package log

import (
	"github.com/mintforge/v1/pkg/types"
	"go.uber.org/zap/zapcore"
)

// LogOptions 日志配置选项
// 专注于基础设施核心功能的简化配置
type LogOptions struct {
	// === 基础配置 ===
	Level     string `json:"level"`      // 日志级别 (debug, info, warn, error, fatal)
	ToConsole bool   `json:"to_console"` // 是否输出到控制台
	FilePath  string `json:"file_path"`  // 日志文件路径

	// === 基础轮转配置 ===
	MaxSize    int  `json:"max_size"`    // 单个日志文件最大大小(MB)
	MaxBackups int  `json:"max_backups"` // 最大备份文件数
	MaxAge     int  `json:"max_age"`     // 日志文件最大保留天数
	Compress   bool `json:"compress"`    // 是否压缩历史日志文件
}

// ZapLevel 将配置的级别字符串映射为zap级别
func (o *LogOptions) ZapLevel() zapcore.Level {
	switch o.Level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// New 创建日志配置选项
//
// 1. 先创建完整的默认配置
// 2. 如果有用户配置，应用用户配置覆盖默认值
func New(userConfig *types.UserLogConfig) *LogOptions {
	options := &LogOptions{
		Level:      "info",
		ToConsole:  true,
		FilePath:   "./logs/mintforge.log",
		MaxSize:    100,
		MaxBackups: 10,
		MaxAge:     30,
		Compress:   true,
	}

	if userConfig == nil {
		return options
	}

	if userConfig.Level != nil {
		options.Level = *userConfig.Level
	}
	if userConfig.ToConsole != nil {
		options.ToConsole = *userConfig.ToConsole
	}
	if userConfig.FilePath != nil {
		options.FilePath = *userConfig.FilePath
	}
	if userConfig.MaxSize != nil {
		options.MaxSize = *userConfig.MaxSize
	}
	if userConfig.MaxBackups != nil {
		options.MaxBackups = *userConfig.MaxBackups
	}
	if userConfig.MaxAge != nil {
		options.MaxAge = *userConfig.MaxAge
	}
	if userConfig.Compress != nil {
		options.Compress = *userConfig.Compress
	}

	return options
}
