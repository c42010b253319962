// Package types 日志级别定义
package types

// LogLevel 日志级别
type LogLevel string

// 标准日志级别
const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
	FatalLevel LogLevel = "fatal"
)

// String 返回级别名称
func (l LogLevel) String() string { return string(l) }
