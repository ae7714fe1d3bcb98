package core

import (
	"fmt"
	"log"
	"os"
)

// 日志颜色常量
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorPurple = "\033[35m"
	ColorCyan   = "\033[36m"
	ColorWhite  = "\033[37m"
)

// 日志类型
type LogType string

const (
	LogTypeAdapter       LogType = "ADAPTER"
	LogTypeNodeManager   LogType = "NODE_MANAGER"
	LogTypeArtifactStore LogType = "ARTIFACT_STORE"
	LogTypeEventHub      LogType = "EVENT_HUB"
)

// 日志配置
type LogConfig struct {
	Type  LogType
	Name  string
	Color string
}

// 预定义的日志配置
var logConfigs = map[LogType]LogConfig{
	LogTypeAdapter: {
		Type:  LogTypeAdapter,
		Name:  "Adapter",
		Color: ColorYellow,
	},
	LogTypeNodeManager: {
		Type:  LogTypeNodeManager,
		Name:  "NodeManager",
		Color: ColorCyan,
	},
	LogTypeArtifactStore: {
		Type:  LogTypeArtifactStore,
		Name:  "ArtifactStore",
		Color: ColorPurple,
	},
	LogTypeEventHub: {
		Type:  LogTypeEventHub,
		Name:  "EventHub",
		Color: ColorBlue,
	},
}

// Logger 结构体
type Logger struct {
	logType LogType
}

// NewLogger 创建新的日志器
func NewLogger(logType LogType) *Logger {
	return &Logger{
		logType: logType,
	}
}

// 检查是否支持颜色输出
func supportsColor() bool {
	if os.Getenv("TERM") == "dumb" {
		return false
	}

	if os.Getenv("OS") == "Windows_NT" {
		return true
	}

	fileInfo, _ := os.Stdout.Stat()
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// Printf 格式化输出日志
func (l *Logger) Printf(format string, args ...interface{}) {
	if supportsColor() {
		// 整行颜色包裹
		config := logConfigs[l.logType]
		coloredFormat := fmt.Sprintf("%s[%s] %s%s",
			config.Color,
			config.Name,
			format,
			ColorReset,
		)
		log.Printf(coloredFormat, args...)
	} else {
		plainFormat := fmt.Sprintf("[%s] %s", l.logType, format)
		log.Printf(plainFormat, args...)
	}
}

// Println 输出日志
func (l *Logger) Println(args ...interface{}) {
	if supportsColor() {
		config := logConfigs[l.logType]
		message := fmt.Sprint(args...)
		coloredMessage := fmt.Sprintf("%s[%s] %s%s",
			config.Color,
			config.Name,
			message,
			ColorReset,
		)
		log.Println(coloredMessage)
	} else {
		plainMessage := fmt.Sprintf("[%s] %s", l.logType, fmt.Sprint(args...))
		log.Println(plainMessage)
	}
}

// 全局日志器实例
var (
	AdapterLogger       = NewLogger(LogTypeAdapter)
	NodeManagerLogger   = NewLogger(LogTypeNodeManager)
	ArtifactStoreLogger = NewLogger(LogTypeArtifactStore)
	EventHubLogger      = NewLogger(LogTypeEventHub)
)

// 快捷函数
func LogAdapter(format string, args ...interface{}) {
	AdapterLogger.Printf(format, args...)
}

func LogNodeManager(format string, args ...interface{}) {
	NodeManagerLogger.Printf(format, args...)
}

func LogArtifactStore(format string, args ...interface{}) {
	ArtifactStoreLogger.Printf(format, args...)
}

func LogEventHub(format string, args ...interface{}) {
	EventHubLogger.Printf(format, args...)
}
