// Package types 用户配置数据结构
//
// 🔧 **零值陷阱处理说明**
// 为了区分"用户未设置"和"用户设置为零值"，可选字段使用指针类型：
// - nil: 用户未在配置文件中设置该字段，使用系统默认值
// - &value: 用户明确设置了该值，即使是零值（0、false、""）也会被采用
package types

// AppConfig 应用统一配置结构（对应config.json）
type AppConfig struct {
	Node    *UserNodeConfig    `json:"node,omitempty"`
	Log     *UserLogConfig     `json:"log,omitempty"`
	Storage *UserStorageConfig `json:"storage,omitempty"`
	API     *UserAPIConfig     `json:"api,omitempty"`
	Minter  *UserMinterConfig  `json:"minter,omitempty"`
	Clock   *UserClockConfig   `json:"clock,omitempty"`
}

// UserNodeConfig 节点标识配置
type UserNodeConfig struct {
	// Name 节点名称，用于日志与指标标识
	Name *string `json:"name,omitempty"`
	// DataDir 数据根目录
	DataDir *string `json:"data_dir,omitempty"`
}

// UserLogConfig 日志配置
type UserLogConfig struct {
	Level      *string `json:"level,omitempty"`       // debug/info/warn/error/fatal
	ToConsole  *bool   `json:"to_console,omitempty"`  // 是否输出到控制台
	FilePath   *string `json:"file_path,omitempty"`   // 日志文件路径
	MaxSize    *int    `json:"max_size,omitempty"`    // 单文件最大MB
	MaxBackups *int    `json:"max_backups,omitempty"` // 最大备份数
	MaxAge     *int    `json:"max_age,omitempty"`     // 最大保留天数
	Compress   *bool   `json:"compress,omitempty"`    // 是否压缩历史日志
}

// UserStorageConfig 存储配置
type UserStorageConfig struct {
	// Badger 持久化KV存储配置
	Badger *UserBadgerConfig `json:"badger,omitempty"`
	// Memory 内存缓存配置
	Memory *UserMemoryConfig `json:"memory,omitempty"`
}

// UserBadgerConfig BadgerDB配置
type UserBadgerConfig struct {
	Path       *string `json:"path,omitempty"`        // 数据目录
	SyncWrites *bool   `json:"sync_writes,omitempty"` // 是否同步写
	InMemory   *bool   `json:"in_memory,omitempty"`   // 纯内存模式（测试用）
}

// UserMemoryConfig BigCache内存缓存配置
type UserMemoryConfig struct {
	LifeWindow  *string `json:"life_window,omitempty"`  // 条目生存窗口
	CleanWindow *string `json:"clean_window,omitempty"` // 清理窗口
	Shards      *int    `json:"shards,omitempty"`       // 分片数（2的幂）
}

// UserAPIConfig HTTP API配置
type UserAPIConfig struct {
	Enabled *bool   `json:"enabled,omitempty"` // 是否启用HTTP API
	Host    *string `json:"host,omitempty"`    // 监听地址
	Port    *int    `json:"port,omitempty"`    // 监听端口
}

// UserMinterConfig 铸造引擎配置
type UserMinterConfig struct {
	// MinHalfLifeSeconds 允许的最小价格半衰期（秒）
	MinHalfLifeSeconds *uint64 `json:"min_half_life_seconds,omitempty"`
	// MaxHalfLifeSeconds 允许的最大价格半衰期（秒）
	MaxHalfLifeSeconds *uint64 `json:"max_half_life_seconds,omitempty"`
	// TransferGasStipend 原生转账给接收方回调的执行预算
	TransferGasStipend *uint64 `json:"transfer_gas_stipend,omitempty"`
	// MinterAddress 铸造引擎自身地址（hex），作为ACL判定目标与ERC20托管方
	MinterAddress *string `json:"minter_address,omitempty"`
	// AdminAddresses 管理员地址清单（hex），本地ACL预言机的许可名单
	AdminAddresses []string `json:"admin_addresses,omitempty"`
}

// UserClockConfig 时钟源配置
type UserClockConfig struct {
	// Source 时间源: system / ntp
	Source *string `json:"source,omitempty"`
	// NTPServer NTP服务器地址（Source为ntp时生效）
	NTPServer *string `json:"ntp_server,omitempty"`
}

// 配置辅助函数
// 这些函数帮助创建指针类型的配置值，区分"未设置"和"设置为零值"

// BoolPtr 创建bool指针，用于明确表示用户设置了该值
func BoolPtr(v bool) *bool {
	return &v
}

// IntPtr 创建int指针，用于明确表示用户设置了该值
func IntPtr(v int) *int {
	return &v
}

// StringPtr 创建string指针，用于明确表示用户设置了该值
func StringPtr(v string) *string {
	return &v
}

// UInt64Ptr 创建uint64指针，用于明确表示用户设置了该值
func UInt64Ptr(v uint64) *uint64 {
	return &v
}
