package config

import (
	"github.com/michojekunle/BitGive/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Platform   PlatformConfig   `mapstructure:"platform"`
	Settlement SettlementConfig `mapstructure:"settlement"`
	IPFS       IPFSConfig       `mapstructure:"ipfs"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// PlatformConfig 平台初始化配置
type PlatformConfig struct {
	AdminAddress        string `mapstructure:"admin_address"`         // 初始管理员地址
	ServiceAddress      string `mapstructure:"service_address"`       // 捐赠服务身份地址（铸造者）
	FeeBasisPoints      int64  `mapstructure:"fee_basis_points"`      // 平台手续费（基点）
	CampaignCreationFee int64  `mapstructure:"campaign_creation_fee"` // 活动创建费（wei）
}

// SettlementConfig 结算链监听配置
type SettlementConfig struct {
	Enabled       bool   `mapstructure:"enabled"`        // 是否启用链上结算监听
	RPCURL        string `mapstructure:"rpc_url"`        // RPC节点URL
	ContractAddr  string `mapstructure:"contract_addr"`  // 结算合约地址
	StartBlock    uint64 `mapstructure:"start_block"`    // 合约部署区块号
	Confirmations int    `mapstructure:"confirmations"`  // 确认区块数
	PollInterval  int    `mapstructure:"poll_interval"`  // 轮询间隔（秒）
	BatchSize     int64  `mapstructure:"batch_size"`     // 每批处理的区块数
	WorkerPool    int    `mapstructure:"worker_pool"`    // 事件处理协程池大小
}

// IPFSConfig 内容存储配置
type IPFSConfig struct {
	Endpoint string `mapstructure:"endpoint"` // 上传服务地址
	APIKey   string `mapstructure:"api_key"`  // 访问密钥
	Gateway  string `mapstructure:"gateway"`  // 网关前缀
}

type SchedulerConfig struct {
	Interval int `mapstructure:"interval"` // 秒
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/bitgive")

	// 设置默认值
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "bitgive")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("platform.fee_basis_points", 250)
	viper.SetDefault("platform.campaign_creation_fee", 1_000_000_000_000_000)
	viper.SetDefault("settlement.enabled", false)
	viper.SetDefault("settlement.start_block", 0)
	viper.SetDefault("settlement.confirmations", 12)
	viper.SetDefault("settlement.poll_interval", 60)
	viper.SetDefault("settlement.batch_size", 500)
	viper.SetDefault("settlement.worker_pool", 4)
	viper.SetDefault("scheduler.interval", 60)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file", "logs/app.log")

	// 自动读取环境变量
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Warn("Warning: Could not read config file: %v", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		logger.Fatal("Unable to decode config into struct: %v", err)
	}

	return &config
}
