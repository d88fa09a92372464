package config

import (
	"github.com/ghostfund/gfs/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Chain     ChainConfig     `mapstructure:"chain"`
	AI        AIConfig        `mapstructure:"ai"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Log       LogConfig       `mapstructure:"log"`
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

// ChainConfig 链服务配置
// rpc_url、private_key、contract_address 三者缺一，链服务即降级为禁用模式，
// 创建项目时跳过链上注册。
type ChainConfig struct {
	RpcUrl          string `mapstructure:"rpc_url"`          // RPC节点URL
	PrivateKey      string `mapstructure:"private_key"`      // 私钥
	ContractAddress string `mapstructure:"contract_address"` // 已部署合约地址
	Timeout         int    `mapstructure:"timeout"`          // 外部调用超时（秒）
}

// AIConfig 文本补全服务配置
type AIConfig struct {
	APIKey    string `mapstructure:"api_key"`    // 补全API密钥
	BaseURL   string `mapstructure:"base_url"`   // API地址
	Model     string `mapstructure:"model"`      // 模型名
	MaxTokens int    `mapstructure:"max_tokens"` // 响应长度上限
	Timeout   int    `mapstructure:"timeout"`    // 请求超时（秒）
}

type SchedulerConfig struct {
	Interval int `mapstructure:"interval"` // 秒
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, stderr, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/gfs")

	// 设置默认值
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "ghostfund")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("chain.timeout", 15)
	viper.SetDefault("ai.base_url", "https://api.perplexity.ai")
	viper.SetDefault("ai.model", "sonar")
	viper.SetDefault("ai.max_tokens", 500)
	viper.SetDefault("ai.timeout", 30)
	viper.SetDefault("scheduler.interval", 60)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file", "logs/app.log")

	// 自动读取环境变量，并兼容原有的部署变量名
	viper.AutomaticEnv()
	viper.BindEnv("ai.api_key", "PERPLEXITY_API_KEY")
	viper.BindEnv("chain.rpc_url", "CHAIN_RPC_URL")
	viper.BindEnv("chain.private_key", "PRIVATE_KEY")
	viper.BindEnv("chain.contract_address", "CONTRACT_ADDRESS")
	viper.BindEnv("database.host", "DB_HOST")
	viper.BindEnv("database.password", "DB_PASSWORD")

	if err := viper.ReadInConfig(); err != nil {
		logger.Warn("Warning: Could not read config file: %v", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		logger.Fatal("Unable to decode config into struct: %v", err)
	}

	return &config
}
