package config

import "time"

// Config 配置主体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	DB       DBConfig       `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Logstash LogstashConfig `mapstructure:"logstash"`
	Queue    QueueConfig    `mapstructure:"queue"`
	Cron     CronConfig     `mapstructure:"cron"`
	Scraper  ScraperConfig  `mapstructure:"scraper"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// DBConfig 数据库配置
type DBConfig struct {
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"`
}

// RedisConfig Redis配置，用于 Cookie Pool 镜像状态与每日指标的脏集合
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// LogstashConfig 远程日志汇聚地址，为空则只输出到 stdout
type LogstashConfig struct {
	Address string `mapstructure:"address"`
	Index   string `mapstructure:"index"`
	Token   string `mapstructure:"token"`
}

// QueueConfig 调度队列的间隔与退避参数
type QueueConfig struct {
	MinTimeBetweenJobsMs int `mapstructure:"min_time_between_jobs_ms"`
	MaxBackoffMs         int `mapstructure:"max_backoff_ms"`
}

func (c QueueConfig) BaseSpacing() time.Duration {
	if c.MinTimeBetweenJobsMs <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.MinTimeBetweenJobsMs) * time.Millisecond
}

func (c QueueConfig) MaxBackoff() time.Duration {
	if c.MaxBackoffMs <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.MaxBackoffMs) * time.Millisecond
}

// CronConfig 调度器的两个周期触发器
type CronConfig struct {
	DailySchedule   string `mapstructure:"daily_schedule"`
	RefreshSchedule string `mapstructure:"refresh_schedule"`
	TZ              string `mapstructure:"tz"`
}

// ScraperConfig Scraper Client 的凭据来源与行为参数
type ScraperConfig struct {
	Instagram         CredentialSourceConfig `mapstructure:"instagram"`
	Twitter           CredentialSourceConfig `mapstructure:"twitter"`
	DownloadReelsToR2 bool                   `mapstructure:"download_reels_to_r2"`
	CredentialResetMinutes int               `mapstructure:"credential_reset_minutes"`
	CredentialSwitchDelayMs int              `mapstructure:"credential_switch_delay_ms"`
	PerReelDelayMs    int                    `mapstructure:"per_reel_delay_ms"`
	HTTPTimeoutSeconds int                   `mapstructure:"http_timeout_seconds"`
}

func (c ScraperConfig) ResetWindow() time.Duration {
	if c.CredentialResetMinutes <= 0 {
		return 60 * time.Minute
	}
	return time.Duration(c.CredentialResetMinutes) * time.Minute
}

func (c ScraperConfig) SwitchDelay() time.Duration {
	if c.CredentialSwitchDelayMs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.CredentialSwitchDelayMs) * time.Millisecond
}

func (c ScraperConfig) PerReelDelay() time.Duration {
	if c.PerReelDelayMs <= 0 {
		return 2 * time.Second
	}
	return time.Duration(c.PerReelDelayMs) * time.Millisecond
}

func (c ScraperConfig) HTTPTimeout() time.Duration {
	if c.HTTPTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// CredentialSourceConfig 描述某一平台 Cookie Pool 的凭据来源
type CredentialSourceConfig struct {
	Primary string   `mapstructure:"primary"`
	Extra   []string `mapstructure:"extra"`
	JSON    string   `mapstructure:"json"`
}
