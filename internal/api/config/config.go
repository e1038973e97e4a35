package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Cfg 全局可访问的配置实例
var Cfg *Config

// LoadConfig 从文件加载配置并填充到 Cfg，环境变量优先于文件
func LoadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("queue.min_time_between_jobs_ms", 300000)
	viper.SetDefault("queue.max_backoff_ms", 1800000)
	viper.SetDefault("cron.daily_schedule", "15 2 * * *")
	viper.SetDefault("cron.refresh_schedule", "")
	viper.SetDefault("cron.tz", "Asia/Kolkata")
	viper.SetDefault("scraper.credential_reset_minutes", 60)
	viper.SetDefault("scraper.credential_switch_delay_ms", 30000)
	viper.SetDefault("scraper.per_reel_delay_ms", 2000)
	viper.SetDefault("scraper.http_timeout_seconds", 30)

	bindEnv("PORT", "server.port")
	bindEnv("MIN_TIME_BETWEEN_JOBS_MS", "queue.min_time_between_jobs_ms")
	bindEnv("MAX_BACKOFF_MS", "queue.max_backoff_ms")
	bindEnv("DAILY_CRON_SCHEDULE", "cron.daily_schedule")
	bindEnv("REFRESH_CRON_SCHEDULE", "cron.refresh_schedule")
	bindEnv("TZ", "cron.tz")
	bindEnv("INSTAGRAM_COOKIES", "scraper.instagram.primary")
	bindEnv("INSTAGRAM_COOKIES_JSON", "scraper.instagram.json")
	bindEnv("TWITTER_COOKIES", "scraper.twitter.primary")
	bindEnv("TWITTER_COOKIES_JSON", "scraper.twitter.json")
	bindEnv("DOWNLOAD_REELS_TO_R2", "scraper.download_reels_to_r2")
	bindEnv("DATABASE_DSN", "database.dsn")
	bindEnv("REDIS_ADDR", "redis.addr")

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Scraper.Instagram.Extra = numberedCredentials("INSTAGRAM_COOKIES")
	cfg.Scraper.Twitter.Extra = numberedCredentials("TWITTER_COOKIES")

	Cfg = &cfg

	return nil
}

func bindEnv(env, key string) {
	_ = viper.BindEnv(key, env)
}

// numberedCredentials scans INSTAGRAM_COOKIES_2, INSTAGRAM_COOKIES_3, ... in
// ascending numeric order. The primary credential (no suffix) is bound
// separately via bindEnv and is not included here.
func numberedCredentials(prefix string) []string {
	type indexed struct {
		n     int
		value string
	}
	var found []indexed
	for _, kv := range os.Environ() {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key, value := parts[0], parts[1]
		suffix, ok := strings.CutPrefix(key, prefix+"_")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil || n < 2 {
			continue
		}
		found = append(found, indexed{n: n, value: value})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].n < found[j].n })
	out := make([]string, 0, len(found))
	for _, f := range found {
		out = append(out, f.value)
	}
	return out
}
