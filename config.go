package main

import (
	"encoding/json"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Port      string          `yaml:"port" env:"MC_PORT" env-default:"8000" json:"port"`
	CMS       CMSConfig       `yaml:"cms" json:"cms"`
	LaunchAPI LaunchAPIConfig `yaml:"launchApi" json:"launchApi"`
	Alerts    AlertConfig     `yaml:"alerts" json:"alerts"`
	Push      PushConfig      `yaml:"push" json:"push"`
	Redis     RedisConfig     `yaml:"redis" json:"redis"`
	Intervals IntervalConfig  `yaml:"intervals" json:"intervals"`
	// StatusTable optionally extends the built-in status translation table
	StatusTable string `yaml:"statusTable" env:"MC_STATUS_TABLE" env-default:"" json:"statusTable"`
}

type CMSConfig struct {
	BaseURL string `yaml:"baseUrl" env:"CMS_BASE_URL" json:"baseUrl"`
	Dataset string `yaml:"dataset" env:"CMS_DATASET" env-default:"production" json:"dataset"`
	Token   string `yaml:"token" env:"CMS_TOKEN" json:"-"`
}

type LaunchAPIConfig struct {
	URL string `yaml:"url" env:"LAUNCH_API_URL" json:"url"`
}

type AlertConfig struct {
	WebhookURL string `yaml:"webhookUrl" env:"ALERT_WEBHOOK_URL" json:"-"`
}

type PushConfig struct {
	URL    string `yaml:"url" env:"PUSH_API_URL" env-default:"https://onesignal.com/api/v1/notifications" json:"url"`
	AppID  string `yaml:"appId" env:"PUSH_APP_ID" json:"appId"`
	APIKey string `yaml:"apiKey" env:"PUSH_API_KEY" json:"-"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379" json:"addr"`
	Password string `yaml:"password" env:"REDIS_PASSWORD" env-default:"" json:"-"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0" json:"db"`
}

type IntervalConfig struct {
	Reconcile    time.Duration `yaml:"reconcile" env:"MC_RECONCILE_INTERVAL" env-default:"30s" json:"reconcile"`
	Upcoming     time.Duration `yaml:"upcoming" env:"MC_UPCOMING_INTERVAL" env-default:"10s" json:"upcoming"`
	Preflight    time.Duration `yaml:"preflight" env:"MC_PREFLIGHT_INTERVAL" env-default:"10s" json:"preflight"`
	Archive      time.Duration `yaml:"archive" env:"MC_ARCHIVE_INTERVAL" env-default:"5m" json:"archive"`
	ChangeClear  time.Duration `yaml:"changeClear" env:"MC_CHANGE_CLEAR_INTERVAL" env-default:"10m" json:"changeClear"`
	FullClear    time.Duration `yaml:"fullClear" env:"MC_FULL_CLEAR_INTERVAL" env-default:"24h" json:"fullClear"`
	MissionTTL   time.Duration `yaml:"missionTtl" env:"MC_MISSION_TTL" env-default:"25s" json:"missionTtl"`
	FirstPageTTL time.Duration `yaml:"firstPageTtl" env:"MC_FIRST_PAGE_TTL" env-default:"5m" json:"firstPageTtl"`
	FullCrawlTTL time.Duration `yaml:"fullCrawlTtl" env:"MC_FULL_CRAWL_TTL" env-default:"20m" json:"fullCrawlTtl"`
}

func LoadConfig(configPath string) *Config {
	var config Config
	if configPath == "" {
		log.Debug("Using configuration environment")
		err := cleanenv.ReadEnv(&config)
		if err != nil {
			panic(err)
		}
	} else {
		log.Debugf("Loading configuration from %s", configPath)
		err := cleanenv.ReadConfig(configPath, &config)
		if err != nil {
			panic(err)
		}
	}
	configJson, _ := json.Marshal(config)
	log.Debug("Configuration Loaded: ", string(configJson))

	return &config
}
