package config

import (
	"log"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	viper "github.com/spf13/viper"
)

/*
把init跟read分開
init : 需要設置viper watch 與 onConfigChange
read : 一般讀取 需要使用讀寫鎖
*/
var configSingleton *ConfigSingleTon
var muonce sync.Once

type ConfigSingleTon struct {
	Config *Config
	mu     sync.RWMutex
}

type Config struct {
	ModulerName          string        `mapstructure:"MODULER_NAME"`
	ServerPort           string        `mapstructure:"SERVER_PORT"`
	DbName               string        `mapstructure:"POSTGRES_DB"`
	DbHost               string        `mapstructure:"POSTGRES_HOST"`
	DbPort               string        `mapstructure:"POSTGRES_PORT"`
	DbUser               string        `mapstructure:"POSTGRES_USER"`
	DbPas                string        `mapstructure:"POSTGRES_PASSWORD"`
	RedisAddr            string        `mapstructure:"REDIS_ADDR"`
	RedisPas             string        `mapstructure:"REDIS_PASSWORD"`
	KafkaBrokers         []string      `mapstructure:"KAFKA_BROKERS"`
	KafkaOrderTopic      string        `mapstructure:"KAFKA_ORDER_TOPIC"`
	KafkaPaymentTopic    string        `mapstructure:"KAFKA_PAYMENT_TOPIC"`
	KafkaConsumerGroup   string        `mapstructure:"KAFKA_CONSUMER_GROUP"`
	StripeSecretKey      string        `mapstructure:"STRIPE_SECRET_KEY"`
	StripeBaseURL        string        `mapstructure:"STRIPE_BASE_URL"`
	AuthTokenKey         string        `mapstructure:"AUTH_TOKEN_KEY"`
	TokenDuration        time.Duration `mapstructure:"TOKEN_DURATION"`
	PaymentExpiry        time.Duration `mapstructure:"PAYMENT_EXPIRY"`
	PaymentSweepInterval time.Duration `mapstructure:"PAYMENT_SWEEP_INTERVAL"`
}

func GetConfig() *Config {
	initConfig()
	configSingleton.mu.RLock()
	defer configSingleton.mu.RUnlock()
	return configSingleton.Config
}

func initConfig() {
	if configSingleton == nil {
		muonce.Do(func() {
			configSingleton = &ConfigSingleTon{}
			if cf, err := loadConfig(); err == nil {
				configSingleton.Config = cf
			} else {
				log.Fatal("error read config")
			}
			viper.WatchConfig()
			viper.OnConfigChange(func(e fsnotify.Event) {
				if cf, err := loadConfig(); err == nil {
					configSingleton.Config = cf
				} else {
					log.Panic("failed to reload config file")
				}
			})
		})
	}
}

/*
單純回傳錯誤 由外部決定要不要Fatal, 畢竟有可能有替代方案
*/
func loadConfig() (cf *Config, err error) {
	configSingleton.mu.Lock()
	defer configSingleton.mu.Unlock()

	cf = &Config{}
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("STRIPE_BASE_URL", "https://api.stripe.com")
	viper.SetDefault("KAFKA_ORDER_TOPIC", "storefront.orders")
	viper.SetDefault("KAFKA_PAYMENT_TOPIC", "storefront.payments")
	viper.SetDefault("KAFKA_CONSUMER_GROUP", "storefront-order-service")
	viper.SetDefault("TOKEN_DURATION", "24h")
	viper.SetDefault("PAYMENT_EXPIRY", "30m")
	viper.SetDefault("PAYMENT_SWEEP_INTERVAL", "1m")

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(cf)
	if err != nil {
		return
	}
	return
}
