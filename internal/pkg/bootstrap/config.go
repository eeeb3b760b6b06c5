// internal/pkg/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"os"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"vesta/internal/pkg/logger"
	"vesta/internal/pkg/nacos"
)

// Config 是服务的全量配置，来源优先级：Nacos 配置中心 > 本地 YAML > 默认值
type Config struct {
	Infra struct {
		Mysql struct {
			DSN string `yaml:"dsn"`
		} `yaml:"mysql"`
		Redis struct {
			Addrs string `yaml:"addrs"`
		} `yaml:"redis"`
		Kafka struct {
			Brokers string `yaml:"brokers"`
		} `yaml:"kafka"`
		Jaeger struct {
			Endpoint string `yaml:"endpoint"`
		} `yaml:"jaeger"`
	} `yaml:"infra"`

	Services struct {
		Coupon struct {
			BaseURL string `yaml:"base_url"`
		} `yaml:"coupon"`
		Trading struct {
			BaseURL string `yaml:"base_url"`
		} `yaml:"trading"`
	} `yaml:"services"`
}

var currentConfig atomic.Pointer[Config]

// GetCurrentConfig 返回当前生效的配置
func GetCurrentConfig() *Config {
	if c := currentConfig.Load(); c != nil {
		return c
	}
	return defaultConfig()
}

func defaultConfig() *Config {
	c := &Config{}
	c.Infra.Mysql.DSN = getEnv("MYSQL_DSN", "root:root@tcp(localhost:3306)/vesta?charset=utf8mb4&parseTime=True&loc=Local")
	c.Infra.Redis.Addrs = getEnv("REDIS_ADDRS", "localhost:6379")
	c.Infra.Kafka.Brokers = getEnv("KAFKA_BROKERS", "localhost:9092")
	c.Infra.Jaeger.Endpoint = getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces")
	c.Services.Coupon.BaseURL = getEnv("COUPON_SERVICE_URL", "http://localhost:8180")
	c.Services.Trading.BaseURL = getEnv("TRADING_SERVICE_URL", "http://localhost:8280")
	return c
}

// LoadConfig 加载配置：先取默认值和环境变量，再用本地文件覆盖，
// 最后尝试从 Nacos 配置中心拉取 "<serviceName>.yaml" 覆盖。
func LoadConfig(serviceName string, nacosClient *nacos.Client) (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if nacosClient != nil {
		content, err := nacosClient.GetConfig(serviceName + ".yaml")
		if err != nil {
			// 配置中心不可用不阻塞启动，本地配置兜底
			logger.Logger().Warn().Err(err).Msg("could not load config from nacos, using local config")
		} else if content != "" {
			if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
				return nil, fmt.Errorf("failed to parse nacos config: %w", err)
			}
		}
	}

	currentConfig.Store(cfg)
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
