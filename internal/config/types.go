package config

import "notehub/internal/model"

// ConfigLogger настройки логирования
type ConfigLogger struct {
	Level string `mapstructure:"level"`
}

// ConfigServer настройки HTTP сервера
type ConfigServer struct {
	PortHTTP                int `mapstructure:"port_http"`
	HTTPReadTimeout         int `mapstructure:"http_read_timeout"`
	HTTPWriteTimeout        int `mapstructure:"http_write_timeout"`
	HTTPIdleTimeout         int `mapstructure:"http_idle_timeout"`
	HTTPReadHeaderTimeout   int `mapstructure:"http_read_header_timeout"`
	GracefulShutdownTimeout int `mapstructure:"graceful_shutdown_timeout"`
}

// ConfigHTTP настройки API-слоя (CORS и rate limiting)
type ConfigHTTP struct {
	CORSAllowedOrigins string `mapstructure:"cors_allowed_origins"`
	CORSMaxAge         int    `mapstructure:"cors_max_age"`
	RateLimitRPS       int    `mapstructure:"rate_limit_rps"`
	RateLimitBurst     int    `mapstructure:"rate_limit_burst"`
}

// ConfigCategory одна категория закрытого набора
type ConfigCategory struct {
	Name  string `mapstructure:"name"`
	Emoji string `mapstructure:"emoji"`
}

// Config основная структура конфигурации
type Config struct {
	Logger     *ConfigLogger    `mapstructure:"logger"`
	Server     *ConfigServer    `mapstructure:"server"`
	HTTP       *ConfigHTTP      `mapstructure:"http"`
	Categories []ConfigCategory `mapstructure:"categories"`
}

// Catalog строит каталог категорий из конфигурации.
// Пустой список категорий означает стандартный набор.
func (c *Config) Catalog() *model.Catalog {
	if len(c.Categories) == 0 {
		return model.DefaultCatalog()
	}
	categories := make([]model.Category, 0, len(c.Categories))
	for _, cc := range c.Categories {
		categories = append(categories, model.Category{Name: cc.Name, Emoji: cc.Emoji})
	}
	return model.NewCatalog(categories)
}
