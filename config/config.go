package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port     int    `env:"PORT" envDefault:"3001"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Shopify webhook intake
	ShopifyWebhookSecret string `env:"SHOPIFY_WEBHOOK_SECRET" required:"true"`

	// Shopify admin API (metadata lookups). Optional: without credentials the
	// resolver skips the metafield strategy.
	ShopifyStoreDomain      string        `env:"SHOPIFY_STORE_DOMAIN"`
	ShopifyAdminAccessToken string        `env:"SHOPIFY_ADMIN_ACCESS_TOKEN"`
	ShopifyAPIVersion       string        `env:"SHOPIFY_API_VERSION" envDefault:"2023-10"`
	HTTPShopifyTimeout      time.Duration `env:"HTTP_SHOPIFY_CLIENT_TIMEOUT" envDefault:"20s"`

	// LearnWorlds admin API
	LWAPIBase     string        `env:"LW_API_BASE" required:"true"`
	LWClient      string        `env:"LW_CLIENT" required:"true"`
	LWToken       string        `env:"LW_TOKEN" required:"true"`
	HTTPLWTimeout time.Duration `env:"HTTP_LW_CLIENT_TIMEOUT" envDefault:"20s"`

	// Product map: inline JSON takes precedence, otherwise read from file.
	ProductMapJSON string `env:"LW_PRODUCT_MAP_JSON"`
	ProductMapFile string `env:"LW_PRODUCT_MAP_FILE" envDefault:"lw-product-map.json"`
}

func New() (Config, error) {
	c, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, err
	}

	return c, nil
}

// LWConfig is the LearnWorlds-only subset used by the lwadmin CLI, which
// has no business with webhook or Shopify settings.
type LWConfig struct {
	LWAPIBase     string        `env:"LW_API_BASE" required:"true"`
	LWClient      string        `env:"LW_CLIENT" required:"true"`
	LWToken       string        `env:"LW_TOKEN" required:"true"`
	HTTPLWTimeout time.Duration `env:"HTTP_LW_CLIENT_TIMEOUT" envDefault:"20s"`
}

func NewLW() (LWConfig, error) {
	c, err := env.ParseAs[LWConfig]()
	if err != nil {
		return LWConfig{}, err
	}

	return c, nil
}
