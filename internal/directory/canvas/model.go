package canvas

import (
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

type Config struct {
	BaseURL  string        `yaml:"base_url" env:"CANVAS_BASE_URL" env-default:"https://unr.canvaslms.com"`
	Timeout  time.Duration `yaml:"timeout" env:"CANVAS_TIMEOUT" env-default:"30s"`
	PerPage  int           `yaml:"per_page" env:"CANVAS_PER_PAGE" env-default:"100"`
	MaxPages int           `yaml:"max_pages" env:"CANVAS_MAX_PAGES" env-default:"100"`
}

type Client struct {
	root     *url.URL
	token    string
	http     *http.Client
	logger   *zap.Logger
	perPage  int
	maxPages int
}
