package config

import (
	"gopkg.in/yaml.v3"
	"net/url"
	"os"
	domainerr "ruesite/internal/domain/errors"
	"strings"
	"time"
)

type Config struct {
	Site  SiteConfig  `yaml:"site"`
	Data  DataConfig  `yaml:"data"`
	Build BuildConfig `yaml:"build"`
	Serve ServeConfig `yaml:"serve"`
}

type SiteConfig struct {
	Title    string `yaml:"title"`
	Language string `yaml:"language"`
	BasePath string `yaml:"base_path"`
	Labels   Labels `yaml:"labels"`
}

// Labels are the fixed texts of the listing page.
type Labels struct {
	AllPlaces     string `yaml:"all_places"`
	AllPeriods    string `yaml:"all_periods"`
	AllFamilies   string `yaml:"all_families"`
	AllThemes     string `yaml:"all_themes"`
	Untitled      string `yaml:"untitled"`
	Empty         string `yaml:"empty"`
	LoadError     string `yaml:"load_error"`
	ReadMore      string `yaml:"read_more"`
	VideoFallback string `yaml:"video_fallback"`
	PlacePrefix   string `yaml:"place_prefix"`
}

type DataConfig struct {
	// Source is a directory or an http(s) base URL.
	Source     string        `yaml:"source"`
	Options    string        `yaml:"options"`
	Articles   string        `yaml:"articles"`
	Places     string        `yaml:"places"`
	ContentDir string        `yaml:"content_dir"`
	Timeout    time.Duration `yaml:"timeout"`
}

type BuildConfig struct {
	PublicDir string `yaml:"public_dir"`
	// ThemeDir overrides the embedded templates when set.
	ThemeDir  string `yaml:"theme_dir"`
	IndexPath string `yaml:"index_path"`
}

type ServeConfig struct {
	Addr string `yaml:"addr"`
	Dev  bool   `yaml:"dev"`
}

func Default() Config {
	return Config{
		Site: SiteConfig{
			Title:    "Articles",
			Language: "en",
			Labels:   DefaultLabels(),
		},
		Data: DataConfig{
			Source:     "data",
			Options:    "options.json",
			Articles:   "articles.json",
			Places:     "lieux.json",
			ContentDir: "data/articles",
			Timeout:    10 * time.Second,
		},
		Build: BuildConfig{
			PublicDir: "public",
			IndexPath: ".ruesite/build.db",
		},
		Serve: ServeConfig{
			Addr: ":8080",
		},
	}
}

func DefaultLabels() Labels {
	return Labels{
		AllPlaces:     "All",
		AllPeriods:    "All",
		AllFamilies:   "All",
		AllThemes:     "All",
		Untitled:      "Untitled",
		Empty:         "No articles found.",
		LoadError:     "Failed to load articles.",
		ReadMore:      "Read article",
		VideoFallback: "Your browser does not support the video tag.",
		PlacePrefix:   "Rue",
	}
}

// Base is the base path links are built on: "/" and "" both mean the
// site root and yield "".
func (s SiteConfig) Base() string {
	return strings.TrimSuffix(strings.TrimSpace(s.BasePath), "/")
}

// IsRemote reports whether the data source is an HTTP base URL.
func (d DataConfig) IsRemote() bool {
	s := strings.ToLower(strings.TrimSpace(d.Source))
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func (c Config) Validate() error {
	var ve domainerr.ValidationError

	if strings.TrimSpace(c.Site.Title) == "" {
		ve.Add("site.title", "must not be empty")
	}
	if bp := strings.TrimSpace(c.Site.BasePath); bp != "" {
		if !strings.HasPrefix(bp, "/") {
			ve.Add("site.base_path", "must start with '/'")
		}
		if strings.HasSuffix(bp, "/") && bp != "/" {
			ve.Add("site.base_path", "must not end with '/'")
		}
	}

	if strings.TrimSpace(c.Data.Source) == "" {
		ve.Add("data.source", "must not be empty")
	} else if c.Data.IsRemote() && !isValidAbsURL(c.Data.Source) {
		ve.Add("data.source", "must be a valid absolute URL")
	}
	if strings.TrimSpace(c.Data.Options) == "" {
		ve.Add("data.options", "must not be empty")
	}
	if strings.TrimSpace(c.Data.Articles) == "" {
		ve.Add("data.articles", "must not be empty")
	}
	if c.Data.Timeout < 0 {
		ve.Add("data.timeout", "must not be negative")
	}

	if strings.TrimSpace(c.Build.PublicDir) == "" {
		ve.Add("build.public_dir", "must not be empty")
	}
	if strings.TrimSpace(c.Build.IndexPath) == "" {
		ve.Add("build.index_path", "must not be empty")
	}
	if strings.TrimSpace(c.Serve.Addr) == "" {
		ve.Add("serve.addr", "must not be empty")
	}

	if ve.HasAny() {
		return ve
	}
	return nil
}

func isValidAbsURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := decode(data, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadOrDefault falls back to Default when the file does not exist.
func LoadOrDefault(path string) (Config, error) {
	cfg, err := Load(path)
	if err != nil && os.IsNotExist(err) {
		cfg = Default()
		return cfg, cfg.Validate()
	}
	return cfg, err
}

// decode applies the file over the defaults: unset fields keep their
// default, and empty labels fall back to the default text.
func decode(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}
	cfg.Site.Labels = cfg.Site.Labels.withDefaults(DefaultLabels())
	if strings.TrimSpace(cfg.Site.BasePath) == "/" {
		cfg.Site.BasePath = ""
	}
	if cfg.Data.Timeout == 0 {
		cfg.Data.Timeout = Default().Data.Timeout
	}
	return nil
}

func (l Labels) withDefaults(d Labels) Labels {
	pick := func(v, def string) string {
		if strings.TrimSpace(v) == "" {
			return def
		}
		return v
	}
	return Labels{
		AllPlaces:     pick(l.AllPlaces, d.AllPlaces),
		AllPeriods:    pick(l.AllPeriods, d.AllPeriods),
		AllFamilies:   pick(l.AllFamilies, d.AllFamilies),
		AllThemes:     pick(l.AllThemes, d.AllThemes),
		Untitled:      pick(l.Untitled, d.Untitled),
		Empty:         pick(l.Empty, d.Empty),
		LoadError:     pick(l.LoadError, d.LoadError),
		ReadMore:      pick(l.ReadMore, d.ReadMore),
		VideoFallback: pick(l.VideoFallback, d.VideoFallback),
		PlacePrefix:   pick(l.PlacePrefix, d.PlacePrefix),
	}
}
