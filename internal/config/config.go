package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the settings shared by every chart the process finalises.
type Config struct {
	Chart  ChartConfig  `mapstructure:"chart" yaml:"chart"`
	Lines  LinesConfig  `mapstructure:"lines" yaml:"lines"`
	Bars   BarsConfig   `mapstructure:"bars" yaml:"bars"`
	Legend LegendConfig `mapstructure:"legend" yaml:"legend"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
}

type ChartConfig struct {
	Dir           string        `mapstructure:"dir" yaml:"dir"`
	FileType      string        `mapstructure:"file_type" yaml:"file_type"`
	DPI           int           `mapstructure:"dpi" yaml:"dpi"`
	FigSize       []float64     `mapstructure:"figsize" yaml:"figsize"` // width, height in inches
	Viewer        string        `mapstructure:"viewer" yaml:"viewer"`   // command used by show, empty picks the OS default
	ViewerTimeout time.Duration `mapstructure:"viewer_timeout" yaml:"viewer_timeout"`
	Legend        LegendConfig  `mapstructure:"-" yaml:"-"`
}

// LinesConfig - line widths in points
type LinesConfig struct {
	Narrow float64 `mapstructure:"narrow" yaml:"narrow"`
	Normal float64 `mapstructure:"normal" yaml:"normal"`
	Wide   float64 `mapstructure:"wide" yaml:"wide"`
}

// BarsConfig - bar width as a share of the space each category gets
type BarsConfig struct {
	Width float64 `mapstructure:"width" yaml:"width"`
}

// LegendConfig is what `legend: true` expands to.
type LegendConfig struct {
	Loc      string `mapstructure:"loc" yaml:"loc"`
	FontSize string `mapstructure:"fontsize" yaml:"fontsize"`
}

type LogConfig struct {
	Dir   string `mapstructure:"dir" yaml:"dir"`
	Level string `mapstructure:"level" yaml:"level"`
}

// LegendOptions returns the default legend as an option map.
func (l LegendConfig) LegendOptions() map[string]any {
	out := map[string]any{}
	if l.Loc != "" {
		out["loc"] = l.Loc
	}
	if l.FontSize != "" {
		out["fontsize"] = l.FontSize
	}
	return out
}

// Default returns the built-in settings without reading any source.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("config defaults do not unmarshal: %v", err))
	}
	cfg.Chart.Legend = cfg.Legend
	return &cfg
}

// LoadConfig reads, in increasing priority:
// 1. built-in defaults
// 2. config.yaml in the working directory (or the file named by MGCHART_CONFIG)
// 3. .env file
// 4. environment variables
// 5. flags, when a flag set is passed
func LoadConfig(flags *pflag.FlagSet) (*Config, error) {
	godotenv.Load(".env")

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.BindEnv("config", "MGCHART_CONFIG")
	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("MGCHART")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setupEnvAliases(v)

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Chart.FileType = strings.ToLower(strings.TrimPrefix(cfg.Chart.FileType, "."))
	cfg.Chart.Legend = cfg.Legend

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setupEnvAliases(v *viper.Viper) {
	v.BindEnv("chart.dir", "MGCHART_CHART_DIR", "CHART_DIR")
	v.BindEnv("chart.file_type", "MGCHART_FILE_TYPE")
	v.BindEnv("chart.dpi", "MGCHART_DPI")
	v.BindEnv("chart.viewer", "MGCHART_VIEWER")
	v.BindEnv("log.dir", "MGCHART_LOG_DIR")
	v.BindEnv("log.level", "MGCHART_LOG_LEVEL")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("chart.dir", ".")
	v.SetDefault("chart.file_type", "png")
	v.SetDefault("chart.dpi", 300)
	v.SetDefault("chart.figsize", []float64{9.0, 4.5})
	v.SetDefault("chart.viewer", "")
	v.SetDefault("chart.viewer_timeout", 30*time.Second)

	v.SetDefault("lines.narrow", 0.75)
	v.SetDefault("lines.normal", 1.0)
	v.SetDefault("lines.wide", 2.0)

	v.SetDefault("bars.width", 0.8)

	v.SetDefault("legend.loc", "best")
	v.SetDefault("legend.fontsize", "small")

	v.SetDefault("log.dir", "")
	v.SetDefault("log.level", "info")
}

// flagKeys maps flag names to config keys for the flags the CLI exposes.
var flagKeys = map[string]string{
	"chart-dir": "chart.dir",
	"file-type": "chart.file_type",
	"dpi":       "chart.dpi",
	"viewer":    "chart.viewer",
	"log-dir":   "log.dir",
	"log-level": "log.level",
}

// RegisterFlags adds the persistent config flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("chart-dir", ".", "Directory charts are written to (env: MGCHART_CHART_DIR)")
	fs.String("file-type", "png", "Image format: png, jpg, tif, svg, pdf or eps (env: MGCHART_FILE_TYPE)")
	fs.Int("dpi", 300, "Raster resolution in dots per inch (env: MGCHART_DPI)")
	fs.String("viewer", "", "Command used to display charts (env: MGCHART_VIEWER)")
	fs.String("log-dir", "", "Directory for mgchart.log, empty disables file logging (env: MGCHART_LOG_DIR)")
	fs.String("log-level", "info", "Log level: debug, info, warn, error (env: MGCHART_LOG_LEVEL)")
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

var supportedFileTypes = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "tif": true, "tiff": true,
	"svg": true, "pdf": true, "eps": true,
}

// SupportedFileType reports whether charts can be written as ext.
func SupportedFileType(ext string) bool {
	return supportedFileTypes[strings.ToLower(ext)]
}

func validateConfig(cfg *Config) error {
	if !SupportedFileType(cfg.Chart.FileType) {
		return fmt.Errorf("unsupported chart.file_type %q", cfg.Chart.FileType)
	}
	if cfg.Chart.DPI <= 0 {
		return fmt.Errorf("chart.dpi must be positive, got %d", cfg.Chart.DPI)
	}
	if len(cfg.Chart.FigSize) != 2 || cfg.Chart.FigSize[0] <= 0 || cfg.Chart.FigSize[1] <= 0 {
		return fmt.Errorf("chart.figsize must be two positive numbers, got %v", cfg.Chart.FigSize)
	}
	if cfg.Bars.Width <= 0 || cfg.Bars.Width > 1 {
		return fmt.Errorf("bars.width must be in (0, 1], got %v", cfg.Bars.Width)
	}
	if cfg.Chart.Dir == "" {
		cfg.Chart.Dir = "."
	}
	return nil
}
