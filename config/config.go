package config

import (
	"image/color"
	"strings"

	"github.com/LdDl/blobtrack/detector"
	"github.com/LdDl/blobtrack/mot"
	"github.com/LdDl/blobtrack/render"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// ErrInvalid is returned when configuration values are out of range
var ErrInvalid = errors.New("invalid configuration")

// EnvPrefix is prefix of environment variables overriding configuration keys.
// E.g. BLOBTRACK_TRACKER_MAX_DISTANCE overrides tracker.max_distance
const EnvPrefix = "BLOBTRACK"

type VideoConfig struct {
	Path string `mapstructure:"path"`
	// Camera index. Negative value means Path is used
	Camera int `mapstructure:"camera"`
}

type TrackerConfig struct {
	MaxDistance      float64 `mapstructure:"max_distance"`
	MaxHistoryLength int     `mapstructure:"max_history_length"`
	NextObjectID     int     `mapstructure:"next_object_id"`
	MaxTrackLen      int     `mapstructure:"max_track_len"`
	Matcher          string  `mapstructure:"matcher"`
}

type DetectorConfig struct {
	MinSize       float64   `mapstructure:"min_size"`
	HSVLower      []float64 `mapstructure:"hsv_lower"`
	HSVUpper      []float64 `mapstructure:"hsv_upper"`
	ApproxEpsilon float64   `mapstructure:"approx_epsilon"`
	Circularity   float64   `mapstructure:"circularity"`
}

type RenderConfig struct {
	Thickness int     `mapstructure:"thickness"`
	Radius    int     `mapstructure:"radius"`
	FontScale float64 `mapstructure:"font_scale"`
	// RGB components of trajectories and labels
	Color []uint8 `mapstructure:"color"`
}

type DisplayConfig struct {
	Enabled bool `mapstructure:"enabled"`
	DelayMs int  `mapstructure:"delay_ms"`
}

// OutputConfig lists optional outputs. Empty path disables the output
type OutputConfig struct {
	Video  string `mapstructure:"video"`
	CSV    string `mapstructure:"csv"`
	Plot   string `mapstructure:"plot"`
	SQLite string `mapstructure:"sqlite"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// Config is the application configuration
type Config struct {
	Video    VideoConfig    `mapstructure:"video"`
	Tracker  TrackerConfig  `mapstructure:"tracker"`
	Detector DetectorConfig `mapstructure:"detector"`
	Render   RenderConfig   `mapstructure:"render"`
	Display  DisplayConfig  `mapstructure:"display"`
	Output   OutputConfig   `mapstructure:"output"`
	HTTP     HTTPConfig     `mapstructure:"http"`
}

func setDefaults(v *viper.Viper) {
	detectorDefaults := detector.DefaultConfig()
	renderDefaults := render.DefaultConfig()

	v.SetDefault("video.path", "data/luxonis_task_video.mp4")
	v.SetDefault("video.camera", -1)

	v.SetDefault("tracker.max_distance", mot.DefaultMaxDistance)
	v.SetDefault("tracker.max_history_length", mot.DefaultMaxHistoryLength)
	v.SetDefault("tracker.next_object_id", mot.DefaultNextObjectID)
	v.SetDefault("tracker.max_track_len", 0)
	v.SetDefault("tracker.matcher", mot.MatchingAlgorithmGreedy.String())

	v.SetDefault("detector.min_size", detectorDefaults.MinSize)
	v.SetDefault("detector.hsv_lower", detectorDefaults.HSVLower[:])
	v.SetDefault("detector.hsv_upper", detectorDefaults.HSVUpper[:])
	v.SetDefault("detector.approx_epsilon", detectorDefaults.ApproxEpsilon)
	v.SetDefault("detector.circularity", detectorDefaults.CircularityThreshold)

	v.SetDefault("render.thickness", renderDefaults.Thickness)
	v.SetDefault("render.radius", renderDefaults.MarkerRadius)
	v.SetDefault("render.font_scale", renderDefaults.FontScale)
	v.SetDefault("render.color", []uint8{renderDefaults.Color.R, renderDefaults.Color.G, renderDefaults.Color.B})

	v.SetDefault("display.enabled", true)
	v.SetDefault("display.delay_ms", 6)

	v.SetDefault("output.video", "")
	v.SetDefault("output.csv", "")
	v.SetDefault("output.plot", "")
	v.SetDefault("output.sqlite", "")

	v.SetDefault("http.addr", "")
}

// New returns viper instance with defaults and environment overrides registered
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration file (YAML by default) and applies environment overrides.
// When path is empty "config.yaml" in the working directory is used if it exists
func Load(path string) (*Config, error) {
	v := New()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "can't read config '%s'", path)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, errors.Wrap(err, "can't read config")
			}
		}
	}
	return FromViper(v)
}

// FromViper decodes and validates configuration
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "can't decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges
func (cfg *Config) Validate() error {
	if cfg.Tracker.MaxDistance <= 0 {
		return errors.Wrapf(ErrInvalid, "tracker.max_distance must be positive, got %v", cfg.Tracker.MaxDistance)
	}
	if cfg.Tracker.MaxHistoryLength < 0 {
		return errors.Wrapf(ErrInvalid, "tracker.max_history_length must be non-negative, got %d", cfg.Tracker.MaxHistoryLength)
	}
	if cfg.Tracker.NextObjectID < 1 {
		return errors.Wrapf(ErrInvalid, "tracker.next_object_id must be at least 1, got %d", cfg.Tracker.NextObjectID)
	}
	if cfg.Tracker.MaxTrackLen < 0 {
		return errors.Wrapf(ErrInvalid, "tracker.max_track_len must be non-negative, got %d", cfg.Tracker.MaxTrackLen)
	}
	if _, err := mot.MatcherByName(cfg.Tracker.Matcher); err != nil {
		return errors.Wrap(ErrInvalid, err.Error())
	}
	if len(cfg.Detector.HSVLower) != 3 || len(cfg.Detector.HSVUpper) != 3 {
		return errors.Wrap(ErrInvalid, "detector.hsv_lower and detector.hsv_upper must have 3 components")
	}
	if len(cfg.Render.Color) != 3 {
		return errors.Wrap(ErrInvalid, "render.color must have 3 components")
	}
	if cfg.Display.DelayMs < 1 {
		return errors.Wrapf(ErrInvalid, "display.delay_ms must be positive, got %d", cfg.Display.DelayMs)
	}
	if cfg.Video.Path == "" && cfg.Video.Camera < 0 {
		return errors.Wrap(ErrInvalid, "either video.path or video.camera must be set")
	}
	return nil
}

// TrackerOptions converts configuration into tracker parameters
func (cfg *Config) TrackerOptions() (mot.TrackerConfig, error) {
	matcher, err := mot.MatcherByName(cfg.Tracker.Matcher)
	if err != nil {
		return mot.TrackerConfig{}, err
	}
	return mot.TrackerConfig{
		MaxDistance:      cfg.Tracker.MaxDistance,
		MaxHistoryLength: cfg.Tracker.MaxHistoryLength,
		MaxTrackLen:      cfg.Tracker.MaxTrackLen,
		Matcher:          matcher,
	}, nil
}

// DetectorOptions converts configuration into detector parameters
func (cfg *Config) DetectorOptions() detector.Config {
	options := detector.Config{
		MinSize:              cfg.Detector.MinSize,
		ApproxEpsilon:        cfg.Detector.ApproxEpsilon,
		CircularityThreshold: cfg.Detector.Circularity,
	}
	copy(options.HSVLower[:], cfg.Detector.HSVLower)
	copy(options.HSVUpper[:], cfg.Detector.HSVUpper)
	return options
}

// RenderOptions converts configuration into renderer parameters
func (cfg *Config) RenderOptions() render.Config {
	options := render.DefaultConfig()
	options.Thickness = cfg.Render.Thickness
	options.MarkerRadius = cfg.Render.Radius
	options.FontScale = cfg.Render.FontScale
	if len(cfg.Render.Color) == 3 {
		options.Color = color.RGBA{R: cfg.Render.Color[0], G: cfg.Render.Color[1], B: cfg.Render.Color[2], A: 0}
	}
	return options
}
