// Package config loads the application configuration.
package config

import (
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-yolo/detector"
	"github.com/nvr-ai/go-yolo/inference/providers"
	"github.com/nvr-ai/go-yolo/logger"
	"github.com/nvr-ai/go-yolo/models"
	"github.com/nvr-ai/go-yolo/models/model"
)

// EnvPrefix marks environment overrides, e.g. CFG_DETECTOR_DECODER_MAXBOXES=10.
const EnvPrefix = "CFG_"

// RuntimeConfig configures the onnxruntime session.
type RuntimeConfig struct {
	// SharedLibPath is the onnxruntime library. Empty picks the platform default.
	SharedLibPath string           `koanf:"sharedlibpath"`
	Provider      providers.Config `koanf:"provider"`
}

// AppConfig is the full application configuration.
type AppConfig struct {
	Model    model.NewModelArgs `koanf:"model"`
	Detector detector.Config    `koanf:"detector"`
	Runtime  RuntimeConfig      `koanf:"runtime"`
	Log      logger.Config      `koanf:"log"`
}

// Config is the global configuration populated by Init.
var Config AppConfig

func defaults() map[string]any {
	d := detector.DefaultConfig()
	p := providers.DefaultConfig()
	return map[string]any{
		"model.name":                           string(model.ModelNameTinyYOLOv2VOC),
		"detector.decoder.confidencethreshold": d.Decoder.ConfidenceThreshold,
		"detector.decoder.maxboxes":            d.Decoder.MaxBoxes,
		"detector.decoder.overlapthreshold":    d.Decoder.OverlapThreshold,
		"detector.decoder.numworkers":          d.Decoder.NumWorkers,
		"detector.input.filter":                string(d.Input.Filter),
		"detector.input.scale":                 string(d.Input.Scale),
		"detector.input.colormode":             string(d.Input.ColorMode),
		"runtime.provider.provider":            string(p.Provider),
		"runtime.provider.intraopnumthreads":   p.IntraOpNumThreads,
		"runtime.provider.interopnumthreads":   p.InterOpNumThreads,
		"log.output":                           "stderr",
	}
}

// Load reads defaults, then the yaml file at filePath (skipped when empty),
// then CFG_ environment overrides.
//
// Arguments:
//   - filePath: The yaml configuration file, or "".
//
// Returns:
//   - AppConfig: The validated configuration.
//   - error: A load, parse or validation error.
func Load(filePath string) (AppConfig, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return AppConfig{}, errors.Wrap(err, "failed to load defaults")
	}

	if filePath != "" {
		if err := k.Load(file.Provider(filePath), yaml.Parser()); err != nil {
			return AppConfig{}, errors.Wrapf(err, "failed to load %s", filePath)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(s string, v string) (string, any) {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
		if strings.Contains(v, ",") {
			return key, strings.Split(strings.TrimSpace(v), ",")
		}
		return key, v
	}), nil); err != nil {
		return AppConfig{}, errors.Wrap(err, "failed to load environment")
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return AppConfig{}, errors.Wrap(err, "failed to unmarshal config")
	}

	if err := ValidateConfig(&cfg); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

// Init loads the configuration into Config.
func Init(filePath string) error {
	cfg, err := Load(filePath)
	if err != nil {
		return err
	}
	Config = cfg
	return nil
}

// ValidateConfig checks the model name, thresholds and runtime provider, and
// normalizes the provider name.
func ValidateConfig(cfg *AppConfig) error {
	m, err := models.NewModel(cfg.Model)
	if err != nil {
		return err
	}

	if _, err := m.NewDecoder(cfg.Detector.Decoder); err != nil {
		return err
	}

	provider, err := providers.ParseProvider(string(cfg.Runtime.Provider.Provider))
	if err != nil {
		return err
	}
	cfg.Runtime.Provider.Provider = provider

	switch cfg.Log.Output {
	case "stdout", "stderr":
	default:
		return errors.Errorf("log output must be stdout or stderr, got %q", cfg.Log.Output)
	}

	return nil
}
