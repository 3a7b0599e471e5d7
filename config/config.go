package config

import (
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/turboprint/turboprint/core"
	"github.com/turboprint/turboprint/logger"
)

// DefaultMaxSize is the per-file byte bound applied to file handlers
// that do not set max_size.
const DefaultMaxSize = 10 << 20

// loggerSpec is the declarative shape of one logger.
type loggerSpec struct {
	Name      string         `koanf:"name"`
	Prefix    string         `koanf:"prefix"`
	Level     string         `koanf:"level"`
	Propagate *bool          `koanf:"propagate"`
	Formatter *formatterSpec `koanf:"formatter"`
	Handlers  []handlerSpec  `koanf:"handlers"`
	Filters   []filterSpec   `koanf:"filters"`
}

type formatterSpec struct {
	Type     string `koanf:"type"`
	Template string `koanf:"template"`
}

type handlerSpec struct {
	Type          string         `koanf:"type"`
	FileDirectory string         `koanf:"file_directory"`
	FileName      string         `koanf:"file_name"`
	MaxSize       int64          `koanf:"max_size"`
	MaxLines      int64          `koanf:"max_lines"`
	BackupCount   int            `koanf:"backup_count"`
	When          string         `koanf:"when"`
	Interval      int            `koanf:"interval"`
	Compress      bool           `koanf:"compress"`
	Formatter     *formatterSpec `koanf:"formatter"`
	Filters       []filterSpec   `koanf:"filters"`
}

type filterSpec struct {
	Type    string       `koanf:"type"`
	Level   string       `koanf:"level"`
	Pattern string       `koanf:"pattern"`
	Invert  bool         `koanf:"invert"`
	Start   string       `koanf:"start"`
	End     string       `koanf:"end"`
	Module  string       `koanf:"module"`
	Mode    string       `koanf:"mode"`
	Filters []filterSpec `koanf:"filters"`
}

// Build configures loggers in the registry from an already-parsed
// map: either one logger spec at the top level, or a list under the
// "loggers" key. Unknown type values are configuration errors.
func Build(registry *logger.Registry, m map[string]interface{}) error {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(m, "."), nil); err != nil {
		return core.NewConfigurationError("loading config map: %v", err)
	}
	return apply(registry, k)
}

// Load reads a YAML file and configures loggers from it.
func Load(registry *logger.Registry, path string) error {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return core.NewConfigurationError("loading config file %q: %v", path, err)
	}
	return apply(registry, k)
}

func apply(registry *logger.Registry, k *koanf.Koanf) error {
	if k.Exists("loggers") {
		var specs []loggerSpec
		if err := k.Unmarshal("loggers", &specs); err != nil {
			return core.NewConfigurationError("invalid loggers section: %v", err)
		}
		for _, spec := range specs {
			if err := applySpec(registry, spec); err != nil {
				return err
			}
		}
		return nil
	}

	var spec loggerSpec
	if err := k.Unmarshal("", &spec); err != nil {
		return core.NewConfigurationError("invalid logger config: %v", err)
	}
	return applySpec(registry, spec)
}

func applySpec(registry *logger.Registry, spec loggerSpec) error {
	var l *logger.Logger
	if spec.Name == "" {
		l = registry.Root()
	} else {
		l = registry.GetOrCreate(spec.Name)
	}

	if spec.Prefix != "" {
		l.SetPrefix(spec.Prefix)
	}
	if spec.Level != "" {
		level, err := core.ParseLevel(spec.Level)
		if err != nil {
			return err
		}
		l.SetLevel(level)
	}
	if spec.Propagate != nil {
		l.SetPropagate(*spec.Propagate)
	}
	if spec.Formatter != nil {
		f, err := buildFormatter(*spec.Formatter)
		if err != nil {
			return err
		}
		l.SetFormatter(f)
	}
	for _, fs := range spec.Filters {
		f, err := buildFilter(fs)
		if err != nil {
			return err
		}
		l.AddFilter(f)
	}
	for _, hs := range spec.Handlers {
		h, err := buildHandler(hs)
		if err != nil {
			return err
		}
		l.AddHandler(h)
	}
	return nil
}
