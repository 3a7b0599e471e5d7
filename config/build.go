package config

import (
	"github.com/turboprint/turboprint/core"
	"github.com/turboprint/turboprint/filter"
	"github.com/turboprint/turboprint/formatter"
	"github.com/turboprint/turboprint/handler"
)

func buildFormatter(spec formatterSpec) (formatter.Formatter, error) {
	switch spec.Type {
	case "", "default":
		return formatter.NewTextFormatter(spec.Template), nil
	case "json":
		return &formatter.JSONFormatter{}, nil
	case "xml":
		return &formatter.XMLFormatter{}, nil
	case "yaml":
		return &formatter.YAMLFormatter{}, nil
	case "csv":
		return &formatter.CSVFormatter{}, nil
	case "html":
		return &formatter.HTMLFormatter{}, nil
	case "markdown":
		return &formatter.MarkdownFormatter{}, nil
	default:
		return nil, core.NewConfigurationError("unknown formatter type %q", spec.Type)
	}
}

func buildHandler(spec handlerSpec) (handler.Handler, error) {
	var override formatter.Formatter
	if spec.Formatter != nil {
		f, err := buildFormatter(*spec.Formatter)
		if err != nil {
			return nil, err
		}
		override = f
	}

	filters, err := buildFilters(spec.Filters)
	if err != nil {
		return nil, err
	}

	switch spec.Type {
	case "", "stream":
		return handler.NewConsoleHandler(handler.ConsoleConfig{
			Formatter: override,
			Filters:   filters,
		}), nil

	case "file", "size_rotating_file":
		maxSize := spec.MaxSize
		if maxSize == 0 {
			maxSize = DefaultMaxSize
		}
		name := spec.FileName
		if name == "" {
			name = "log_{index}.txt"
		}
		return handler.NewRotatingFileHandler(handler.RotatingFileConfig{
			Directory:        spec.FileDirectory,
			FilenameTemplate: name,
			MaxSize:          maxSize,
			MaxLines:         spec.MaxLines,
			Formatter:        override,
			Filters:          filters,
		})

	case "timed_rotating_file":
		var compressor handler.Compressor
		if spec.Compress {
			compressor = handler.NewGzipCompressor()
		}
		return handler.NewTimedRotatingFileHandler(handler.TimedRotatingFileConfig{
			Directory:        spec.FileDirectory,
			FilenameTemplate: spec.FileName,
			When:             handler.RotationUnit(spec.When),
			Interval:         spec.Interval,
			BackupCount:      spec.BackupCount,
			Compressor:       compressor,
			Formatter:        override,
			Filters:          filters,
		})

	default:
		return nil, core.NewConfigurationError("unknown handler type %q", spec.Type)
	}
}

func buildFilters(specs []filterSpec) ([]filter.Filter, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	out := make([]filter.Filter, 0, len(specs))
	for _, spec := range specs {
		f, err := buildFilter(spec)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func buildFilter(spec filterSpec) (filter.Filter, error) {
	switch spec.Type {
	case "level":
		level, err := core.ParseLevel(spec.Level)
		if err != nil {
			return nil, err
		}
		return filter.NewLevelFilter(level), nil

	case "regex":
		return filter.NewRegexFilter(spec.Pattern, spec.Invert)

	case "time":
		return filter.NewTimeFilter(spec.Start, spec.End)

	case "module":
		return filter.NewModuleFilter(spec.Module), nil

	case "composite":
		children, err := buildFilters(spec.Filters)
		if err != nil {
			return nil, err
		}
		mode := filter.Mode(spec.Mode)
		if mode == "" {
			mode = filter.And
		}
		if mode != filter.And && mode != filter.Or {
			return nil, core.NewConfigurationError("unknown composite mode %q", spec.Mode)
		}
		return filter.NewCompositeFilter(mode, children...), nil

	default:
		return nil, core.NewConfigurationError("unknown filter type %q", spec.Type)
	}
}
