package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"pandoc2hwpx/common"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	TOCConfig struct {
		Enable bool   `yaml:"enable"`
		Title  string `yaml:"title" validate:"required"`
	}

	LayoutConfig struct {
		PageTextWidth int `yaml:"page_text_width" validate:"gt=0"`
		CharHeight    int `yaml:"char_height" validate:"gt=0"`
		LineSpacing   int `yaml:"line_spacing" validate:"min=100,max=500"`
		RowHeight     int `yaml:"row_height" validate:"gt=0"`
	}

	ImagesConfig struct {
		DefaultSize int `yaml:"default_size" validate:"gt=0"`
	}

	// FontsConfig names font faces per HWPX language slot.
	FontsConfig struct {
		Hangul   string `yaml:"hangul" validate:"required"`
		Latin    string `yaml:"latin" validate:"required"`
		Hanja    string `yaml:"hanja" validate:"required"`
		Japanese string `yaml:"japanese" validate:"required"`
		Other    string `yaml:"other" validate:"required"`
		Symbol   string `yaml:"symbol" validate:"required"`
		User     string `yaml:"user" validate:"required"`
		Code     string `yaml:"code" validate:"required"`
	}

	DocumentConfig struct {
		TemplatePath          string            `yaml:"template_path" sanitize:"assure_file_access"`
		InputDir              string            `yaml:"input_dir"`
		OutputNameTemplate    string            `yaml:"output_name_template"`
		FileNameTransliterate bool              `yaml:"file_name_transliterate"`
		FixZip                bool              `yaml:"fix_zip"`
		TOC                   TOCConfig         `yaml:"toc"`
		Layout                LayoutConfig      `yaml:"layout"`
		Images                ImagesConfig      `yaml:"images"`
		Fonts                 FontsConfig       `yaml:"fonts"`
		Stderr                common.StderrMode `yaml:"stderr"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Document  DocumentConfig `yaml:"document"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above, alternative is to use struct
	// field name and reflection which I want to avoid for now
	OutputNameTemplateFieldName TemplateFieldName = "output_name_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(OutputNameTemplateFieldName)),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		// sanitize and validate what has been loaded
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, fmt.Errorf("failed to sanitize configuration: %w", err)
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, fmt.Errorf("failed to validate configuration: %w", err)
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
