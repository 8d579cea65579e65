package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	ServiceConfig struct {
		URL        string       `yaml:"url" validate:"required,url"`
		Token      SecretString `yaml:"token"`
		TimeoutSec int          `yaml:"timeout_sec" validate:"min=1,max=600"`
	}

	ChunkingConfig struct {
		BatchSize       int `yaml:"batch_size" validate:"min=1,max=1000"`
		SplitAboveBytes int `yaml:"split_above_bytes" validate:"min=4096"`
	}

	PreviewConfig struct {
		MaxWidth    int `yaml:"max_width" validate:"min=100,max=4096"`
		JPEGQuality int `yaml:"jpeg_quality" validate:"min=40,max=100"`
	}

	DocumentConfig struct {
		SnapshotPath          string        `yaml:"snapshot_path,omitempty" sanitize:"path_clean" validate:"omitempty,filepath"`
		SavePath              string        `yaml:"save_path,omitempty" sanitize:"path_clean" validate:"omitempty,filepath"`
		DuplicateNameTemplate string        `yaml:"duplicate_name_template"`
		Preview               PreviewConfig `yaml:"preview"`
	}

	TranslationConfig struct {
		SourceLang  string   `yaml:"source_lang" validate:"required"`
		Languages   []string `yaml:"languages" validate:"required,min=1,dive,required"`
		AutoApprove bool     `yaml:"auto_approve"`
		XLIFFDir    string   `yaml:"xliff_dir,omitempty" sanitize:"path_clean" validate:"omitempty,dirpath|filepath"`
	}

	CacheConfig struct {
		Enable bool   `yaml:"enable"`
		Path   string `yaml:"path,omitempty" sanitize:"path_clean,assure_dir_exists_for_file" validate:"omitempty,filepath"`
	}

	Config struct {
		Version     int               `yaml:"version" validate:"eq=1"`
		Service     ServiceConfig     `yaml:"service"`
		Chunking    ChunkingConfig    `yaml:"chunking"`
		Translation TranslationConfig `yaml:"translation"`
		Document    DocumentConfig    `yaml:"document"`
		Cache       CacheConfig       `yaml:"cache"`
		Logging     LoggingConfig     `yaml:"logging"`
		Reporting   ReporterConfig    `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above, alternative is to use struct
	// field name and reflection which I want to avoid for now
	DuplicateNameTemplateFieldName TemplateFieldName = "duplicate_name_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(DuplicateNameTemplateFieldName)),
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
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration tamplate to provide
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
