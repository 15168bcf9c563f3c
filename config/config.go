package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// FileConfig mirrors the command-line inputs so a tap definition can live in
// a YAML file. Values given on the command line take precedence; see Overlay.
type FileConfig struct {
	Owner       string `yaml:"owner"`
	Tap         string `yaml:"tap"`
	RepoName    string `yaml:"repoName"`
	Visibility  string `yaml:"visibility"`
	Branch      string `yaml:"branch"`
	FormulaMode string `yaml:"formulaMode"`
	FormulaURL  string `yaml:"formulaURL"`
	FormulaName string `yaml:"formulaName"`
}

// Loader handles loading and parsing of a FileConfig from a file.
type Loader struct {
	filePath string
}

// NewLoader creates a new configuration loader for the given file path.
func NewLoader(filePath string) *Loader {
	return &Loader{filePath: filePath}
}

// Load reads the configuration file and unmarshals it into a FileConfig.
func (l *Loader) Load() (*FileConfig, error) {
	if l.filePath == "" {
		return nil, errors.New("configuration file path is empty")
	}
	content, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file '%s'", l.filePath)
	}
	if len(content) == 0 {
		return nil, errors.Errorf("configuration file '%s' is empty", l.filePath)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal config YAML from '%s'", l.filePath)
	}
	return &cfg, nil
}

// Overlay applies command-line values over the file values and returns the
// result. Empty command-line values keep the file value.
func (c *FileConfig) Overlay(flags FileConfig) FileConfig {
	merged := *c
	if flags.Owner != "" {
		merged.Owner = flags.Owner
	}
	if flags.Tap != "" {
		merged.Tap = flags.Tap
	}
	if flags.RepoName != "" {
		merged.RepoName = flags.RepoName
	}
	if flags.Visibility != "" {
		merged.Visibility = flags.Visibility
	}
	if flags.Branch != "" {
		merged.Branch = flags.Branch
	}
	if flags.FormulaMode != "" {
		merged.FormulaMode = flags.FormulaMode
	}
	if flags.FormulaURL != "" {
		merged.FormulaURL = flags.FormulaURL
	}
	if flags.FormulaName != "" {
		merged.FormulaName = flags.FormulaName
	}
	return merged
}
