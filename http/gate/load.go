package gate

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig decodes a YAML document into a Config.
// Keys absent from the document keep their DefaultConfig values;
// a list that is present replaces the default list entirely.
//
// An empty document yields DefaultConfig.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	err := yaml.NewDecoder(r).Decode(&cfg)
	if errors.Is(err, io.EOF) {
		return DefaultConfig(), nil
	}

	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrBadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadConfigFile calls LoadConfig on the file found at fp.
func LoadConfigFile(fp string) (Config, error) {
	f, err := os.Open(fp)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrBadConfig, err)
	}
	defer f.Close()

	return LoadConfig(f)
}
