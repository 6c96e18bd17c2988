package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/xdsmgen/pkg/errors"
	"github.com/matzehuels/xdsmgen/pkg/pipeline"
)

// configNames are looked up, in order, in the working directory and then in
// the config directory.
var configNames = []string{appName + ".toml", appName + ".yaml", appName + ".yml"}

// loadConfig reads pipeline options from path. With an empty path the
// default locations are searched and a missing file yields zero options.
// It returns the file actually read, if any.
func loadConfig(path string, logger *log.Logger) (pipeline.Options, string, error) {
	var opts pipeline.Options
	if path == "" {
		path = findConfig()
		if path == "" {
			return opts, "", nil
		}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return opts, "", errors.New(errors.ErrCodeFileNotFound, "config file not found: %s", path)
		}
		return opts, "", errors.Wrap(errors.ErrCodeInternal, err, "read config file")
	}

	if err := decodeConfig(path, raw, &opts, logger); err != nil {
		return opts, "", err
	}
	return opts, path, nil
}

func decodeConfig(path string, raw []byte, opts *pipeline.Options, logger *log.Logger) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := toml.Decode(string(raw), opts)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
		for _, key := range md.Undecoded() {
			logger.Warn("unknown config key", "file", path, "key", key.String())
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		if err := dec.Decode(opts); err != nil && err != io.EOF {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(opts); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	default:
		return errors.InvalidConfig("unsupported config file type %q (use .toml, .yaml or .json)", ext)
	}
	return nil
}

func findConfig() string {
	dirs := []string{"."}
	if dir, err := configDir(); err == nil {
		dirs = append(dirs, dir)
	}
	for _, dir := range dirs {
		for _, name := range configNames {
			p := filepath.Join(dir, name)
			if info, err := os.Stat(p); err == nil && !info.IsDir() {
				return p
			}
		}
	}
	return ""
}
