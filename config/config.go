package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"os/user"
	"path/filepath"
	"reflect"

	"github.com/creasty/defaults"
)

// Version is filled at compile time with the git version of iptrack
var Version = "undefined"

// ExactVersion is filled at compile time with the git commit of iptrack
var ExactVersion = "undefined"

// systemConfigPath is consulted when no user config exists
var systemConfigPath = "/etc/iptrack/config.yaml"

type (
	//Config holds the configuration for the running system
	Config struct {
		R RunningCfg
		S StaticCfg
		T TableCfg
	}
)

// LoadConfig builds the configuration in order of precedence: the given
// path, the user's ~/.iptrack/config.yaml, the system config, and
// finally the built in defaults.
func LoadConfig(cfgPath string) (*Config, error) {
	config := &Config{}

	// Initialize table config to the default values
	if err := defaults.Set(&config.T); err != nil {
		return nil, err
	}

	// Initialize static config to the default values
	if err := defaults.Set(&config.S); err != nil {
		return nil, err
	}

	path, err := locateConfig(cfgPath)
	if err != nil {
		return nil, err
	}

	if path != "" {
		cfgFile, err := ioutil.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := parseStaticConfig(cfgFile, &config.S); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}
	config.S.Path = path

	// grab the version constants set by the build process
	config.S.Version = Version
	config.S.ExactVersion = ExactVersion

	// Use the static config to initialize the running config
	if err := initRunningConfig(&config.S, &config.R); err != nil {
		return nil, err
	}

	return config, nil
}

// locateConfig returns the config file to load. An explicitly requested
// file must exist, the fallback locations are optional.
func locateConfig(cfgPath string) (string, error) {
	if cfgPath != "" {
		if _, err := os.Stat(cfgPath); err != nil {
			return "", err
		}
		return cfgPath, nil
	}

	var candidates []string
	if usr, err := user.Current(); err == nil {
		candidates = append(candidates, filepath.Join(usr.HomeDir, ".iptrack", "config.yaml"))
	}
	candidates = append(candidates, systemConfigPath)

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", nil
}

// expandConfig expands environment variables in config strings
func expandConfig(reflected reflect.Value) {
	for i := 0; i < reflected.NumField(); i++ {
		f := reflected.Field(i)
		// process sub configs
		if f.Kind() == reflect.Struct {
			expandConfig(f)
		} else if f.Kind() == reflect.String {
			f.SetString(os.ExpandEnv(f.String()))
		} else if f.Kind() == reflect.Slice && f.Type().Elem().Kind() == reflect.String {
			strs := f.Interface().([]string)
			for i, str := range strs {
				strs[i] = os.ExpandEnv(str)
			}
			f.Set(reflect.ValueOf(strs))
		}
	}
}
