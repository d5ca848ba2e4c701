package config

import (
	"github.com/creasty/defaults"
)

const testConfig = `
GeoIP:
    DatabasePath: testdata/missing.mmdb
RemoteAPI:
    Enabled: true
    UserAgent: iptrack-test
    TimeoutSeconds: 2
    RequestsPerMinute: 600
PublicIP:
    TimeoutSeconds: 1
Traceroute:
    Enabled: false
Output:
    Directory: ip_reports_test
Display:
    NoColor: true
    ShowBanner: false
    Progress: false
LogConfig:
    LogLevel: 3
    LogToFile: false
    LogToDB: false
UserConfig:
    UpdateCheckFrequency: 0
`

// LoadTestingConfig loads the hard coded testing config. The output
// directory is replaced with outDir so tests never write into the
// working tree.
func LoadTestingConfig(outDir string) (*Config, error) {
	config := &Config{}

	// Initialize table config to the default values
	if err := defaults.Set(&config.T); err != nil {
		return nil, err
	}

	// Initialize static config to the default values
	if err := defaults.Set(&config.S); err != nil {
		return nil, err
	}

	// Deserialize the yaml file contents into the static config
	if err := parseStaticConfig([]byte(testConfig), &config.S); err != nil {
		return nil, err
	}

	if outDir != "" {
		config.S.Output.Directory = outDir
		config.S.Log.LogPath = outDir
	}

	config.S.Version = "v0.0.0+testing"
	config.S.ExactVersion = "v0.0.0+testing"

	// Use the static config to initialize the running config
	if err := initRunningConfig(&config.S, &config.R); err != nil {
		return nil, err
	}

	return config, nil
}
