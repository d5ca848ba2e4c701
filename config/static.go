package config

import (
	"fmt"
	"path/filepath"
	"reflect"

	"github.com/activecm/iptrack/util"
	yaml "gopkg.in/yaml.v2"
)

type (
	//StaticCfg is the container for other static config sections
	StaticCfg struct {
		Lookup       LookupStaticCfg      `yaml:"Lookup"`
		GeoIP        GeoIPStaticCfg       `yaml:"GeoIP"`
		RemoteAPI    RemoteAPIStaticCfg   `yaml:"RemoteAPI"`
		PublicIP     PublicIPStaticCfg    `yaml:"PublicIP"`
		ReverseDNS   ReverseDNSStaticCfg  `yaml:"ReverseDNS"`
		ASN          ASNStaticCfg         `yaml:"ASN"`
		Whois        WhoisStaticCfg       `yaml:"Whois"`
		Traceroute   TracerouteStaticCfg  `yaml:"Traceroute"`
		Output       OutputStaticCfg      `yaml:"Output"`
		Display      DisplayStaticCfg     `yaml:"Display"`
		Log          LogStaticCfg         `yaml:"LogConfig"`
		MongoDB      MongoDBStaticCfg     `yaml:"MongoDB"`
		Blacklisted  BlacklistedStaticCfg `yaml:"BlackListed"`
		UserConfig   UserCfgStaticCfg     `yaml:"UserConfig"`
		Path         string               `yaml:"-"`
		Version      string
		ExactVersion string
	}

	//LookupStaticCfg lists the destinations offered by the menu
	LookupStaticCfg struct {
		Destinations []string `yaml:"Destinations" default:"[\"Italy\",\"Indonesia\",\"Japan\",\"United States\",\"France\",\"Korea\",\"Germany\",\"Turkey\",\"Kenya\"]"`
	}

	//GeoIPStaticCfg points at the offline GeoLite2 City database
	GeoIPStaticCfg struct {
		DatabasePath string `yaml:"DatabasePath" default:"GeoLite2-City.mmdb"`
	}

	//RemoteAPIStaticCfg controls the remote geolocation API
	RemoteAPIStaticCfg struct {
		Enabled           bool   `yaml:"Enabled" default:"true"`
		URL               string `yaml:"URL" default:"http://ip-api.com/json/{ip}?fields=66846719"`
		UserAgent         string `yaml:"UserAgent" default:"iptrack"`
		TimeoutSeconds    int    `yaml:"TimeoutSeconds" default:"10"`
		RequestsPerMinute int    `yaml:"RequestsPerMinute" default:"45"`
	}

	//PublicIPStaticCfg lists the providers raced to find our own address
	PublicIPStaticCfg struct {
		Providers      []string `yaml:"Providers" default:"[\"https://api.ipify.org?format=json\",\"https://ipinfo.io/json\",\"https://ifconfig.me/all.json\"]"`
		TimeoutSeconds int      `yaml:"TimeoutSeconds" default:"3"`
	}

	//ReverseDNSStaticCfg controls PTR lookups
	ReverseDNSStaticCfg struct {
		Enabled        bool `yaml:"Enabled" default:"true"`
		TimeoutSeconds int  `yaml:"TimeoutSeconds" default:"5"`
	}

	//ASNStaticCfg controls the Team Cymru ASN lookup
	ASNStaticCfg struct {
		Enabled bool `yaml:"Enabled" default:"true"`
	}

	//WhoisStaticCfg controls the WHOIS query
	WhoisStaticCfg struct {
		Enabled        bool   `yaml:"Enabled" default:"true"`
		Server         string `yaml:"Server"`
		TimeoutSeconds int    `yaml:"TimeoutSeconds" default:"10"`
	}

	//TracerouteStaticCfg controls the external traceroute process
	TracerouteStaticCfg struct {
		Enabled              bool   `yaml:"Enabled" default:"true"`
		Command              string `yaml:"Command"`
		MaxHops              int    `yaml:"MaxHops" default:"30"`
		TimeoutPerHopSeconds int    `yaml:"TimeoutPerHopSeconds" default:"3"`
	}

	//OutputStaticCfg controls where logs and exports are written
	OutputStaticCfg struct {
		Directory   string `yaml:"Directory" default:"ip_reports"`
		LogFile     string `yaml:"LogFile" default:"ip_tracker_logs.json"`
		MapProvider string `yaml:"MapProvider" default:"https://www.google.com/maps?q={lat},{lon}"`
	}

	//DisplayStaticCfg controls the terminal presentation
	DisplayStaticCfg struct {
		NoColor    bool `yaml:"NoColor"`
		ShowBanner bool `yaml:"ShowBanner" default:"true"`
		Progress   bool `yaml:"Progress" default:"true"`
	}

	//LogStaticCfg contains the configuration for logging
	LogStaticCfg struct {
		LogLevel  int    `yaml:"LogLevel" default:"2"`
		LogPath   string `yaml:"LogPath" default:"ip_reports/logs"`
		LogToFile bool   `yaml:"LogToFile" default:"true"`
		LogToDB   bool   `yaml:"LogToDB"`
	}

	//MongoDBStaticCfg contains the means for connecting to MongoDB
	MongoDBStaticCfg struct {
		ConnectionString string       `yaml:"ConnectionString"`
		AuthMechanism    string       `yaml:"AuthenticationMechanism"`
		SocketTimeout    int          `yaml:"SocketTimeout" default:"2"`
		TLS              TLSStaticCfg `yaml:"TLS"`
		Database         string       `yaml:"Database" default:"iptrack"`
		MirrorReports    bool         `yaml:"MirrorReports"`
	}

	//TLSStaticCfg contains the means for connecting to MongoDB over TLS
	TLSStaticCfg struct {
		Enabled           bool   `yaml:"Enable"`
		VerifyCertificate bool   `yaml:"VerifyCertificate"`
		CAFile            string `yaml:"CAFile"`
	}

	//BlacklistedStaticCfg is used to control the blacklist source
	BlacklistedStaticCfg struct {
		Enabled             bool     `yaml:"Enabled"`
		UseFeodo            bool     `yaml:"feodotracker.abuse.ch" default:"true"`
		BlacklistDatabase   string   `yaml:"BlacklistDatabase" default:"rita-bl"`
		IPBlacklists        []string `yaml:"CustomIPBlacklists"`
		FetchTimeoutSeconds int      `yaml:"FetchTimeoutSeconds" default:"30"`
	}

	//UserCfgStaticCfg holds per user settings
	UserCfgStaticCfg struct {
		UpdateCheckFrequency int `yaml:"UpdateCheckFrequency" default:"14"`
	}
)

// parseStaticConfig deserializes yaml data on top of the given config
func parseStaticConfig(cfgFile []byte, config *StaticCfg) error {
	err := yaml.Unmarshal(cfgFile, config)
	if err != nil {
		return err
	}

	// expand env variables, config is a pointer
	// so we have to call elem on the reflect value
	expandConfig(reflect.ValueOf(config).Elem())

	// clean all filepaths
	if config.GeoIP.DatabasePath != "" {
		config.GeoIP.DatabasePath = filepath.Clean(config.GeoIP.DatabasePath)
	}
	if config.Output.Directory != "" {
		config.Output.Directory = filepath.Clean(config.Output.Directory)

		// a missing directory is created on first write
		exists, err := util.Exists(config.Output.Directory)
		if err != nil {
			return err
		}
		if exists && !util.IsDir(config.Output.Directory) {
			return fmt.Errorf("output directory %s is not a directory", config.Output.Directory)
		}
	}
	if config.Log.LogPath != "" {
		config.Log.LogPath = filepath.Clean(config.Log.LogPath)
	}

	return nil
}
