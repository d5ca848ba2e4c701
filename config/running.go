package config

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io/ioutil"
	"time"

	"github.com/activecm/mgosec"
	"github.com/blang/semver"
)

type (
	//RunningCfg holds configuration options that are parsed at run time
	RunningCfg struct {
		MongoDB  MongoDBRunningCfg
		Timeouts TimeoutRunningCfg
		Version  semver.Version
	}

	//MongoDBRunningCfg holds parsed information for connecting to MongoDB
	MongoDBRunningCfg struct {
		Enabled             bool
		AuthMechanismParsed mgosec.AuthMechanism
		SocketTimeout       time.Duration
		TLS                 struct {
			TLSConfig *tls.Config
		}
	}

	//TimeoutRunningCfg holds the per source timeouts
	TimeoutRunningCfg struct {
		RemoteAPI        time.Duration
		PublicIP         time.Duration
		ReverseDNS       time.Duration
		Whois            time.Duration
		TraceroutePerHop time.Duration
	}
)

// initRunningConfig uses data in the static config initialize
// the passed in running config
func initRunningConfig(static *StaticCfg, running *RunningCfg) error {
	running.Timeouts = TimeoutRunningCfg{
		RemoteAPI:        seconds(static.RemoteAPI.TimeoutSeconds, 10),
		PublicIP:         seconds(static.PublicIP.TimeoutSeconds, 3),
		ReverseDNS:       seconds(static.ReverseDNS.TimeoutSeconds, 5),
		Whois:            seconds(static.Whois.TimeoutSeconds, 10),
		TraceroutePerHop: seconds(static.Traceroute.TimeoutPerHopSeconds, 3),
	}

	running.MongoDB.Enabled = static.MongoDB.ConnectionString != ""
	// the socket timeout is configured in hours
	running.MongoDB.SocketTimeout = time.Duration(static.MongoDB.SocketTimeout) * time.Hour

	//parse the tls configuration
	if static.MongoDB.TLS.Enabled {
		tlsConf := &tls.Config{}
		if !static.MongoDB.TLS.VerifyCertificate {
			tlsConf.InsecureSkipVerify = true
		}
		if len(static.MongoDB.TLS.CAFile) > 0 {
			pem, err := ioutil.ReadFile(static.MongoDB.TLS.CAFile)
			if err != nil {
				return fmt.Errorf("could not read MongoDB CA file: %w", err)
			}
			tlsConf.RootCAs = x509.NewCertPool()
			tlsConf.RootCAs.AppendCertsFromPEM(pem)
		}
		running.MongoDB.TLS.TLSConfig = tlsConf
	}

	//parse out the mongo authentication mechanism
	authMechanism, err := mgosec.ParseAuthMechanism(
		static.MongoDB.AuthMechanism,
	)
	if err != nil {
		authMechanism = mgosec.None
		fmt.Println("[!] Could not parse MongoDB authentication mechanism")
	}
	running.MongoDB.AuthMechanismParsed = authMechanism

	running.Version, err = semver.ParseTolerant(static.Version)
	if err != nil {
		// development builds carry no version information
		running.Version = semver.Version{}
	}
	return nil
}

func seconds(value int, fallback int) time.Duration {
	if value <= 0 {
		value = fallback
	}
	return time.Duration(value) * time.Second
}
