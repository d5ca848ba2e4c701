package commands

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	"github.com/activecm/iptrack/config"
	"github.com/activecm/iptrack/resources"
	"github.com/blang/semver"
	"github.com/google/go-github/github"
	jsoniter "github.com/json-iterator/go"
	log "github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Strings used for informing the user of a new version.
var informFmtStr = "\nThere's a new %s version of iptrack %s available at:\nhttps://github.com/activecm/iptrack/releases\n"
var versions = []string{"Major", "Minor", "Patch"}

// updateStampFile records the last update check in the output directory
const updateStampFile = ".update_check.json"

// remoteTimeout bounds the GitHub request
const remoteTimeout = 5 * time.Second

type updateStamp struct {
	LastCheck time.Time `json:"last_check"`
	Newest    string    `json:"newest_version"`
}

// updateCheck returns a notice when a newer release than the running
// version is available, otherwise an empty string
func updateCheck(res *resources.Resources, now time.Time) string {
	return checkForUpdate(res.Config, res.Log, now, getRemoteVersion)
}

func checkForUpdate(conf *config.Config, logger *log.Logger, now time.Time,
	remote func() (semver.Version, error)) string {

	delta := conf.S.UserConfig.UpdateCheckFrequency
	if delta <= 0 {
		return ""
	}

	configVersion, err := semver.ParseTolerant(conf.S.Version)
	if err != nil {
		return ""
	}

	stampPath := filepath.Join(conf.S.Output.Directory, updateStampFile)
	stamp := readUpdateStamp(stampPath)
	newVersion, err := semver.ParseTolerant(stamp.Newest)
	if err != nil {
		newVersion = semver.Version{}
	}

	days := now.Sub(stamp.LastCheck).Hours() / 24

	if days > float64(delta) {
		newVersion, err = remote()
		if err != nil {
			logger.WithField("error", err.Error()).Debug("could not check for a new version")
			return ""
		}

		//Log checked version.
		logger.WithFields(log.Fields{
			"Message":         "Checking versions...",
			"LastUpdateCheck": now,
			"NewestVersion":   fmt.Sprint(newVersion),
		}).Info("Checking for new version")

		err = writeUpdateStamp(stampPath, updateStamp{LastCheck: now, Newest: newVersion.String()})
		if err != nil {
			logger.WithField("error", err.Error()).Warn("could not record the update check")
		}
	}

	if newVersion.GT(configVersion) {
		return informUser(configVersion, newVersion)
	}

	return ""
}

func readUpdateStamp(path string) updateStamp {
	var stamp updateStamp
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return stamp
	}
	if err := json.Unmarshal(data, &stamp); err != nil {
		return updateStamp{}
	}
	return stamp
}

func writeUpdateStamp(path string, stamp updateStamp) error {
	data, err := json.Marshal(stamp)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return ioutil.WriteFile(path, data, 0644)
}

// Returns the first index where v1 is greater than v2
func versionDiffIndex(v1 semver.Version, v2 semver.Version) int {

	if v1.Major > v2.Major {
		return 0
	}
	if v1.Minor > v2.Minor {
		return 1
	}

	return 2
}

func getRemoteVersion() (semver.Version, error) {
	ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
	defer cancel()

	client := github.NewClient(nil)
	release, _, err := client.Repositories.GetLatestRelease(ctx, "activecm", "iptrack")
	if err != nil {
		return semver.Version{}, err
	}
	return semver.ParseTolerant(release.GetTagName())
}

// Assembles a notice for the user informing them of an upgrade.
// The return value is printed regardless so, "" is returned on errror.
func informUser(local semver.Version, remote semver.Version) string {

	return fmt.Sprintf(informFmtStr,
		versions[versionDiffIndex(remote, local)],
		fmt.Sprint(remote))
}
