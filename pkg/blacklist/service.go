package blacklist

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/activecm/iptrack/config"
	ritaBL "github.com/activecm/rita-bl"
	ritaBLdb "github.com/activecm/rita-bl/database"
	"github.com/activecm/rita-bl/list"
	"github.com/activecm/rita-bl/sources/lists"
	log "github.com/sirupsen/logrus"
)

// UpdateLists refreshes the IP blacklists stored in MongoDB. Source reads
// the same collection during lookups. Failures of individual lists are
// logged and do not stop the others from updating.
func UpdateLists(conf *config.Config, logger *log.Logger) error {
	sources := ipLists(conf)
	if len(sources) == 0 {
		return fmt.Errorf("no blacklists are enabled")
	}

	handle, err := openListDB(conf)
	if err != nil {
		logger.WithFields(log.Fields{
			"db":    conf.S.Blacklisted.BlacklistDatabase,
			"error": err.Error(),
		}).Error("could not connect to blacklist database")
		return err
	}

	var failures int32
	bl := ritaBL.NewBlacklist(handle, func(err error) {
		atomic.AddInt32(&failures, 1)
		logger.WithFields(log.Fields{
			"db":    conf.S.Blacklisted.BlacklistDatabase,
			"error": err.Error(),
		}).Error("blacklist update failed")
	})
	bl.SetLists(sources...)
	bl.Update()

	failed := atomic.LoadInt32(&failures)
	logger.WithFields(log.Fields{
		"lists":    len(sources),
		"failures": failed,
	}).Info("blacklists updated")
	if failed > 0 {
		return fmt.Errorf("%d blacklist errors, see the log for details", failed)
	}
	return nil
}

// openListDB dials the rita-bl database, verifying TLS when configured
func openListDB(conf *config.Config) (ritaBLdb.Handle, error) {
	if conf.S.MongoDB.TLS.Enabled {
		return ritaBLdb.NewSecureMongoDB(
			conf.S.MongoDB.ConnectionString,
			conf.R.MongoDB.AuthMechanismParsed,
			conf.S.Blacklisted.BlacklistDatabase,
			conf.R.MongoDB.TLS.TLSConfig,
		)
	}
	return ritaBLdb.NewMongoDB(
		conf.S.MongoDB.ConnectionString,
		conf.R.MongoDB.AuthMechanismParsed,
		conf.S.Blacklisted.BlacklistDatabase,
	)
}

// ipLists returns the enabled lists. Only IP lists are loaded since
// lookups never consult hostnames.
func ipLists(conf *config.Config) []list.List {
	var out []list.List
	if conf.S.Blacklisted.UseFeodo {
		out = append(out, lists.NewFeodoList())
	}

	fetch := newFetcher(time.Duration(conf.S.Blacklisted.FetchTimeoutSeconds) * time.Second)
	for _, location := range conf.S.Blacklisted.IPBlacklists {
		out = append(out, lists.NewLineSeparatedList(
			list.BlacklistedIPType,
			location,
			0, // always reload
			fetch.opener(location),
		))
	}
	return out
}

// fetcher reads custom lists from disk or over HTTP
type fetcher struct {
	client *http.Client
}

func newFetcher(timeout time.Duration) *fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &fetcher{client: &http.Client{Timeout: timeout}}
}

// opener treats location as a file path when it exists, otherwise as a URL
func (f *fetcher) opener(location string) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		if _, err := os.Stat(location); err == nil {
			return os.Open(location)
		}
		resp, err := f.client.Get(location)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetching %s: %s", location, resp.Status)
		}
		return resp.Body, nil
	}
}
