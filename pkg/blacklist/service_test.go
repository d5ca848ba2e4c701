package blacklist

import (
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/activecm/iptrack/config"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPLists(t *testing.T) {
	conf, err := config.LoadTestingConfig(t.TempDir())
	require.NoError(t, err)

	conf.S.Blacklisted.UseFeodo = true
	conf.S.Blacklisted.IPBlacklists = []string{"a.txt", "b.txt"}
	assert.Len(t, ipLists(conf), 3)

	conf.S.Blacklisted.UseFeodo = false
	assert.Len(t, ipLists(conf), 2)

	conf.S.Blacklisted.IPBlacklists = nil
	assert.Len(t, ipLists(conf), 0)
}

func TestUpdateListsNothingEnabled(t *testing.T) {
	conf, err := config.LoadTestingConfig(t.TempDir())
	require.NoError(t, err)
	conf.S.Blacklisted.UseFeodo = false
	conf.S.Blacklisted.IPBlacklists = nil

	logger, _ := test.NewNullLogger()
	assert.Error(t, UpdateLists(conf, logger))
}

func TestOpenerReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.txt")
	require.NoError(t, ioutil.WriteFile(path, []byte("1.2.3.4\n"), 0644))

	rc, err := newFetcher(time.Second).opener(path)()
	require.NoError(t, err)
	defer rc.Close()
	data, err := ioutil.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "1.2.3.4\n", string(data))

	_, err = newFetcher(time.Second).opener(filepath.Join(os.TempDir(), "definitely-missing", "x"))()
	assert.Error(t, err)
}

func TestOpenerReadsURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, "5.6.7.8\n")
	}))
	defer server.Close()

	fetch := newFetcher(time.Second)
	rc, err := fetch.opener(server.URL + "/list")()
	require.NoError(t, err)
	defer rc.Close()
	data, err := ioutil.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "5.6.7.8\n", string(data))

	_, err = fetch.opener(server.URL + "/missing")()
	assert.Error(t, err)
}
