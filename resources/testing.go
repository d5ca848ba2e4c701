package resources

import (
	"testing"

	"github.com/activecm/iptrack/config"
	"github.com/sirupsen/logrus/hooks/test"
)

// InitTestResources creates a resource bundle backed by the testing
// config. Output goes to a temporary directory and log entries are
// captured by the returned hook.
func InitTestResources(t *testing.T) (*Resources, *test.Hook) {
	conf, err := config.LoadTestingConfig(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	logger, hook := test.NewNullLogger()
	return &Resources{
		Config: conf,
		Log:    logger,
	}, hook
}
