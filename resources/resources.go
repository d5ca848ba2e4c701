package resources

import (
	"fmt"
	"os"

	"github.com/activecm/iptrack/config"
	"github.com/activecm/iptrack/database"
	log "github.com/sirupsen/logrus"
)

type (
	// Resources provides a data structure for passing system Resources
	Resources struct {
		Config *config.Config
		Log    *log.Logger
		// DB is nil unless MongoDB is configured and reachable
		DB *database.DB
	}
)

// InitResources grabs the configuration file and intitializes the configuration data
// returning a *Resources object which has all of the necessary configuration information
func InitResources(userConfig string) *Resources {
	conf, err := config.LoadConfig(userConfig)
	if err != nil {
		fmt.Fprintf(os.Stdout, "Failed to config: %s\n", err.Error())
		os.Exit(-1)
	}

	res, err := newResources(conf)
	if err != nil {
		fmt.Fprintf(os.Stdout, "Failed to start: %s\n", err.Error())
		os.Exit(-1)
	}
	return res
}

// newResources wires the logger and the optional database for conf
func newResources(conf *config.Config) (*Resources, error) {
	// Fire up the logging system
	log := initLogger(&conf.S.Log)

	if conf.S.Log.LogToFile {
		if err := addFileLogger(log, conf.S.Log.LogPath); err != nil {
			return nil, fmt.Errorf("could not create log directory: %w", err)
		}
	}

	r := &Resources{
		Config: conf,
		Log:    log,
	}

	if !conf.R.MongoDB.Enabled {
		return r, nil
	}

	// MongoDB is optional, lookups work without it
	db, err := database.NewDB(conf, log)
	if err != nil {
		fmt.Printf("\t[!] Failed to connect to database: %s\n", err.Error())
		log.WithField("error", err.Error()).Warn("continuing without MongoDB")
		return r, nil
	}
	r.DB = db

	//Begin logging to the database
	if conf.S.Log.LogToDB {
		err := addMongoLogger(log, db, conf.T.Log.LogTable)
		if err != nil {
			log.WithField("error", err.Error()).Warn("could not log to MongoDB")
		}
	}
	return r, nil
}

// Close releases the database session if one was opened
func (r *Resources) Close() {
	if r.DB != nil {
		r.DB.Close()
	}
}
