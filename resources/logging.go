package resources

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	"github.com/activecm/iptrack/config"
	"github.com/activecm/iptrack/database"
	"github.com/activecm/iptrack/util"
	"github.com/activecm/mgorus"
	"github.com/rifflock/lfshook"
	log "github.com/sirupsen/logrus"
)

// logLevels maps LogConfig.LogLevel to a logrus level. Anything outside
// the table logs errors only.
var logLevels = []log.Level{
	log.ErrorLevel,
	log.WarnLevel,
	log.InfoLevel,
	log.DebugLevel,
}

// initLogger creates the logger. The menu owns the terminal, so nothing
// is written to the console; entries only reach the hooks added below.
func initLogger(logConfig *config.LogStaticCfg) *log.Logger {
	level := log.ErrorLevel
	if logConfig.LogLevel >= 0 && logConfig.LogLevel < len(logLevels) {
		level = logLevels[logConfig.LogLevel]
	}

	return &log.Logger{
		Out:       ioutil.Discard,
		Formatter: new(log.TextFormatter),
		Hooks:     make(log.LevelHooks),
		Level:     level,
	}
}

// addFileLogger writes one directory per session under logPath, named by
// the session start time, holding a JSON file per level.
func addFileLogger(logger *log.Logger, logPath string) error {
	sessionDir := filepath.Join(logPath, time.Now().Format(util.FileTimeFormat))
	if err := os.MkdirAll(sessionDir, 0755); err != nil {
		return err
	}

	paths := make(lfshook.PathMap, len(log.AllLevels))
	for _, level := range log.AllLevels {
		if level == log.TraceLevel {
			continue
		}
		paths[level] = filepath.Join(sessionDir, level.String()+".log")
	}

	logger.Hooks.Add(lfshook.NewHook(paths, &log.JSONFormatter{}))
	return nil
}

// addMongoLogger sends entries to the log collection next to the mirrored
// reports, creating the collection on first use.
func addMongoLogger(logger *log.Logger, db *database.DB, collection string) error {
	if err := db.EnsureCollection(db.Name(), collection, nil); err != nil {
		return err
	}
	logger.Hooks.Add(mgorus.NewHookerFromSession(db.Session, db.Name(), collection))
	return nil
}
