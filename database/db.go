package database

import (
	"fmt"

	"github.com/activecm/iptrack/config"
	"github.com/activecm/mgosec"
	"github.com/blang/semver"
	"github.com/globalsign/mgo"
	log "github.com/sirupsen/logrus"
)

// MinMongoDBVersion is the lower, inclusive bound on the
// versions of MongoDB compatible with iptrack
var MinMongoDBVersion = semver.Version{
	Major: 3,
	Minor: 6,
	Patch: 0,
}

// MaxMongoDBVersion is the upper, exclusive bound on the
// versions of MongoDB compatible with iptrack. The legacy wire
// protocol spoken by mgo was removed in 6.0.
var MaxMongoDBVersion = semver.Version{
	Major: 6,
	Minor: 0,
	Patch: 0,
}

// errCollectionExists is the MongoDB error code for NamespaceExists
// https://github.com/mongodb/mongo/blob/master/src/mongo/base/error_codes.yml
const errCollectionExists = 48

// DB is the workhorse container for messing with the database
type DB struct {
	Session *mgo.Session
	log     *log.Logger
	name    string
}

// NewDB constructs a new DB struct
func NewDB(conf *config.Config, log *log.Logger) (*DB, error) {
	session, err := connectToMongoDB(conf, log)
	if err != nil {
		return nil, err
	}
	session.SetSocketTimeout(conf.R.MongoDB.SocketTimeout)
	session.SetSyncTimeout(conf.R.MongoDB.SocketTimeout)
	session.SetCursorTimeout(0)

	return &DB{
		Session: session,
		log:     log,
		name:    conf.S.MongoDB.Database,
	}, nil
}

// connectToMongoDB connects to MongoDB possibly with authentication and TLS
func connectToMongoDB(conf *config.Config, logger *log.Logger) (*mgo.Session, error) {
	connString := conf.S.MongoDB.ConnectionString
	authMechanism := conf.R.MongoDB.AuthMechanismParsed
	tlsConfig := conf.R.MongoDB.TLS.TLSConfig

	var sess *mgo.Session
	var err error
	if conf.S.MongoDB.TLS.Enabled {
		sess, err = mgosec.Dial(connString, authMechanism, tlsConfig)
	} else {
		sess, err = mgosec.DialInsecure(connString, authMechanism)
	}
	if err != nil {
		return sess, err
	}

	buildInfo, err := sess.BuildInfo()
	if err != nil {
		sess.Close()
		return nil, err
	}

	if err := checkMongoDBVersion(buildInfo.Version); err != nil {
		sess.Close()
		return nil, err
	}

	logger.WithFields(log.Fields{
		"version": buildInfo.Version,
	}).Debug("connected to MongoDB")
	return sess, nil
}

// checkMongoDBVersion ensures the server version is within
// [MinMongoDBVersion, MaxMongoDBVersion)
func checkMongoDBVersion(version string) error {
	semVersion, err := semver.ParseTolerant(version)
	if err != nil {
		return err
	}

	if !(semVersion.GE(MinMongoDBVersion) && semVersion.LT(MaxMongoDBVersion)) {
		return fmt.Errorf(
			"unsupported version of MongoDB. %s not within [%s, %s)",
			semVersion.String(),
			MinMongoDBVersion.String(),
			MaxMongoDBVersion.String(),
		)
	}
	return nil
}

// Name returns the database reports are mirrored into
func (d *DB) Name() string {
	return d.name
}

// EnsureCollection creates a collection with the given indexes. A
// collection which already exists is not an error.
func (d *DB) EnsureCollection(database, name string, indexes []mgo.Index) error {
	session := d.Session.Copy()
	defer session.Close()

	d.log.Debug("Building collection: ", name)

	err := session.DB(database).C(name).Create(&mgo.CollectionInfo{})
	if err != nil {
		queryErr, ok := err.(*mgo.QueryError)
		if !ok || queryErr.Code != errCollectionExists {
			return err
		}
	}

	collection := session.DB(database).C(name)
	for _, index := range indexes {
		if err := collection.EnsureIndex(index); err != nil {
			return err
		}
	}
	return nil
}

// Close ends the MongoDB session
func (d *DB) Close() {
	if d.Session != nil {
		d.Session.Close()
	}
}
