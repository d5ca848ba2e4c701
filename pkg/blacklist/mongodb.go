package blacklist

import (
	"github.com/activecm/iptrack/config"
	"github.com/activecm/iptrack/database"
	"github.com/globalsign/mgo/bson"
)

type repo struct {
	db         *database.DB
	database   string
	collection string
}

// NewMongoRepository create new repository over the rita-bl database
func NewMongoRepository(db *database.DB, conf *config.Config) Repository {
	return &repo{
		db:         db,
		database:   conf.S.Blacklisted.BlacklistDatabase,
		collection: conf.T.Blacklist.IPTable,
	}
}

// Lookup returns every list the ip appears on
func (r *repo) Lookup(ip string) ([]Listing, error) {
	ssn := r.db.Session.Copy()
	defer ssn.Close()

	var listings []Listing
	err := ssn.DB(r.database).C(r.collection).
		Find(bson.M{"index": ip}).All(&listings)
	return listings, err
}
