package database

import (
	"time"

	"github.com/activecm/iptrack/datatypes/report"
	"github.com/globalsign/mgo"
	log "github.com/sirupsen/logrus"
)

type (
	// reportDoc is the MongoDB form of a log entry
	reportDoc struct {
		ID         string             `bson:"_id"`
		Captured   time.Time          `bson:"captured"`
		IP         string             `bson:"ip"`
		Version    int                `bson:"version"`
		Scope      string             `bson:"scope"`
		Label      string             `bson:"label"`
		Timestamp  time.Time          `bson:"timestamp"`
		Sources    []sourceDoc        `bson:"sources"`
		ReverseDNS string             `bson:"reverse_dns,omitempty"`
		ASN        string             `bson:"asn,omitempty"`
		Whois      *whoisDoc          `bson:"whois,omitempty"`
		Traceroute string             `bson:"traceroute,omitempty"`
		Interfaces []report.Interface `bson:"interfaces,omitempty"`
		Failures   map[string]string  `bson:"failures,omitempty"`
	}

	sourceDoc struct {
		Source string                 `bson:"source"`
		Fields map[string]interface{} `bson:"fields"`
	}

	whoisDoc struct {
		Registrar      string   `bson:"registrar,omitempty"`
		NameServers    []string `bson:"name_servers,omitempty"`
		CreationDate   []string `bson:"creation_date,omitempty"`
		ExpirationDate []string `bson:"expiration_date,omitempty"`
	}
)

// reportIndexes are created on the reports collection
var reportIndexes = []mgo.Index{
	{Key: []string{"ip"}},
	{Key: []string{"-captured"}},
}

// newReportDoc flattens a log entry for storage
func newReportDoc(entry report.LogEntry) reportDoc {
	rep := entry.Report
	doc := reportDoc{
		ID:         entry.ID,
		Captured:   entry.Timestamp,
		IP:         rep.Address.String(),
		Version:    rep.Address.Version(),
		Scope:      rep.Address.Scope().String(),
		Label:      rep.Label,
		Timestamp:  rep.Timestamp,
		Sources:    make([]sourceDoc, 0, len(rep.Sources)),
		ReverseDNS: rep.ReverseDNS,
		ASN:        rep.ASN,
		Traceroute: rep.Traceroute,
		Interfaces: rep.Interfaces,
		Failures:   rep.Failures,
	}
	for _, src := range rep.Sources {
		doc.Sources = append(doc.Sources, sourceDoc{Source: src.Source, Fields: src.Fields})
	}
	if !rep.Whois.IsEmpty() {
		doc.Whois = &whoisDoc{
			Registrar:      rep.Whois.Registrar,
			NameServers:    rep.Whois.NameServers,
			CreationDate:   rep.Whois.CreationDate,
			ExpirationDate: rep.Whois.ExpirationDate,
		}
	}
	return doc
}

// ReportMirror copies every logged report into MongoDB
type ReportMirror struct {
	db         *DB
	collection string
	log        *log.Logger
}

// NewReportMirror prepares the reports collection
func NewReportMirror(db *DB, collection string, logger *log.Logger) (*ReportMirror, error) {
	if err := db.EnsureCollection(db.Name(), collection, reportIndexes); err != nil {
		return nil, err
	}
	return &ReportMirror{db: db, collection: collection, log: logger}, nil
}

// Mirror inserts the entry. The entry id doubles as the document id so a
// repeated call is rejected by MongoDB rather than duplicated.
func (m *ReportMirror) Mirror(entry report.LogEntry) error {
	if entry.Report == nil {
		return nil
	}
	ssn := m.db.Session.Copy()
	defer ssn.Close()

	err := ssn.DB(m.db.Name()).C(m.collection).Insert(newReportDoc(entry))
	if err != nil {
		m.log.WithFields(log.Fields{
			"id":         entry.ID,
			"collection": m.collection,
			"error":      err.Error(),
		}).Error("could not mirror report")
	}
	return err
}
