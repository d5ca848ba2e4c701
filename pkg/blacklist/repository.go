package blacklist

// Repository looks addresses up in the blacklist reference collection
type Repository interface {
	Lookup(ip string) ([]Listing, error)
}

// Listing is one hit from the "ip" collection of rita-bl
type Listing struct {
	Index     string       `bson:"index"`     // Potentially malicious IP
	List      string       `bson:"list"`      // which blacklist ip was listed on
	ExtraData ExtraDataRes `bson:"extradata"` // Associated data
}

// ExtraDataRes contains the structure of the extradata field in each document of the rita-bl ip collection
type ExtraDataRes struct {
	Date    string `bson:"date"`    // Date IP was added to blacklist
	Host    string `bson:"host"`    // IP in question
	Country string `bson:"country"` // Reported country of origin for IP
}
