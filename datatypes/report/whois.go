package report

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type (
	// WhoisRecord is the normalized result of a WHOIS query
	WhoisRecord struct {
		Registrar      string    `json:"registrar,omitempty"`
		NameServers    []string  `json:"name_servers,omitempty"`
		CreationDate   DateValue `json:"creation_date,omitempty"`
		ExpirationDate DateValue `json:"expiration_date,omitempty"`
	}

	// DateValue holds one or more RFC 3339 timestamps. Registries may
	// report several candidate dates; a single remaining value is
	// serialized as a plain string, several as a list.
	DateValue []string
)

// First returns the first date or the empty string
func (d DateValue) First() string {
	if len(d) == 0 {
		return ""
	}
	return d[0]
}

// MarshalJSON implements json.Marshaler
func (d DateValue) MarshalJSON() ([]byte, error) {
	switch len(d) {
	case 0:
		return []byte("null"), nil
	case 1:
		return json.Marshal(d[0])
	}
	return json.Marshal([]string(d))
}

// UnmarshalJSON accepts either a single string or a list of strings
func (d *DateValue) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = nil
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*d = DateValue{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*d = DateValue(list)
	return nil
}

// IsEmpty is true when no field of the record was filled
func (w *WhoisRecord) IsEmpty() bool {
	return w == nil || (w.Registrar == "" && len(w.NameServers) == 0 &&
		len(w.CreationDate) == 0 && len(w.ExpirationDate) == 0)
}
