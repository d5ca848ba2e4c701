package blacklist

import (
	"context"
	"errors"
	"testing"

	"github.com/activecm/iptrack/address"
	"github.com/activecm/iptrack/datatypes/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	listings []Listing
	err      error
	asked    []string
}

func (f *fakeRepo) Lookup(ip string) ([]Listing, error) {
	f.asked = append(f.asked, ip)
	return f.listings, f.err
}

func TestSourceListed(t *testing.T) {
	repo := &fakeRepo{listings: []Listing{
		{Index: "1.2.3.4", List: "feodo"},
		{Index: "1.2.3.4", List: "custom.txt"},
		{Index: "1.2.3.4", List: "feodo"},
	}}
	addr, err := address.Validate("1.2.3.4")
	require.NoError(t, err)

	res, err := NewSource(repo).Query(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(t, SourceName, res.Source)
	assert.Equal(t, true, res.Fields[report.FieldListed])
	assert.Equal(t, []string{"custom.txt", "feodo"}, res.Fields[report.FieldBlacklists])
	assert.Equal(t, []string{"1.2.3.4"}, repo.asked)
}

func TestSourceNotListed(t *testing.T) {
	addr, err := address.Validate("8.8.8.8")
	require.NoError(t, err)

	res, err := NewSource(&fakeRepo{}).Query(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(t, false, res.Fields[report.FieldListed])
	_, ok := res.Fields[report.FieldBlacklists]
	assert.False(t, ok)
}

func TestSourceError(t *testing.T) {
	addr, err := address.Validate("8.8.8.8")
	require.NoError(t, err)

	boom := errors.New("no reachable servers")
	_, err = NewSource(&fakeRepo{err: boom}).Query(context.Background(), addr)
	assert.True(t, errors.Is(err, boom))
}
