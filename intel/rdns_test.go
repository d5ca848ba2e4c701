package intel

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReverseDNSFailureIsNotFound(t *testing.T) {
	source := &ReverseDNS{
		resolver: &net.Resolver{
			PreferGo: true,
			Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
				return nil, errors.New("no route to resolver")
			},
		},
		timeout: time.Second,
	}

	name, err := source.Lookup(context.Background(), mustAddr(t, "192.0.2.1"))
	assert.Equal(t, ErrNotFound, err)
	assert.Equal(t, "", name)
}
