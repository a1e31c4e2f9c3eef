package mx

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	records map[string][]*net.MX
}

func (f fakeResolver) LookupMX(_ context.Context, name string) ([]*net.MX, error) {
	recs, ok := f.records[name]
	if !ok {
		return nil, &net.DNSError{Err: "no such host", Name: name, IsNotFound: true}
	}
	return recs, nil
}

func TestLookup(t *testing.T) {
	r := fakeResolver{records: map[string][]*net.MX{
		"acme.it": {
			{Host: "mx2.acme.it.", Pref: 20},
			{Host: "mx1.acme.it.", Pref: 10},
		},
		"nullmx.it": {{Host: ".", Pref: 0}},
	}}
	c := NewDNSChecker(r, time.Second)

	res, err := c.Lookup(context.Background(), "ACME.it")
	require.NoError(t, err)
	assert.Equal(t, []string{"mx1.acme.it", "mx2.acme.it"}, res.Hosts)
	assert.Equal(t, "mx1.acme.it,mx2.acme.it", res.String())

	_, err = c.Lookup(context.Background(), "missing.it")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.it")

	_, err = c.Lookup(context.Background(), "nullmx.it")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no records")

	_, err = c.Lookup(context.Background(), " ")
	require.Error(t, err)
}
