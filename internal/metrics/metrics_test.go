package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg)
	require.NoError(t, err)

	c.ObserveSign("HS256", time.Microsecond)
	c.ObserveSign("HS256", time.Microsecond)
	c.ObserveSign("HS512", time.Microsecond)
	c.ObserveVerify(ResultValid, time.Microsecond)
	c.ObserveVerify(ResultInvalid, time.Microsecond)
	c.ObserveRevoke(time.Millisecond)
	c.RateLimited()

	assert.Equal(t, 2.0, testutil.ToFloat64(c.signed.WithLabelValues("HS256")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.signed.WithLabelValues("HS512")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.verified.WithLabelValues(ResultValid)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.verified.WithLabelValues(ResultInvalid)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.revoked))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.rateLimit))

	expected := `
# HELP hsjwt_tokens_revoked_total Tokens added to the revocation store.
# TYPE hsjwt_tokens_revoked_total counter
hsjwt_tokens_revoked_total 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "hsjwt_tokens_revoked_total"))
}

func TestRegisterTwiceSharesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := New(reg)
	require.NoError(t, err)

	second, err := New(reg)
	require.NoError(t, err)

	second.ObserveSign("HS256", 0)
	assert.Equal(t, 1.0, testutil.ToFloat64(first.signed.WithLabelValues("HS256")))
}

func TestRegisterConflict(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "tokens_revoked_total",
		Help:      "conflicting type",
	}))

	_, err := New(reg)
	assert.Error(t, err)
}

func TestNilRegistererAndNilCollector(t *testing.T) {
	c, err := New(nil)
	require.NoError(t, err)
	c.ObserveSign("HS384", 0)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.signed.WithLabelValues("HS384")))

	var none *Collector
	assert.NotPanics(t, func() {
		none.ObserveSign("HS256", 0)
		none.ObserveVerify(ResultValid, 0)
		none.ObserveRevoke(0)
		none.RateLimited()
	})
}
