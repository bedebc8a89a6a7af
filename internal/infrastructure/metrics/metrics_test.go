package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.OTPSent("sent")
	m.OTPSent("sent")
	m.OTPVerified("mismatch")
	m.LoggedIn("registered")
	m.SetBreakerState("notifier", 2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.OTPSends.WithLabelValues("sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OTPVerifies.WithLabelValues("mismatch")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Logins.WithLabelValues("registered")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.BreakerState.WithLabelValues("notifier")))

	n, err := testutil.GatherAndCount(reg, "documentor_otp_sends_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNew_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
