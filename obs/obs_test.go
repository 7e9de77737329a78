package obs

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, lvl)

	lvl, err = ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("warn")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	_, err = NewLogger("loud")
	assert.Error(t, err)
}

func TestMetrics_ObserveCompute(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveCompute("front_loaded", time.Now(), nil)
	m.ObserveCompute("front_loaded", time.Now(), nil)
	m.ObserveCompute("policy(8)", time.Now(), errors.New("invalid"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SchedulesComputed.WithLabelValues("front_loaded", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SchedulesComputed.WithLabelValues("policy(8)", "invalid")))

	count, err := testutil.GatherAndCount(reg, "vesting_compute_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.ObserveCompute("fractional", time.Now(), nil) })
}

func TestNewMetrics_NilRegistererSkipsRegistration(t *testing.T) {
	m := NewMetrics(nil)
	m.GrantsStored.Set(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.GrantsStored))
}
