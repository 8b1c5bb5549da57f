package fillrate

import (
	"testing"

	"github.com/attrcare/attrcare/config"
	"github.com/attrcare/attrcare/util"
	"github.com/stretchr/testify/require"
)

var defaultThresholds = config.FillRateConfig{
	CriticalThreshold: 25.0,
	WarningThreshold:  50.0,
}

func TestClassify(t *testing.T) {
	t.Parallel()

	require.Equal(t, StatusCritical, classify(0, defaultThresholds))
	require.Equal(t, StatusCritical, classify(25.0, defaultThresholds))
	require.Equal(t, StatusWarning, classify(25.01, defaultThresholds))
	require.Equal(t, StatusWarning, classify(49.99, defaultThresholds))
	require.Equal(t, StatusHealthy, classify(50.0, defaultThresholds))
	require.Equal(t, StatusHealthy, classify(100.0, defaultThresholds))
}

func TestRateRounding(t *testing.T) {
	t.Parallel()

	// 1 of 4 entities filled: 25.0, critical under default 25/50 thresholds.
	rate := util.Round2(float64(1) / float64(4) * 100)
	require.InDelta(t, 25.0, rate, 0)
	require.Equal(t, StatusCritical, classify(rate, defaultThresholds))

	rate = util.Round2(float64(1) / float64(3) * 100)
	require.InDelta(t, 33.33, rate, 0)

	rate = util.Round2(float64(2) / float64(3) * 100)
	require.InDelta(t, 66.67, rate, 0)
}
