package refload_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyeh/carecost/internal/model"
	"github.com/gyeh/carecost/internal/refload"
)

func TestInspectFeeSchedule(t *testing.T) {
	res, err := refload.Inspect(feeFixture(t), model.KindFeeSchedule, 1000)
	require.NoError(t, err)

	assert.Equal(t, int64(5), res.NumRows)
	assert.Equal(t, int64(5), res.Sampled)
	assert.Equal(t, int64(1), res.Rejected)
	assert.Equal(t, map[string]int64{"CPT": 3, "HCPCS": 1}, res.Labels)
}

func TestInspectSampleLimit(t *testing.T) {
	res, err := refload.Inspect(geoFixture(t), model.KindGeoFactors, 2)
	require.NoError(t, err)

	assert.Equal(t, int64(4), res.NumRows)
	assert.Equal(t, int64(2), res.Sampled)
	assert.Zero(t, res.Rejected)
	assert.Equal(t, map[string]int64{"NY": 1, "unknown": 1}, res.Labels)
}

func TestInspectRejectsWrongSchema(t *testing.T) {
	_, err := refload.Inspect(feeFixture(t), model.KindGeoFactors, 10)
	assert.ErrorContains(t, err, "missing required column")

	_, err = refload.Inspect(feeFixture(t), "bogus", 10)
	assert.Error(t, err)
}
