package treatments

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fertilitycare/patient-portal/internal/apperr"
)

func sampleTreatments() []Treatment {
	return []Treatment{
		{ID: "TP-1", Type: "IVF", Doctor: "BS. Minh", Status: "in-progress"},
		{ID: "TP-2", Type: "IUI", Doctor: "BS. Lan", Status: "completed"},
		{ID: "TP-3", Type: "IVF", Doctor: "BS. Lan", Status: "cancelled"},
		{ID: "TP-4", Type: "ICSI", Doctor: "BS. Minh", Status: "paused"},
	}
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("", " ivf ")
	require.NoError(t, err)
	assert.Equal(t, Filter{Bucket: BucketAll, Search: "ivf"}, f)

	f, err = ParseFilter("Completed", "")
	require.NoError(t, err)
	assert.Equal(t, "completed", f.Bucket)

	_, err = ParseFilter("paused", "")
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))
}

func TestFilterBuckets(t *testing.T) {
	all := Filter{Bucket: BucketAll}.Apply(sampleTreatments())
	assert.Len(t, all.Treatments, 4)
	assert.Equal(t, 4, all.Total)

	inProgress := Filter{Bucket: "in-progress"}.Apply(sampleTreatments())
	require.Len(t, inProgress.Treatments, 1)
	assert.Equal(t, "TP-1", inProgress.Treatments[0].ID)

	cancelled := Filter{Bucket: "cancelled"}.Apply(sampleTreatments())
	require.Len(t, cancelled.Treatments, 1)
	assert.Equal(t, "TP-3", cancelled.Treatments[0].ID)
}

func TestFilterReportsUnbucketed(t *testing.T) {
	for _, bucket := range []string{BucketAll, "in-progress", "completed", "cancelled"} {
		list := Filter{Bucket: bucket}.Apply(sampleTreatments())
		require.Len(t, list.Diagnostics, 1, bucket)
		assert.Equal(t, "TP-4", list.Diagnostics[0].TreatmentID)
		assert.Equal(t, "paused", list.Diagnostics[0].Status)
		for _, tr := range list.Treatments {
			if bucket != BucketAll {
				assert.NotEqual(t, "TP-4", tr.ID)
			}
		}
	}
}

func TestFilterSearch(t *testing.T) {
	list := Filter{Bucket: BucketAll, Search: "bs. lan"}.Apply(sampleTreatments())
	assert.Len(t, list.Treatments, 2)

	list = Filter{Bucket: "cancelled", Search: "IVF"}.Apply(sampleTreatments())
	require.Len(t, list.Treatments, 1)
	assert.Equal(t, "TP-3", list.Treatments[0].ID)

	list = Filter{Bucket: BucketAll, Search: "tp-2"}.Apply(sampleTreatments())
	require.Len(t, list.Treatments, 1)

	list = Filter{Bucket: BucketAll, Search: "nothing"}.Apply(sampleTreatments())
	assert.NotNil(t, list.Treatments)
	assert.Empty(t, list.Treatments)
}
