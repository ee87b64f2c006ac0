package migrations

import (
	"testing"

	"MedShare/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestIndexPlanCoversTextSearch(t *testing.T) {
	plan := IndexPlan()
	require.Contains(t, plan, store.MedicineCollection)
	require.Contains(t, plan, store.RequestCollection)

	text := plan[store.MedicineCollection][0]
	keys, ok := text.Keys.(bson.D)
	require.True(t, ok)
	fields := make([]string, 0, len(keys))
	for _, k := range keys {
		assert.Equal(t, "text", k.Value)
		fields = append(fields, k.Key)
	}
	assert.ElementsMatch(t, []string{"name", "description", "manufacturer"}, fields)
}
