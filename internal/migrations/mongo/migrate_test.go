package mongo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func keyNames(model mongo.IndexModel) []string {
	keys := model.Keys.(bson.D)
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, k.Key)
	}
	return names
}

func TestCollections_CoversEveryStore(t *testing.T) {
	defs := Collections()
	for _, name := range []string{"Rooms", "Bookings", "Room_guards", "Temp_locks", "Discounts", "Discount_usages"} {
		def, ok := defs[name]
		require.True(t, ok, "missing collection %s", name)
		assert.Contains(t, def.Validator, "$jsonSchema", name)
	}
	assert.Len(t, defs, 6)
}

func TestBookingsIndexes_OverlapLookup(t *testing.T) {
	require.NotEmpty(t, BookingsIndexes)
	assert.Equal(t, []string{"rooms.room", "check_in", "check_out"}, keyNames(BookingsIndexes[0]))
	assert.Equal(t, []string{"status", "created_at"}, keyNames(BookingsIndexes[1]))
}

func TestTempLocksIndexes_ExpireOnDeadline(t *testing.T) {
	ttl := TempLocksIndexes[0]
	assert.Equal(t, []string{"expires_at"}, keyNames(ttl))
	require.NotNil(t, ttl.Options)
	require.NotNil(t, ttl.Options.ExpireAfterSeconds)
	assert.Equal(t, int32(0), *ttl.Options.ExpireAfterSeconds)
}

func TestUniqueIndexes(t *testing.T) {
	code := DiscountsIndexes[0]
	require.NotNil(t, code.Options.Unique)
	assert.True(t, *code.Options.Unique)

	usage := DiscountUsagesIndexes[0]
	assert.Equal(t, []string{"user_id", "discount_code"}, keyNames(usage))
	require.NotNil(t, usage.Options.Unique)
	assert.True(t, *usage.Options.Unique)
}
