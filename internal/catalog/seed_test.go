package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/graingrove-backend/pkg/db/dbtest"
)

func TestSeedIsIdempotent(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	created, err := Seed(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, len(starterCatalog), created)

	again, err := Seed(ctx, db)
	require.NoError(t, err)
	assert.Zero(t, again)

	products, err := NewRepository(db).ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, products, len(starterCatalog))
	assert.Equal(t, []string{"all", "rice", "maize", "specialty grains", "wheat"}, Categories(products))
}
