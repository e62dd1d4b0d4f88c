package productmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap_Lookup(t *testing.T) {
	m := Map{
		"SKU-ADV":      {ProductID: "adv-course", ProductType: "course"},
		"product:4711": {ProductID: "bundle-1", ProductType: "bundle"},
		"variant:8080": {ProductID: "intro", ProductType: "course"},
	}

	t.Run("exact keys", func(t *testing.T) {
		e, ok := m.Lookup("SKU-ADV")
		require.True(t, ok)
		assert.Equal(t, "adv-course", e.ProductID)

		e, ok = m.Lookup(ProductKey(4711))
		require.True(t, ok)
		assert.Equal(t, "bundle-1", e.ProductID)

		e, ok = m.Lookup(VariantKey(8080))
		require.True(t, ok)
		assert.Equal(t, "intro", e.ProductID)
	})

	t.Run("exact lookup is case-sensitive", func(t *testing.T) {
		_, ok := m.Lookup("sku-adv")
		assert.False(t, ok)
	})

	t.Run("fold lookup is not", func(t *testing.T) {
		e, ok := m.LookupSKUFold("sku-adv")
		require.True(t, ok)
		assert.Equal(t, "adv-course", e.ProductID)
	})

	t.Run("miss", func(t *testing.T) {
		_, ok := m.Lookup("UNKNOWN")
		assert.False(t, ok)
		_, ok = m.LookupSKUFold("UNKNOWN")
		assert.False(t, ok)
	})
}

func TestKeyBuilders(t *testing.T) {
	assert.Equal(t, "product:42", ProductKey(42))
	assert.Equal(t, "variant:42", VariantKey(42))
}
