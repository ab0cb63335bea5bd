package feria

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMarketplace(t *testing.T) {
	t.Run("create new marketplace", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		m, err := NewMarketplace(tmpDir)
		require.NoError(t, err)
		require.NotNil(t, m)
		defer m.Close()

		// Verify components are initialized
		assert.NotNil(t, m.ItemRepository())
		assert.NotNil(t, m.GeoRepository())
		assert.NotNil(t, m.SellerRepository())
		assert.NotNil(t, m.Index())
		assert.NotNil(t, m.Corrector())
		assert.NotNil(t, m.backend)
		assert.NotNil(t, m.logger)
		assert.Zero(t, m.Index().Len())
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// Try to create a marketplace at a file path instead of directory
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		m, err := NewMarketplace(tmpFile)
		assert.Error(t, err)
		assert.Nil(t, m)
	})

	t.Run("with spelling dictionary", func(t *testing.T) {
		m, err := NewMarketplace("",
			WithInMemory(),
			WithSpellingDictionary(strings.NewReader("bicicleta 10\nheladera 5\n")))
		require.NoError(t, err)
		defer m.Close()

		assert.Equal(t, 2, m.Corrector().Len())
	})
}

func TestMarketplace_Close(t *testing.T) {
	m, err := NewMarketplace("", WithInMemory())
	require.NoError(t, err)
	require.NotNil(t, m)

	err = m.Close()
	assert.NoError(t, err)
}

func TestMarketplace_FactoryMethods(t *testing.T) {
	m, err := NewMarketplace("", WithInMemory())
	require.NoError(t, err)
	require.NotNil(t, m)
	defer m.Close()

	t.Run("can create search processor", func(t *testing.T) {
		processor, err := m.NewSearchProcessor()
		require.NoError(t, err)
		require.NotNil(t, processor)
	})

	t.Run("can create listing service", func(t *testing.T) {
		service, err := m.NewListingService()
		require.NoError(t, err)
		require.NotNil(t, service)
	})

	t.Run("can create featured ranker", func(t *testing.T) {
		ranker, err := m.NewRanker()
		require.NoError(t, err)
		require.NotNil(t, ranker)
	})
}
