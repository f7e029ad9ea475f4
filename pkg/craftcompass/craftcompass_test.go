package craftcompass_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Novaotic/craft-compass/pkg/craftcompass"
	"github.com/Novaotic/craft-compass/pkg/types"
)

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	inv, err := craftcompass.Open(types.Config{DataDir: dir})
	require.NoError(t, err)

	id, err := inv.Suppliers().Create(&types.Supplier{Name: "Acme", ContactInfo: "acme@example.com"})
	require.NoError(t, err)
	require.NoError(t, inv.Detach())

	again, err := craftcompass.Open(types.Config{DataDir: dir})
	require.NoError(t, err)
	defer again.Detach()
	sp, err := again.Suppliers().Get(id)
	require.NoError(t, err)
	assert.Equal(t, "Acme", sp.Name)
	assert.FileExists(t, filepath.Join(dir, types.DefaultDBFile))
}

func TestOpen_InvalidConfig(t *testing.T) {
	_, err := craftcompass.Open(types.Config{DataDir: t.TempDir(), SupplierDeletePolicy: "cascade"})
	assert.ErrorIs(t, err, types.ErrDeletePolicyUnknown)
}

func TestNew_WithLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	inv := craftcompass.New(craftcompass.WithLogger(zap.New(core)))
	require.NoError(t, inv.Attach(types.Config{DataDir: t.TempDir(), SupplierDeletePolicy: types.DeletePolicyNullify}))
	defer inv.Detach()

	sid, err := inv.Suppliers().Create(&types.Supplier{Name: "Acme", ContactInfo: "x"})
	require.NoError(t, err)
	_, err = inv.Items().Create(&types.Item{Name: "Red Yarn", Quantity: 1, SupplierID: &sid})
	require.NoError(t, err)
	require.NoError(t, inv.Suppliers().Delete(sid))

	assert.Equal(t, 1, logs.FilterMessage("cleared supplier from items").Len())
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, craftcompass.Version)
}
