package catalog

import (
	"testing"

	"github.com/dolthub/zeeql/kernel"
	"github.com/stretchr/testify/require"
)

func TestCreateTableAssignsIDsAboveSeed(t *testing.T) {
	c := New()
	def, err := c.CreateTable("t", []string{"a", "b"}, []kernel.DataType{kernel.Int64, kernel.String})
	require.NoError(t, err)
	require.Greater(t, def.ID, int64(seedStart-1))
	require.Len(t, def.Columns, 2)
}

func TestCreateTableRejectsDuplicate(t *testing.T) {
	c := New()
	_, err := c.CreateTable("t", []string{"a"}, []kernel.DataType{kernel.Int64})
	require.NoError(t, err)
	_, err = c.CreateTable("t", []string{"a"}, []kernel.DataType{kernel.Int64})
	require.Error(t, err)
}

func TestCreateIndexRequiresExistingColumn(t *testing.T) {
	c := New()
	_, err := c.CreateTable("t", []string{"a"}, []kernel.DataType{kernel.Int64})
	require.NoError(t, err)
	_, err = c.CreateIndex("idx_a", "t", "missing")
	require.Error(t, err)

	_, err = c.CreateIndex("idx_a", "t", "a")
	require.NoError(t, err)
	require.Len(t, c.IndexesForTable("t"), 1)
}

func TestDropTableRemovesItsIndexes(t *testing.T) {
	c := New()
	_, err := c.CreateTable("t", []string{"a"}, []kernel.DataType{kernel.Int64})
	require.NoError(t, err)
	_, err = c.CreateIndex("idx_a", "t", "a")
	require.NoError(t, err)
	require.NoError(t, c.DropTable("t"))
	require.Empty(t, c.IndexesForTable("t"))
	_, err = c.Table("t")
	require.Error(t, err)
}
