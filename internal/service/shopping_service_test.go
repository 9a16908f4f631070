package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbandeira/agendabot/internal/storage"
)

func TestShoppingAddAndList(t *testing.T) {
	svc := NewShoppingService(storage.NewMemoryStore())

	item, err := svc.Add("  milk  ")
	require.NoError(t, err)
	assert.Equal(t, "milk", item.Text)
	assert.False(t, item.Completed)

	_, err = svc.Add("   ")
	assert.Error(t, err)

	items, err := svc.List()
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestShoppingToggleAndClearCompleted(t *testing.T) {
	svc := NewShoppingService(storage.NewMemoryStore())

	milk, err := svc.Add("milk")
	require.NoError(t, err)
	bread, err := svc.Add("bread")
	require.NoError(t, err)

	require.NoError(t, svc.Toggle(milk.ID))
	require.NoError(t, svc.ClearCompleted())

	items, err := svc.List()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, bread.ID, items[0].ID)
}

func TestShoppingToggleTwiceRestores(t *testing.T) {
	svc := NewShoppingService(storage.NewMemoryStore())

	item, err := svc.Add("eggs")
	require.NoError(t, err)

	require.NoError(t, svc.Toggle(item.ID))
	require.NoError(t, svc.Toggle(item.ID))

	items, err := svc.List()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.False(t, items[0].Completed)
}

func TestShoppingRename(t *testing.T) {
	svc := NewShoppingService(storage.NewMemoryStore())

	item, err := svc.Add("mlik")
	require.NoError(t, err)
	require.NoError(t, svc.Rename(item.ID, "milk"))

	items, err := svc.List()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "milk", items[0].Text)

	assert.Error(t, svc.Rename("missing", "x"))
	assert.Error(t, svc.Rename(item.ID, " "))
}

func TestShoppingDeleteUnknownIsNoop(t *testing.T) {
	svc := NewShoppingService(storage.NewMemoryStore())
	assert.NoError(t, svc.Delete("missing"))
}
