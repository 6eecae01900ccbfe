package cart

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/storage"
)

func product(id, price string) models.Product {
	return models.Product{
		ID:    id,
		Name:  "Product " + id,
		Price: decimal.RequireFromString(price),
		Image: "https://img.example/" + id + ".jpg",
	}
}

func newTestStore(t *testing.T) (*Store, storage.Storage) {
	t.Helper()
	s := storage.NewMemory().Scoped("test")
	return New(context.Background(), s), s
}

type failingStorage struct {
	storage.Storage
}

func (failingStorage) Set(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func TestStore_AddItem_MergesQuantities(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()
	p := product("1", "12.99")

	require.NoError(t, st.AddItem(ctx, p, 2))
	require.NoError(t, st.AddItem(ctx, p, 3))

	items := st.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "1", items[0].ID)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, 5, st.Count())
}

func TestStore_AddItem_RejectsNonPositive(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	for _, q := range []int{0, -1} {
		err := st.AddItem(ctx, product("1", "1.00"), q)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	}
	assert.Empty(t, st.Items())
}

func TestStore_AddItem_PreservesInsertionOrder(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.AddItem(ctx, product("b", "1"), 1))
	require.NoError(t, st.AddItem(ctx, product("a", "1"), 1))
	require.NoError(t, st.AddItem(ctx, product("b", "1"), 1))

	items := st.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "b", items[0].ID)
	assert.Equal(t, "a", items[1].ID)
}

func TestStore_RemoveItem(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, st.AddItem(ctx, product("1", "2.50"), 1))
	require.NoError(t, st.AddItem(ctx, product("2", "3.00"), 2))

	before := st.Items()
	require.NoError(t, st.RemoveItem(ctx, "missing"))
	assert.Equal(t, before, st.Items())

	require.NoError(t, st.RemoveItem(ctx, "1"))
	items := st.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "2", items[0].ID)
}

func TestStore_UpdateQuantity(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, st.AddItem(ctx, product("1", "2.50"), 1))

	require.NoError(t, st.UpdateQuantity(ctx, "1", 4))
	it, ok := st.Item("1")
	require.True(t, ok)
	assert.Equal(t, 4, it.Quantity)

	require.NoError(t, st.UpdateQuantity(ctx, "missing", 3))
	assert.Len(t, st.Items(), 1)

	err := st.UpdateQuantity(ctx, "1", 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	it, _ = st.Item("1")
	assert.Equal(t, 4, it.Quantity)
}

func TestStore_Total(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, st.AddItem(ctx, product("1", "12.99"), 2))
	require.NoError(t, st.AddItem(ctx, product("2", "0.10"), 3))

	assert.Equal(t, "26.28", st.Total().StringFixed(2))
	assert.True(t, decimal.RequireFromString("26.28").Equal(st.Total()))
}

func TestStore_ReloadRestoresSnapshot(t *testing.T) {
	st, s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, st.AddItem(ctx, product("1", "12.99"), 2))
	require.NoError(t, st.AddItem(ctx, product("2", "10.99"), 1))

	reloaded := New(ctx, s)
	assert.Equal(t, st.Items(), reloaded.Items())
	assert.True(t, st.Total().Equal(reloaded.Total()))
}

func TestStore_Clear(t *testing.T) {
	st, s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, st.AddItem(ctx, product("1", "1"), 1))

	require.NoError(t, st.Clear(ctx))
	assert.Empty(t, st.Items())

	_, ok, err := s.Get(ctx, storage.KeyCart)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_RemoveOrdered(t *testing.T) {
	st, s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, st.AddItem(ctx, product("1", "12.99"), 2))
	ordered := st.Items()

	require.NoError(t, st.AddItem(ctx, product("1", "12.99"), 1))
	require.NoError(t, st.AddItem(ctx, product("4", "4.49"), 1))

	var got []Change
	st.OnChange(func(_ context.Context, ch Change) { got = append(got, ch) })

	require.NoError(t, st.RemoveOrdered(ctx, ordered))
	items := st.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "1", items[0].ID)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, "4", items[1].ID)

	require.Len(t, got, 1)
	assert.Equal(t, ChangeOrdered, got[0].Type)
	assert.Equal(t, 2, got[0].Count)

	reloaded := New(ctx, s)
	assert.Equal(t, items, reloaded.Items())
}

func TestStore_RemoveOrdered_EmptiesCart(t *testing.T) {
	st, s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, st.AddItem(ctx, product("1", "1"), 3))

	ordered := st.Items()
	ordered = append(ordered, models.NewLineItem(product("9", "1"), 1))
	require.NoError(t, st.RemoveOrdered(ctx, ordered))
	assert.Empty(t, st.Items())

	_, ok, err := s.Get(ctx, storage.KeyCart)
	require.NoError(t, err)
	assert.False(t, ok)
}

type failingRemoveStorage struct {
	storage.Storage
}

func (failingRemoveStorage) Remove(context.Context, string) error {
	return errors.New("disk full")
}

func TestStore_RemoveOrdered_RollsBack(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory().Scoped("test")
	st := New(ctx, mem)
	require.NoError(t, st.AddItem(ctx, product("1", "1"), 2))

	st.storage = failingRemoveStorage{Storage: mem}
	require.Error(t, st.RemoveOrdered(ctx, st.Items()))
	assert.Equal(t, 2, st.Count())
}

func TestStore_PersistFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory().Scoped("test")
	st := New(ctx, mem)
	require.NoError(t, st.AddItem(ctx, product("1", "1"), 1))

	st.storage = failingStorage{Storage: mem}
	err := st.AddItem(ctx, product("1", "1"), 5)
	require.Error(t, err)

	it, ok := st.Item("1")
	require.True(t, ok)
	assert.Equal(t, 1, it.Quantity)
}

func TestStore_CorruptSnapshotStartsEmpty(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemory().Scoped("test")
	require.NoError(t, s.Set(ctx, storage.KeyCart, []byte("{oops")))

	st := New(ctx, s)
	assert.Empty(t, st.Items())
}

func TestStore_OnChangeReceivesCount(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	var got []Change
	st.OnChange(func(_ context.Context, ch Change) { got = append(got, ch) })

	require.NoError(t, st.AddItem(ctx, product("1", "1"), 2))
	require.NoError(t, st.RemoveItem(ctx, "nope"))
	require.NoError(t, st.UpdateQuantity(ctx, "1", 3))
	require.NoError(t, st.RemoveItem(ctx, "1"))

	require.Len(t, got, 3)
	assert.Equal(t, Change{Type: ChangeAdded, ProductID: "1", Quantity: 2, Count: 2}, got[0])
	assert.Equal(t, Change{Type: ChangeUpdated, ProductID: "1", Quantity: 3, Count: 3}, got[1])
	assert.Equal(t, Change{Type: ChangeRemoved, ProductID: "1", Count: 0}, got[2])
}

func TestStore_RandomOperationsKeepInvariants(t *testing.T) {
	st, s := newTestStore(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))
	catalog := []models.Product{product("1", "12.99"), product("2", "0.01"), product("3", "7.5")}

	for i := 0; i < 300; i++ {
		p := catalog[rng.Intn(len(catalog))]
		switch rng.Intn(3) {
		case 0:
			require.NoError(t, st.AddItem(ctx, p, rng.Intn(4)+1))
		case 1:
			require.NoError(t, st.RemoveItem(ctx, p.ID))
		case 2:
			_ = st.UpdateQuantity(ctx, p.ID, rng.Intn(5)-1)
		}

		items := st.Items()
		seen := map[string]bool{}
		want := decimal.Zero
		for _, it := range items {
			require.False(t, seen[it.ID], "duplicate line for %s", it.ID)
			seen[it.ID] = true
			require.GreaterOrEqual(t, it.Quantity, 1)
			want = want.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
		require.True(t, want.Equal(st.Total()))
	}

	assert.Equal(t, st.Items(), New(ctx, s).Items())
}
