package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/relcheck/pkg/domain/types"
	"github.com/m-mizutani/relcheck/pkg/infra/memory"
)

func TestStore_MissOnAbsentKey(t *testing.T) {
	store := memory.New()

	_, err := store.Get(context.Background(), "no-such-key")
	gt.Value(t, errors.Is(err, types.ErrCacheMiss)).Equal(true)
}

func TestStore_PutThenGet(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	gt.NoError(t, store.Put(ctx, "k", []byte(`{"status":"merged"}`)))

	value, err := store.Get(ctx, "k")
	gt.NoError(t, err)
	gt.Value(t, string(value)).Equal(`{"status":"merged"}`)
}

func TestStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	gt.NoError(t, store.Put(ctx, "k", []byte("old")))
	gt.NoError(t, store.Put(ctx, "k", []byte("new")))

	value, err := store.Get(ctx, "k")
	gt.NoError(t, err)
	gt.Value(t, string(value)).Equal("new")
}

func TestStore_ReturnedValueIsACopy(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	gt.NoError(t, store.Put(ctx, "k", []byte("value")))

	value, err := store.Get(ctx, "k")
	gt.NoError(t, err)
	value[0] = 'X'

	again, err := store.Get(ctx, "k")
	gt.NoError(t, err)
	gt.Value(t, string(again)).Equal("value")
}
