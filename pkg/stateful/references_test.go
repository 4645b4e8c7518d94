package stateful

import (
	"testing"

	"github.com/getmockd/mockrest/pkg/validation"
	"github.com/stretchr/testify/assert"
)

func TestCheckReferences(t *testing.T) {
	store := newTestStore(t)
	carts := store.Get("carts").Config()
	albums := store.Get("albums").Config()

	check := func(cfg *ResourceConfig, data Record) []string {
		payload := cfg.Schema.Validate(map[string]any(data), validation.ModeCreate)
		return store.CheckReferences(cfg, data, payload)
	}

	t.Run("valid references", func(t *testing.T) {
		msgs := check(albums, Record{"userId": float64(1), "title": "x"})
		assert.Empty(t, msgs)
	})

	t.Run("missing user", func(t *testing.T) {
		msgs := check(albums, Record{"userId": float64(42), "title": "x"})
		assert.Equal(t, []string{"Invalid userId: user 42 does not exist"}, msgs)
	})

	t.Run("wrong type skips existence check", func(t *testing.T) {
		msgs := check(albums, Record{"userId": "42", "title": "x"})
		assert.Empty(t, msgs)
	})

	t.Run("every reference field is checked", func(t *testing.T) {
		msgs := check(carts, Record{
			"userId":   float64(9),
			"products": []any{map[string]any{"productId": float64(9999), "quantity": float64(1)}},
		})
		assert.Equal(t, []string{
			"Invalid userId: user 9 does not exist",
			"Invalid productId: product 9999 does not exist",
		}, msgs)
	})

	t.Run("cart products stop at first missing product", func(t *testing.T) {
		msgs := check(carts, Record{
			"userId": float64(1),
			"products": []any{
				map[string]any{"productId": float64(1), "quantity": float64(1)},
				map[string]any{"productId": float64(500), "quantity": float64(1)},
				map[string]any{"productId": float64(600), "quantity": float64(1)},
			},
		})
		assert.Equal(t, []string{"Invalid productId: product 500 does not exist"}, msgs)
	})

	t.Run("invalid product items skip product lookups", func(t *testing.T) {
		msgs := check(carts, Record{
			"userId":   float64(1),
			"products": []any{map[string]any{"productId": float64(500), "quantity": float64(0)}},
		})
		assert.Empty(t, msgs)
	})

	t.Run("dangling after delete is accepted", func(t *testing.T) {
		created := store.Get("albums").Create(Record{"userId": float64(2), "title": "kept"})
		_, err := store.Get("users").Delete(2)
		assert.NoError(t, err)
		assert.NotNil(t, store.Get("albums").Get(created.ID()))
	})
}
