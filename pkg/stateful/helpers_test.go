package stateful

import (
	"testing"
	"time"

	"github.com/getmockd/mockrest/pkg/validation"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func usersConfig(seed ...Record) *ResourceConfig {
	return &ResourceConfig{
		Name:     "users",
		Singular: "user",
		Label:    "User",
		Schema: &validation.Schema{Properties: []validation.Property{
			validation.Field("name", validation.String().Require()),
			validation.Field("email", validation.String().Require()),
		}},
		SearchFields: []string{"name", "email"},
		DefaultLimit: 100,
		SeedData:     seed,
	}
}

func albumsConfig(seed ...Record) *ResourceConfig {
	return &ResourceConfig{
		Name:     "albums",
		Singular: "album",
		Label:    "Album",
		Schema: &validation.Schema{Properties: []validation.Property{
			validation.Field("userId", validation.Integer().Require().AtLeast(1)),
			validation.Field("title", validation.String().Require()),
		}},
		References:   []Reference{{Field: "userId", Resource: "users"}},
		Filters:      []FilterSpec{{Param: "userId", Field: "userId", Match: MatchExact}},
		SearchFields: []string{"title"},
		DefaultLimit: 10,
		SeedData:     seed,
	}
}

func productsConfig(seed ...Record) *ResourceConfig {
	return &ResourceConfig{
		Name:     "products",
		Singular: "product",
		Label:    "Product",
		Schema: &validation.Schema{Properties: []validation.Property{
			validation.Field("title", validation.String().Require()),
		}},
		SeedData: seed,
	}
}

func cartsConfig() *ResourceConfig {
	item := validation.Object(
		validation.Field("productId", validation.Integer().Require()),
		validation.Field("quantity", validation.Integer().Require().AtLeast(1)),
	).WithMessage(`Each product must have valid "productId" and positive "quantity"`)

	return &ResourceConfig{
		Name:     "carts",
		Singular: "cart",
		Label:    "Cart",
		Schema: &validation.Schema{Properties: []validation.Property{
			validation.Field("userId", validation.Integer().Require().AtLeast(1)),
			validation.Field("products", validation.Array(item).NonEmptyArray().FirstItemOnly().Require()),
		}},
		References: []Reference{
			{Field: "userId", Resource: "users"},
			{Field: "products", Item: "productId", Resource: "products"},
		},
	}
}

// newTestStore registers users 1-2, products 1-3, empty albums and carts.
func newTestStore(t *testing.T) *StateStore {
	t.Helper()
	store := NewStateStore()
	require.NoError(t, store.Register(usersConfig(
		Record{"id": float64(1), "name": "Leanne Graham", "email": "Sincere@april.biz"},
		Record{"id": float64(2), "name": "Ervin Howell", "email": "Shanna@melissa.tv"},
	)))
	require.NoError(t, store.Register(productsConfig(
		Record{"id": float64(1), "title": "Backpack"},
		Record{"id": float64(2), "title": "T-Shirt"},
		Record{"id": float64(3), "title": "Jacket"},
	)))
	require.NoError(t, store.Register(albumsConfig()))
	require.NoError(t, store.Register(cartsConfig()))
	return store
}
