package resources

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/mockrest/pkg/stateful"
	"github.com/getmockd/mockrest/pkg/validation"
)

func byName(t *testing.T, name string) *stateful.ResourceConfig {
	t.Helper()
	for _, d := range Definitions() {
		if d.Name == name {
			return d
		}
	}
	t.Fatalf("resource %q not defined", name)
	return nil
}

func TestDefinitions_Complete(t *testing.T) {
	assert.Equal(t, []string{
		"users", "posts", "comments", "albums", "photos", "todos",
		"products", "categories", "carts", "orders", "reviews", "tags",
	}, Names())

	names := make(map[string]bool)
	for _, d := range Definitions() {
		names[d.Name] = true
	}
	for _, d := range Definitions() {
		assert.NotEmpty(t, d.Singular, d.Name)
		assert.NotEmpty(t, d.Label, d.Name)
		require.NotNil(t, d.Schema, d.Name)
		assert.Positive(t, d.DefaultLimit, d.Name)
		for _, ref := range d.References {
			assert.True(t, names[ref.Resource], "%s references unknown %s", d.Name, ref.Resource)
		}
		for _, n := range d.Nested {
			assert.True(t, names[n.Child], "%s nests unknown %s", d.Name, n.Child)
		}
	}
}

func TestDefinitions_DefaultLimits(t *testing.T) {
	small := map[string]bool{"albums": true, "photos": true, "todos": true}
	for _, d := range Definitions() {
		want := DefaultLimit
		if small[d.Name] {
			want = SmallLimit
		}
		assert.Equal(t, want, d.DefaultLimit, d.Name)
	}

	for _, n := range byName(t, "users").Nested {
		assert.Equal(t, SmallLimit, n.DefaultLimit, n.Child)
	}
	assert.Equal(t, DefaultLimit, byName(t, "products").Nested[0].DefaultLimit)
	assert.Equal(t, DefaultLimit, byName(t, "posts").Nested[0].DefaultLimit)
}

func TestDefinitions_Fresh(t *testing.T) {
	a := Definitions()
	b := Definitions()
	a[0].SeedData = []stateful.Record{{"id": 1}}
	assert.Empty(t, b[0].SeedData)
}

func TestSchemas_CreateRules(t *testing.T) {
	tests := []struct {
		resource string
		body     map[string]any
		want     []string
	}{
		{
			resource: "todos",
			body:     map[string]any{"userId": 1, "title": "x", "completed": "yes"},
			want:     []string{`"completed" must be a boolean`},
		},
		{
			resource: "reviews",
			body:     map[string]any{"productId": 1, "userId": 1, "rating": 6, "comment": "meh"},
			want:     []string{"Rating must be between 1 and 5"},
		},
		{
			resource: "carts",
			body: map[string]any{"userId": 1, "products": []any{
				map[string]any{"productId": 1, "quantity": 0},
				map[string]any{"productId": "x", "quantity": -1},
			}},
			want: []string{cartItemMessage},
		},
		{
			resource: "products",
			body: map[string]any{
				"title": "a", "description": "b", "image": "c", "category": "d",
				"price": -1, "stock": 1,
			},
			want: []string{`"price" must be >= 0`},
		},
		{
			resource: "tags",
			body:     map[string]any{"name": "go"},
			want:     nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.resource, func(t *testing.T) {
			result := byName(t, tt.resource).Schema.Validate(tt.body, validation.ModeCreate)
			if tt.want == nil {
				assert.True(t, result.Valid, result.Messages())
				return
			}
			assert.Equal(t, tt.want, result.Messages())
		})
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"Hello, World!":          "hello-world",
		"  Leading and trailing ": "leading-and-trailing",
		"Go 1.22 Routing":        "go-1-22-routing",
		"---":                    "",
		"Café au lait":           "caf-au-lait",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slug(in), in)
	}
}

func TestHooks(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("post create", func(t *testing.T) {
		rec := stateful.Record{"title": "My First Post", "slug": "ignored"}
		byName(t, "posts").OnCreate(rec, now)
		assert.Equal(t, "my-first-post", rec["slug"])
		assert.Equal(t, []any{}, rec["tags"])
		assert.Equal(t, DefaultPostCategory, rec["category"])
		assert.Equal(t, "2025-06-01T12:00:00Z", rec["createdAt"])
		assert.Equal(t, rec["createdAt"], rec["updatedAt"])
	})

	t.Run("post update", func(t *testing.T) {
		rec := stateful.Record{"updatedAt": "2020-01-01T00:00:00Z"}
		byName(t, "posts").OnUpdate(rec, now)
		assert.Equal(t, "2025-06-01T12:00:00Z", rec["updatedAt"])
	})

	t.Run("post normalize keeps fixture values", func(t *testing.T) {
		rec := stateful.Record{"title": "A B", "category": "News"}
		byName(t, "posts").Normalize(rec)
		assert.Equal(t, "a-b", rec["slug"])
		assert.Equal(t, "News", rec["category"])
	})

	t.Run("todo completed", func(t *testing.T) {
		rec := stateful.Record{}
		byName(t, "todos").OnCreate(rec, now)
		assert.Equal(t, false, rec["completed"])

		done := stateful.Record{"completed": true}
		byName(t, "todos").OnCreate(done, now)
		assert.Equal(t, true, done["completed"])
	})

	t.Run("order status", func(t *testing.T) {
		rec := stateful.Record{}
		byName(t, "orders").OnCreate(rec, now)
		assert.Equal(t, DefaultOrderStatus, rec["status"])
		assert.NotEmpty(t, rec["createdAt"])
	})
}
