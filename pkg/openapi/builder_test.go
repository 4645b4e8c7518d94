package openapi

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/mockrest/pkg/resources"
)

func TestBuild_AllResources(t *testing.T) {
	doc, err := Build(resources.Definitions(), Options{Prefix: "/api", Version: "1.2.3"})
	require.NoError(t, err)

	assert.Equal(t, Version, doc.OpenAPI)
	assert.Equal(t, "1.2.3", doc.Info.Version)

	for _, name := range resources.Names() {
		assert.NotNil(t, doc.Paths.Value("/api/"+name), name)
		assert.NotNil(t, doc.Paths.Value("/api/"+name+"/{id}"), name)
	}
	for _, p := range []string{
		"/api/users/{id}/posts", "/api/users/{id}/todos", "/api/users/{id}/albums",
		"/api/users/{id}/reviews", "/api/posts/{id}/comments", "/api/albums/{id}/photos",
		"/api/products/{id}/reviews",
	} {
		assert.NotNil(t, doc.Paths.Value(p), p)
	}
	assert.NotNil(t, doc.Paths.Value("/health"))
}

func TestBuild_Schemas(t *testing.T) {
	doc, err := Build(resources.Definitions(), Options{})
	require.NoError(t, err)

	review := doc.Components.Schemas["ReviewInput"].Value
	require.NotNil(t, review)
	assert.ElementsMatch(t, []string{"productId", "userId", "rating", "comment"}, review.Required)
	rating := review.Properties["rating"].Value
	require.NotNil(t, rating.Min)
	require.NotNil(t, rating.Max)
	assert.Equal(t, 1.0, *rating.Min)
	assert.Equal(t, 5.0, *rating.Max)

	user := doc.Components.Schemas["User"].Value
	assert.Contains(t, user.Required, "id")
	assert.True(t, user.Properties["id"].Value.ReadOnly)

	cart := doc.Components.Schemas["CartInput"].Value
	products := cart.Properties["products"].Value
	assert.Equal(t, uint64(1), products.MinItems)
	assert.ElementsMatch(t, []string{"productId", "quantity"}, products.Items.Value.Required)
}

func TestBuild_ListParameters(t *testing.T) {
	doc, err := Build(resources.Definitions(), Options{})
	require.NoError(t, err)

	names := func(op *openapi3.Operation) []string {
		var out []string
		for _, p := range op.Parameters {
			out = append(out, p.Value.Name)
		}
		return out
	}

	todos := doc.Paths.Value("/todos").Get
	assert.Equal(t, []string{"limit", "offset", "q", "userId", "completed"}, names(todos))

	// the parent key comes from the path on nested routes
	nested := doc.Paths.Value("/users/{id}/todos").Get
	assert.Equal(t, []string{"limit", "offset", "q", "completed"}, names(nested))
	assert.NotNil(t, nested.Responses.Status(404))
}

func TestMarshal_RoundTrip(t *testing.T) {
	doc, err := Build(resources.Definitions(), Options{ServerURL: "http://localhost:3000"})
	require.NoError(t, err)

	data, err := Marshal(doc, true)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"openapi\"")

	loaded, err := openapi3.NewLoader().LoadFromData(data)
	require.NoError(t, err)
	require.NoError(t, loaded.Validate(context.Background()))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "components")
}
