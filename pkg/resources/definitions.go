package resources

import (
	"github.com/getmockd/mockrest/pkg/stateful"
	v "github.com/getmockd/mockrest/pkg/validation"
)

// Page sizes used when ?limit is absent.
const (
	DefaultLimit = 100
	SmallLimit   = 10
)

const cartItemMessage = `Each product must have valid "productId" and positive "quantity"`

func exact(param string) stateful.FilterSpec {
	return stateful.FilterSpec{Param: param, Field: param, Match: stateful.MatchExact}
}

func ref(field, resource string) stateful.Reference {
	return stateful.Reference{Field: field, Resource: resource}
}

func fk() *v.FieldValidator {
	return v.Integer().Require().AtLeast(1)
}

// Definitions returns a fresh configuration for every resource, in the order
// they are registered and documented. SeedData is left empty.
func Definitions() []*stateful.ResourceConfig {
	return []*stateful.ResourceConfig{
		{
			Name: "users", Singular: "user", Label: "User",
			Schema: &v.Schema{Properties: []v.Property{
				v.Field("name", v.String().Require()),
				v.Field("username", v.String().Require()),
				v.Field("email", v.String().Require()),
				v.Field("avatar", v.String()),
				v.Field("phone", v.String()),
				v.Field("website", v.String()),
				v.Field("address", v.Object(
					v.Field("street", v.String()),
					v.Field("city", v.String()),
					v.Field("zipcode", v.String()),
				)),
			}},
			SearchFields: []string{"id", "username", "name", "email"},
			DefaultLimit: DefaultLimit,
			Nested: []stateful.Nested{
				{Child: "posts", ParentField: "userId", DefaultLimit: SmallLimit},
				{Child: "todos", ParentField: "userId", DefaultLimit: SmallLimit},
				{Child: "albums", ParentField: "userId", DefaultLimit: SmallLimit},
				{Child: "reviews", ParentField: "userId", DefaultLimit: SmallLimit},
			},
		},
		{
			Name: "posts", Singular: "post", Label: "Post",
			Schema: &v.Schema{Properties: []v.Property{
				v.Field("userId", fk()),
				v.Field("title", v.String().Require()),
				v.Field("body", v.String().Require()),
				v.Field("tags", v.Array(v.String())),
				v.Field("category", v.String()),
				v.Field("slug", v.String()),
			}},
			References: []stateful.Reference{ref("userId", "users")},
			Filters: []stateful.FilterSpec{
				exact("userId"),
				{Param: "tag", Field: "tags", Match: stateful.MatchContains},
				{Param: "category", Field: "category", Match: stateful.MatchFold},
			},
			SearchFields: []string{"title", "body"},
			DefaultLimit: DefaultLimit,
			Nested:       []stateful.Nested{{Child: "comments", ParentField: "postId", DefaultLimit: DefaultLimit}},
			OnCreate:     createPost,
			OnUpdate:     touchUpdatedAt,
			Normalize:    normalizePost,
		},
		{
			Name: "comments", Singular: "comment", Label: "Comment",
			Schema: &v.Schema{Properties: []v.Property{
				v.Field("postId", fk()),
				v.Field("userId", fk()),
				v.Field("body", v.String().Require()),
			}},
			References:   []stateful.Reference{ref("postId", "posts"), ref("userId", "users")},
			Filters:      []stateful.FilterSpec{exact("postId"), exact("userId")},
			SearchFields: []string{"body"},
			DefaultLimit: DefaultLimit,
			OnCreate:     stampCreatedAt,
		},
		{
			Name: "albums", Singular: "album", Label: "Album",
			Schema: &v.Schema{Properties: []v.Property{
				v.Field("userId", fk()),
				v.Field("title", v.String().Require()),
			}},
			References:   []stateful.Reference{ref("userId", "users")},
			Filters:      []stateful.FilterSpec{exact("userId")},
			SearchFields: []string{"title"},
			DefaultLimit: SmallLimit,
			Nested:       []stateful.Nested{{Child: "photos", ParentField: "albumId", DefaultLimit: SmallLimit}},
		},
		{
			Name: "photos", Singular: "photo", Label: "Photo",
			Schema: &v.Schema{Properties: []v.Property{
				v.Field("albumId", fk()),
				v.Field("title", v.String().Require()),
				v.Field("url", v.String().Require()),
				v.Field("thumbnailUrl", v.String().Require()),
			}},
			References:   []stateful.Reference{ref("albumId", "albums")},
			Filters:      []stateful.FilterSpec{exact("albumId")},
			SearchFields: []string{"title"},
			DefaultLimit: SmallLimit,
		},
		{
			Name: "todos", Singular: "todo", Label: "Todo",
			Schema: &v.Schema{Properties: []v.Property{
				v.Field("userId", fk()),
				v.Field("title", v.String().Require()),
				v.Field("completed", v.Boolean()),
			}},
			References: []stateful.Reference{ref("userId", "users")},
			Filters: []stateful.FilterSpec{
				exact("userId"),
				{Param: "completed", Field: "completed", Match: stateful.MatchBool},
			},
			SearchFields: []string{"title"},
			DefaultLimit: SmallLimit,
			OnCreate:     createTodo,
		},
		{
			Name: "products", Singular: "product", Label: "Product",
			Schema: &v.Schema{Properties: []v.Property{
				v.Field("title", v.String().Require()),
				v.Field("description", v.String().Require()),
				v.Field("price", v.Number().Require().AtLeast(0)),
				v.Field("image", v.String().Require()),
				v.Field("category", v.String().Require()),
				v.Field("stock", v.Integer().Require().AtLeast(0)),
			}},
			Filters:      []stateful.FilterSpec{{Param: "category", Field: "category", Match: stateful.MatchFold}},
			SearchFields: []string{"title", "description"},
			DefaultLimit: DefaultLimit,
			Nested:       []stateful.Nested{{Child: "reviews", ParentField: "productId", DefaultLimit: DefaultLimit}},
		},
		{
			Name: "categories", Singular: "category", Label: "Category",
			Schema: &v.Schema{Properties: []v.Property{
				v.Field("name", v.String().Require()),
				v.Field("description", v.String().Require()),
			}},
			SearchFields: []string{"name", "description"},
			DefaultLimit: DefaultLimit,
		},
		{
			Name: "carts", Singular: "cart", Label: "Cart",
			Schema: &v.Schema{Properties: []v.Property{
				v.Field("userId", fk()),
				v.Field("products", v.Array(v.Object(
					v.Field("productId", v.Integer().Require().AtLeast(1)),
					v.Field("quantity", v.Integer().Require().AtLeast(1)),
				).WithMessage(cartItemMessage)).NonEmptyArray().FirstItemOnly().Require()),
			}},
			References: []stateful.Reference{
				ref("userId", "users"),
				{Field: "products", Item: "productId", Resource: "products"},
			},
			Filters:      []stateful.FilterSpec{exact("userId")},
			DefaultLimit: DefaultLimit,
		},
		{
			Name: "orders", Singular: "order", Label: "Order",
			Schema: &v.Schema{Properties: []v.Property{
				v.Field("userId", fk()),
				v.Field("cartId", fk()),
				v.Field("totalPrice", v.Number().Require().AtLeast(0)),
				v.Field("status", v.String()),
			}},
			References:   []stateful.Reference{ref("userId", "users"), ref("cartId", "carts")},
			Filters:      []stateful.FilterSpec{exact("userId"), exact("status")},
			DefaultLimit: DefaultLimit,
			OnCreate:     createOrder,
			Normalize:    normalizeOrder,
		},
		{
			Name: "reviews", Singular: "review", Label: "Review",
			Schema: &v.Schema{Properties: []v.Property{
				v.Field("productId", fk()),
				v.Field("userId", fk()),
				v.Field("rating", v.Number().Require().AtLeast(1).AtMost(5).WithMessage("Rating must be between 1 and 5")),
				v.Field("comment", v.String().Require()),
			}},
			References:   []stateful.Reference{ref("productId", "products"), ref("userId", "users")},
			Filters:      []stateful.FilterSpec{exact("productId"), exact("userId")},
			SearchFields: []string{"comment"},
			DefaultLimit: DefaultLimit,
			OnCreate:     stampCreatedAt,
		},
		{
			Name: "tags", Singular: "tag", Label: "Tag",
			Schema: &v.Schema{Properties: []v.Property{
				v.Field("name", v.String().Require()),
			}},
			SearchFields: []string{"name"},
			DefaultLimit: DefaultLimit,
		},
	}
}

// Names lists the resource names in registration order.
func Names() []string {
	defs := Definitions()
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name
	}
	return names
}
