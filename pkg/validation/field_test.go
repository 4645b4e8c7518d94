package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateField_Type(t *testing.T) {
	tests := []struct {
		name      string
		value     any
		validator *FieldValidator
		wantValid bool
		wantCode  string
	}{
		{"string matches", "hello", String(), true, ""},
		{"string mismatch", float64(123), String(), false, ErrCodeType},
		{"number matches float", 123.45, Number(), true, ""},
		{"integer matches whole float", float64(42), Integer(), true, ""},
		{"integer matches int64", int64(42), Integer(), true, ""},
		{"integer rejects decimal", 42.5, Integer(), false, ErrCodeType},
		{"integer rejects string", "42", Integer(), false, ErrCodeType},
		{"boolean matches", true, Boolean(), true, ""},
		{"boolean rejects string", "true", Boolean(), false, ErrCodeType},
		{"array matches", []any{"a"}, Array(String()), true, ""},
		{"object matches", map[string]any{}, Object(), true, ""},
		{"null is a type error", nil, String(), false, ErrCodeType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateField("field", LocationBody, tt.value, tt.validator)
			assert.Equal(t, tt.wantValid, result.Valid)
			if !tt.wantValid {
				require.NotEmpty(t, result.Errors)
				assert.Equal(t, tt.wantCode, result.Errors[0].Code)
			}
		})
	}
}

func TestValidateField_String(t *testing.T) {
	result := ValidateField("title", LocationBody, "", String().Require())
	require.False(t, result.Valid)
	assert.Equal(t, ErrCodeEmpty, result.Errors[0].Code)
	assert.Equal(t, `"title" must not be empty`, result.Errors[0].Message)

	result = ValidateField("avatar", LocationBody, "", String())
	assert.True(t, result.Valid, "optional strings may be empty")
}

func TestValidateField_Number(t *testing.T) {
	tests := []struct {
		name      string
		value     any
		validator *FieldValidator
		wantCode  string
	}{
		{"below min", float64(-1), Number().AtLeast(0), ErrCodeMin},
		{"above max", float64(6), Integer().AtLeast(1).AtMost(5), ErrCodeMax},
		{"at min", float64(0), Number().AtLeast(0), ""},
		{"at max", float64(5), Integer().AtLeast(1).AtMost(5), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateField("n", LocationBody, tt.value, tt.validator)
			if tt.wantCode == "" {
				assert.True(t, result.Valid)
				return
			}
			require.False(t, result.Valid)
			assert.Equal(t, tt.wantCode, result.Errors[0].Code)
		})
	}
}

func TestValidateField_TypeMismatchSkipsRange(t *testing.T) {
	result := ValidateField("price", LocationBody, "free", Number().AtLeast(0))
	require.Len(t, result.Errors, 1)
	assert.Equal(t, ErrCodeType, result.Errors[0].Code)
}

func TestValidateField_Array(t *testing.T) {
	item := Object(
		Field("productId", Integer().Require()),
		Field("quantity", Integer().Require().AtLeast(1)),
	)

	t.Run("min items", func(t *testing.T) {
		result := ValidateField("products", LocationBody, []any{}, Array(item).NonEmptyArray())
		require.Len(t, result.Errors, 1)
		assert.Equal(t, ErrCodeMinItems, result.Errors[0].Code)
		assert.Equal(t, `"products" must contain at least 1 item`, result.Errors[0].Message)
	})

	t.Run("reports every bad item", func(t *testing.T) {
		bad := []any{
			map[string]any{"productId": float64(1), "quantity": float64(0)},
			map[string]any{"productId": "x", "quantity": float64(1)},
		}
		result := ValidateField("products", LocationBody, bad, Array(item))
		require.Len(t, result.Errors, 2)
		assert.Equal(t, "products[0].quantity", result.Errors[0].Field)
		assert.Equal(t, "products[1].productId", result.Errors[1].Field)
	})

	t.Run("stops at first bad item", func(t *testing.T) {
		bad := []any{
			map[string]any{"productId": float64(1), "quantity": float64(2)},
			map[string]any{"quantity": float64(1)},
			map[string]any{"productId": "x"},
		}
		rule := Array(Object(
			Field("productId", Integer().Require()),
			Field("quantity", Integer().Require().AtLeast(1)),
		).WithMessage(`Each product must have valid "productId" and positive "quantity"`)).FirstItemOnly()

		result := ValidateField("products", LocationBody, bad, rule)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, `Each product must have valid "productId" and positive "quantity"`, result.Errors[0].Message)
		assert.True(t, result.Failed("products"))
	})
}

func TestValidateField_Message(t *testing.T) {
	rule := Number().Require().AtLeast(1).AtMost(5).WithMessage("Rating must be between 1 and 5")

	for _, v := range []any{float64(1), float64(5), 4.5} {
		assert.False(t, ValidateField("rating", LocationBody, v, rule).HasErrors(), "value %v", v)
	}
	for _, v := range []any{float64(0), float64(9), 5.1, "five"} {
		result := ValidateField("rating", LocationBody, v, rule)
		require.Len(t, result.Errors, 1, "value %v", v)
		assert.Equal(t, "Rating must be between 1 and 5", result.Errors[0].Message)
	}
}

func TestSchema_Validate(t *testing.T) {
	schema := &Schema{Properties: []Property{
		Field("userId", Integer().Require().AtLeast(1)),
		Field("title", String().Require()),
		Field("completed", Boolean()),
	}}

	t.Run("create requires fields in declaration order", func(t *testing.T) {
		result := schema.Validate(map[string]any{}, ModeCreate)
		assert.Equal(t, []string{`"userId" is required`, `"title" is required`}, result.Messages())
	})

	t.Run("create accepts a valid body", func(t *testing.T) {
		result := schema.Validate(map[string]any{"userId": float64(1), "title": "x"}, ModeCreate)
		assert.True(t, result.Valid)
		assert.Empty(t, result.Messages())
	})

	t.Run("update checks only present fields", func(t *testing.T) {
		result := schema.Validate(map[string]any{"completed": true}, ModeUpdate)
		assert.True(t, result.Valid)

		result = schema.Validate(map[string]any{"completed": "yes"}, ModeUpdate)
		assert.Equal(t, []string{`"completed" must be a boolean`}, result.Messages())
	})

	t.Run("unknown fields are accepted", func(t *testing.T) {
		result := schema.Validate(map[string]any{"userId": float64(1), "title": "x", "extra": 1}, ModeCreate)
		assert.True(t, result.Valid)
	})

	t.Run("non-object body", func(t *testing.T) {
		for _, body := range []any{nil, "text", []any{}, float64(1)} {
			result := schema.Validate(body, ModeCreate)
			assert.Equal(t, []string{MessageInvalidBody}, result.Messages())
		}
	})

	t.Run("failed tracks fields", func(t *testing.T) {
		result := schema.Validate(map[string]any{"userId": "1", "title": "x"}, ModeCreate)
		assert.True(t, result.Failed("userId"))
		assert.False(t, result.Failed("title"))
	})
}

func TestSchema_RequiredFields(t *testing.T) {
	schema := &Schema{Properties: []Property{
		Field("name", String().Require()),
		Field("avatar", String()),
	}}

	assert.Equal(t, []string{"name"}, schema.RequiredFields())
}
