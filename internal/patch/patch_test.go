package patch

import (
	"strings"
	"testing"

	"github.com/Dhoini/customer-service/internal/domain"
	"github.com/Dhoini/customer-service/pkg/req"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func base() domain.Customer {
	return domain.Customer{
		LastName:  "Miller",
		Email:     "miller@example.com",
		Category:  1,
		Interests: []domain.Interest{domain.InterestSports},
		Address:   domain.Address{PostalCode: "12345", City: "Berlin"},
	}
}

func TestApply_ReplaceFields(t *testing.T) {
	out, violations := Apply(base(), []domain.PatchOperation{
		{Op: "replace", Path: "/lastName", Value: "Smith"},
		{Op: "replace", Path: "/email", Value: "smith@example.com"},
		{Op: "replace", Path: "/category", Value: "7"},
		{Op: "replace", Path: "/newsletterOptIn", Value: "true"},
		{Op: "replace", Path: "/homepage", Value: "https://smith.example.com"},
	})

	assert.Empty(t, violations)
	assert.Equal(t, "Smith", out.LastName)
	assert.Equal(t, "smith@example.com", out.Email)
	assert.Equal(t, 7, out.Category)
	assert.True(t, out.Newsletter)
	assert.Equal(t, "https://smith.example.com", out.Homepage)
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	in := base()
	_, _ = Apply(in, []domain.PatchOperation{
		{Op: "replace", Path: "/lastName", Value: "Smith"},
		{Op: "add", Path: "/interests", Value: "R"},
		{Op: "remove", Path: "/interests", Value: "S"},
	})

	assert.Equal(t, "Miller", in.LastName)
	assert.Equal(t, []domain.Interest{domain.InterestSports}, in.Interests)
}

func TestApply_RemoveRunsAfterAddRegardlessOfInputOrder(t *testing.T) {
	c := base()
	c.Interests = nil

	for name, ops := range map[string][]domain.PatchOperation{
		"add then remove": {
			{Op: "add", Path: "/interests", Value: "T"},
			{Op: "remove", Path: "/interests", Value: "T"},
		},
		"remove then add": {
			{Op: "remove", Path: "/interests", Value: "T"},
			{Op: "add", Path: "/interests", Value: "T"},
		},
	} {
		t.Run(name, func(t *testing.T) {
			out, violations := Apply(c, ops)
			assert.Empty(t, violations)
			assert.NotContains(t, out.Interests, domain.InterestTravel)
		})
	}
}

func TestApply_ViolationsAccumulate(t *testing.T) {
	out, violations := Apply(base(), []domain.PatchOperation{
		{Op: "replace", Path: "/email", Value: "bad"},
		{Op: "add", Path: "/interests", Value: "NOTATAG"},
	})

	require.Len(t, violations, 2)
	assert.Equal(t, "email must be a valid email address", violations[0].Message)
	assert.Equal(t, "NOTATAG is not a valid interest", violations[1].Message)
	assert.Equal(t, "miller@example.com", out.Email)
	assert.Equal(t, []domain.Interest{domain.InterestSports}, out.Interests)
}

func TestApply_ViolationsInPassOrder(t *testing.T) {
	_, violations := Apply(base(), []domain.PatchOperation{
		{Op: "remove", Path: "/interests", Value: "x"},
		{Op: "add", Path: "/interests", Value: "y"},
		{Op: "replace", Path: "/lastName", Value: "lower"},
	})

	require.Len(t, violations, 3)
	assert.Equal(t, "lastName", violations[0].Field)
	assert.Equal(t, "y is not a valid interest", violations[1].Message)
	assert.Equal(t, "x is not a valid interest", violations[2].Message)
}

func TestApply_FoldsEveryOperationInPass(t *testing.T) {
	c := base()
	c.Interests = nil

	out, violations := Apply(c, []domain.PatchOperation{
		{Op: "add", Path: "/interests", Value: "S"},
		{Op: "add", Path: "/interests", Value: "reading"},
		{Op: "add", Path: "/interests", Value: "S"},
		{Op: "replace", Path: "/lastName", Value: "Alpha"},
		{Op: "replace", Path: "/lastName", Value: "Beta"},
	})

	assert.Empty(t, violations)
	assert.Equal(t, "Beta", out.LastName)
	assert.Equal(t, []domain.Interest{domain.InterestSports, domain.InterestReading, domain.InterestSports}, out.Interests)
}

func TestApply_RemoveFiltersAllOccurrences(t *testing.T) {
	c := base()
	c.Interests = []domain.Interest{domain.InterestSports, domain.InterestTravel, domain.InterestSports}

	out, violations := Apply(c, []domain.PatchOperation{{Op: "remove", Path: "/interests", Value: "sports"}})

	assert.Empty(t, violations)
	assert.Equal(t, []domain.Interest{domain.InterestTravel}, out.Interests)
}

func TestApply_UnsupportedPathsAndOps(t *testing.T) {
	out, violations := Apply(base(), []domain.PatchOperation{
		{Op: "replace", Path: "/id", Value: "x"},
		{Op: "add", Path: "/email", Value: "x@y.z"},
		{Op: "move", Path: "/lastName", Value: "x"},
	})

	require.Len(t, violations, 3)
	assert.Equal(t, "replace /id is not supported", violations[0].Message)
	assert.Equal(t, "add /email is not supported", violations[1].Message)
	assert.Equal(t, "move is not a supported operation", violations[2].Message)
	assert.Equal(t, base(), out)
}

func TestApply_InvalidScalarReplacements(t *testing.T) {
	out, violations := Apply(base(), []domain.PatchOperation{
		{Op: "replace", Path: "/category", Value: "ten"},
		{Op: "replace", Path: "/category", Value: "10"},
		{Op: "replace", Path: "/newsletterOptIn", Value: "maybe"},
		{Op: "replace", Path: "/homepage", Value: "not a url"},
	})

	assert.Len(t, violations, 4)
	assert.Equal(t, 1, out.Category)
	assert.False(t, out.Newsletter)
	assert.Empty(t, out.Homepage)
}

func TestApply_MissingOpOrPathFromDecodedBody(t *testing.T) {
	ops, err := req.Decode[[]domain.PatchOperation](strings.NewReader(
		`[{"path":"/lastName","value":"Smith"},{"op":"replace","value":"Smith"}]`,
	))
	require.NoError(t, err)

	out, violations := Apply(base(), ops)

	require.Len(t, violations, 2)
	assert.Equal(t, "path is required", violations[0].Message)
	assert.Equal(t, "op is required", violations[1].Message)
	assert.Equal(t, "Miller", out.LastName)
}
