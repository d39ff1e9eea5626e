package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCustomer() Customer {
	birth := NewDate(1990, time.March, 14)
	return Customer{
		ID:         uuid.New(),
		LastName:   "Miller",
		Email:      "miller@example.com",
		Category:   3,
		Newsletter: true,
		BirthDate:  &birth,
		Revenue:    &Revenue{Amount: decimal.RequireFromString("120.50"), Currency: "EUR"},
		Homepage:   "https://example.com",
		Gender:     GenderFemale,
		Interests:  []Interest{InterestSports, InterestTravel},
		Address:    Address{PostalCode: "76133", City: "Karlsruhe"},
	}
}

func TestValidateCustomer_Valid(t *testing.T) {
	assert.Empty(t, ValidateCustomer(validCustomer()))
}

func TestValidateCustomer_CollectsAllViolations(t *testing.T) {
	c := validCustomer()
	c.LastName = "miller"
	c.Email = "not-an-email"
	c.Category = 12
	c.Address = Address{}

	violations := ValidateCustomer(c)

	assert.ElementsMatch(t,
		[]string{"lastName", "email", "category", "address.postalCode", "address.city"},
		violations.Fields())
	assert.Equal(t, "category must be at most 9", violations.GetByField("category"))
	assert.Equal(t, "address.city is required", violations.GetByField("address.city"))
}

func TestValidateCustomer_BirthDateInFuture(t *testing.T) {
	c := validCustomer()
	future := Date{Time: time.Now().AddDate(1, 0, 0)}
	c.BirthDate = &future

	violations := ValidateCustomer(c)

	require.Len(t, violations, 1)
	assert.Equal(t, "birthDate must be in the past", violations[0].Message)
}

func TestValidateCustomer_Revenue(t *testing.T) {
	c := validCustomer()
	c.Revenue = &Revenue{Amount: decimal.NewFromInt(-1), Currency: "euro"}

	violations := ValidateCustomer(c)

	assert.ElementsMatch(t, []string{"revenue.amount", "revenue.currency"}, violations.Fields())
}

func TestValidateLastName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"Miller", true},
		{"Miller-Smith", true},
		{"von Alpha", true},
		{"o'Brien", true},
		{"Müller", true},
		{"miller", false},
		{"Miller-", false},
		{"", false},
		{"M1ller", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := ValidateLastName(tt.name)
			assert.Equal(t, tt.valid, len(violations) == 0, "violations: %v", violations)
		})
	}
}

func TestValidateEmail(t *testing.T) {
	assert.Empty(t, ValidateEmail("a@b.com"))

	violations := ValidateEmail("bad")
	require.Len(t, violations, 1)
	assert.Equal(t, "email must be a valid email address", violations[0].Message)

	violations = ValidateEmail("")
	require.Len(t, violations, 1)
	assert.Equal(t, "email is required", violations[0].Message)
}

func TestParseEnums_CaseInsensitive(t *testing.T) {
	for _, s := range []string{"m", "M", "male", "MALE", "Male"} {
		g, ok := ParseGender(s)
		assert.True(t, ok, s)
		assert.Equal(t, GenderMale, g)
	}

	ms, ok := ParseMaritalStatus("Widowed")
	assert.True(t, ok)
	assert.Equal(t, MaritalStatusWidowed, ms)

	i, ok := ParseInterest("r")
	assert.True(t, ok)
	assert.Equal(t, InterestReading, i)

	_, ok = ParseInterest("NOTATAG")
	assert.False(t, ok)
}

func TestCustomerJSON_EnumsAndDate(t *testing.T) {
	payload := `{"lastName":"Miller","email":"a@b.com","gender":"female","maritalStatus":"m",
		"interests":["sports","T"],"birthDate":"1990-03-14","address":{"postalCode":"12345","city":"X"}}`

	var c Customer
	require.NoError(t, json.Unmarshal([]byte(payload), &c))

	assert.Equal(t, GenderFemale, c.Gender)
	assert.Equal(t, MaritalStatusMarried, c.MaritalStatus)
	assert.Equal(t, []Interest{InterestSports, InterestTravel}, c.Interests)
	require.NotNil(t, c.BirthDate)
	assert.Equal(t, "1990-03-14", c.BirthDate.String())

	out, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"birthDate":"1990-03-14"`)
	assert.Contains(t, string(out), `"gender":"F"`)
}

func TestCustomerJSON_UnknownEnum(t *testing.T) {
	var c Customer
	err := json.Unmarshal([]byte(`{"gender":"x"}`), &c)
	assert.Error(t, err)
}

func TestCustomer_MergeKeepsIdentity(t *testing.T) {
	stored := validCustomer()
	stored.Version = 4
	stored.Username = "miller"
	created := time.Now().Add(-time.Hour)
	stored.CreatedAt = created

	in := validCustomer()
	in.LastName = "Smith"
	in.Email = "smith@example.com"
	in.Interests = []Interest{InterestReading}
	in.Username = "someone-else"
	in.Version = 99

	stored.Merge(in)

	assert.Equal(t, "Smith", stored.LastName)
	assert.Equal(t, "smith@example.com", stored.Email)
	assert.Equal(t, []Interest{InterestReading}, stored.Interests)
	assert.Equal(t, "miller", stored.Username)
	assert.Equal(t, 4, stored.Version)
	assert.Equal(t, created, stored.CreatedAt)

	in.Interests[0] = InterestSports
	assert.Equal(t, InterestReading, stored.Interests[0], "merge must not alias slices")
}

func TestCustomer_Clone(t *testing.T) {
	c := validCustomer()
	cp := c.Clone()

	cp.Revenue.Currency = "USD"
	cp.Interests[0] = InterestReading

	assert.Equal(t, "EUR", c.Revenue.Currency)
	assert.Equal(t, InterestSports, c.Interests[0])
}

func TestDuplicateError_Is(t *testing.T) {
	emailDup := NewDuplicateError("customer", "email", "a@b.com")
	assert.True(t, errors.Is(emailDup, ErrDuplicate))
	assert.True(t, errors.Is(emailDup, ErrEmailExists))
	assert.False(t, errors.Is(emailDup, ErrUsernameExists))

	userDup := fmt.Errorf("create account: %w", NewDuplicateError("account", "username", "bob"))
	assert.True(t, errors.Is(userDup, ErrUsernameExists))
}

func TestVersionError_Is(t *testing.T) {
	err := &VersionError{Supplied: "1", Stored: 2, Reason: "stale"}
	assert.ErrorIs(t, err, ErrInvalidVersion)
	assert.Contains(t, err.Error(), "stored 2")
}
