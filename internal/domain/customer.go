package domain

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MinCategory = 0
	MaxCategory = 9
)

// Customer представляет собой модель клиента
type Customer struct {
	ID            uuid.UUID     `json:"id"`
	Version       int           `json:"version"`
	LastName      string        `json:"lastName" validate:"required,lastname"`
	Email         string        `json:"email" validate:"required,email"`
	Category      int           `json:"category" validate:"min=0,max=9"`
	Newsletter    bool          `json:"newsletterOptIn"`
	BirthDate     *Date         `json:"birthDate,omitempty" validate:"omitempty,past"`
	Revenue       *Revenue      `json:"revenue,omitempty"`
	Homepage      string        `json:"homepage,omitempty" validate:"omitempty,url"`
	Gender        Gender        `json:"gender,omitempty"`
	MaritalStatus MaritalStatus `json:"maritalStatus,omitempty"`
	Interests     []Interest    `json:"interests,omitempty"`
	Address       Address       `json:"address"`
	Username      string        `json:"username,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// Address адрес клиента, обязателен
type Address struct {
	PostalCode string `json:"postalCode" validate:"required,len=5,number"`
	City       string `json:"city" validate:"required"`
}

// Revenue оборот клиента
type Revenue struct {
	Amount   decimal.Decimal `json:"amount" validate:"gte=0"`
	Currency string          `json:"currency" validate:"required,iso4217"`
}

// Clone возвращает глубокую копию клиента
func (c Customer) Clone() Customer {
	out := c
	if c.BirthDate != nil {
		d := *c.BirthDate
		out.BirthDate = &d
	}
	if c.Revenue != nil {
		r := *c.Revenue
		out.Revenue = &r
	}
	out.Interests = slices.Clone(c.Interests)
	return out
}

// Merge переносит изменяемые поля из in. ID, версия, username и дата создания остаются.
func (c *Customer) Merge(in Customer) {
	in = in.Clone()
	c.LastName = in.LastName
	c.Email = in.Email
	c.Category = in.Category
	c.Newsletter = in.Newsletter
	c.BirthDate = in.BirthDate
	c.Revenue = in.Revenue
	c.Homepage = in.Homepage
	c.Gender = in.Gender
	c.MaritalStatus = in.MaritalStatus
	c.Interests = in.Interests
	c.Address = in.Address
}

// HasInterest проверяет наличие интереса
func (c Customer) HasInterest(i Interest) bool {
	return slices.Contains(c.Interests, i)
}

const dateLayout = "2006-01-02" // yyyy-MM-dd

// Date дата без времени (дата рождения)
type Date struct {
	time.Time
}

// NewDate создает дату в UTC
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate разбирает дату в формате yyyy-MM-dd
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date format: %v", err)
	}
	return Date{Time: t}, nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	if s == "" {
		d.Time = time.Time{}
		return nil
	}

	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.Time.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(d.Format(dateLayout))
}

func (d Date) String() string {
	return d.Format(dateLayout)
}
