package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Gender пол клиента
type Gender string

const (
	GenderMale    Gender = "M"
	GenderFemale  Gender = "F"
	GenderDiverse Gender = "D"
)

// MaritalStatus семейное положение
type MaritalStatus string

const (
	MaritalStatusSingle   MaritalStatus = "S"
	MaritalStatusMarried  MaritalStatus = "M"
	MaritalStatusDivorced MaritalStatus = "D"
	MaritalStatusWidowed  MaritalStatus = "W"
)

// Interest интерес клиента
type Interest string

const (
	InterestSports  Interest = "S"
	InterestReading Interest = "R"
	InterestTravel  Interest = "T"
)

// enumTable maps lowercased short values and long names to enum members.
type enumTable[T ~string] map[string]T

func newEnumTable[T ~string](names map[T]string) enumTable[T] {
	t := make(enumTable[T], len(names)*2)
	for v, name := range names {
		t[strings.ToLower(string(v))] = v
		t[strings.ToLower(name)] = v
	}
	return t
}

func (t enumTable[T]) parse(s string) (T, bool) {
	v, ok := t[strings.ToLower(strings.TrimSpace(s))]
	return v, ok
}

var (
	genders = newEnumTable(map[Gender]string{
		GenderMale:    "male",
		GenderFemale:  "female",
		GenderDiverse: "diverse",
	})
	maritalStatuses = newEnumTable(map[MaritalStatus]string{
		MaritalStatusSingle:   "single",
		MaritalStatusMarried:  "married",
		MaritalStatusDivorced: "divorced",
		MaritalStatusWidowed:  "widowed",
	})
	interests = newEnumTable(map[Interest]string{
		InterestSports:  "sports",
		InterestReading: "reading",
		InterestTravel:  "travel",
	})
)

// ParseGender accepts the short value or the name in any casing.
func ParseGender(s string) (Gender, bool) { return genders.parse(s) }

// ParseMaritalStatus accepts the short value or the name in any casing.
func ParseMaritalStatus(s string) (MaritalStatus, bool) { return maritalStatuses.parse(s) }

// ParseInterest accepts the short value or the name in any casing.
func ParseInterest(s string) (Interest, bool) { return interests.parse(s) }

func unmarshalEnum[T ~string](b []byte, parse func(string) (T, bool), kind string) (T, error) {
	var zero T
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return zero, err
	}
	if s == "" {
		return zero, nil
	}
	v, ok := parse(s)
	if !ok {
		return zero, fmt.Errorf("%q is not a valid %s", s, kind)
	}
	return v, nil
}

func (g *Gender) UnmarshalJSON(b []byte) error {
	v, err := unmarshalEnum(b, ParseGender, "gender")
	if err != nil {
		return err
	}
	*g = v
	return nil
}

func (m *MaritalStatus) UnmarshalJSON(b []byte) error {
	v, err := unmarshalEnum(b, ParseMaritalStatus, "marital status")
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func (i *Interest) UnmarshalJSON(b []byte) error {
	v, err := unmarshalEnum(b, ParseInterest, "interest")
	if err != nil {
		return err
	}
	*i = v
	return nil
}
