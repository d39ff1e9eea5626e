// Package criteria превращает параметры поиска в конъюнкцию
// предикатов по полям клиента.
package criteria

import (
	"slices"
	"strconv"
	"strings"

	"github.com/Dhoini/customer-service/internal/domain"
	"github.com/shopspring/decimal"
)

// Имена параметров запроса
const (
	ParamLastName      = "lastName"
	ParamEmail         = "email"
	ParamCategory      = "category"
	ParamPostalCode    = "postalCode"
	ParamCity          = "city"
	ParamMinRevenue    = "minRevenue"
	ParamGender        = "gender"
	ParamMaritalStatus = "maritalStatus"
	ParamInterests     = "interests"
)

// Field поле клиента, которое проверяет предикат
type Field string

const (
	FieldLastName      Field = "last_name"
	FieldEmail         Field = "email"
	FieldCategory      Field = "category"
	FieldPostalCode    Field = "postal_code"
	FieldCity          Field = "city"
	FieldRevenue       Field = "revenue_amount"
	FieldGender        Field = "gender"
	FieldMaritalStatus Field = "marital_status"
	FieldInterests     Field = "interests"
)

// Op вид сравнения в предикате
type Op int

const (
	// OpContains подстрока без учета регистра
	OpContains Op = iota
	// OpPrefix префикс с учетом регистра
	OpPrefix
	OpEquals
	OpGreaterOrEqual
	// OpContainsAll все перечисленные интересы должны присутствовать
	OpContainsAll
)

// Predicate одно условие. Тип Value зависит от Field: string, int, decimal.Decimal,
// domain.Gender, domain.MaritalStatus или []domain.Interest.
type Predicate struct {
	Field Field
	Op    Op
	Value any
}

// Criteria конъюнкция предикатов. Пустые критерии подходят под любую запись.
type Criteria []Predicate

type rule func(value string) (Predicate, bool)

var rules = map[string]rule{
	ParamLastName: func(v string) (Predicate, bool) {
		return Predicate{Field: FieldLastName, Op: OpContains, Value: v}, true
	},
	ParamEmail: func(v string) (Predicate, bool) {
		return Predicate{Field: FieldEmail, Op: OpContains, Value: v}, true
	},
	ParamCategory: func(v string) (Predicate, bool) {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return Predicate{}, false
		}
		return Predicate{Field: FieldCategory, Op: OpEquals, Value: n}, true
	},
	ParamPostalCode: func(v string) (Predicate, bool) {
		return Predicate{Field: FieldPostalCode, Op: OpPrefix, Value: v}, true
	},
	ParamCity: func(v string) (Predicate, bool) {
		return Predicate{Field: FieldCity, Op: OpContains, Value: v}, true
	},
	ParamMinRevenue: func(v string) (Predicate, bool) {
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return Predicate{}, false
		}
		return Predicate{Field: FieldRevenue, Op: OpGreaterOrEqual, Value: d}, true
	},
	ParamGender: func(v string) (Predicate, bool) {
		g, ok := domain.ParseGender(v)
		if !ok {
			return Predicate{}, false
		}
		return Predicate{Field: FieldGender, Op: OpEquals, Value: g}, true
	},
	ParamMaritalStatus: func(v string) (Predicate, bool) {
		m, ok := domain.ParseMaritalStatus(v)
		if !ok {
			return Predicate{}, false
		}
		return Predicate{Field: FieldMaritalStatus, Op: OpEquals, Value: m}, true
	},
	ParamInterests: parseInterests,
}

func parseInterests(v string) (Predicate, bool) {
	var list []domain.Interest
	for _, part := range strings.Split(v, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		i, ok := domain.ParseInterest(part)
		if !ok {
			return Predicate{}, false
		}
		list = append(list, i)
	}
	if len(list) == 0 {
		return Predicate{}, false
	}
	return Predicate{Field: FieldInterests, Op: OpContainsAll, Value: list}, true
}

// Build переводит параметры запроса в критерии. ok == false, если известный
// параметр пустой, повторяется или некорректен: тогда не подходит ни одна запись.
// Неизвестные параметры игнорируются.
func Build(params map[string][]string) (Criteria, bool) {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	// фиксированный порядок, чтобы SQL был стабильным
	slices.Sort(names)

	crit := make(Criteria, 0, len(names))
	for _, name := range names {
		r, known := rules[name]
		if !known {
			continue
		}
		values := params[name]
		if len(values) != 1 {
			return nil, false
		}
		p, ok := r(values[0])
		if !ok {
			return nil, false
		}
		crit = append(crit, p)
	}
	return crit, true
}

// IsEmailOnly сообщает, состоят ли params ровно из одного параметра email
func IsEmailOnly(params map[string][]string) bool {
	if len(params) != 1 {
		return false
	}
	_, ok := params[ParamEmail]
	return ok
}

// Matches проверяет критерии на клиенте в памяти
func (c Criteria) Matches(cu domain.Customer) bool {
	for _, p := range c {
		if !p.Matches(cu) {
			return false
		}
	}
	return true
}

// Matches проверяет один предикат
func (p Predicate) Matches(cu domain.Customer) bool {
	switch p.Field {
	case FieldLastName:
		return matchString(p, cu.LastName)
	case FieldEmail:
		return matchString(p, cu.Email)
	case FieldCity:
		return matchString(p, cu.Address.City)
	case FieldPostalCode:
		return matchString(p, cu.Address.PostalCode)
	case FieldCategory:
		n, _ := p.Value.(int)
		return cu.Category == n
	case FieldRevenue:
		threshold, _ := p.Value.(decimal.Decimal)
		return cu.Revenue != nil && cu.Revenue.Amount.GreaterThanOrEqual(threshold)
	case FieldGender:
		g, _ := p.Value.(domain.Gender)
		return cu.Gender == g
	case FieldMaritalStatus:
		m, _ := p.Value.(domain.MaritalStatus)
		return cu.MaritalStatus == m
	case FieldInterests:
		list, _ := p.Value.([]domain.Interest)
		for _, i := range list {
			if !cu.HasInterest(i) {
				return false
			}
		}
		return true
	}
	return false
}

func matchString(p Predicate, actual string) bool {
	want, _ := p.Value.(string)
	switch p.Op {
	case OpContains:
		return strings.Contains(strings.ToLower(actual), strings.ToLower(want))
	case OpPrefix:
		return strings.HasPrefix(actual, want)
	case OpEquals:
		return actual == want
	}
	return false
}
