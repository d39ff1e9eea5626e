// Package patch применяет к клиенту изменения в стиле JSON-Patch.
package patch

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/Dhoini/customer-service/internal/domain"
)

// Пути, которые принимает Apply
const (
	PathLastName   = "/lastName"
	PathEmail      = "/email"
	PathCategory   = "/category"
	PathNewsletter = "/newsletterOptIn"
	PathHomepage   = "/homepage"
	PathInterests  = "/interests"
)

type replacer func(c *domain.Customer, value string) domain.ValidationErrors

var replacers = map[string]replacer{
	PathLastName: func(c *domain.Customer, v string) domain.ValidationErrors {
		if errs := domain.ValidateLastName(v); errs.HasErrors() {
			return errs
		}
		c.LastName = v
		return nil
	},
	PathEmail: func(c *domain.Customer, v string) domain.ValidationErrors {
		if errs := domain.ValidateEmail(v); errs.HasErrors() {
			return errs
		}
		c.Email = v
		return nil
	},
	PathCategory: func(c *domain.Customer, v string) domain.ValidationErrors {
		n, err := strconv.Atoi(v)
		if err != nil {
			return domain.ValidationErrors{{Field: "category", Message: fmt.Sprintf("%s is not a valid category", v)}}
		}
		if errs := domain.ValidateCategory(n); errs.HasErrors() {
			return errs
		}
		c.Category = n
		return nil
	},
	PathNewsletter: func(c *domain.Customer, v string) domain.ValidationErrors {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return domain.ValidationErrors{{Field: "newsletterOptIn", Message: fmt.Sprintf("%s is not a valid boolean", v)}}
		}
		c.Newsletter = b
		return nil
	},
	PathHomepage: func(c *domain.Customer, v string) domain.ValidationErrors {
		if errs := domain.ValidateHomepage(v); errs.HasErrors() {
			return errs
		}
		c.Homepage = v
		return nil
	},
}

// Apply выполняет сначала все replace, затем все add, затем все remove,
// каждая группа применяется слева направо к копии c.
// Некорректная операция не меняет запись и добавляет нарушение,
// решение о принятии результата остается за вызывающим.
func Apply(c domain.Customer, ops []domain.PatchOperation) (domain.Customer, domain.ValidationErrors) {
	out := c.Clone()
	var violations domain.ValidationErrors

	for _, op := range ops {
		if op.Op != domain.PatchReplace {
			continue
		}
		r, ok := replacers[op.Path]
		if !ok {
			violations = append(violations, unsupported(op))
			continue
		}
		violations = append(violations, r(&out, op.Value)...)
	}

	for _, op := range ops {
		if op.Op != domain.PatchAdd {
			continue
		}
		if op.Path != PathInterests {
			violations = append(violations, unsupported(op))
			continue
		}
		interest, ok := domain.ParseInterest(op.Value)
		if !ok {
			violations = append(violations, invalidInterest(op.Value))
			continue
		}
		out.Interests = append(out.Interests, interest)
	}

	for _, op := range ops {
		if op.Op != domain.PatchRemove {
			continue
		}
		if op.Path != PathInterests {
			violations = append(violations, unsupported(op))
			continue
		}
		interest, ok := domain.ParseInterest(op.Value)
		if !ok {
			violations = append(violations, invalidInterest(op.Value))
			continue
		}
		out.Interests = slices.DeleteFunc(out.Interests, func(i domain.Interest) bool {
			return i == interest
		})
	}

	for _, op := range ops {
		switch op.Op {
		case domain.PatchReplace, domain.PatchAdd, domain.PatchRemove:
		case "":
			violations = append(violations, domain.ValidationError{Field: op.Path, Message: "op is required"})
		default:
			violations = append(violations, domain.ValidationError{
				Field:   op.Path,
				Message: fmt.Sprintf("%s is not a supported operation", op.Op),
			})
		}
	}

	return out, violations
}

func unsupported(op domain.PatchOperation) domain.ValidationError {
	if op.Path == "" {
		return domain.ValidationError{Field: "path", Message: "path is required"}
	}
	return domain.ValidationError{
		Field:   op.Path,
		Message: fmt.Sprintf("%s %s is not supported", op.Op, op.Path),
	}
}

func invalidInterest(value string) domain.ValidationError {
	return domain.ValidationError{
		Field:   "interests",
		Message: fmt.Sprintf("%s is not a valid interest", value),
	}
}
