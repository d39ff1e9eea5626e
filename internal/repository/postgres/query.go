package postgres

import (
	"fmt"
	"strings"

	"github.com/Dhoini/customer-service/internal/criteria"
	"github.com/Dhoini/customer-service/internal/domain"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// whereClause renders criteria as a parameterised conjunction. Placeholders start at $1.
func whereClause(crit criteria.Criteria) (string, []any, error) {
	if len(crit) == 0 {
		return "", nil, nil
	}

	conds := make([]string, 0, len(crit))
	args := make([]any, 0, len(crit))
	for _, p := range crit {
		n := len(args) + 1
		col := string(p.Field)
		switch p.Op {
		case criteria.OpContains:
			v, _ := p.Value.(string)
			conds = append(conds, fmt.Sprintf("%s ILIKE $%d", col, n))
			args = append(args, "%"+likeEscaper.Replace(v)+"%")
		case criteria.OpPrefix:
			v, _ := p.Value.(string)
			conds = append(conds, fmt.Sprintf("%s LIKE $%d", col, n))
			args = append(args, likeEscaper.Replace(v)+"%")
		case criteria.OpEquals:
			conds = append(conds, fmt.Sprintf("%s = $%d", col, n))
			args = append(args, equalsArg(p.Value))
		case criteria.OpGreaterOrEqual:
			d, ok := p.Value.(decimal.Decimal)
			if !ok {
				return "", nil, fmt.Errorf("unexpected value %T for %s", p.Value, col)
			}
			conds = append(conds, fmt.Sprintf("%s >= $%d", col, n))
			args = append(args, d)
		case criteria.OpContainsAll:
			list, _ := p.Value.([]domain.Interest)
			conds = append(conds, fmt.Sprintf("%s @> $%d", col, n))
			args = append(args, interestArray(list))
		default:
			return "", nil, fmt.Errorf("unsupported operator %d for %s", p.Op, col)
		}
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func equalsArg(v any) any {
	switch t := v.(type) {
	case domain.Gender:
		return string(t)
	case domain.MaritalStatus:
		return string(t)
	default:
		return v
	}
}

func interestArray(list []domain.Interest) pq.StringArray {
	out := make(pq.StringArray, len(list))
	for i, v := range list {
		out[i] = string(v)
	}
	return out
}
