package api

import (
	"fmt"
	"strings"
)

// Order одна колонка сортировки
type Order struct {
	Column string
	Desc   bool
}

// ParseOrder parses the order parameter: "col", "col.asc" or "col.desc",
// several separated by commas.
func ParseOrder(raw string) ([]Order, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	orders := make([]Order, 0, len(parts))
	for _, part := range parts {
		column, dir, _ := strings.Cut(strings.TrimSpace(part), ".")
		if column == "" {
			return nil, fmt.Errorf("order: empty column in %q", raw)
		}

		o := Order{Column: column}
		switch dir {
		case "", "asc":
		case "desc":
			o.Desc = true
		default:
			return nil, fmt.Errorf("order %s: unknown direction %q", column, dir)
		}
		orders = append(orders, o)
	}
	return orders, nil
}
