package catalog

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Criteria narrows a listing. The zero value is not the default: use
// DefaultCriteria, which leaves price unbounded and shows in-stock items only.
type Criteria struct {
	MinPrice float64
	MaxPrice float64
	InStock  bool
	Seller   string
	Category string
}

func DefaultCriteria() Criteria {
	return Criteria{
		MinPrice: 0,
		MaxPrice: math.Inf(1),
		InStock:  true,
	}
}

func (c Criteria) priceUnbounded() bool {
	return c.MinPrice <= 0 && math.IsInf(c.MaxPrice, 1)
}

// Match reports whether p satisfies every predicate of c.
func (c Criteria) Match(p Product) bool {
	if p.Price == nil {
		if !c.priceUnbounded() {
			return false
		}
	} else {
		price := p.Price.InexactFloat64()
		if price < c.MinPrice || price > c.MaxPrice {
			return false
		}
	}

	if c.InStock && (p.Stock == nil || *p.Stock <= 0) {
		return false
	}

	if c.Seller != "" && !strings.Contains(strings.ToLower(p.Seller), strings.ToLower(c.Seller)) {
		return false
	}

	if c.Category != "" && !strings.EqualFold(strings.TrimSpace(p.Category), strings.TrimSpace(c.Category)) {
		return false
	}

	return true
}

// FilterProducts returns the products matching c in their original order.
func FilterProducts(all []Product, c Criteria) []Product {
	out := make([]Product, 0, len(all))
	for _, p := range all {
		if c.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// SearchByName is the type-ahead lookup: a case-insensitive substring match
// on the name. An empty term matches nothing. limit <= 0 means no limit.
func SearchByName(all []Product, term string, limit int) []Product {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return []Product{}
	}

	out := make([]Product, 0)
	for _, p := range all {
		if !strings.Contains(strings.ToLower(p.Name), term) {
			continue
		}
		out = append(out, p)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// ParseCriteria reads criteria from query parameters, starting from the
// defaults. An empty parameter keeps its default.
func ParseCriteria(q url.Values) (Criteria, error) {
	c := DefaultCriteria()
	var fields []FieldError

	parseFloat := func(key string, dst *float64) {
		raw := strings.TrimSpace(q.Get(key))
		if raw == "" {
			return
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) {
			fields = append(fields, FieldError{Field: key, Message: fmt.Sprintf("%q is not a number", raw)})
			return
		}
		*dst = v
	}
	parseFloat("minPrice", &c.MinPrice)
	parseFloat("maxPrice", &c.MaxPrice)

	if raw := strings.TrimSpace(q.Get("inStock")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			fields = append(fields, FieldError{Field: "inStock", Message: fmt.Sprintf("%q is not a boolean", raw)})
		} else {
			c.InStock = v
		}
	}

	c.Seller = strings.TrimSpace(q.Get("seller"))
	c.Category = strings.TrimSpace(q.Get("category"))

	if len(fields) == 0 && c.MinPrice > c.MaxPrice {
		fields = append(fields, FieldError{Field: "minPrice", Message: "minPrice must not exceed maxPrice"})
	}

	if len(fields) > 0 {
		return Criteria{}, &ValidationError{Message: "invalid filter", Fields: fields}
	}
	return c, nil
}
