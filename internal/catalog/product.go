package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const priceScale = 2

// Product is a committed catalog entry. Stock, Price and DiscountPrice are
// optional: nil means the seller never set them, which is not the same as zero.
type Product struct {
	ID            string
	Name          string
	Seller        string
	Stock         *int
	Price         *decimal.Decimal
	DiscountPrice *decimal.Decimal
	Category      string
	ImageURLs     []string
}

// ProductDraft is form input as typed by the user, before validation.
type ProductDraft struct {
	Name          string   `json:"name"`
	Seller        string   `json:"seller"`
	Stock         string   `json:"stock"`
	Price         string   `json:"price"`
	DiscountPrice string   `json:"discountPrice"`
	Category      string   `json:"category"`
	ImageURLs     []string `json:"imageURLs"`
}

// UnmarshalJSON also accepts JSON numbers for stock, price and
// discountPrice, kept in their literal form for validation. Unknown fields
// are rejected.
func (d *ProductDraft) UnmarshalJSON(data []byte) error {
	var w struct {
		Name          string          `json:"name"`
		Seller        string          `json:"seller"`
		Stock         json.RawMessage `json:"stock"`
		Price         json.RawMessage `json:"price"`
		DiscountPrice json.RawMessage `json:"discountPrice"`
		Category      string          `json:"category"`
		ImageURLs     []string        `json:"imageURLs"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&w); err != nil {
		return err
	}

	stock, err := draftScalar(w.Stock)
	if err != nil {
		return fmt.Errorf("stock: %w", err)
	}
	price, err := draftScalar(w.Price)
	if err != nil {
		return fmt.Errorf("price: %w", err)
	}
	discount, err := draftScalar(w.DiscountPrice)
	if err != nil {
		return fmt.Errorf("discountPrice: %w", err)
	}

	*d = ProductDraft{
		Name:          w.Name,
		Seller:        w.Seller,
		Stock:         stock,
		Price:         price,
		DiscountPrice: discount,
		Category:      w.Category,
		ImageURLs:     w.ImageURLs,
	}
	return nil
}

// draftScalar reads a string or number as typed. Null reads as empty.
func draftScalar(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("want string or number, got %s", raw)
	}
	return n.String(), nil
}

// ProductPatch is a partial update. Nil fields are left untouched; a
// pointer to "" clears an optional numeric field.
type ProductPatch struct {
	Name          *string   `json:"name,omitempty"`
	Seller        *string   `json:"seller,omitempty"`
	Stock         *string   `json:"stock,omitempty"`
	Price         *string   `json:"price,omitempty"`
	DiscountPrice *string   `json:"discountPrice,omitempty"`
	Category      *string   `json:"category,omitempty"`
	ImageURLs     *[]string `json:"imageURLs,omitempty"`
}

// Commit converts a validated draft into a Product. The id is left empty;
// the store assigns it.
func (d ProductDraft) Commit() (Product, error) {
	d = d.normalized()

	stock, err := parseOptionalInt(d.Stock)
	if err != nil {
		return Product{}, fmt.Errorf("stock: %w", err)
	}
	price, err := parseOptionalDecimal(d.Price)
	if err != nil {
		return Product{}, fmt.Errorf("price: %w", err)
	}
	discount, err := parseOptionalDecimal(d.DiscountPrice)
	if err != nil {
		return Product{}, fmt.Errorf("discountPrice: %w", err)
	}

	images := make([]string, len(d.ImageURLs))
	copy(images, d.ImageURLs)

	return Product{
		Name:          d.Name,
		Seller:        d.Seller,
		Stock:         stock,
		Price:         price,
		DiscountPrice: discount,
		Category:      d.Category,
		ImageURLs:     images,
	}, nil
}

// Draft renders p back into form values, e.g. to prefill an edit form.
func (p Product) Draft() ProductDraft {
	d := ProductDraft{
		Name:      p.Name,
		Seller:    p.Seller,
		Category:  p.Category,
		ImageURLs: append([]string(nil), p.ImageURLs...),
	}
	if p.Stock != nil {
		d.Stock = strconv.Itoa(*p.Stock)
	}
	if p.Price != nil {
		d.Price = p.Price.StringFixed(priceScale)
	}
	if p.DiscountPrice != nil {
		d.DiscountPrice = p.DiscountPrice.StringFixed(priceScale)
	}
	return d
}

// Apply returns the draft obtained by overlaying patch onto d.
func (patch ProductPatch) Apply(d ProductDraft) ProductDraft {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&d.Name, patch.Name)
	set(&d.Seller, patch.Seller)
	set(&d.Stock, patch.Stock)
	set(&d.Price, patch.Price)
	set(&d.DiscountPrice, patch.DiscountPrice)
	set(&d.Category, patch.Category)
	if patch.ImageURLs != nil {
		d.ImageURLs = append([]string(nil), (*patch.ImageURLs)...)
	}
	return d
}

func (d ProductDraft) normalized() ProductDraft {
	d.Name = strings.TrimSpace(d.Name)
	d.Seller = strings.TrimSpace(d.Seller)
	d.Stock = strings.TrimSpace(d.Stock)
	d.Price = strings.TrimSpace(d.Price)
	d.DiscountPrice = strings.TrimSpace(d.DiscountPrice)
	d.Category = strings.TrimSpace(d.Category)
	return d
}

// wireProduct is the persisted and served JSON shape.
type wireProduct struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Seller        string          `json:"seller"`
	Stock         json.RawMessage `json:"stock,omitempty"`
	Price         json.RawMessage `json:"price,omitempty"`
	DiscountPrice json.RawMessage `json:"discountPrice,omitempty"`
	Category      string          `json:"category"`
	ImageURLs     []string        `json:"imageURLs"`

	// Shapes written by older clients.
	ProductID string `json:"productId,omitempty"`
	ImageURL  string `json:"imageURL,omitempty"`
}

func (p Product) MarshalJSON() ([]byte, error) {
	w := wireProduct{
		ID:        p.ID,
		Name:      p.Name,
		Seller:    p.Seller,
		Category:  p.Category,
		ImageURLs: p.ImageURLs,
	}
	if w.ImageURLs == nil {
		w.ImageURLs = []string{}
	}
	if p.Stock != nil {
		w.Stock = json.RawMessage(strconv.Itoa(*p.Stock))
	}
	if p.Price != nil {
		w.Price = json.RawMessage(p.Price.StringFixed(priceScale))
	}
	if p.DiscountPrice != nil {
		w.DiscountPrice = json.RawMessage(p.DiscountPrice.StringFixed(priceScale))
	}
	return json.Marshal(w)
}

// UnmarshalJSON accepts numbers stored as strings, a missing imageURLs list,
// a single legacy imageURL and a legacy productId.
func (p *Product) UnmarshalJSON(b []byte) error {
	var w wireProduct
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	stock, err := decodeOptionalInt(w.Stock)
	if err != nil {
		return fmt.Errorf("product %q stock: %w", w.ID, err)
	}
	price, err := decodeOptionalDecimal(w.Price)
	if err != nil {
		return fmt.Errorf("product %q price: %w", w.ID, err)
	}
	discount, err := decodeOptionalDecimal(w.DiscountPrice)
	if err != nil {
		return fmt.Errorf("product %q discountPrice: %w", w.ID, err)
	}

	id := w.ID
	if id == "" {
		id = w.ProductID
	}

	images := w.ImageURLs
	if images == nil {
		images = []string{}
		if w.ImageURL != "" {
			images = append(images, w.ImageURL)
		}
	}

	*p = Product{
		ID:            id,
		Name:          w.Name,
		Seller:        w.Seller,
		Stock:         stock,
		Price:         price,
		DiscountPrice: discount,
		Category:      w.Category,
		ImageURLs:     images,
	}
	return nil
}

// rawScalar unwraps a JSON number or string. ok is false for absent, null
// or empty-string values.
func rawScalar(raw json.RawMessage) (s string, ok bool, err error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false, nil
	}
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false, err
		}
		s = strings.TrimSpace(s)
		return s, s != "", nil
	}
	return string(raw), true, nil
}

func decodeOptionalDecimal(raw json.RawMessage) (*decimal.Decimal, error) {
	s, ok, err := rawScalar(raw)
	if err != nil || !ok {
		return nil, err
	}
	return parseOptionalDecimal(s)
}

func decodeOptionalInt(raw json.RawMessage) (*int, error) {
	s, ok, err := rawScalar(raw)
	if err != nil || !ok {
		return nil, err
	}
	return parseOptionalInt(s)
}

func parseOptionalDecimal(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	d = d.Round(priceScale)
	return &d, nil
}

// parseOptionalInt accepts non-negative integral decimals such as "5" or
// "5.0" that fit in an int.
func parseOptionalInt(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	if !d.IsInteger() {
		return nil, fmt.Errorf("%q is not a whole number", s)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("%q is negative", s)
	}
	if d.GreaterThan(maxStock) {
		return nil, fmt.Errorf("%q is too large", s)
	}
	n := int(d.IntPart())
	return &n, nil
}
