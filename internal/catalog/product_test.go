package catalog

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requireSameProduct compares decimals by value rather than representation.
func requireSameProduct(t *testing.T, want, got Product) {
	t.Helper()

	require.Equal(t, want.ID, got.ID)
	require.Equal(t, want.Name, got.Name)
	require.Equal(t, want.Seller, got.Seller)
	require.Equal(t, want.Category, got.Category)
	require.Equal(t, want.Stock, got.Stock)
	require.ElementsMatch(t, want.ImageURLs, got.ImageURLs)

	requireSameDecimal(t, want.Price, got.Price)
	requireSameDecimal(t, want.DiscountPrice, got.DiscountPrice)
}

func requireSameDecimal(t *testing.T, want, got *decimal.Decimal) {
	t.Helper()
	if want == nil || got == nil {
		require.Equal(t, want == nil, got == nil, "optional price presence")
		return
	}
	require.True(t, want.Equal(*got), "price %s != %s", want, got)
}

func TestDraftCommit(t *testing.T) {
	d := chairDraft()
	d.Name = "  Chair "
	d.ImageURLs = []string{"a.jpg", ""}

	p, err := d.Commit()
	require.NoError(t, err)

	assert.Empty(t, p.ID)
	assert.Equal(t, "Chair", p.Name)
	require.NotNil(t, p.Stock)
	assert.Equal(t, 5, *p.Stock)
	require.NotNil(t, p.Price)
	assert.Equal(t, "20.00", p.Price.StringFixed(2))
	assert.Nil(t, p.DiscountPrice, "absent discount stays absent")
	assert.Equal(t, []string{"a.jpg", ""}, p.ImageURLs)
}

func TestDraftCommit_StockZeroIsNotAbsent(t *testing.T) {
	d := chairDraft()
	d.Stock = "0"
	p, err := d.Commit()
	require.NoError(t, err)
	require.NotNil(t, p.Stock)
	assert.Equal(t, 0, *p.Stock)

	d.Stock = ""
	p, err = d.Commit()
	require.NoError(t, err)
	assert.Nil(t, p.Stock)
}

func TestProductJSON_RoundTrip(t *testing.T) {
	p := Product{
		ID:            "p1",
		Name:          "Chair",
		Seller:        "acme-1",
		Stock:         intp(0),
		Price:         decp("20"),
		DiscountPrice: decp("15.5"),
		Category:      "Furniture",
		ImageURLs:     []string{"a.jpg"},
	}

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"p1","name":"Chair","seller":"acme-1","stock":0,"price":20.00,
		"discountPrice":15.50,"category":"Furniture","imageURLs":["a.jpg"]}`, string(raw))

	var back Product
	require.NoError(t, json.Unmarshal(raw, &back))
	requireSameProduct(t, p, back)
}

func TestProductJSON_OmitsAbsentFields(t *testing.T) {
	raw, err := json.Marshal(Product{ID: "p1", Name: "Poster", Seller: "prints", Category: "Decor"})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.NotContains(t, m, "stock")
	assert.NotContains(t, m, "price")
	assert.NotContains(t, m, "discountPrice")
	assert.Equal(t, []any{}, m["imageURLs"])
}

func TestProductJSON_LegacyShapes(t *testing.T) {
	var p Product
	err := json.Unmarshal([]byte(`{
		"productId": "legacy-1",
		"name": "Lamp",
		"seller": "LightCo",
		"stock": "3",
		"price": "12.5",
		"discountPrice": "",
		"category": "Lighting",
		"imageURL": "lamp.jpg"
	}`), &p)
	require.NoError(t, err)

	assert.Equal(t, "legacy-1", p.ID)
	require.NotNil(t, p.Stock)
	assert.Equal(t, 3, *p.Stock)
	require.NotNil(t, p.Price)
	assert.Equal(t, "12.50", p.Price.StringFixed(2))
	assert.Nil(t, p.DiscountPrice)
	assert.Equal(t, []string{"lamp.jpg"}, p.ImageURLs)

	p = Product{}
	require.NoError(t, json.Unmarshal([]byte(`{"id":"x","name":"Rug"}`), &p))
	assert.NotNil(t, p.ImageURLs)
	assert.Empty(t, p.ImageURLs)

	assert.Error(t, json.Unmarshal([]byte(`{"id":"x","price":"free"}`), &p))
}

func TestProductJSON_RejectsOutOfRangeStock(t *testing.T) {
	for _, raw := range []string{
		`{"id":"x","stock":"18446744073709551617"}`,
		`{"id":"x","stock":9223372036854775808}`,
		`{"id":"x","stock":-3}`,
	} {
		var p Product
		assert.Error(t, json.Unmarshal([]byte(raw), &p), raw)
	}

	d := chairDraft()
	d.Stock = "9223372036854775808"
	_, err := d.Commit()
	assert.Error(t, err)
}

func TestProductDraftJSON_AcceptsNumbers(t *testing.T) {
	var d ProductDraft
	require.NoError(t, json.Unmarshal([]byte(`{
		"name": "Chair",
		"seller": "acme-1",
		"stock": 5,
		"price": 20.5,
		"discountPrice": null,
		"category": "Furniture"
	}`), &d))
	assert.Equal(t, "5", d.Stock)
	assert.Equal(t, "20.5", d.Price)
	assert.Empty(t, d.DiscountPrice)

	require.NoError(t, json.Unmarshal([]byte(`{"name":"Chair","price":"20.00"}`), &d))
	assert.Equal(t, "20.00", d.Price)
	assert.Empty(t, d.Stock)

	assert.Error(t, json.Unmarshal([]byte(`{"stock":true}`), &d))
	assert.Error(t, json.Unmarshal([]byte(`{"colour":"red"}`), &d))
}

func TestProductPatch_Apply(t *testing.T) {
	p, err := chairDraft().Commit()
	require.NoError(t, err)

	name, empty := "Stool", ""
	d := ProductPatch{Name: &name, Stock: &empty}.Apply(p.Draft())

	assert.Equal(t, "Stool", d.Name)
	assert.Equal(t, "", d.Stock)
	assert.Equal(t, "20.00", d.Price)
	assert.Equal(t, "acme-1", d.Seller)
}
