package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldMessage(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	var ferr *FieldError
	require.ErrorAs(t, err, &ferr)
	return ferr.Message
}

func TestValidateField_Name(t *testing.T) {
	assert.NoError(t, ValidateField(FieldName, "Abc", ProductDraft{}))
	assert.NoError(t, ValidateField(FieldName, "Office Chair", ProductDraft{}))

	assert.Error(t, ValidateField(FieldName, "1abc", ProductDraft{}))
	assert.Error(t, ValidateField(FieldName, "Chair2", ProductDraft{}))
	assert.Equal(t, "Product name is required", fieldMessage(t, ValidateField(FieldName, "  ", ProductDraft{})))
	assert.Error(t, ValidateField(FieldName, " Abc", ProductDraft{}), "value is matched as typed")
}

func TestValidateField_Seller(t *testing.T) {
	for _, ok := range []string{"acme-1", "9lives", "shop.example", "Big Store"} {
		assert.NoError(t, ValidateField(FieldSeller, ok, ProductDraft{}), ok)
	}
	for _, bad := range []string{"", "-acme", ".shop", "acme_1", "acme!"} {
		assert.Error(t, ValidateField(FieldSeller, bad, ProductDraft{}), bad)
	}
}

func TestValidateField_Numbers(t *testing.T) {
	assert.NoError(t, ValidateField(FieldStock, "", ProductDraft{}))
	assert.NoError(t, ValidateField(FieldStock, "0", ProductDraft{}))
	assert.NoError(t, ValidateField(FieldStock, "12", ProductDraft{}))
	assert.Error(t, ValidateField(FieldStock, "-1", ProductDraft{}))
	assert.Error(t, ValidateField(FieldStock, "1.5", ProductDraft{}))
	assert.Error(t, ValidateField(FieldStock, " 5", ProductDraft{}))
	assert.NoError(t, ValidateField(FieldStock, "   ", ProductDraft{}), "blank stock is absent")

	assert.NoError(t, ValidateField(FieldPrice, "", ProductDraft{}))
	assert.NoError(t, ValidateField(FieldPrice, "20", ProductDraft{}))
	assert.NoError(t, ValidateField(FieldPrice, "20.5", ProductDraft{}))
	assert.NoError(t, ValidateField(FieldPrice, "20.00", ProductDraft{}))
	assert.Error(t, ValidateField(FieldPrice, "20.001", ProductDraft{}))
	assert.Error(t, ValidateField(FieldPrice, "abc", ProductDraft{}))
	assert.Error(t, ValidateField(FieldPrice, ".5", ProductDraft{}))
}

func TestValidateField_DiscountBelowPrice(t *testing.T) {
	err := ValidateField(FieldDiscountPrice, "50", ProductDraft{Price: "40"})
	assert.Equal(t, "Discount price must be less than price", fieldMessage(t, err))

	assert.Error(t, ValidateField(FieldDiscountPrice, "40", ProductDraft{Price: "40.00"}))
	assert.NoError(t, ValidateField(FieldDiscountPrice, "50", ProductDraft{Price: "60"}))
	assert.NoError(t, ValidateField(FieldDiscountPrice, "50", ProductDraft{}))
	assert.NoError(t, ValidateField(FieldDiscountPrice, "", ProductDraft{Price: "10"}))
	assert.Error(t, ValidateField(FieldDiscountPrice, "5.123", ProductDraft{Price: "10"}))
}

func TestValidateField_Category(t *testing.T) {
	assert.NoError(t, ValidateField(FieldCategory, "Home Furniture", ProductDraft{}))
	assert.Error(t, ValidateField(FieldCategory, "", ProductDraft{}))
	assert.Error(t, ValidateField(FieldCategory, "Furniture2", ProductDraft{}))
}

func TestValidateField_UnknownField(t *testing.T) {
	err := ValidateField("colour", "red", ProductDraft{})
	assert.ErrorIs(t, err, ErrUnknownField)
}

func chairDraft() ProductDraft {
	return ProductDraft{
		Name:     "Chair",
		Seller:   "acme-1",
		Stock:    "5",
		Price:    "20.00",
		Category: "Furniture",
	}
}

func TestValidateForm(t *testing.T) {
	ok, errs := ValidateForm(chairDraft())
	assert.True(t, ok)
	assert.Empty(t, errs)

	d := chairDraft()
	d.Name = "1chair"
	d.Category = ""
	d.DiscountPrice = "25"
	ok, errs = ValidateForm(d)
	assert.False(t, ok)

	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, e.Field)
	}
	assert.Equal(t, []string{FieldName, FieldDiscountPrice, FieldCategory}, fields)
}

func TestValidateForm_PriceMustBePositive(t *testing.T) {
	d := chairDraft()
	d.Price = "0"
	ok, errs := ValidateForm(d)
	require.False(t, ok)
	require.Len(t, errs, 1)
	assert.Equal(t, FieldPrice, errs[0].Field)

	d.Price = ""
	ok, _ = ValidateForm(d)
	assert.True(t, ok, "price is optional")
}

func TestCheckForm(t *testing.T) {
	assert.NoError(t, CheckForm(chairDraft()))

	err := CheckForm(ProductDraft{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, FormInvalidMessage, verr.Message)
	assert.Len(t, verr.Fields, 3)
}

func TestValidateForm_StockMustFitInt(t *testing.T) {
	for _, stock := range []string{"9223372036854775808", "18446744073709551617"} {
		d := chairDraft()
		d.Stock = stock
		ok, errs := ValidateForm(d)
		require.False(t, ok, stock)
		require.Len(t, errs, 1)
		assert.Equal(t, FieldError{Field: FieldStock, Message: "Stock is too large"}, errs[0])
	}

	d := chairDraft()
	d.Stock = "9223372036854775807"
	ok, _ := ValidateForm(d)
	assert.True(t, ok)
}
