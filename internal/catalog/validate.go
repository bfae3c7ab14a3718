package catalog

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	FieldName          = "name"
	FieldSeller        = "seller"
	FieldStock         = "stock"
	FieldPrice         = "price"
	FieldDiscountPrice = "discountPrice"
	FieldCategory      = "category"
)

// FormFields lists the validated fields in form order.
var FormFields = []string{FieldName, FieldSeller, FieldStock, FieldPrice, FieldDiscountPrice, FieldCategory}

var patterns = map[string]*regexp.Regexp{
	"catalog_name":     regexp.MustCompile(`^[A-Za-z][A-Za-z\s]*$`),
	"catalog_seller":   regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9.\-\s]*$`),
	"catalog_stock":    regexp.MustCompile(`^\d+$`),
	"catalog_price":    regexp.MustCompile(`^\d+(\.\d{1,2})?$`),
	"catalog_category": regexp.MustCompile(`^[A-Za-z\s]+$`),
}

var fieldRules = map[string]string{
	FieldName:          "required,catalog_name",
	FieldSeller:        "required,catalog_seller",
	FieldStock:         "omitempty,catalog_stock,catalog_stock_range",
	FieldPrice:         "omitempty,catalog_price",
	FieldDiscountPrice: "omitempty,catalog_price",
	FieldCategory:      "required,catalog_category",
}

var messages = map[string]string{
	FieldName + ".required":               "Product name is required",
	FieldName + ".catalog_name":           "Product name must start with a letter and contain only letters and spaces",
	FieldSeller + ".required":             "Seller is required",
	FieldSeller + ".catalog_seller":       "Seller must start with a letter or digit and contain only letters, digits, dots, hyphens and spaces",
	FieldStock + ".catalog_stock":         "Stock must be a whole number",
	FieldStock + ".catalog_stock_range":   "Stock is too large",
	FieldPrice + ".catalog_price":         "Price must be a number with at most two decimals",
	FieldDiscountPrice + ".catalog_price": "Discount price must be a number with at most two decimals",
	FieldCategory + ".required":           "Category is required",
	FieldCategory + ".catalog_category":   "Category must contain only letters and spaces",
}

const (
	msgDiscountNotLower = "Discount price must be less than price"
	msgPriceNotPositive = "Price must be greater than zero"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	for tag, re := range patterns {
		re := re
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return re.MatchString(fl.Field().String())
		}); err != nil {
			panic(fmt.Sprintf("register %s: %v", tag, err))
		}
	}
	if err := v.RegisterValidation("catalog_stock_range", func(fl validator.FieldLevel) bool {
		return stockInRange(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("register catalog_stock_range: %v", err))
	}
	return v
}

var maxStock = decimal.NewFromInt(math.MaxInt)

// stockInRange reports whether a whole-number string fits in an int.
func stockInRange(s string) bool {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return false
	}
	return !d.IsNegative() && d.LessThanOrEqual(maxStock)
}

// ValidateField checks one form field and returns the first violated rule as
// a *FieldError, or nil. form supplies sibling values for cross-field rules:
// discountPrice is compared against form.Price.
//
// A whitespace-only value counts as empty. Any other value is matched as
// given, so surrounding whitespace fails the pattern.
func ValidateField(field, value string, form ProductDraft) error {
	rule, ok := fieldRules[field]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownField, field)
	}

	if strings.TrimSpace(value) == "" {
		value = ""
	}

	if err := validate.Var(value, rule); err != nil {
		tag := "invalid"
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			tag = verrs[0].Tag()
		}
		msg, ok := messages[field+"."+tag]
		if !ok {
			msg = "invalid value"
		}
		return &FieldError{Field: field, Message: msg}
	}

	if field == FieldDiscountPrice && value != "" {
		if !discountBelowPrice(value, form.Price) {
			return &FieldError{Field: field, Message: msgDiscountNotLower}
		}
	}
	return nil
}

// discountBelowPrice reports whether discount < price. A missing or
// malformed price leaves nothing to compare against.
func discountBelowPrice(discount, price string) bool {
	if price == "" || !patterns["catalog_price"].MatchString(price) {
		return true
	}
	d, err := decimal.NewFromString(discount)
	if err != nil {
		return false
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return true
	}
	return d.LessThan(p)
}

// ValidateForm is the final gate before a draft is committed. It reports
// whether every field passes and returns the per-field errors otherwise.
func ValidateForm(d ProductDraft) (bool, []FieldError) {
	values := map[string]string{
		FieldName:          d.Name,
		FieldSeller:        d.Seller,
		FieldStock:         d.Stock,
		FieldPrice:         d.Price,
		FieldDiscountPrice: d.DiscountPrice,
		FieldCategory:      d.Category,
	}

	var errs []FieldError
	for _, field := range FormFields {
		if err := ValidateField(field, values[field], d); err != nil {
			errs = append(errs, *err.(*FieldError))
		}
	}

	// The regex admits "0"; a listed price has to be positive.
	if price := strings.TrimSpace(d.Price); price != "" && !hasFieldError(errs, FieldPrice) {
		if p, err := decimal.NewFromString(price); err == nil && !p.IsPositive() {
			errs = append(errs, FieldError{Field: FieldPrice, Message: msgPriceNotPositive})
		}
	}

	return len(errs) == 0, errs
}

// CheckForm wraps ValidateForm into a *ValidationError, or nil when valid.
func CheckForm(d ProductDraft) error {
	if ok, fields := ValidateForm(d); !ok {
		return &ValidationError{Message: FormInvalidMessage, Fields: fields}
	}
	return nil
}

func hasFieldError(errs []FieldError, field string) bool {
	for _, e := range errs {
		if e.Field == field {
			return true
		}
	}
	return false
}
