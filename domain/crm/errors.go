package crm

import "errors"

// Domain errors.
var (
	ErrInvalidName        = errors.New("name is required")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrInvalidPhoneFormat = errors.New("invalid phone format")
	ErrInvalidPrice       = errors.New("price must be positive")
	ErrInvalidStock       = errors.New("stock cannot be negative")
	ErrInvalidCustomer    = errors.New("invalid customer ID")
	ErrInvalidProduct     = errors.New("invalid product ID")
	ErrEmptyProductList   = errors.New("at least one product must be selected")
	ErrProductsNotFound   = errors.New("products not found")
	ErrInvalidReference   = errors.New("invalid reference")
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrProductInUse       = errors.New("product is referenced by orders")
	ErrInvalidQuery       = errors.New("invalid query")
)

// Error codes carried across service boundaries.
const (
	CodeInvalidName        = "INVALID_NAME"
	CodeInvalidEmail       = "INVALID_EMAIL"
	CodeDuplicateEmail     = "DUPLICATE_EMAIL"
	CodeInvalidPhoneFormat = "INVALID_PHONE_FORMAT"
	CodeInvalidPrice       = "INVALID_PRICE"
	CodeInvalidStock       = "INVALID_STOCK"
	CodeInvalidCustomer    = "INVALID_CUSTOMER"
	CodeInvalidProduct     = "INVALID_PRODUCT"
	CodeEmptyProductList   = "EMPTY_PRODUCT_LIST"
	CodeProductsNotFound   = "PRODUCTS_NOT_FOUND"
	CodeInvalidReference   = "INVALID_REFERENCE"
	CodeCustomerNotFound   = "CUSTOMER_NOT_FOUND"
	CodeProductNotFound    = "PRODUCT_NOT_FOUND"
	CodeOrderNotFound      = "ORDER_NOT_FOUND"
	CodeProductInUse       = "PRODUCT_IN_USE"
	CodeInvalidQuery       = "INVALID_QUERY"
)

// errorCodes is checked in order, so wrapping errors (InvalidCustomer wrapping
// InvalidReference) must come before the errors they wrap.
var errorCodes = []struct {
	err  error
	code string
}{
	{ErrInvalidCustomer, CodeInvalidCustomer},
	{ErrInvalidProduct, CodeInvalidProduct},
	{ErrEmptyProductList, CodeEmptyProductList},
	{ErrProductsNotFound, CodeProductsNotFound},
	{ErrCustomerNotFound, CodeCustomerNotFound},
	{ErrProductNotFound, CodeProductNotFound},
	{ErrOrderNotFound, CodeOrderNotFound},
	{ErrProductInUse, CodeProductInUse},
	{ErrInvalidName, CodeInvalidName},
	{ErrInvalidEmail, CodeInvalidEmail},
	{ErrDuplicateEmail, CodeDuplicateEmail},
	{ErrInvalidPhoneFormat, CodeInvalidPhoneFormat},
	{ErrInvalidPrice, CodeInvalidPrice},
	{ErrInvalidStock, CodeInvalidStock},
	{ErrInvalidQuery, CodeInvalidQuery},
	{ErrInvalidReference, CodeInvalidReference},
}

// CodeOf returns the code of the first domain error found in err's chain.
// It reports false for errors that are not domain errors.
func CodeOf(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code, true
		}
	}
	return "", false
}

// ErrorDetail is the wire form of a domain error.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DetailOf converts a domain error to its wire form. It returns nil for
// errors that are not domain errors.
func DetailOf(err error) *ErrorDetail {
	code, ok := CodeOf(err)
	if !ok {
		return nil
	}
	return &ErrorDetail{Code: code, Message: err.Error()}
}

// remoteError keeps the original message while unwrapping to the sentinel.
type remoteError struct {
	sentinel error
	message  string
}

func (e *remoteError) Error() string { return e.message }
func (e *remoteError) Unwrap() error { return e.sentinel }

// ErrorFromDetail rebuilds a domain error from its wire form so that
// errors.Is works on the calling side. Unknown codes yield a plain error.
func ErrorFromDetail(detail *ErrorDetail) error {
	if detail == nil {
		return nil
	}
	for _, ec := range errorCodes {
		if ec.code == detail.Code {
			return &remoteError{sentinel: ec.err, message: detail.Message}
		}
	}
	return errors.New(detail.Message)
}
