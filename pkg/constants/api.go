package constants

// HTTP and API constants
const (
	ContentTypeJSON = "application/json"

	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"

	BearerPrefix = "Bearer "

	// Context keys
	ContextKeyUser = "user"

	// Response keys
	ResponseError = "error"
	FieldMessage  = "message"
)

// Query parameter constants
const (
	ParamCustomerID = "customer_id"
	ParamLimit      = "limit"

	DefaultLimit = 50
)
