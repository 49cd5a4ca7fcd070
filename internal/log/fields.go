package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldTransactionID = "transaction_id"
	FieldTitle         = "title"
	FieldAmountCents   = "amount_cents"
	FieldCategory      = "category"
	FieldType          = "type"
	FieldBudgetCents   = "budget_cents"
	FieldUserName      = "name"
	FieldKey           = "key"
	FieldBackend       = "backend"
	FieldPort          = "port"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentStore   = "store"
	ComponentStorage = "storage"
	ComponentCache   = "cache"
)

// Operations defines standard operation names
const (
	OpLogin     = "login"
	OpLogout    = "logout"
	OpCreate    = "create"
	OpUpdate    = "update"
	OpDelete    = "delete"
	OpSetBudget = "set_budget"
	OpReset     = "reset"
	OpExport    = "export"
	OpLoad      = "load"
	OpStartup   = "startup"
	OpShutdown  = "shutdown"
)
