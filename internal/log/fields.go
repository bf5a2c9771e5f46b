package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldActor         = "actor"
	FieldFlatmate      = "flatmate"
	FieldExpenseID     = "expense_id"
	FieldAmount        = "amount"
	FieldCategory      = "category"
	FieldMonth         = "month"
	FieldSettlementID  = "settlement_id"
	FieldTransactionID = "transaction_id"
	FieldSource        = "source"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentLedger   = "ledger"
	ComponentStore    = "store"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentBank     = "bank"
	ComponentClassify = "classify"
	ComponentCache    = "cache"
	ComponentBackend  = "backend"
)
