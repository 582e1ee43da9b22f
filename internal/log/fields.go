package log

// Common field names for structured logging.
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

	FieldTruckID     = "truck_id"
	FieldDriverID    = "driver_id"
	FieldPartyID     = "party_id"
	FieldEntryID     = "entry_id"
	FieldEntryKind   = "entry_kind"
	FieldLitersMilli = "liters_milli"
	FieldAmountPaise = "amount_paise"
	FieldSheetsRef   = "sheets_ref"
)

// Standard component names.
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentStorage   = "storage"
	ComponentLedger    = "ledger"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentReport    = "report"
	ComponentCache     = "cache"
	ComponentRateLimit = "rate_limit"
)
