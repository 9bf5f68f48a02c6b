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
	FieldIntent     = "intent"
	FieldType       = "type"
	FieldAmount     = "amount"
	FieldDate       = "date"
	FieldYear       = "year"
	FieldMonth      = "month"
	FieldBackend    = "backend"
	FieldQueue      = "queue"
	FieldExchange   = "exchange"
	FieldRecordKey  = "record_key"
)

// Components defines standard component names.
const (
	ComponentApp        = "app"
	ComponentHTTP       = "http"
	ComponentExtract    = "extract"
	ComponentQuery      = "query"
	ComponentLedger     = "ledger"
	ComponentNarrate    = "narrate"
	ComponentTranscribe = "transcribe"
	ComponentAMQP       = "amqp"
	ComponentWorker     = "worker"
	ComponentBackend    = "backend"
)

// Operations defines standard operation names.
const (
	OpSave       = "save"
	OpRead       = "read"
	OpClassify   = "classify"
	OpExtract    = "extract"
	OpDispatch   = "dispatch"
	OpSummarize  = "summarize"
	OpTranscribe = "transcribe"
	OpPublish    = "publish"
	OpConsume    = "consume"
	OpStartup    = "startup"
	OpShutdown   = "shutdown"
)
