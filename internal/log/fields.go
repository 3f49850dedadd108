package log

// Shared field names for structured logging.
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
	FieldRecordID   = "record_id"
	FieldTitle      = "record_title"
	FieldCount      = "record_count"
	FieldBackend    = "backend"
	FieldAction     = "action"
	FieldMediaType  = "media_type"
	FieldBytes      = "bytes"
)

// Standard component names.
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentStore   = "store"
	ComponentStorage = "storage"
	ComponentAttach  = "attach"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentCache   = "cache"
)

// Standard operation names.
const (
	OpLoad     = "load"
	OpSave     = "save"
	OpAdd      = "add"
	OpUpdate   = "update"
	OpRemove   = "remove"
	OpList     = "list"
	OpEncode   = "encode"
	OpPublish  = "publish"
	OpConsume  = "consume"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
