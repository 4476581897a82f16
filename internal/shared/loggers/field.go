package loggers

const (
	FieldApp        = "app"
	FieldComponent  = "component"
	FieldHttpMethod = "http_method"
	FieldHttpPath   = "http_path"
	FieldHttpStatus = "http_status"
	FieldHttpRoute  = "http_route"
	FieldClientIP   = "client_ip"

	FieldDuration   = "duration"
	FieldRequestID  = "request_id"
	FieldErrorStack = "error_stack"
	FieldErrorCode  = "error_code"

	FieldPartitionId  = "partition_id"
	FieldOffset       = "offset"
	FieldTenantID     = "tenant_id"
	FieldOrderID      = "order_id"
	FieldEventType    = "event_type"
	FieldAttempt      = "attempt"
	FieldSubscriberID = "subscriber_id"
	FieldPeriod       = "period"
)
