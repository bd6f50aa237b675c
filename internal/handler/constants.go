package handler

// Generic HTTP error messages for client responses.
// These messages do not expose internal error details.
const (
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"
	ErrMsgInvalidPathParam      = "Invalid %s path parameter"
	ErrMsgInvalidQueryParam     = "Invalid %s query parameter"
)

// User-facing messages for service errors
const (
	ErrMsgUnknownError        = "Unknown error"
	ErrMsgGenericServerError  = "Something went wrong. Please retry the request."
	ErrMsgInvalidInputError   = "Invalid request. Please check your inputs."
	ErrMsgUserNotFoundError   = "User not found"
	ErrMsgPackNotFoundError   = "Pack not found"
	ErrMsgBoxNotFoundError    = "Box not found"
	ErrMsgSetNotFoundError    = "Card set not found"
	ErrMsgResourceNotFoundErr = "Resource not found"
	ErrMsgSetNotActiveError   = "That card set is not open for sale"
	ErrMsgInvalidProductError = "That product is misconfigured"
	ErrMsgOutOfStockError     = "Sold out. Please try again later."
	ErrMsgBusyError           = "Your inventory is busy. Please retry."
	ErrMsgRequestReusedError  = "That request id was already used for a different opening"
	ErrMsgConflictError       = "Request conflicted with another update. Please retry."
	ErrMsgPoolTooSmallError   = "That product cannot be opened right now"
)

// Error envelope status codes, one per error category
const (
	StatusValidation       = "validation_error"
	StatusNotFound         = "not_found"
	StatusConflict         = "conflict"
	StatusInsufficientPool = "insufficient_pool"
	StatusInternal         = "internal_error"
)

// Path parameter names
const (
	ParamPackID = "packID"
	ParamBoxID  = "boxID"
	ParamSetID  = "setID"
	ParamUserID = "userID"
)

// QueryParamLimit caps list endpoints
const QueryParamLimit = "limit"

// Log messages
const (
	LogMsgDecodeFailed    = "Failed to decode request"
	LogMsgRequestDecoded  = "Request decoded"
	LogMsgOpenFailed      = "Opening failed"
	LogMsgOpened          = "Opening served"
	LogMsgActivateFailed  = "Set activation failed"
	LogMsgInventoryFailed = "Inventory lookup failed"
	LogMsgReconcileFailed = "Inventory reconcile failed"
	LogMsgEventsFailed    = "Event log lookup failed"
	LogMsgPublishFailed   = "Failed to publish event"
	LogMsgReadinessFailed = "Readiness check failed"
	LogMsgEncodeFailed    = "Failed to encode JSON response"
	LogMsgWriteFailed     = "Failed to write response buffer"
)

// Log field keys
const (
	LogFieldAction   = "action"
	LogFieldUserID   = "user_id"
	LogFieldPackID   = "pack_id"
	LogFieldBoxID    = "box_id"
	LogFieldSetID    = "set_id"
	LogFieldReplayed = "replayed"
	LogFieldError    = "error"
)
