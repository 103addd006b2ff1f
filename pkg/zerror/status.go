package zerror

// Status classifies a ZError independently of any transport.
type Status uint8

const (
	StatusUnknown Status = iota
	StatusBadRequest
	StatusValidationFailed
	StatusUnauthorized
	StatusForbidden
	StatusNotFound
	StatusConflict
	StatusUnprocessableEntity
	StatusTooManyRequests
	StatusInternalServerError
	StatusNotImplemented
	StatusBadGateway
	StatusServiceUnavailable
	StatusTimeout
)

var statusNames = map[Status]string{
	StatusUnknown:             "UNKNOWN",
	StatusBadRequest:          "BAD_REQUEST",
	StatusValidationFailed:    "VALIDATION_FAILED",
	StatusUnauthorized:        "UNAUTHORIZED",
	StatusForbidden:           "FORBIDDEN",
	StatusNotFound:            "NOT_FOUND",
	StatusConflict:            "CONFLICT",
	StatusUnprocessableEntity: "UNPROCESSABLE_ENTITY",
	StatusTooManyRequests:     "TOO_MANY_REQUESTS",
	StatusInternalServerError: "INTERNAL_SERVER_ERROR",
	StatusNotImplemented:      "NOT_IMPLEMENTED",
	StatusBadGateway:          "BAD_GATEWAY",
	StatusServiceUnavailable:  "SERVICE_UNAVAILABLE",
	StatusTimeout:             "TIMEOUT",
}

// String returns the string representation of the status.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return statusNames[StatusUnknown]
}
