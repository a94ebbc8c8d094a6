package errors

import (
	"net/http"

	"google.golang.org/grpc/codes"
)

// Code classifies an error for callers and transports
type Code string

// Error codes
const (
	CodeOK                 Code = "OK"
	CodeCanceled           Code = "CANCELED"
	CodeInvalidArgument    Code = "INVALID_ARGUMENT"
	CodeDeadlineExceeded   Code = "DEADLINE_EXCEEDED"
	CodeNotFound           Code = "NOT_FOUND"
	CodeAlreadyExists      Code = "ALREADY_EXISTS"
	CodeResourceExhausted  Code = "RESOURCE_EXHAUSTED"
	CodeFailedPrecondition Code = "FAILED_PRECONDITION"
	CodeUnimplemented      Code = "UNIMPLEMENTED"
	CodeInternal           Code = "INTERNAL"
	CodeUnavailable        Code = "UNAVAILABLE"
)

// transport status per code; unknown codes fall back to 500 / codes.Unknown
var transports = map[Code]struct {
	http int
	grpc codes.Code
}{
	CodeOK:                 {http.StatusOK, codes.OK},
	CodeCanceled:           {http.StatusRequestTimeout, codes.Canceled},
	CodeInvalidArgument:    {http.StatusBadRequest, codes.InvalidArgument},
	CodeDeadlineExceeded:   {http.StatusGatewayTimeout, codes.DeadlineExceeded},
	CodeNotFound:           {http.StatusNotFound, codes.NotFound},
	CodeAlreadyExists:      {http.StatusConflict, codes.AlreadyExists},
	CodeResourceExhausted:  {http.StatusTooManyRequests, codes.ResourceExhausted},
	CodeFailedPrecondition: {http.StatusPreconditionFailed, codes.FailedPrecondition},
	CodeUnimplemented:      {http.StatusNotImplemented, codes.Unimplemented},
	CodeInternal:           {http.StatusInternalServerError, codes.Internal},
	CodeUnavailable:        {http.StatusServiceUnavailable, codes.Unavailable},
}

// fromGRPC is the reverse of transports
var fromGRPC = func() map[codes.Code]Code {
	m := make(map[codes.Code]Code, len(transports))
	for c, t := range transports {
		m[t.grpc] = c
	}
	return m
}()

func (c Code) String() string {
	return string(c)
}

// HTTPStatus returns the status the websocket/HTTP handlers answer with
func (c Code) HTTPStatus() int {
	if t, ok := transports[c]; ok {
		return t.http
	}
	return http.StatusInternalServerError
}

// GRPCCode returns the status code the admin service answers with
func (c Code) GRPCCode() codes.Code {
	if t, ok := transports[c]; ok {
		return t.grpc
	}
	return codes.Unknown
}

func codeFromGRPC(c codes.Code) Code {
	if code, ok := fromGRPC[c]; ok {
		return code
	}
	return CodeInternal
}
