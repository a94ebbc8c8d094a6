package errors

import (
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// ToGRPCError converts an error to a gRPC status error. Metadata travels
// as a structpb.Struct detail.
func ToGRPCError(err error) error {
	if err == nil {
		return nil
	}

	if _, ok := status.FromError(err); ok {
		return err
	}

	var e *Error
	if !As(err, &e) {
		return status.Error(codes.Internal, err.Error())
	}

	st := status.New(e.Code.GRPCCode(), e.Message)
	if len(e.Meta) == 0 {
		return st.Err()
	}
	// Metadata that cannot be encoded is dropped rather than failing the call
	details, detailErr := structpb.NewStruct(protoSafeMeta(e.Meta))
	if detailErr != nil {
		return st.Err()
	}
	if withDetails, wdErr := st.WithDetails(details); wdErr == nil {
		st = withDetails
	}
	return st.Err()
}

// FromGRPCError converts a gRPC error back to an *Error
func FromGRPCError(err error) error {
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	e := New(codeFromGRPC(st.Code()), st.Message())
	for _, detail := range st.Details() {
		if meta, ok := detail.(*structpb.Struct); ok {
			e.Meta = meta.AsMap()
			break
		}
	}
	return e
}

// protoSafeMeta rewrites values structpb cannot represent
func protoSafeMeta(meta map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(meta))
	for k, v := range meta {
		out[k] = protoSafeValue(v)
	}
	return out
}

func protoSafeValue(v interface{}) interface{} {
	switch tv := v.(type) {
	case nil, bool, string, int, int32, int64, uint, uint32, uint64, float32, float64:
		return tv
	case []string:
		list := make([]interface{}, len(tv))
		for i, s := range tv {
			list[i] = s
		}
		return list
	case map[string][]string:
		m := make(map[string]interface{}, len(tv))
		for k, s := range tv {
			m[k] = protoSafeValue(s)
		}
		return m
	case map[string]interface{}:
		return protoSafeMeta(tv)
	default:
		return fmt.Sprint(tv)
	}
}
