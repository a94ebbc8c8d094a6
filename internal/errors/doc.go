// Package errors provides the structured error type used across the
// session service, the data loaders and both transports.
//
// Creating errors:
//
//	err := errors.NotFound("session not found")
//	err := errors.InvalidArgumentf("unknown enemy kind: %s", kind)
//
// Adding metadata:
//
//	err := errors.NotFound("session not found").
//	    WithMeta("session_id", sessionID)
//
// Wrapping keeps the code of the wrapped *Error:
//
//	if err := loader.Load(ctx); err != nil {
//	    return errors.Wrap(err, "failed to load stage table")
//	}
//
// Changing semantics:
//
//	if err := pool.Submit(loop); err != nil {
//	    return errors.WrapWithCode(err, errors.CodeResourceExhausted, "session pool is full")
//	}
//
// Validation:
//
//	vb := errors.NewValidationBuilder()
//	errors.ValidateRequired("id", def.ID, vb)
//	errors.ValidatePositive("speed", def.Speed, vb)
//	if err := vb.Build(); err != nil {
//	    return err
//	}
//
// The admin gRPC handlers return errors.ToGRPCError(err); metadata is
// carried as a google.protobuf.Struct status detail and restored by
// FromGRPCError on the client side.
package errors
