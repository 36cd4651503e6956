// Package rpcstatus translates between the transport-level error envelope
// (a top-level code/message, optionally carrying a per-update batch
// sub-status in its details) and the IR's WriteRpcStatus.
package rpcstatus

import (
	"github.com/p4rtxlate/p4rtxlate/ir"
	"github.com/p4rtxlate/p4rtxlate/p4err"
)

// TransportStatus is the transport-level status envelope: a top-level
// (code, message) plus an optional batch-update sub-status.
type TransportStatus struct {
	Code    ir.RpcCode
	Message string
	Details *BatchDetails
}

// BatchDetails mirrors the per-update outcomes nested in the transport
// status when present.
type BatchDetails struct {
	Message   string
	PerUpdate []ir.UpdateStatus
}

func recognizedCode(c ir.RpcCode) bool {
	switch c {
	case ir.CodeOK, ir.CodeUnknown, ir.CodeInvalidArgument, ir.CodeNotFound,
		ir.CodeAlreadyExists, ir.CodeFailedPrecondition, ir.CodeUnimplemented, ir.CodeInternal:
		return true
	default:
		return false
	}
}

// ToIr converts a transport status into an IrWriteRpcStatus, validating
// the invariants in spec §4.10.
func ToIr(ts TransportStatus) (ir.WriteRpcStatus, error) {
	if ts.Code == ir.CodeOK {
		if ts.Message != "" {
			return ir.WriteRpcStatus{}, p4err.New(p4err.InvalidArgument, "OK status must carry an empty message, got %q", ts.Message)
		}
		if ts.Details != nil {
			return ir.WriteRpcStatus{}, p4err.New(p4err.InvalidArgument, "OK status must not carry details")
		}
		return ir.WriteRpcStatus{}, nil
	}

	if ts.Details == nil {
		if ts.Message == "" {
			return ir.WriteRpcStatus{}, p4err.New(p4err.InvalidArgument, "non-OK status without details must carry a non-empty message")
		}
		return ir.WriteRpcStatus{RpcWide: &ir.UpdateStatus{Code: ts.Code, Message: ts.Message}}, nil
	}

	if ts.Code != ir.CodeUnknown {
		return ir.WriteRpcStatus{}, p4err.New(p4err.InvalidArgument, "status with details must carry transport code UNKNOWN, got %v", ts.Code)
	}
	if ts.Message != ts.Details.Message {
		return ir.WriteRpcStatus{}, p4err.New(p4err.InvalidArgument, "top-level message must equal details message")
	}

	atLeastOneBad := false
	for i, u := range ts.Details.PerUpdate {
		if !recognizedCode(u.Code) {
			return ir.WriteRpcStatus{}, p4err.New(p4err.InvalidArgument, "per-update status %d carries unrecognized code %v", i, u.Code)
		}
		if u.Code == ir.CodeOK {
			if u.Message != "" {
				return ir.WriteRpcStatus{}, p4err.New(p4err.InvalidArgument, "per-update status %d is OK but carries a non-empty message", i)
			}
		} else {
			if u.Message == "" {
				return ir.WriteRpcStatus{}, p4err.New(p4err.InvalidArgument, "per-update status %d is non-OK but carries an empty message", i)
			}
			atLeastOneBad = true
		}
	}
	if !atLeastOneBad {
		return ir.WriteRpcStatus{}, p4err.New(p4err.InvalidArgument, "status with details must contain at least one non-OK entry")
	}

	out := make([]ir.UpdateStatus, len(ts.Details.PerUpdate))
	copy(out, ts.Details.PerUpdate)
	return ir.WriteRpcStatus{PerUpdate: out}, nil
}

// FromIr converts an IrWriteRpcStatus back into a transport status,
// enforcing the same invariants in reverse.
func FromIr(s ir.WriteRpcStatus) (TransportStatus, error) {
	if s.RpcWide == nil && s.PerUpdate == nil {
		return TransportStatus{Code: ir.CodeOK}, nil
	}
	if s.RpcWide != nil && s.PerUpdate != nil {
		return TransportStatus{}, p4err.New(p4err.InvalidArgument, "WriteRpcStatus must not carry both RpcWide and PerUpdate")
	}
	if s.RpcWide != nil {
		if s.RpcWide.Code == ir.CodeOK {
			return TransportStatus{}, p4err.New(p4err.InvalidArgument, "rpc-wide status must not use code OK")
		}
		if s.RpcWide.Message == "" {
			return TransportStatus{}, p4err.New(p4err.InvalidArgument, "rpc-wide status must carry a non-empty message")
		}
		return TransportStatus{Code: s.RpcWide.Code, Message: s.RpcWide.Message}, nil
	}

	atLeastOneBad := false
	for i, u := range s.PerUpdate {
		if !recognizedCode(u.Code) {
			return TransportStatus{}, p4err.New(p4err.InvalidArgument, "per-update status %d carries unrecognized code %v", i, u.Code)
		}
		if u.Code == ir.CodeOK {
			if u.Message != "" {
				return TransportStatus{}, p4err.New(p4err.InvalidArgument, "per-update status %d is OK but carries a non-empty message", i)
			}
		} else {
			if u.Message == "" {
				return TransportStatus{}, p4err.New(p4err.InvalidArgument, "per-update status %d is non-OK but carries an empty message", i)
			}
			atLeastOneBad = true
		}
	}
	if !atLeastOneBad {
		return TransportStatus{}, p4err.New(p4err.InvalidArgument, "PerUpdate must contain at least one non-OK entry")
	}

	const syntheticMessage = "one or more updates failed"
	out := make([]ir.UpdateStatus, len(s.PerUpdate))
	copy(out, s.PerUpdate)
	return TransportStatus{
		Code:    ir.CodeUnknown,
		Message: syntheticMessage,
		Details: &BatchDetails{Message: syntheticMessage, PerUpdate: out},
	}, nil
}
