package rpcstatus_test

import (
	"testing"

	"github.com/p4rtxlate/p4rtxlate/ir"
	"github.com/p4rtxlate/p4rtxlate/rpcstatus"
)

func TestOKWithMessageRejected(t *testing.T) {
	_, err := rpcstatus.ToIr(rpcstatus.TransportStatus{Code: ir.CodeOK, Message: "oops"})
	if err == nil {
		t.Error("expected error for OK with non-empty message")
	}
}

func TestRpcWideError(t *testing.T) {
	got, err := rpcstatus.ToIr(rpcstatus.TransportStatus{Code: ir.CodeInternal, Message: "boom"})
	if err != nil {
		t.Fatal(err)
	}
	if got.RpcWide == nil || got.RpcWide.Message != "boom" {
		t.Errorf("got %+v", got)
	}
}

func TestDetailsRequiresUnknownCode(t *testing.T) {
	_, err := rpcstatus.ToIr(rpcstatus.TransportStatus{
		Code:    ir.CodeInternal,
		Message: "m",
		Details: &rpcstatus.BatchDetails{Message: "m", PerUpdate: []ir.UpdateStatus{{Code: ir.CodeInternal, Message: "x"}}},
	})
	if err == nil {
		t.Error("expected error: details present but code != UNKNOWN")
	}
}

func TestMixedOKNonOKValid(t *testing.T) {
	got, err := rpcstatus.ToIr(rpcstatus.TransportStatus{
		Code:    ir.CodeUnknown,
		Message: "m",
		Details: &rpcstatus.BatchDetails{
			Message: "m",
			PerUpdate: []ir.UpdateStatus{
				{Code: ir.CodeOK},
				{Code: ir.CodeInvalidArgument, Message: "bad"},
			},
		},
	})
	if err != nil {
		t.Fatalf("expected valid rpc_response, got error: %v", err)
	}
	if len(got.PerUpdate) != 2 {
		t.Errorf("got %+v", got)
	}
}

func TestAllOKDetailsRejected(t *testing.T) {
	_, err := rpcstatus.ToIr(rpcstatus.TransportStatus{
		Code:    ir.CodeUnknown,
		Message: "m",
		Details: &rpcstatus.BatchDetails{
			Message:   "m",
			PerUpdate: []ir.UpdateStatus{{Code: ir.CodeOK}, {Code: ir.CodeOK}},
		},
	})
	if err == nil {
		t.Error("expected error: no non-OK entries")
	}
}

func TestFromIrRoundTrip(t *testing.T) {
	in := ir.WriteRpcStatus{PerUpdate: []ir.UpdateStatus{
		{Code: ir.CodeOK},
		{Code: ir.CodeNotFound, Message: "missing"},
	}}
	ts, err := rpcstatus.FromIr(in)
	if err != nil {
		t.Fatal(err)
	}
	back, err := rpcstatus.ToIr(ts)
	if err != nil {
		t.Fatal(err)
	}
	if len(back.PerUpdate) != 2 || back.PerUpdate[1].Message != "missing" {
		t.Errorf("got %+v", back)
	}
}
