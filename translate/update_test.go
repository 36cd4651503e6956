package translate_test

import (
	"testing"

	"github.com/go-test/deep"

	"github.com/p4rtxlate/p4rtxlate/ir"
	"github.com/p4rtxlate/p4rtxlate/irvalue"
	"github.com/p4rtxlate/p4rtxlate/pi"
	"github.com/p4rtxlate/p4rtxlate/translate"
)

func TestWriteRequestRoundTrip(t *testing.T) {
	mgr := seedManager(t)

	req := pi.WriteRequest{
		DeviceID:     1,
		ElectionHigh: 0,
		ElectionLow:  10,
		Updates: []pi.Update{
			{
				Type: pi.UpdateInsert,
				Entry: pi.TableEntry{
					TableID: 33554433,
					Match: []pi.FieldMatch{
						{FieldID: 1, Exact: &pi.ExactMatch{Value: irvalue.BytesToCanonical(mustBytes(t, "::ff22", 128))}},
						{FieldID: 2, Exact: &pi.ExactMatch{Value: irvalue.BytesToCanonical(mustBytes(t, "16.36.50.82", 32))}},
					},
					Action: &pi.Action{ActionID: 16777217, Params: []pi.ActionParam{
						{ParamID: 1, Value: []byte{0x08}},
						{ParamID: 2, Value: []byte{0x09}},
					}},
				},
			},
		},
	}

	iReq, err := translate.WriteRequestToIr(mgr, req)
	if err != nil {
		t.Fatal(err)
	}
	if len(iReq.Updates) != 1 || iReq.Updates[0].Type != ir.Insert {
		t.Fatalf("got %+v", iReq)
	}

	piReq, err := translate.WriteRequestToPi(mgr, iReq)
	if err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(req, piReq); diff != nil {
		t.Errorf("round trip mismatch: %v", diff)
	}
}

func TestReadRequestResolvesTableNames(t *testing.T) {
	mgr := seedManager(t)

	r := pi.ReadRequest{DeviceID: 5, TableIDs: []uint32{33554433}}
	ir2, err := translate.ReadRequestToIr(mgr, r)
	if err != nil {
		t.Fatal(err)
	}
	if len(ir2.TableNames) != 1 || ir2.TableNames[0] != "id_test_table" {
		t.Fatalf("got %+v", ir2)
	}

	back, err := translate.ReadRequestToPi(mgr, ir2)
	if err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(r, back); diff != nil {
		t.Errorf("round trip mismatch: %v", diff)
	}
}

func TestReadRequestUnknownTableID(t *testing.T) {
	mgr := seedManager(t)
	_, err := translate.ReadRequestToIr(mgr, pi.ReadRequest{TableIDs: []uint32{9999}})
	if err == nil {
		t.Fatal("expected error for unknown table id")
	}
}

func mustBytes(t *testing.T, s string, bitwidth int) []byte {
	t.Helper()
	var format irvalue.Format
	switch bitwidth {
	case 128:
		format = irvalue.IPv6
	case 32:
		format = irvalue.IPv4
	default:
		t.Fatalf("unsupported bitwidth %d in test helper", bitwidth)
	}
	var b []byte
	var err error
	switch format {
	case irvalue.IPv6:
		b, err = irvalue.IPv6ToBytes(s)
	case irvalue.IPv4:
		b, err = irvalue.IPv4ToBytes(s)
	}
	if err != nil {
		t.Fatal(err)
	}
	norm, err := irvalue.Normalize(b, bitwidth)
	if err != nil {
		t.Fatal(err)
	}
	return norm
}
