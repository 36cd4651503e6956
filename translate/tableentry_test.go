package translate_test

import (
	"testing"

	"github.com/go-test/deep"

	"github.com/p4rtxlate/p4rtxlate/ir"
	"github.com/p4rtxlate/p4rtxlate/irvalue"
	"github.com/p4rtxlate/p4rtxlate/p4info"
	"github.com/p4rtxlate/p4rtxlate/pi"
	"github.com/p4rtxlate/p4rtxlate/translate"
)

func seedManager(t *testing.T) *p4info.Manager {
	t.Helper()
	raw := p4info.RawP4Info{
		Actions: []p4info.RawAction{
			{
				Preamble: p4info.Preamble{ID: 16777217, Name: "do_thing_1", Alias: "do_thing_1"},
				Params: []p4info.RawActionParam{
					{ID: 1, Name: "arg1", Bitwidth: 32},
					{ID: 2, Name: "arg2", Bitwidth: 32},
				},
			},
			{
				Preamble: p4info.Preamble{ID: 16777219, Name: "do_thing_3", Alias: "do_thing_3"},
			},
			{
				Preamble: p4info.Preamble{ID: 21257015, Name: "NoAction", Alias: "NoAction"},
			},
		},
		Tables: []p4info.RawTable{
			{
				Preamble: p4info.Preamble{ID: 33554433, Name: "id_test_table", Alias: "id_test_table"},
				MatchFields: []p4info.RawMatchField{
					{ID: 1, Name: "ipv6", Bitwidth: 128, MatchType: p4info.Exact, Annotations: []string{"@format(IPV6)"}},
					{ID: 2, Name: "ipv4", Bitwidth: 32, MatchType: p4info.Exact, Annotations: []string{"@format(IPV4)"}},
				},
				ActionRefs: []p4info.RawActionRef{{ActionID: 16777217}},
			},
			{
				Preamble: p4info.Preamble{ID: 33554435, Name: "ternary_table", Alias: "ternary_table"},
				MatchFields: []p4info.RawMatchField{
					{ID: 1, Name: "normal", Bitwidth: 16, MatchType: p4info.Ternary},
				},
				ActionRefs: []p4info.RawActionRef{{ActionID: 16777219}},
			},
			{
				Preamble: p4info.Preamble{ID: 33554436, Name: "lpm1_table", Alias: "lpm1_table"},
				MatchFields: []p4info.RawMatchField{
					{ID: 1, Name: "ipv4", Bitwidth: 32, MatchType: p4info.LPM, Annotations: []string{"@format(IPV4)"}},
				},
				ActionRefs: []p4info.RawActionRef{{ActionID: 21257015}},
			},
		},
	}
	mgr, err := p4info.New(raw)
	if err != nil {
		t.Fatal(err)
	}
	return mgr
}

func TestValidExactRoundTrip(t *testing.T) {
	mgr := seedManager(t)
	entry := pi.TableEntry{
		TableID: 33554433,
		Match: []pi.FieldMatch{
			{FieldID: 1, Exact: &pi.ExactMatch{Value: []byte("\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\xff\x22")}},
			{FieldID: 2, Exact: &pi.ExactMatch{Value: []byte{0x10, 0x24, 0x32, 0x52}}},
		},
		Action: &pi.Action{
			ActionID: 16777217,
			Params: []pi.ActionParam{
				{ParamID: 1, Value: []byte{0x08}},
				{ParamID: 2, Value: []byte{0x09}},
			},
		},
	}
	got, err := translate.TableEntryToIr(mgr, entry)
	if err != nil {
		t.Fatal(err)
	}
	if got.Matches[0].Value.IPv6 != "::ff22" {
		t.Errorf("ipv6 = %q", got.Matches[0].Value.IPv6)
	}
	if got.Matches[1].Value.IPv4 != "16.36.50.82" {
		t.Errorf("ipv4 = %q", got.Matches[1].Value.IPv4)
	}
	if got.Action == nil || got.Action.Name != "do_thing_1" {
		t.Fatalf("action = %+v", got.Action)
	}

	back, err := translate.TableEntryToPi(mgr, got)
	if err != nil {
		t.Fatal(err)
	}
	again, err := translate.TableEntryToIr(mgr, back)
	if err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(got, again); diff != nil {
		t.Errorf("PI->IR->PI->IR not idempotent: %v", diff)
	}
}

func TestInvalidLPMPrefixTooLarge(t *testing.T) {
	mgr := seedManager(t)
	entry := pi.TableEntry{
		TableID: 33554436,
		Match: []pi.FieldMatch{
			{FieldID: 1, LPM: &pi.LPMMatch{Value: []byte{0x10, 0x24, 0x32, 0x52}, PrefixLength: 40}},
		},
		Action: &pi.Action{ActionID: 21257015},
	}
	_, err := translate.TableEntryToIr(mgr, entry)
	if err == nil {
		t.Fatal("expected error for prefix length > bitwidth")
	}
}

func TestLPMMaskedBitsSet(t *testing.T) {
	mgr := seedManager(t)
	entry := pi.TableEntry{
		TableID: 33554436,
		Match: []pi.FieldMatch{
			{FieldID: 1, LPM: &pi.LPMMatch{Value: []byte{0x10, 0x43, 0x23, 0x12}, PrefixLength: 24}},
		},
		Action: &pi.Action{ActionID: 21257015},
	}
	_, err := translate.TableEntryToIr(mgr, entry)
	if err == nil {
		t.Fatal("expected error for bits set beyond prefix")
	}
}

func TestTernaryZeroMaskRejected(t *testing.T) {
	mgr := seedManager(t)
	entry := pi.TableEntry{
		TableID:  33554435,
		Priority: 1,
		Match: []pi.FieldMatch{
			{FieldID: 1, Ternary: &pi.TernaryMatch{Value: []byte{0x01, 0x00}, Mask: []byte{0x00, 0x00}}},
		},
		Action: &pi.Action{ActionID: 16777219},
	}
	_, err := translate.TableEntryToIr(mgr, entry)
	if err == nil {
		t.Fatal("expected error for zero mask")
	}
}

func TestDuplicateMatchFieldID(t *testing.T) {
	mgr := seedManager(t)
	entry := pi.TableEntry{
		TableID: 33554433,
		Match: []pi.FieldMatch{
			{FieldID: 1, Exact: &pi.ExactMatch{Value: []byte{0x01}}},
			{FieldID: 1, Exact: &pi.ExactMatch{Value: []byte{0x02}}},
		},
		Action: &pi.Action{ActionID: 16777217, Params: []pi.ActionParam{
			{ParamID: 1, Value: []byte{0x01}}, {ParamID: 2, Value: []byte{0x02}},
		}},
	}
	_, err := translate.TableEntryToIr(mgr, entry)
	if err == nil {
		t.Fatal("expected error for duplicate match field id")
	}
}

func TestTableEntryToPiRejectsValueFormatMismatch(t *testing.T) {
	mgr := seedManager(t)
	entry := ir.TableEntry{
		TableName: "id_test_table",
		Matches: []ir.Match{
			{Name: "ipv6", Variant: ir.VariantExact, Value: irvalue.Value{Format: irvalue.IPv6, IPv6: "::ff22"}},
			// "ipv4" is declared IPV4 in seedManager but carries a HexString value here.
			{Name: "ipv4", Variant: ir.VariantExact, Value: irvalue.Value{Format: irvalue.HexString, HexStr: "0x10243252"}},
		},
		Action: &ir.ActionInvocation{Name: "do_thing_1", Params: []ir.ActionParamValue{
			{Name: "arg1", Value: irvalue.Value{Format: irvalue.HexString, HexStr: "0x00000008"}},
			{Name: "arg2", Value: irvalue.Value{Format: irvalue.HexString, HexStr: "0x00000009"}},
		}},
	}
	_, err := translate.TableEntryToPi(mgr, entry)
	if err == nil {
		t.Fatal("expected error for IR value format disagreeing with the declared schema format")
	}
}

func TestTernaryTableRequiresPriority(t *testing.T) {
	mgr := seedManager(t)
	entry := ir.TableEntry{
		TableName: "ternary_table",
		Matches: []ir.Match{
			{Name: "normal", Variant: ir.VariantTernary,
				Value: irvalue.Value{Format: irvalue.HexString, HexStr: "0x0100"},
				Mask:  irvalue.Value{Format: irvalue.HexString, HexStr: "0xff00"}},
		},
		Action: &ir.ActionInvocation{Name: "do_thing_3"},
	}
	if _, err := translate.TableEntryToPi(mgr, entry); err == nil {
		t.Fatal("expected error: missing required priority")
	}
}
