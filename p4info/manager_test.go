package p4info_test

import (
	"testing"

	"github.com/p4rtxlate/p4rtxlate/irvalue"
	"github.com/p4rtxlate/p4rtxlate/p4info"
)

func seedRaw() p4info.RawP4Info {
	return p4info.RawP4Info{
		Actions: []p4info.RawAction{
			{
				Preamble: p4info.Preamble{ID: 16777217, Name: "do_thing_1", Alias: "do_thing_1"},
				Params: []p4info.RawActionParam{
					{ID: 1, Name: "arg1", Bitwidth: 32},
					{ID: 2, Name: "arg2", Bitwidth: 32},
				},
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
				Preamble: p4info.Preamble{ID: 33554436, Name: "lpm1_table", Alias: "lpm1_table"},
				MatchFields: []p4info.RawMatchField{
					{ID: 1, Name: "ipv4", Bitwidth: 32, MatchType: p4info.LPM, Annotations: []string{"@format(IPV4)"}},
				},
				ActionRefs: []p4info.RawActionRef{{ActionID: 21257015}},
			},
		},
	}
}

func TestBuildValid(t *testing.T) {
	mgr, err := p4info.New(seedRaw())
	if err != nil {
		t.Fatal(err)
	}
	tbl, err := mgr.TableByID(33554433)
	if err != nil {
		t.Fatal(err)
	}
	if tbl.ExactMatchCount != 2 {
		t.Errorf("ExactMatchCount = %d, want 2", tbl.ExactMatchCount)
	}
	if tbl.RequiresPriority() {
		t.Error("table with only EXACT matches should not require priority")
	}
	mf := tbl.MatchFieldsByName["ipv6"]
	if mf.Format != irvalue.IPv6 {
		t.Errorf("ipv6 format = %v, want IPV6", mf.Format)
	}

	lpm, err := mgr.TableByName("lpm1_table")
	if err != nil {
		t.Fatal(err)
	}
	if lpm.MatchFieldsByName["ipv4"].MatchType != p4info.LPM {
		t.Errorf("lpm1_table.ipv4 match type = %v, want LPM", lpm.MatchFieldsByName["ipv4"].MatchType)
	}
}

func TestBuildRejectsDuplicateTableID(t *testing.T) {
	raw := seedRaw()
	raw.Tables = append(raw.Tables, raw.Tables[0])
	if _, err := p4info.New(raw); err == nil {
		t.Error("expected error for duplicate table id")
	}
}

func TestBuildRejectsDanglingActionRef(t *testing.T) {
	raw := seedRaw()
	raw.Tables[0].ActionRefs = append(raw.Tables[0].ActionRefs, p4info.RawActionRef{ActionID: 9999})
	if _, err := p4info.New(raw); err == nil {
		t.Error("expected error for dangling action reference")
	}
}

func TestFormatInvariantMACBitwidth(t *testing.T) {
	raw := p4info.RawP4Info{
		Tables: []p4info.RawTable{
			{
				Preamble: p4info.Preamble{ID: 1, Name: "t", Alias: "t"},
				MatchFields: []p4info.RawMatchField{
					{ID: 1, Name: "mac", Bitwidth: 32, MatchType: p4info.Exact, Annotations: []string{"@format(MAC)"}},
				},
			},
		},
	}
	if _, err := p4info.New(raw); err == nil {
		t.Error("expected error for MAC format with wrong bitwidth")
	}
}
