package pdgen_test

import (
	"strings"
	"testing"

	"github.com/p4rtxlate/p4rtxlate/p4info"
	"github.com/p4rtxlate/p4rtxlate/pdgen"
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
		},
	}
}

func TestGenerateDeterministic(t *testing.T) {
	mgr, err := p4info.New(seedRaw())
	if err != nil {
		t.Fatal(err)
	}
	a := pdgen.Generate(mgr)
	b := pdgen.Generate(mgr)
	if a != b {
		t.Error("Generate is not deterministic across repeated calls")
	}
	if !strings.Contains(a, "message IdTestTableEntry {") {
		t.Errorf("missing table entry message:\n%s", a)
	}
	if !strings.Contains(a, "message DoThing1Action {") {
		t.Errorf("missing action message:\n%s", a)
	}
}

func TestGenerateOneshotTableUsesRepeatedActions(t *testing.T) {
	raw := seedRaw()
	raw.Tables[0].UsesOneshot = true
	mgr, err := p4info.New(raw)
	if err != nil {
		t.Fatal(err)
	}
	out := pdgen.Generate(mgr)
	if !strings.Contains(out, "repeated ActionSetElem actions = 2;") {
		t.Errorf("expected repeated actions field:\n%s", out)
	}
}
