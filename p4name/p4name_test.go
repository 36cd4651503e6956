package p4name_test

import (
	"testing"

	"github.com/p4rtxlate/p4rtxlate/p4name"
)

func TestToMessageName(t *testing.T) {
	cases := []struct {
		in   string
		kind p4name.EntityKind
		want string
	}{
		{"id_test_table", p4name.Table, "IdTestTableEntry"},
		{"do_thing_1", p4name.Action, "DoThing1Action"},
		{"ipv6[0].field", p4name.Table, "Ipv60FieldEntry"},
	}
	for _, c := range cases {
		if got := p4name.ToMessageName(c.in, c.kind); got != c.want {
			t.Errorf("ToMessageName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFieldNameRoundTrip(t *testing.T) {
	field := p4name.ToFieldName("id_test_table", p4name.Table)
	if field != "id_test_table_entry" {
		t.Fatalf("got %q", field)
	}
	back, err := p4name.FromFieldName(field, p4name.Table)
	if err != nil || back != "id_test_table" {
		t.Fatalf("FromFieldName: got %q, err %v", back, err)
	}
	if _, err := p4name.FromFieldName("id_test_table", p4name.Table); err == nil {
		t.Error("expected error for missing suffix")
	}
}

func TestActionFieldNameHasNoSuffix(t *testing.T) {
	field := p4name.ToFieldName("do_thing_1", p4name.Action)
	if field != "do_thing_1" {
		t.Fatalf("got %q", field)
	}
}
