package annotation_test

import (
	"testing"

	"github.com/p4rtxlate/p4rtxlate/annotation"
)

func TestParse(t *testing.T) {
	a, err := annotation.Parse("@format(IPV4)")
	if err != nil {
		t.Fatal(err)
	}
	if a.Label != "format" || a.Body != "IPV4" || !a.HasBody {
		t.Errorf("got %+v", a)
	}

	b, err := annotation.Parse("  @oneshot  ")
	if err != nil {
		t.Fatal(err)
	}
	if b.Label != "oneshot" || b.HasBody {
		t.Errorf("got %+v", b)
	}

	if _, err := annotation.Parse("not an annotation"); err == nil {
		t.Error("expected error")
	}
}

func TestParseArgs(t *testing.T) {
	args, err := annotation.ParseArgs("a, b , c/d_e")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a", "b", "c/d_e"}
	for i, w := range want {
		if args[i] != w {
			t.Errorf("arg[%d] = %q, want %q", i, args[i], w)
		}
	}

	if _, err := annotation.ParseArgs("a;b"); err == nil {
		t.Error("expected error for disallowed character")
	}
}
