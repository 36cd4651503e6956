package sequencer_test

import (
	"testing"

	"github.com/p4rtxlate/p4rtxlate/ir"
	"github.com/p4rtxlate/p4rtxlate/irvalue"
	"github.com/p4rtxlate/p4rtxlate/p4info"
	"github.com/p4rtxlate/p4rtxlate/sequencer"
)

func seedManager(t *testing.T) *p4info.Manager {
	t.Helper()
	raw := p4info.RawP4Info{
		Tables: []p4info.RawTable{
			{
				Preamble: p4info.Preamble{ID: 1, Name: "referred", Alias: "referred"},
				MatchFields: []p4info.RawMatchField{
					{ID: 1, Name: "id", Bitwidth: 32, MatchType: p4info.Exact, Annotations: []string{"@format(STRING)"}},
				},
			},
			{
				Preamble: p4info.Preamble{ID: 2, Name: "referring", Alias: "referring"},
				MatchFields: []p4info.RawMatchField{
					{ID: 1, Name: "val", Bitwidth: 32, MatchType: p4info.Exact, Annotations: []string{"@format(STRING)"}},
				},
			},
		},
		ForeignKeys: []p4info.ForeignKey{
			{
				OwnerKind:          p4info.OwnerMatchField,
				Table:              "referring",
				MatchField:         "val",
				ReferredTable:      "referred",
				ReferredMatchField: "id",
			},
		},
	}
	mgr, err := p4info.New(raw)
	if err != nil {
		t.Fatal(err)
	}
	return mgr
}

func strVal(s string) irvalue.Value {
	return irvalue.Value{Format: irvalue.String, Str: s}
}

func referredEntry(id string) ir.TableEntry {
	return ir.TableEntry{
		TableName: "referred",
		Matches:   []ir.Match{{Name: "id", Variant: ir.VariantExact, Value: strVal(id)}},
	}
}

func referringEntry(val string) ir.TableEntry {
	return ir.TableEntry{
		TableName: "referring",
		Matches:   []ir.Match{{Name: "val", Variant: ir.VariantExact, Value: strVal(val)}},
	}
}

func findBatchIndex(t *testing.T, batches []sequencer.Batch, tableName string) int {
	t.Helper()
	for i, b := range batches {
		for _, u := range b.Updates {
			if u.Entry.TableName == tableName {
				return i
			}
		}
	}
	t.Fatalf("no batch contains table %q", tableName)
	return -1
}

func TestInsertOrdersReferentBeforeReferrer(t *testing.T) {
	mgr := seedManager(t)
	updates := []ir.Update{
		{Type: ir.Insert, Entry: referringEntry("a")},
		{Type: ir.Insert, Entry: referredEntry("a")},
	}
	batches, err := sequencer.Sequence(mgr, updates)
	if err != nil {
		t.Fatal(err)
	}
	referredIdx := findBatchIndex(t, batches, "referred")
	referringIdx := findBatchIndex(t, batches, "referring")
	if referredIdx >= referringIdx {
		t.Errorf("referred batch %d, referring batch %d; want referred strictly before referring", referredIdx, referringIdx)
	}
	total := 0
	for _, b := range batches {
		total += len(b.Updates)
	}
	if total != len(updates) {
		t.Errorf("got %d total updates across batches, want %d", total, len(updates))
	}
}

func TestDeleteOrdersReferrerBeforeReferent(t *testing.T) {
	mgr := seedManager(t)
	updates := []ir.Update{
		{Type: ir.Delete, Entry: referringEntry("a")},
		{Type: ir.Delete, Entry: referredEntry("a")},
	}
	batches, err := sequencer.Sequence(mgr, updates)
	if err != nil {
		t.Fatal(err)
	}
	referredIdx := findBatchIndex(t, batches, "referred")
	referringIdx := findBatchIndex(t, batches, "referring")
	if referringIdx >= referredIdx {
		t.Errorf("referring batch %d, referred batch %d; want referring strictly before referred", referringIdx, referredIdx)
	}
}

func TestIndependentUpdatesShareABatch(t *testing.T) {
	mgr := seedManager(t)
	updates := []ir.Update{
		{Type: ir.Insert, Entry: referredEntry("a")},
		{Type: ir.Insert, Entry: referredEntry("b")},
	}
	batches, err := sequencer.Sequence(mgr, updates)
	if err != nil {
		t.Fatal(err)
	}
	if len(batches) != 1 || len(batches[0].Updates) != 2 {
		t.Fatalf("got %d batches, want a single batch of 2 independent inserts: %+v", len(batches), batches)
	}
}

func TestUnrelatedValueIsNotSequenced(t *testing.T) {
	mgr := seedManager(t)
	updates := []ir.Update{
		{Type: ir.Insert, Entry: referringEntry("z")}, // no matching referred("z") in this batch
		{Type: ir.Insert, Entry: referredEntry("a")},
	}
	batches, err := sequencer.Sequence(mgr, updates)
	if err != nil {
		t.Fatal(err)
	}
	if len(batches) != 1 {
		t.Fatalf("got %d batches, want 1 (no dependency edge exists for unrelated values): %+v", len(batches), batches)
	}
}

func TestBatchIDsAreDistinct(t *testing.T) {
	mgr := seedManager(t)
	updates := []ir.Update{
		{Type: ir.Insert, Entry: referringEntry("a")},
		{Type: ir.Insert, Entry: referredEntry("a")},
	}
	batches, err := sequencer.Sequence(mgr, updates)
	if err != nil {
		t.Fatal(err)
	}
	if len(batches) < 2 {
		t.Fatalf("expected at least 2 batches, got %d", len(batches))
	}
	if batches[0].ID == batches[1].ID {
		t.Errorf("batch ids not distinct: %q", batches[0].ID)
	}
}
