// Package sequencer orders a batch of writes into rounds that respect the
// foreign keys declared on a P4Info: a round never sends a dependent update
// ahead of the update it depends on. Cache's generation-by-generation
// bookkeeping is the model here, generalized from a single current/previous
// pair to however many layers the dependency graph demands.
package sequencer

import (
	"sort"

	"github.com/m-lab/uuid"

	"github.com/p4rtxlate/p4rtxlate/ir"
	"github.com/p4rtxlate/p4rtxlate/irvalue"
	"github.com/p4rtxlate/p4rtxlate/metrics"
	"github.com/p4rtxlate/p4rtxlate/p4err"
	"github.com/p4rtxlate/p4rtxlate/p4info"
)

// Batch is one round of updates that can be sent to the switch together:
// none of them depends on another update in the same round.
type Batch struct {
	ID      string
	Updates []ir.Update
}

// valueKey renders an irvalue.Value to a string usable as a map key, so
// two matches on the same logical value compare equal regardless of which
// Format field is populated.
func valueKey(v irvalue.Value) (string, error) {
	switch v.Format {
	case irvalue.Mac:
		return "mac:" + v.Mac, nil
	case irvalue.IPv4:
		return "ipv4:" + v.IPv4, nil
	case irvalue.IPv6:
		return "ipv6:" + v.IPv6, nil
	case irvalue.String:
		return "str:" + v.Str, nil
	case irvalue.HexString:
		return "hex:" + v.HexStr, nil
	default:
		return "", p4err.New(p4err.Internal, "sequencer: unsupported value format %v", v.Format)
	}
}

// referentKey identifies a row a foreign key can point at: a table, one of
// its match fields, and the value carried there.
type referentKey struct {
	table      string
	matchField string
	value      string
}

func matchValueKey(entry ir.TableEntry, matchField string) (string, bool, error) {
	for _, m := range entry.Matches {
		if m.Name != matchField {
			continue
		}
		if m.Variant != ir.VariantExact && m.Variant != ir.VariantOptional {
			return "", false, nil
		}
		k, err := valueKey(m.Value)
		if err != nil {
			return "", false, err
		}
		return k, true, nil
	}
	return "", false, nil
}

// referringKeys returns, for one update, the referentKey of every foreign
// key its match fields or action parameters carry a value for.
func referringKeys(mgr *p4info.Manager, u ir.Update) ([]referentKey, error) {
	var out []referentKey
	entry := u.Entry

	for _, m := range entry.Matches {
		for _, fk := range mgr.ForeignKeysFor(entry.TableName, m.Name) {
			if m.Variant != ir.VariantExact && m.Variant != ir.VariantOptional {
				continue
			}
			k, err := valueKey(m.Value)
			if err != nil {
				return nil, err
			}
			out = append(out, referentKey{table: fk.ReferredTable, matchField: fk.ReferredMatchField, value: k})
		}
	}

	invocations := actionInvocations(entry)
	for _, inv := range invocations {
		for _, p := range inv.Params {
			for _, fk := range mgr.ForeignKeysForParam(entry.TableName, inv.Name, p.Name) {
				k, err := valueKey(p.Value)
				if err != nil {
					return nil, err
				}
				out = append(out, referentKey{table: fk.ReferredTable, matchField: fk.ReferredMatchField, value: k})
			}
		}
	}
	return out, nil
}

func actionInvocations(entry ir.TableEntry) []ir.ActionInvocation {
	if entry.Action != nil {
		return []ir.ActionInvocation{*entry.Action}
	}
	out := make([]ir.ActionInvocation, 0, len(entry.ActionSet))
	for _, m := range entry.ActionSet {
		out = append(out, m.Action)
	}
	return out
}

// Sequence splits updates into ordered batches so that, within the whole
// input:
//   - for every foreign key, an INSERT or MODIFY referring to a value is
//     placed in a later batch than the INSERT of the referent row carrying
//     that value, if that INSERT is also in updates;
//   - for every foreign key, a DELETE of a referring row is placed in an
//     earlier batch than the DELETE of the referent row it points at, if
//     that DELETE is also in updates.
//
// A cycle in either dependency relation is rejected with InvalidArgument;
// Sequence never drops or reorders updates within a returned batch.
func Sequence(mgr *p4info.Manager, updates []ir.Update) ([]Batch, error) {
	metrics.SequencerCycleCount.Inc()
	n := len(updates)
	if n == 0 {
		return nil, nil
	}

	insertReferents := map[referentKey][]int{}
	deleteReferents := map[referentKey][]int{}
	for i, u := range updates {
		if u.Type != ir.Insert && u.Type != ir.Delete {
			continue
		}
		for _, mf := range matchFieldNames(mgr, u.Entry.TableName) {
			k, ok, err := matchValueKey(u.Entry, mf)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			rk := referentKey{table: u.Entry.TableName, matchField: mf, value: k}
			if u.Type == ir.Insert {
				insertReferents[rk] = append(insertReferents[rk], i)
			} else {
				deleteReferents[rk] = append(deleteReferents[rk], i)
			}
		}
	}

	// prereqOf[v] lists nodes that must appear in an earlier batch than v.
	prereqOf := make([][]int, n)
	succOf := make([][]int, n)
	edgeSeen := make(map[[2]int]bool)
	addEdge := func(from, to int) {
		if from == to {
			return
		}
		key := [2]int{from, to}
		if edgeSeen[key] {
			return
		}
		edgeSeen[key] = true
		prereqOf[to] = append(prereqOf[to], from)
		succOf[from] = append(succOf[from], to)
	}

	for i, u := range updates {
		keys, err := referringKeys(mgr, u)
		if err != nil {
			return nil, err
		}
		for _, rk := range keys {
			switch u.Type {
			case ir.Insert, ir.Modify:
				for _, j := range insertReferents[rk] {
					addEdge(j, i) // referent INSERT precedes referring INSERT/MODIFY
				}
			case ir.Delete:
				for _, j := range deleteReferents[rk] {
					addEdge(i, j) // referring DELETE precedes referent DELETE
				}
			}
		}
	}

	inDegree := make([]int, n)
	for v := range prereqOf {
		inDegree[v] = len(prereqOf[v])
	}

	remaining := n
	done := make([]bool, n)
	var batches []Batch
	counter := 0
	for remaining > 0 {
		var layer []int
		for i := 0; i < n; i++ {
			if !done[i] && inDegree[i] == 0 {
				layer = append(layer, i)
			}
		}
		if len(layer) == 0 {
			return nil, p4err.New(p4err.InvalidArgument, "sequencer: cyclic foreign-key dependency among pending updates")
		}
		sort.Ints(layer)

		batchUpdates := make([]ir.Update, len(layer))
		for k, idx := range layer {
			batchUpdates[k] = updates[idx]
			done[idx] = true
		}
		id, err := batchID(counter)
		if err != nil {
			return nil, err
		}
		batches = append(batches, Batch{ID: id, Updates: batchUpdates})
		metrics.SequencerBatchCount.Inc()
		metrics.SequencerBatchSizeHistogram.Observe(float64(len(layer)))
		counter++
		remaining -= len(layer)

		for _, idx := range layer {
			for _, v := range succOf[idx] {
				inDegree[v]--
			}
		}
	}
	return batches, nil
}

func matchFieldNames(mgr *p4info.Manager, tableName string) []string {
	t, ok := mgr.TablesByName[tableName]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(t.MatchFieldsByName))
	for name := range t.MatchFieldsByName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// batchID tags a computed batch with a log-correlation identifier, reusing
// package uuid's cookie-derived naming scheme (hostname_boottime_cookie)
// with the sequencer's own round counter standing in for the TCP socket
// cookie FromCookie was written for.
func batchID(round int) (string, error) {
	return uuid.FromCookie(uint64(round))
}
