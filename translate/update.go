package translate

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/p4rtxlate/p4rtxlate/ir"
	"github.com/p4rtxlate/p4rtxlate/metrics"
	"github.com/p4rtxlate/p4rtxlate/p4err"
	"github.com/p4rtxlate/p4rtxlate/p4info"
	"github.com/p4rtxlate/p4rtxlate/pi"
)

func observe(direction string, start time.Time, entryCount int, err error) {
	metrics.TranslationLatencyHistogram.With(prometheus.Labels{"direction": direction}).Observe(time.Since(start).Seconds())
	metrics.EntryCountHistogram.With(prometheus.Labels{"direction": direction}).Observe(float64(entryCount))
	if err != nil {
		code, _ := p4err.CodeOf(err)
		metrics.TranslationErrorCount.With(prometheus.Labels{"code": code.String()}).Inc()
	}
}

func updateTypeToIr(t pi.UpdateType) (ir.UpdateType, error) {
	switch t {
	case pi.UpdateInsert:
		return ir.Insert, nil
	case pi.UpdateModify:
		return ir.Modify, nil
	case pi.UpdateDelete:
		return ir.Delete, nil
	default:
		return 0, p4err.New(p4err.InvalidArgument, "unspecified or unknown update type %v", t)
	}
}

func updateTypeToPi(t ir.UpdateType) (pi.UpdateType, error) {
	switch t {
	case ir.Insert:
		return pi.UpdateInsert, nil
	case ir.Modify:
		return pi.UpdateModify, nil
	case ir.Delete:
		return pi.UpdateDelete, nil
	default:
		return 0, p4err.New(p4err.InvalidArgument, "unsupported IR update type %v", t)
	}
}

// UpdateToIr converts a wire-form update into IR.
func UpdateToIr(mgr *p4info.Manager, u pi.Update) (ir.Update, error) {
	t, err := updateTypeToIr(u.Type)
	if err != nil {
		return ir.Update{}, err
	}
	e, err := TableEntryToIr(mgr, u.Entry)
	if err != nil {
		return ir.Update{}, err
	}
	return ir.Update{Type: t, Entry: e}, nil
}

// UpdateToPi renders an IR update back to wire form.
func UpdateToPi(mgr *p4info.Manager, u ir.Update) (pi.Update, error) {
	t, err := updateTypeToPi(u.Type)
	if err != nil {
		return pi.Update{}, err
	}
	e, err := TableEntryToPi(mgr, u.Entry)
	if err != nil {
		return pi.Update{}, err
	}
	return pi.Update{Type: t, Entry: e}, nil
}

// WriteRequestToIr converts a wire-form write request into IR, failing on
// the first invalid update.
func WriteRequestToIr(mgr *p4info.Manager, w pi.WriteRequest) (_ ir.WriteRequest, err error) {
	start := time.Now()
	defer func() { observe("pi_to_ir", start, len(w.Updates), err) }()

	updates := make([]ir.Update, 0, len(w.Updates))
	for i, u := range w.Updates {
		iu, uerr := UpdateToIr(mgr, u)
		if uerr != nil {
			err = p4err.New(p4err.InvalidArgument, "update %d: %v", i, uerr)
			return ir.WriteRequest{}, err
		}
		updates = append(updates, iu)
	}
	return ir.WriteRequest{
		DeviceID:   w.DeviceID,
		ElectionID: ir.ElectionID{High: w.ElectionHigh, Low: w.ElectionLow},
		Updates:    updates,
	}, nil
}

// WriteRequestToPi renders an IR write request back to wire form.
func WriteRequestToPi(mgr *p4info.Manager, w ir.WriteRequest) (_ pi.WriteRequest, err error) {
	start := time.Now()
	defer func() { observe("ir_to_pi", start, len(w.Updates), err) }()

	updates := make([]pi.Update, 0, len(w.Updates))
	for i, u := range w.Updates {
		pu, uerr := UpdateToPi(mgr, u)
		if uerr != nil {
			err = p4err.New(p4err.InvalidArgument, "update %d: %v", i, uerr)
			return pi.WriteRequest{}, err
		}
		updates = append(updates, pu)
	}
	return pi.WriteRequest{
		DeviceID:     w.DeviceID,
		ElectionHigh: w.ElectionID.High,
		ElectionLow:  w.ElectionID.Low,
		Updates:      updates,
	}, nil
}

// ReadRequestToIr converts a wire-form read request into IR, resolving
// table ids to names.
func ReadRequestToIr(mgr *p4info.Manager, r pi.ReadRequest) (ir.ReadRequest, error) {
	names := make([]string, 0, len(r.TableIDs))
	for _, id := range r.TableIDs {
		t, err := mgr.TableByID(id)
		if err != nil {
			return ir.ReadRequest{}, err
		}
		names = append(names, t.Name)
	}
	return ir.ReadRequest{DeviceID: r.DeviceID, TableNames: names}, nil
}

// ReadRequestToPi renders an IR read request back to wire form, resolving
// table names to ids.
func ReadRequestToPi(mgr *p4info.Manager, r ir.ReadRequest) (pi.ReadRequest, error) {
	ids := make([]uint32, 0, len(r.TableNames))
	for _, name := range r.TableNames {
		t, err := mgr.TableByName(name)
		if err != nil {
			return pi.ReadRequest{}, err
		}
		ids = append(ids, t.ID)
	}
	return pi.ReadRequest{DeviceID: r.DeviceID, TableIDs: ids}, nil
}

// ReadResponseToIr converts a wire-form read response into IR.
func ReadResponseToIr(mgr *p4info.Manager, r pi.ReadResponse) (ir.ReadResponse, error) {
	entries := make([]ir.TableEntry, 0, len(r.Entries))
	for i, e := range r.Entries {
		ie, err := TableEntryToIr(mgr, e)
		if err != nil {
			return ir.ReadResponse{}, p4err.New(p4err.InvalidArgument, "entry %d: %v", i, err)
		}
		entries = append(entries, ie)
	}
	return ir.ReadResponse{Entries: entries}, nil
}

// ReadResponseToPi renders an IR read response back to wire form.
func ReadResponseToPi(mgr *p4info.Manager, r ir.ReadResponse) (pi.ReadResponse, error) {
	entries := make([]pi.TableEntry, 0, len(r.Entries))
	for i, e := range r.Entries {
		pe, err := TableEntryToPi(mgr, e)
		if err != nil {
			return pi.ReadResponse{}, p4err.New(p4err.InvalidArgument, "entry %d: %v", i, err)
		}
		entries = append(entries, pe)
	}
	return pi.ReadResponse{Entries: entries}, nil
}
