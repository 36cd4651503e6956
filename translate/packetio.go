package translate

import (
	"github.com/p4rtxlate/p4rtxlate/ir"
	"github.com/p4rtxlate/p4rtxlate/irvalue"
	"github.com/p4rtxlate/p4rtxlate/p4err"
	"github.com/p4rtxlate/p4rtxlate/p4info"
	"github.com/p4rtxlate/p4rtxlate/pi"
)

// PacketInToIr converts a wire-form packet-in message into IR.
func PacketInToIr(mgr *p4info.Manager, p pi.PacketIn) (ir.PacketIn, error) {
	md, err := packetMetadataToIr(mgr.PacketInByID, "packet-in", p.Metadata)
	if err != nil {
		return ir.PacketIn{}, err
	}
	return ir.PacketIn{Payload: p.Payload, Metadata: md}, nil
}

// PacketInToPi renders an IR packet-in message back to wire form.
func PacketInToPi(mgr *p4info.Manager, p ir.PacketIn) (pi.PacketIn, error) {
	md, err := packetMetadataToPi(mgr.PacketInByName, "packet-in", p.Metadata)
	if err != nil {
		return pi.PacketIn{}, err
	}
	return pi.PacketIn{Payload: p.Payload, Metadata: md}, nil
}

// PacketOutToIr converts a wire-form packet-out message into IR.
func PacketOutToIr(mgr *p4info.Manager, p pi.PacketOut) (ir.PacketOut, error) {
	md, err := packetMetadataToIr(mgr.PacketOutByID, "packet-out", p.Metadata)
	if err != nil {
		return ir.PacketOut{}, err
	}
	return ir.PacketOut{Payload: p.Payload, Metadata: md}, nil
}

// PacketOutToPi renders an IR packet-out message back to wire form.
func PacketOutToPi(mgr *p4info.Manager, p ir.PacketOut) (pi.PacketOut, error) {
	md, err := packetMetadataToPi(mgr.PacketOutByName, "packet-out", p.Metadata)
	if err != nil {
		return pi.PacketOut{}, err
	}
	return pi.PacketOut{Payload: p.Payload, Metadata: md}, nil
}

func packetMetadataToIr(byID map[uint32]*p4info.PacketMetadata, direction string, raw []pi.PacketMetadata) ([]ir.PacketMetadataValue, error) {
	seen := make(map[uint32]bool, len(raw))
	out := make([]ir.PacketMetadataValue, 0, len(raw))
	for _, m := range raw {
		if seen[m.MetadataID] {
			return nil, p4err.New(p4err.InvalidArgument, "%s: duplicate metadata id %d", direction, m.MetadataID)
		}
		seen[m.MetadataID] = true
		pm, ok := byID[m.MetadataID]
		if !ok {
			return nil, p4err.New(p4err.NotFound, "%s: no metadata with id %d", direction, m.MetadataID)
		}
		v, err := irvalue.FormatToIr(pm.Format, pm.Bitwidth, m.Value)
		if err != nil {
			return nil, p4err.New(p4err.InvalidArgument, "%s metadata %q: %v", direction, pm.Name, err)
		}
		out = append(out, ir.PacketMetadataValue{Name: pm.Name, Value: v})
	}
	return out, nil
}

func packetMetadataToPi(byName map[string]*p4info.PacketMetadata, direction string, vals []ir.PacketMetadataValue) ([]pi.PacketMetadata, error) {
	seen := make(map[string]bool, len(vals))
	out := make([]pi.PacketMetadata, 0, len(vals))
	for _, v := range vals {
		if seen[v.Name] {
			return nil, p4err.New(p4err.InvalidArgument, "%s: duplicate metadata %q", direction, v.Name)
		}
		seen[v.Name] = true
		pm, ok := byName[v.Name]
		if !ok {
			return nil, p4err.New(p4err.NotFound, "%s: no metadata named %q", direction, v.Name)
		}
		b, err := irvalue.IrToBytes(v.Value, pm.Format)
		if err != nil {
			return nil, p4err.New(p4err.InvalidArgument, "%s metadata %q: %v", direction, v.Name, err)
		}
		norm, err := irvalue.Normalize(b, pm.Bitwidth)
		if err != nil {
			return nil, p4err.New(p4err.InvalidArgument, "%s metadata %q: %v", direction, v.Name, err)
		}
		out = append(out, pi.PacketMetadata{MetadataID: pm.ID, Value: irvalue.BytesToCanonical(norm)})
	}
	return out, nil
}
