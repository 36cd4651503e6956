package p4info

import (
	"strings"

	"github.com/p4rtxlate/p4rtxlate/annotation"
	"github.com/p4rtxlate/p4rtxlate/irvalue"
	"github.com/p4rtxlate/p4rtxlate/p4err"
)

// namedTypesForcingString is the small set of recognized P4 named types
// that force Format STRING regardless of bitwidth.
var namedTypesForcingString = map[string]bool{
	"router_interface_id_t": true,
	"neighbor_id_t":         true,
	"nexthop_id_t":          true,
	"wcmp_group_id_t":       true,
}

// deriveFormat computes the Format for a field from its annotations,
// bit-width, and optional named type, per spec: at most one @format
// annotation; MAC requires bitwidth 48; IPV4 requires 32; IPV6 requires
// 128; a recognized named type forces STRING.
func deriveFormat(fieldDesc string, annos []string, bitwidth int, typeName string) (irvalue.Format, error) {
	parsed, err := annotation.ParseAll(annos)
	if err != nil {
		return 0, p4err.New(p4err.InvalidArgument, "%s: %v", fieldDesc, err)
	}

	var formatAnno *annotation.Annotation
	for i := range parsed {
		if parsed[i].Label == "format" {
			if formatAnno != nil {
				return 0, p4err.New(p4err.InvalidArgument, "%s: more than one @format annotation", fieldDesc)
			}
			a := parsed[i]
			formatAnno = &a
		}
	}

	if typeName != "" && namedTypesForcingString[typeName] {
		if formatAnno != nil {
			return 0, p4err.New(p4err.InvalidArgument,
				"%s: named type %q forces STRING but @format was also given", fieldDesc, typeName)
		}
		return irvalue.String, nil
	}

	if formatAnno == nil {
		return irvalue.HexString, nil
	}

	var format irvalue.Format
	switch strings.TrimSpace(formatAnno.Body) {
	case "MAC":
		format = irvalue.Mac
	case "IPV4":
		format = irvalue.IPv4
	case "IPV6":
		format = irvalue.IPv6
	case "STRING":
		format = irvalue.String
	case "HEX_STRING":
		format = irvalue.HexString
	default:
		return 0, p4err.New(p4err.InvalidArgument, "%s: unrecognized @format value %q", fieldDesc, formatAnno.Body)
	}

	switch format {
	case irvalue.Mac:
		if bitwidth != 48 {
			return 0, p4err.New(p4err.InvalidArgument, "%s: @format(MAC) requires bitwidth 48, got %d", fieldDesc, bitwidth)
		}
	case irvalue.IPv4:
		if bitwidth != 32 {
			return 0, p4err.New(p4err.InvalidArgument, "%s: @format(IPV4) requires bitwidth 32, got %d", fieldDesc, bitwidth)
		}
	case irvalue.IPv6:
		if bitwidth != 128 {
			return 0, p4err.New(p4err.InvalidArgument, "%s: @format(IPV6) requires bitwidth 128, got %d", fieldDesc, bitwidth)
		}
	}
	return format, nil
}
