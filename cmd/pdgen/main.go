// Main package pdgen implements a command line tool for generating a
// program-dependent (PD) schema from a P4Info document.
package main

import (
	"encoding/json"
	"flag"
	"io"
	"log"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/m-lab/go/flagx"
	"github.com/m-lab/go/rtx"

	"github.com/p4rtxlate/p4rtxlate/p4info"
	"github.com/p4rtxlate/p4rtxlate/pdgen"
)

func init() {
	// Always prepend the filename and line number.
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}

var (
	input    = flag.String("input", "", "P4Info JSON file to read. Default is stdin.")
	output   = flag.String("output", "", "PD schema output file. Default is stdout.")
	coverCSV = flag.String("cover", "", "Optional path to write a CSV cover page listing every table and action.")
)

// coverRow is one row of the optional -cover CSV: a flat list of every
// table and action a generated schema covers, for change review.
type coverRow struct {
	Kind string `csv:"kind"`
	Name string `csv:"name"`
	ID   uint32 `csv:"id"`
}

func readRaw(path string) (p4info.RawP4Info, error) {
	var r io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return p4info.RawP4Info{}, err
		}
		defer f.Close()
		r = f
	}
	var raw p4info.RawP4Info
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return p4info.RawP4Info{}, err
	}
	return raw, nil
}

func writeCover(path string, mgr *p4info.Manager) error {
	rows := make([]*coverRow, 0, len(mgr.TablesByID)+len(mgr.ActionsByID))
	for _, t := range mgr.TablesByID {
		rows = append(rows, &coverRow{Kind: "table", Name: t.Name, ID: t.ID})
	}
	for _, a := range mgr.ActionsByID {
		rows = append(rows, &coverRow{Kind: "action", Name: a.Name, ID: a.ID})
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gocsv.Marshal(rows, f)
}

func main() {
	flag.Parse()
	flagx.ArgsFromEnv(flag.CommandLine)

	raw, err := readRaw(*input)
	rtx.Must(err, "Could not read P4Info from %q", *input)

	mgr, err := p4info.New(raw)
	rtx.Must(err, "Could not build info manager")

	schema := pdgen.Generate(mgr)

	var out io.Writer = os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		rtx.Must(err, "Could not create %q", *output)
		defer f.Close()
		out = f
	}
	_, err = io.WriteString(out, schema)
	rtx.Must(err, "Could not write PD schema")

	if *coverCSV != "" {
		rtx.Must(writeCover(*coverCSV, mgr), "Could not write cover CSV to %q", *coverCSV)
	}
}
