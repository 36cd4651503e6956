// Main package p4xlate-server hosts the P4Info-driven translation core as
// a long-running process: it loads a P4Info document once at startup,
// keeps the derived info manager resident, and serves the Prometheus
// metrics endpoint until it receives SIGINT or SIGTERM. It makes no
// translation or sequencer calls itself.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/m-lab/go/flagx"
	"github.com/m-lab/go/prometheusx"
	"github.com/m-lab/go/rtx"

	"github.com/p4rtxlate/p4rtxlate/p4info"
)

func init() {
	// Always prepend the filename and line number.
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}

var (
	p4infoPath = flag.String("p4info", "", "P4Info JSON file to load at startup.")
	promPort   = flag.String("prom", ":9090", "Prometheus metrics export address and port. Default is ':9090'")

	ctx, cancel = context.WithCancel(context.Background())
)

func loadManager(path string) (*p4info.Manager, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var raw p4info.RawP4Info
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return nil, err
	}
	return p4info.New(raw)
}

func main() {
	flag.Parse()
	flagx.ArgsFromEnv(flag.CommandLine)

	mgr, err := loadManager(*p4infoPath)
	rtx.Must(err, "Could not load P4Info from %q", *p4infoPath)
	log.Printf("loaded P4Info: %d tables, %d actions", len(mgr.TablesByID), len(mgr.ActionsByID))

	// Expose prometheus metrics on a separate port.
	promSrv := prometheusx.MustStartPrometheus(*promPort)
	defer promSrv.Shutdown(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	cancel()
}
