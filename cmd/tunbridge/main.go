// Command tunbridge is the zero-impairment dual-device bridge mode
// from spec.md §1/§9: it reads from one tunnel endpoint and writes to
// the other, and vice versa, without queueing.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/apex/log"
	"github.com/apex/log/handlers/text"
	flag "github.com/spf13/pflag"

	"github.com/netimpair/dummynet"
	"github.com/netimpair/dummynet/internal/logadapter"
	"github.com/netimpair/dummynet/internal/runid"
)

func main() {
	os.Exit(run())
}

func run() int {
	log.SetHandler(text.New(os.Stderr))

	var (
		leftPath  = flag.String("n1", "/dev/tun0", "left tunnel device path")
		rightPath = flag.String("n2", "/dev/tun1", "right tunnel device path")
	)
	flag.Parse()

	logger := log.WithField("run_id", runid.New())

	left, err := dummynet.OpenDevice(*leftPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tunbridge: opening %s: %s\n", *leftPath, err.Error())
		return 1
	}
	defer left.Close()

	right, err := dummynet.OpenDevice(*rightPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tunbridge: opening %s: %s\n", *rightPath, err.Error())
		return 1
	}
	defer right.Close()

	bridge, err := dummynet.NewBridge(left, right, logadapter.New(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "tunbridge: %s\n", err.Error())
		return 1
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		<-sigCh
		bridge.Stop()
	}()

	if err := bridge.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "tunbridge: %s\n", err.Error())
		return 1
	}
	return 0
}
