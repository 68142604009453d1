// Command tunemd is the delay-mode front end for dummynet: it opens a
// tunnel device and runs the delay/shape/loss scheduling loop against
// it, per spec.md §6.
//
// Grounded on cbrunnkvist-ttylag/main.go's flag-parsing and
// signal-handling shape (spf13/pflag, an os/signal channel dispatched
// from a dedicated goroutine), adapted from a PTY wrapper to a
// scheduler front end.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/text"
	flag "github.com/spf13/pflag"

	"github.com/netimpair/dummynet"
	"github.com/netimpair/dummynet/internal/decode"
	"github.com/netimpair/dummynet/internal/logadapter"
	"github.com/netimpair/dummynet/internal/metrics"
	"github.com/netimpair/dummynet/internal/runid"
)

func main() {
	os.Exit(run())
}

func run() int {
	log.SetHandler(text.New(os.Stderr))

	var (
		bitErrorRate   = flag.Float64P("ber", "b", 0, "per-bit error rate in [0,1]")
		delayMs        = flag.IntP("delay", "d", 200, "delay in milliseconds")
		qlim           = flag.IntP("qlen", "l", 500, "queue capacity in packets")
		devicePath     = flag.StringP("device", "n", "/dev/tun0", "tunnel device path")
		packetLoss     = flag.Float64P("loss", "p", 0, "per-packet loss probability in [0,1]")
		shapingRateStr = flag.StringP("shaping", "s", "", "shaping rate, e.g. 56Kb, 1Mb, 10Gb (bits/sec)")
		quiet          = flag.BoolP("quiet", "q", false, "disable periodic stats reporting")
		verbosity      = flag.CountP("verbose", "v", "increase verbosity (-vv dumps packet bytes)")
		profile        = flag.StringP("profile", "P", "", "named link profile (see dummynet.Profiles)")
		metricsAddr    = flag.StringP("metrics", "m", "", "optional address to serve Prometheus /metrics on")
		reportSeconds  = flag.Int("report-interval", 5, "periodic stats report interval in seconds")
	)
	flag.Parse()

	if *verbosity >= 1 {
		log.SetLevel(log.DebugLevel)
	}
	if *quiet {
		log.SetLevel(log.ErrorLevel)
	}

	id := runid.New()
	logger := log.WithField("run_id", id)

	var cfg dummynet.Config
	if *profile != "" {
		if !dummynet.ApplyProfile(&cfg, *profile) {
			fmt.Fprintf(os.Stderr, "tunemd: unknown profile: %s\n", *profile)
			return 1
		}
	}

	// A profile sets Delay, ShapingBytesPerSec and Loss.PacketLoss; only
	// an explicitly passed flag may override those, never the flag's
	// default (SPEC_FULL.md §4.11). Shaping is overridden below only when
	// -s is given. QueueCapacity and BitErrorRate have no profile
	// component, so they always take the flag value.
	if *profile == "" || flag.CommandLine.Changed("delay") {
		cfg.Delay = time.Duration(*delayMs) * time.Millisecond
	}
	cfg.QueueCapacity = *qlim
	cfg.Loss.BitErrorRate = *bitErrorRate
	if *profile == "" || flag.CommandLine.Changed("loss") {
		cfg.Loss.PacketLoss = *packetLoss
	}
	if !*quiet {
		cfg.ReportInterval = time.Duration(*reportSeconds) * time.Second
	}
	cfg.Logger = logadapter.New(logger)

	if *shapingRateStr != "" {
		rate, err := dummynet.ParseShapingRate(*shapingRateStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "tunemd: %s\n", err.Error())
			return 1
		}
		cfg.ShapingBytesPerSec = rate
	}

	if *verbosity >= 2 {
		cfg.OnPacket = func(p *dummynet.Packet, direction string) {
			logger.Debugf("%s: %s: % x", direction, decode.Summarize(p.Bytes()), p.Bytes())
		}
	}

	cfg.OnReport = func(r dummynet.Report) {
		logger.Infof(
			"stats: queue=%d recv=%d sent=%d shaped=%d dropped=%d throughput=%.0fbit/s avg_discrepancy=%.2fms",
			r.QueueLen, r.ReceivedPackets, r.SentPackets, r.Shaped, r.Dropped,
			r.AvgThroughputBitsPerSec, r.AvgDiscrepancyMs,
		)
	}

	dev, err := dummynet.OpenDevice(*devicePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tunemd: opening %s: %s\n", *devicePath, err.Error())
		return 1
	}
	defer dev.Close()

	control := dummynet.NewControl()
	sched, err := dummynet.NewScheduler(dev, cfg, control)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tunemd: %s\n", err.Error())
		return 1
	}

	if *metricsAddr != "" {
		collector := metrics.NewCollector(id, sched)
		go func() {
			if err := metrics.Serve(*metricsAddr, collector); err != nil {
				logger.Warnf("metrics server stopped: %s", err.Error())
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGUSR1)
	go func() {
		for sig := range sigCh {
			switch sig {
			case syscall.SIGUSR1:
				control.RequestStatsDump()
			default:
				control.RequestStop()
			}
		}
	}()

	if err := sched.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "tunemd: %s\n", err.Error())
		return 1
	}

	final := sched.DumpStats()
	logger.Infof(
		"final: sent=%d dropped=%d shaped=%d avg_discrepancy=%.2fms",
		final.SentPackets, final.Dropped, final.Shaped, final.AvgDiscrepancyMs,
	)
	return 0
}
