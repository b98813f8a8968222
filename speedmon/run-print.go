package speedmon

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"
)

const (
	DefaultDialTimeout = 10 * time.Second
	DefaultRunTimeout  = time.Duration(0) // no deadline
)

var logger = log.New(os.Stderr, "", 0)

type RunOptions struct {
	URL               string
	TransportProtocol string
	DialTimeout       time.Duration
	Timeout           time.Duration
	Verbose           bool
	Clock             Clock
	// Label prefixes the result line, e.g. "IPv4".
	Label string
}

func formatDeciles(deciles []float64) string {
	numStrs := []string{}

	for _, decile := range deciles {
		numStrs = append(numStrs, fmt.Sprintf("%.3f", decile))
	}

	return fmt.Sprintf("%v", numStrs)
}

func printEstimate(printer *log.Logger, label string, estimate *Estimate) {
	if label != "" {
		printer.Printf("%s: %d megabits per second\n", label, estimate.Mbps)
		return
	}
	printer.Printf("%d megabits per second\n", estimate.Mbps)
}

func printEstimateDetails(printer *log.Logger, label string, estimate *Estimate) {
	if estimate == nil || estimate.Stats == nil {
		return
	}

	printer.Printf("%s-trimmed: %d Mbps\n", label, estimate.Mbps)
	printer.Printf("%s-raw-mean: %.3f Mbps\n", label, estimate.Stats.Mean)
	printer.Printf("%s-raw-stderr: %.3f Mbps\n", label, estimate.Stats.StdErr)
	printer.Printf("%s-raw-min: %.3f Mbps\n", label, estimate.Stats.Min)
	printer.Printf("%s-raw-max: %.3f Mbps\n", label, estimate.Stats.Max)
	printer.Printf("%s-raw-deciles: %s Mbps\n", label, formatDeciles(estimate.Stats.Deciles))
	printer.Printf("%s-tx: %.3f MiB\n", label, float64(estimate.TXSize)/1024/1024)
	printer.Printf("%s-time: %.3f s\n", label, estimate.Duration.Seconds())
	printer.Printf("%s-kept: %d\n", label, estimate.NKept)
	printer.Printf("%s-n: %d\n", label, estimate.NSamples)
}

// NewHTTPClient returns a client whose connections are dialled over protocol
// ("tcp", "tcp4" or "tcp6").
func NewHTTPClient(protocol string, dialTimeout time.Duration) *http.Client {
	// cf. https://go.googlesource.com/go/+/refs/tags/go1.22.1/src/net/http/transport.go#43
	// cf. https://go.googlesource.com/go/+/refs/tags/go1.22.1/src/net/http/transport.go#140
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: func(ctx context.Context, _, addr string) (net.Conn, error) {
			return (&net.Dialer{
				Timeout:   dialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext(ctx, protocol, addr)
		},
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		DisableCompression:    true,
	}

	return &http.Client{Transport: transport}
}

// withRunTimeout bounds a run by timeout; zero or less leaves it unbounded.
func withRunTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, timeout)
}

func RunAndPrint(ctx context.Context, printer *log.Logger, opts RunOptions) error {
	if opts.TransportProtocol == "" {
		opts.TransportProtocol = "tcp"
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = DefaultDialTimeout
	}
	ctx, cancel := withRunTimeout(ctx, opts.Timeout)
	defer cancel()

	url := NormalizeURL(opts.URL)
	if opts.Verbose {
		logger.Printf("Measuring %s over %s\n", url, opts.TransportProtocol)
	}

	client := NewHTTPClient(opts.TransportProtocol, opts.DialTimeout)
	defer client.CloseIdleConnections()

	estimate, err := Measure(ctx, client, url, opts.Clock)
	if err != nil {
		return errors.Wrap(err, "downlink measurement failed")
	}

	if opts.Verbose {
		label := "Downlink"
		if opts.Label != "" {
			label = opts.Label + "-Downlink"
		}
		printEstimateDetails(printer, label, estimate)
		printer.Println()
	}
	printEstimate(printer, opts.Label, estimate)

	return nil
}
