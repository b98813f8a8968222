package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/makotom/speedmon/speedmon"
)

var (
	BuildName       = "\b"
	BuildAnnotation = "git"
)

var errUsage = errors.New("missing payload URL")

type CmdOpts struct {
	testIP4            bool
	testIP6            bool
	verbose            bool
	timeout            time.Duration
	dialTimeout        time.Duration
	showVersionAndExit bool
}

func bindFlags(flags *pflag.FlagSet, opts *CmdOpts) {
	flags.BoolVarP(&opts.testIP4, "ip4", "4", false, "Ensure measurements over IPv4")
	flags.BoolVarP(&opts.testIP6, "ip6", "6", false, "Ensure measurements over IPv6")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Print per-run sample statistics")
	flags.DurationVar(&opts.timeout, "timeout", speedmon.DefaultRunTimeout, "Abort a measurement running longer than this (0 means no deadline)")
	flags.DurationVar(&opts.dialTimeout, "dial-timeout", speedmon.DefaultDialTimeout, "Connection establishment timeout")
	flags.BoolVar(&opts.showVersionAndExit, "version", false, "Show version information and exit")
}

func getTransportProtocols(opts *CmdOpts) []string {
	// if none specified, pick up a transport protocol automatically
	if !opts.testIP4 && !opts.testIP6 {
		return []string{"tcp"}
	}

	// these options are not mutually exclusive
	ret := []string{}
	if opts.testIP4 {
		ret = append(ret, "tcp4")
	}
	if opts.testIP6 {
		ret = append(ret, "tcp6")
	}

	return ret
}

// getRunLabel names the network of each result line once the user pinned it.
func getRunLabel(protocol string) string {
	switch protocol {
	case "tcp4":
		return "IPv4"
	case "tcp6":
		return "IPv6"
	default:
		return ""
	}
}

func newRootCmd(printer *log.Logger) *cobra.Command {
	opts := &CmdOpts{}

	cmd := &cobra.Command{
		Use:   "speedmon <https://payload.url>",
		Short: "Estimate downstream throughput from a large HTTP payload",
		Long: `speedmon downloads a payload, times every 1 MiB window of it as it arrives
and reports the trimmed mean of the per-window speeds in megabits per second.

The payload should be larger than 6 megabytes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.showVersionAndExit {
				printer.Printf("speedmon %s (%s)\n", BuildName, BuildAnnotation)
				return nil
			}
			if len(args) != 1 || args[0] == "" {
				return errUsage
			}

			for _, protocol := range getTransportProtocols(opts) {
				err := speedmon.RunAndPrint(cmd.Context(), printer, speedmon.RunOptions{
					URL:               args[0],
					TransportProtocol: protocol,
					DialTimeout:       opts.dialTimeout,
					Timeout:           opts.timeout,
					Verbose:           opts.verbose,
					Label:             getRunLabel(protocol),
				})
				if err != nil {
					return err
				}
			}

			return nil
		},
	}

	bindFlags(cmd.Flags(), opts)

	return cmd
}

func main() {
	printer := log.New(os.Stdout, "", 0)
	stderr := log.New(os.Stderr, "", 0)

	err := newRootCmd(printer).ExecuteContext(context.Background())
	if errors.Is(err, errUsage) {
		stderr.Println("Usage: speedmon <https://payload.url>")
		stderr.Println("Payload should be larger than 6 megabytes")
		os.Exit(1)
	}
	if err != nil {
		stderr.Printf("Measurement failed. %v\n", err)
		os.Exit(1)
	}
}
