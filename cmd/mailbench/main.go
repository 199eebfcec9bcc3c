// Command mailbench floods a single mailbox from many producers and checks
// that no update was lost.
//
//	mailbench --producers 16 --posts 100000 --capacity 1024
//
// Every flag can also be set through the environment, e.g.
// MAILBENCH_PRODUCERS=16. With --metrics-addr set, Prometheus metrics are
// served on /metrics while the run is in progress.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
