package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/tchat/internal/flagx"
)

// parseFlags overlays client settings from command-line flags:
//
//	-H string   server host
//	-P int      server port
//	-t int      connect timeout in seconds
//
// Arguments are filtered through flagx first so the server's flag set (and
// the mode word) in the same argv do not trip parsing.
func parseFlags(cfg *Config) {
	args := flagx.Select(os.Args[1:], []string{"-H", "-P", "-t"})

	fs := flag.NewFlagSet("client", flag.ContinueOnError)

	fs.StringVar(&cfg.Host, "H", cfg.Host, "server host")
	fs.IntVar(&cfg.Port, "P", cfg.Port, "server port")
	connectTimeout := fs.Int("t", int(cfg.ConnectTimeout.Seconds()), "connect timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.ConnectTimeout = time.Duration(*connectTimeout) * time.Second
}
