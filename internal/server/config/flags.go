package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/tchat/internal/flagx"
)

// parseFlags overlays server settings from command-line flags:
//
//	-p int      listen port
//	-b string   bind address
//	-m int      maximum concurrent connections
//	-auth       require the password auth handshake
//	-d string   PostgreSQL DSN for the account store (empty = in-memory)
//	-s string   password pepper / secret
//
// Arguments are filtered through flagx first so the client's flag set (and
// the mode word) in the same argv do not trip parsing.
func parseFlags(cfg *Config) {
	args := flagx.Select(os.Args[1:], []string{"-p", "-b", "-m", "-auth", "--auth", "-d", "-s"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.IntVar(&cfg.Port, "p", cfg.Port, "listen port")
	fs.StringVar(&cfg.Host, "b", cfg.Host, "bind address")
	fs.IntVar(&cfg.MaxConnections, "m", cfg.MaxConnections, "maximum concurrent connections")
	fs.BoolVar(&cfg.RequireAuth, "auth", cfg.RequireAuth, "require password authentication")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "account store DSN")
	fs.StringVar(&cfg.Secret, "s", cfg.Secret, "password pepper")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
