package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/dmitrijs2005/tchat/internal/client"
	clientconfig "github.com/dmitrijs2005/tchat/internal/client/config"
	"github.com/dmitrijs2005/tchat/internal/common"
	"github.com/dmitrijs2005/tchat/internal/flagx"
	"github.com/dmitrijs2005/tchat/internal/host"
	"github.com/dmitrijs2005/tchat/internal/logging"
	"github.com/dmitrijs2005/tchat/internal/server"
	serverconfig "github.com/dmitrijs2005/tchat/internal/server/config"
)

const usageText = `Usage: tchat <mode> [options]

Modes:
  server [-auth] [port]   start a chat server
  client [host] [port]    connect to a chat server
  host   [-auth] [port]   start a server and join it from the same process

Server options:
  -p port          listen port (default 8080)
  -b address       bind address (default 0.0.0.0)
  -m count         maximum concurrent connections (default 100)
  -auth            require register/login before chatting
  -d dsn           PostgreSQL DSN for the account store (default in-memory)
  -s secret        password pepper

Client options:
  -H host          server host (default localhost)
  -P port          server port (default 8080)
  -t seconds       connect timeout (default 10)

Common options:
  -c path          JSON config file (also -config)

Environment:
  TCHAT_HOST, TCHAT_PORT, TCHAT_MAX_CONNECTIONS, TCHAT_REQUIRE_AUTH,
  TCHAT_DATABASE_DSN, TCHAT_SECRET
`

// valueFlags lists every flag of any mode that consumes the next argument,
// so positional host/port words can be told apart from flag values.
var valueFlags = []string{"-p", "-b", "-m", "-d", "-s", "-c", "-config", "-H", "-P", "-t"}

func main() {
	args := flagx.Positionals(os.Args[1:], valueFlags)
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	ctx := context.Background()

	var err error
	switch args[0] {
	case "server":
		err = runServer(ctx, args[1:])
	case "client":
		err = runClient(ctx, args[1:])
	case "host":
		err = runHost(ctx, args[1:])
	case "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown mode %q\n\n", args[0])
		usage()
		os.Exit(2)
	}

	if err != nil && !errors.Is(err, common.ErrDisconnected) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, usageText)
}

func runServer(ctx context.Context, positionals []string) error {
	cfg := serverconfig.LoadConfig()
	if err := applyPort(positionals, &cfg.Port); err != nil {
		return err
	}

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		return err
	}

	app.Run(ctx)
	return nil
}

func runClient(ctx context.Context, positionals []string) error {
	cfg := clientconfig.LoadConfig()
	if len(positionals) > 0 {
		cfg.Host = positionals[0]
	}
	if err := applyPort(positionals[min(1, len(positionals)):], &cfg.Port); err != nil {
		return err
	}

	log := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	return client.New(cfg, log).Run(ctx)
}

func runHost(ctx context.Context, positionals []string) error {
	serverCfg := serverconfig.LoadConfig()
	if err := applyPort(positionals, &serverCfg.Port); err != nil {
		return err
	}
	clientCfg := clientconfig.LoadConfig()

	log := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	return host.Run(ctx, serverCfg, clientCfg, log)
}

// applyPort overlays the first positional argument as a port number, when
// one is present.
func applyPort(positionals []string, port *int) error {
	if len(positionals) == 0 {
		return nil
	}
	p, err := strconv.Atoi(positionals[0])
	if err != nil {
		return fmt.Errorf("invalid port %q", positionals[0])
	}
	*port = p
	return nil
}
