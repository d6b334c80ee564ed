// Package host runs a server and a client in one process, so a single
// command both opens a room and joins it.
package host

import (
	"context"
	"time"

	"github.com/dmitrijs2005/tchat/internal/client"
	clientconfig "github.com/dmitrijs2005/tchat/internal/client/config"
	"github.com/dmitrijs2005/tchat/internal/logging"
	"github.com/dmitrijs2005/tchat/internal/server"
	serverconfig "github.com/dmitrijs2005/tchat/internal/server/config"
)

// startupDelay gives the embedded server time to bind before the client's
// first dial. The client retries anyway; this just avoids a noisy first
// attempt.
const startupDelay = 500 * time.Millisecond

// Run starts the server in the background and attaches an interactive
// client to it. It returns when the client session ends; the server is torn
// down on the way out.
func Run(ctx context.Context, serverCfg *serverconfig.Config, clientCfg *clientconfig.Config, log logging.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app, err := server.NewApp(ctx, serverCfg)
	if err != nil {
		return err
	}

	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		app.Run(ctx)
	}()

	time.Sleep(startupDelay)

	clientCfg.Host = "localhost"
	clientCfg.Port = serverCfg.Port

	runErr := client.New(clientCfg, log).Run(ctx)

	app.Server().Stop()
	cancel()
	<-serverDone

	return runErr
}
