package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rewired-gh/rentscore/internal/api"
	"github.com/urfave/cli/v3"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the scoring API over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (default: server.addr from config)",
			},
		},
		Action: cmdServe,
	}
}

func cmdServe(ctx context.Context, cmd *cli.Command) error {
	st := getState(cmd)

	a, err := newAnalyzer(st)
	if err != nil {
		return err
	}

	cfg := st.cfg.Server
	if addr := cmd.String("addr"); addr != "" {
		cfg.Addr = addr
	}
	if st.cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	return api.New(cfg, a).Run(ctx)
}
