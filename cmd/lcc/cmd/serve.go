package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	mdwlog "github.com/Nicolas5241/TheCalcularoty/foundation/core/log"
	"github.com/Nicolas5241/TheCalcularoty/internal/calc"
	"github.com/Nicolas5241/TheCalcularoty/internal/rpc"
	"github.com/Nicolas5241/TheCalcularoty/internal/server"
	"github.com/Nicolas5241/TheCalcularoty/pkg/core/cache"
	pkggrpc "github.com/Nicolas5241/TheCalcularoty/pkg/core/grpc"
)

type serveOptions struct {
	httpPort int
	grpcPort int
	noGRPC   bool
}

func newServeCmd(a *app) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and gRPC APIs",
		Long: `Start the calculator APIs.

  HTTP  /api/v1  health, units, calculate, convert and the ws session
  gRPC  lcc.v1.Calculator with grpc.health.v1 and reflection

Ports default to the [http] and [grpc] config sections. Ctrl+C stops both
servers gracefully.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, a, opts)
		},
	}

	cmd.Flags().IntVar(&opts.httpPort, "http-port", 0, "HTTP port (default from config)")
	cmd.Flags().IntVar(&opts.grpcPort, "grpc-port", 0, "gRPC port (default from config)")
	cmd.Flags().BoolVar(&opts.noGRPC, "no-grpc", false, "serve HTTP only")
	return cmd
}

func runServe(cmd *cobra.Command, a *app, opts *serveOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.httpPort != 0 {
		a.config.HTTP.Port = opts.httpPort
	}
	if opts.grpcPort != 0 {
		a.config.GRPC.Port = opts.grpcPort
	}

	httpConfig, err := server.ConfigFrom(a.config)
	if err != nil {
		return err
	}

	orchestrator := a.calc
	if a.config.Cache.Enabled {
		results := cache.New[*calc.Result](cache.Config{
			MaxItems:        a.config.Cache.MaxItems,
			TTL:             a.config.Cache.TTL.Duration,
			CleanupInterval: cache.DefaultConfig().CleanupInterval,
		})
		defer func() {
			stats := results.Stats()
			a.logger.Debug("Result cache closed", mdwlog.Fields{"hits": stats.Hits, "misses": stats.Misses, "size": stats.Size})
			results.Close()
		}()
		orchestrator = calc.New(a.calc.Engine(), calc.Config{
			Lenient: a.calc.Lenient(),
			Logger:  a.logger,
			Cache:   results,
		})
	}
	httpServer := server.New(httpConfig, orchestrator)

	var grpcServer *pkggrpc.Server
	if !opts.noGRPC {
		grpcServer = pkggrpc.NewServer(pkggrpc.ServerConfigFrom(a.config.GRPC))
		if err := rpc.Register(ctx, grpcServer, rpc.NewService(orchestrator, a.defaults)); err != nil {
			a.logger.ErrorWithErr("Engine self test failed", err)
		}
	}

	errCh := make(chan error, 2)
	go func() { errCh <- httpServer.Start() }()
	if grpcServer != nil {
		go func() { errCh <- grpcServer.Start() }()
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, TitleStyle.Render("lcc"))
	fmt.Fprintf(out, "HTTP API:     http://%s/api/v1\n", a.config.HTTPAddress())
	fmt.Fprintf(out, "Health Check: http://%s/api/v1/health\n", a.config.HTTPAddress())
	if grpcServer != nil {
		fmt.Fprintf(out, "gRPC:         %s (%s)\n", a.config.GRPCAddress(), rpc.ServiceName)
	}
	fmt.Fprintln(out, MutedStyle.Render("Press Ctrl+C to stop"))

	var serveErr error
	select {
	case <-ctx.Done():
		fmt.Fprintln(out, "\nStopping...")
	case serveErr = <-errCh:
		a.logger.ErrorWithErr("Server stopped unexpectedly", serveErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.HTTP.ShutdownTimeout.Duration)
	defer cancel()
	if grpcServer != nil {
		grpcServer.StopWithTimeout(shutdownCtx)
	}
	if err := httpServer.Stop(shutdownCtx); err != nil && serveErr == nil {
		serveErr = err
	}
	return serveErr
}
