package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/app/routes"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/internal/server"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/grpc"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// storefront serve
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run", "start"},
	Short:   "Start the HTTP server with in-process queue workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		rt, err := boot(ctx)
		if err != nil {
			return err
		}
		defer rt.close()

		r, err := rt.handler()
		if err != nil {
			return err
		}

		// Workers and the hub outlive the listener so that listeners fired by
		// the last requests can still enqueue and broadcast.
		bg, cancelBG := context.WithCancel(context.WithoutCancel(ctx))
		var wg sync.WaitGroup
		wg.Add(2)
		go func() { defer wg.Done(); rt.hub.Run(bg) }()
		go func() { defer wg.Done(); rt.queue.Run(bg, config.QueueWorkers()) }()

		var rpc *grpc.Server
		if port := config.GRPCPort(); port != "" {
			rpc = grpc.New(rt.checks)
			if err := rpc.Start(port); err != nil {
				cancelBG()
				wg.Wait()
				return err
			}
		}

		err = server.Run(ctx, ":"+config.AppPort(), r.Handler())

		rpc.Stop()
		rt.events.Close()
		cancelBG()
		wg.Wait()
		logger.Info("storefront stopped")
		return err
	},
}

// storefront route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered named routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		r := server.NewRouter(server.Options{})
		routes.RegisterAPI(r, auth.NewTokens("route-list"), routes.Handlers{})

		infos := r.Routes()
		sort.Slice(infos, func(i, j int) bool {
			if infos[i].Path != infos[j].Path {
				return infos[i].Path < infos[j].Path
			}
			return infos[i].Method < infos[j].Method
		})

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range infos {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}
