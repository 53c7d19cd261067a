package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/internal/kernel"
	"github.com/shashiranjanraj/storefront/internal/server"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/router"
)

// storefront serve: start the HTTP and gRPC servers.
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run", "start"},
	Short:   "Start the HTTP and gRPC servers",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := server.Boot(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()
		return server.Start(rt)
	},
}

// storefront route:list: print all registered routes.
var routeListCmd = &cobra.Command{
	Use:     "route:list",
	Aliases: []string{"routes"},
	Short:   "List all registered routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		// The route table does not depend on the store, so no connection is opened.
		k, err := kernel.NewHTTPKernel(kernel.Deps{
			Store: repositories.NewMemoryStore(),
			Cache: cache.NewMemory(),
		})
		if err != nil {
			return err
		}
		return printRoutes(cmd.OutOrStdout(), k.Router())
	},
}

func printRoutes(out io.Writer, r *router.Router) error {
	infos := r.Routes()
	if len(infos) == 0 {
		fmt.Fprintln(out, "No routes registered.")
		return nil
	}

	// Sort by path then method.
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Path != infos[j].Path {
			return infos[i].Path < infos[j].Path
		}
		return infos[i].Method < infos[j].Method
	})

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "METHOD\tPATH\tNAME")
	fmt.Fprintln(w, "------\t----\t----")
	for _, ri := range infos {
		fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
	}
	return w.Flush()
}
