// Command kasegi-tui is the terminal client for the kasegi server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"

	"kasegi/api"
	"kasegi/app"
	"kasegi/config"
	"kasegi/internal/core"
)

func main() {
	serverFlag := flag.String("server", "", "server profile name from config")
	configFlag := flag.String("config", config.DefaultPath(), "path to config file")
	flag.Parse()

	cfg, err := config.LoadFrom(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	core.SetCurrencySymbol(cfg.Currency)

	serverName := *serverFlag
	if serverName == "" {
		names := cfg.ServerNames()
		if len(names) == 1 {
			serverName = names[0]
		} else {
			fmt.Fprintf(os.Stderr, "Multiple servers configured. Use --server flag.\nAvailable: %v\n", names)
			os.Exit(1)
		}
	}

	serverCfg, ok := cfg.Servers[serverName]
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: server %q not found in config\n", serverName)
		os.Exit(1)
	}

	// The terminal owns stdout, so background errors go to a log file.
	logPath := filepath.Join(filepath.Dir(*configFlag), "kasegi-tui.log")
	if f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
		log.SetOutput(f)
		defer f.Close()
	}

	client := api.New(serverCfg.URL, serverCfg.Timeout())
	root := app.New(app.Params{
		Service:    client,
		ServerName: serverName,
		StaleTTL:   cfg.StaleTTL(),
	})

	vxApp, err := vxfw.NewApp(vaxis.Options{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Events must be postable before the first fetch starts so the loading
	// indicator can resolve.
	root.SetPostEvent(vxApp.PostEvent)
	root.LoadAll(context.Background())

	if err := vxApp.Run(root); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
