package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/NationalMuseumofDenmark/cip-go/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	flag.Usage = usage
	configPath := flag.String("config", "", "override config path (optional)")
	pollSeconds := flag.Int("poll", 0, "keepalive interval in seconds (optional, defaults to 5s)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{ConfigPath: *configPath, Args: flag.Args()}
	if poll := *pollSeconds; poll > 0 {
		opts.PollEvery = poll
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "cip: %v\n", err)
		return 1
	}
	return 0
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage: cip [flags] [command]\n\n")
	fmt.Fprintf(out, "Commands:\n")
	fmt.Fprintf(out, "  browse          interactive catalog browser (default)\n")
	fmt.Fprintf(out, "  version         server component versions\n")
	fmt.Fprintf(out, "  catalogs        catalogs the user can open\n")
	fmt.Fprintf(out, "  tables          tables of the configured catalog\n")
	fmt.Fprintf(out, "  layout          field layout of the configured view\n")
	fmt.Fprintf(out, "  search <query>  quick search the configured catalog\n")
	fmt.Fprintf(out, "  fields <id>     field values of one record\n\n")
	fmt.Fprintf(out, "Flags:\n")
	flag.PrintDefaults()
}
