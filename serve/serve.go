// Public domain.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/soniakeys/exit"

	"github.com/vivekvenkris/CandyWeb/internal/api"
	"github.com/vivekvenkris/CandyWeb/internal/config"
	"github.com/vivekvenkris/CandyWeb/internal/logger"
	"github.com/vivekvenkris/CandyWeb/internal/psrcat"
)

const parentImport = "github.com/vivekvenkris/CandyWeb"
const versionString = "serve version " + api.Version
const copyrightString = "Public domain."

func main() {
	defer exit.Handler()

	flag.Usage = func() {
		os.Stderr.WriteString("Usage: serve [options]\n")
		flag.PrintDefaults()
		os.Stderr.WriteString(`
For full documentation:
   go doc ` + parentImport + `/serve
`)
	}
	fnConfig := flag.String("c", "", "config file")
	fnCat := flag.String("p", "", "psrcat database, overrides catalog.path")
	addr := flag.String("a", "", "listen address, overrides server.addr")
	root := flag.String("d", "", "data root, overrides server.data_root")
	vers := flag.Bool("v", false, "display version and copyright")
	flag.Parse()
	if *vers {
		fmt.Println(versionString)
		fmt.Println(copyrightString)
		os.Exit(0)
	}
	if flag.NArg() != 0 {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadWithDefaults(*fnConfig)
	if err != nil {
		exit.Log(err)
	}
	override(&cfg.Catalog.Path, *fnCat)
	override(&cfg.Server.Addr, *addr)
	override(&cfg.Server.DataRoot, *root)
	if err := cfg.Validate(); err != nil {
		exit.Log(err)
	}
	if fi, err := os.Stat(cfg.Server.DataRoot); err != nil || !fi.IsDir() {
		exit.Log("data root " + cfg.Server.DataRoot + " is not a directory")
	}

	logger.Init(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		RunID:  uuid.NewString(),
	})
	log := logger.Named("serve")

	// the server is useful without a catalog, only known pulsar lookups
	// are refused.
	cat, err := psrcat.LoadFile(cfg.Catalog.Path, logger.Named("psrcat"))
	if err != nil {
		log.Warn().Err(err).Msg("psrcat unavailable, known pulsar lookups disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := api.New(cfg, cat, logger.Named("api")).Run(ctx); err != nil {
		exit.Log(err)
	}
	log.Info().Msg("server stopped")
}

// override sets *p to v unless v is empty.
func override(p *string, v string) {
	if v != "" {
		*p = v
	}
}
