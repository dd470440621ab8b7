// Command gnawtree is the entry point for the structural code editor:
// it wires configuration, persistence, and every collaborator package
// together and hands the parsed argv over to cli.Dispatcher. Grounded on
// cmd/morfx/main.go's thin main (parse flags, build a runner, run it,
// print the result) — the difference here is that flag parsing is
// per-subcommand, owned by cli.Dispatcher itself, rather than one flat
// flag surface built in main.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gorm.io/gorm"

	"github.com/oxhq/gnawtree/backup"
	"github.com/oxhq/gnawtree/batch"
	"github.com/oxhq/gnawtree/cli"
	"github.com/oxhq/gnawtree/config"
	"github.com/oxhq/gnawtree/db"
	"github.com/oxhq/gnawtree/diffbatch"
	"github.com/oxhq/gnawtree/edit"
	"github.com/oxhq/gnawtree/registry"
	"github.com/oxhq/gnawtree/restore"
	"github.com/oxhq/gnawtree/tags"
	"github.com/oxhq/gnawtree/txlog"
)

// log is the boundary logger: library packages (core, edit, providers,
// batch, ...) stay silent and return errors, only this entry point and
// rpcserver log, per the teacher's own minimal-logging posture.
var log = slog.New(slog.NewTextHandler(os.Stderr, nil))

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gnawtree <command> [flags] [args]")
		os.Exit(2)
	}

	root, err := os.Getwd()
	if err != nil {
		log.Error("resolving working directory", "error", err)
		os.Exit(1)
	}

	dispatcher, err := build(root)
	if err != nil {
		log.Error("wiring dispatcher", "error", err)
		os.Exit(1)
	}

	out := dispatcher.Run(os.Args[1:])
	for _, res := range out.Results {
		if res.Diff != "" {
			fmt.Print(res.Diff)
			continue
		}
		if res.File != "" {
			fmt.Printf("%s: %s\n", res.File, res.Message)
		} else {
			fmt.Println(res.Message)
		}
	}
	if out.Error != nil {
		log.Error("command failed", "error", out.Error, "exit_code", out.ExitCode)
	}
	os.Exit(out.ExitCode)
}

// build wires every collaborator package into a cli.Dispatcher, reading
// configuration from root the way config.Load documents: defaults, then
// .gnawtree.yaml, then environment variables (including any loaded from
// root/.env), in ascending precedence.
func build(root string) (*cli.Dispatcher, error) {
	cfg, err := config.Load(root)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	gdb, err := connectDB(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("connecting database: %w", err)
	}

	backups := backup.New(cfg.BackupDir)
	tagStore := tags.New(cfg.TagsFile)
	log := txlog.Open(gdb, backups)
	reg := registry.Default()
	engine := edit.New(reg, tagStore, backups, log)

	return &cli.Dispatcher{
		Registry:    reg,
		Engine:      engine,
		Batches:     batch.New(engine),
		Restorer:    restore.New(log, backups),
		DiffBatch:   diffbatch.New(reg),
		Tags:        tagStore,
		Log:         log,
		DiffContext: cfg.DiffContext,
		ListDepth:   cfg.ListDepth,
		ListLimit:   cfg.ListLimit,
	}, nil
}

// connectDB picks db.ConnectPostgres for a postgres:// DSN and
// db.Connect (sqlite, or libsql for a libsql:// / https:// Turso DSN)
// otherwise, matching db/postgres.go and db/sqlite.go's own DSN-shape
// detection rather than adding a separate config flag for it.
func connectDB(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return db.ConnectPostgres(dsn, false)
	}
	return db.Connect(dsn, false)
}
