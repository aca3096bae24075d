package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/config"
	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/database"
	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/logger"
	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/router"
	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/session"
)

func main() {
	// load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// ensure basic directories exist
	if err := ensureDir(filepath.Dir(cfg.Database.Path)); err != nil {
		log.Fatalf("create data dir: %v", err)
	}
	if err := ensureDir(filepath.Dir(cfg.Log.File)); err != nil {
		log.Fatalf("create log dir: %v", err)
	}

	// diagnostic channel
	zl, err := logger.New(cfg.Log, cfg.Server.Mode == "debug")
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	// init database
	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}

	// run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	// auth-state store
	store := session.NewStore()

	// setup router
	r := router.SetupRouter(cfg, db, store, zl)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	log.Printf("server listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("run server: %v", err)
	}
}

func ensureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
