package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/ngoduykhanh/flatpost/handler"
	"github.com/ngoduykhanh/flatpost/router"
	"github.com/ngoduykhanh/flatpost/store/jsondb"
	"github.com/ngoduykhanh/flatpost/token"
	"github.com/ngoduykhanh/flatpost/util"
)

var (
	// command-line banner information
	appVersion = "development"
	gitCommit  = "N/A"
	gitRef     = "N/A"
	buildTime  = time.Now().UTC().Format("01-02-2006 15:04:05")
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := util.ParseConfig(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Invalid configuration:", err)
		os.Exit(2)
	}
	lvl, _ := util.ParseLogLevel(cfg.LogLevel)

	// print app information
	fmt.Println("Flatpost")
	fmt.Println("App Version\t:", appVersion)
	fmt.Println("Git Commit\t:", gitCommit)
	fmt.Println("Git Ref\t\t:", gitRef)
	fmt.Println("Build Time\t:", buildTime)
	fmt.Println("Bind address\t:", cfg.BindAddress)
	fmt.Println("Database path\t:", cfg.DBPath)
	fmt.Println("Token TTL\t:", cfg.TokenTTL)
	fmt.Println("Log level\t:", cfg.LogLevel)

	// initialize DB
	db, err := jsondb.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Cannot open database: %v", err)
	}
	if err := db.Init(); err != nil {
		log.Fatalf("Cannot init database: %v", err)
	}

	hasher := util.NewHasher(cfg.BcryptCost)
	if cfg.SeedUsersPath != "" {
		if err := db.SeedUsers(cfg.SeedUsersPath, hasher); err != nil {
			log.Fatalf("Cannot seed users: %v", err)
		}
	}

	tokens, err := token.NewService([]byte(cfg.JWTSecret))
	if err != nil {
		log.Fatalf("Cannot create token service: %v", err)
	}

	// register routes
	dispatcher := router.NewDispatcher(cfg.MaxBodyBytes)
	handler.Routes(dispatcher, db, tokens, hasher, cfg.TokenTTL)
	app := router.New(lvl, dispatcher)

	go func() {
		if err := app.Start(cfg.BindAddress); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Logger.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.Shutdown(ctx); err != nil {
		app.Logger.Fatal(err)
	}
}
