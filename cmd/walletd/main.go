package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sonson0910/Moderntensor/api"
	"github.com/sonson0910/Moderntensor/backup"
	"github.com/sonson0910/Moderntensor/cmd/flags"
	"github.com/sonson0910/Moderntensor/httpserver"
	"github.com/sonson0910/Moderntensor/interfaces"
	"github.com/sonson0910/Moderntensor/keymanager"
	"github.com/sonson0910/Moderntensor/storage"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "walletd",
		Usage: "Serve the wallet REST API",
		Flags: append([]cli.Flag{
			flags.BaseDirFlag,
			flags.NetworkFlag,
			flags.BackupStorageFlag,
			flags.ListenAddrFlag,
			flags.LogServiceFlagFn("walletd"),
		}, flags.CommonFlags...),
		Action: runDaemon,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runDaemon(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)

	network, err := interfaces.ParseNetwork(cCtx.String(flags.NetworkFlag.Name))
	if err != nil {
		logger.Error("Invalid network", "err", err)
		return err
	}

	baseDir := cCtx.String(flags.BaseDirFlag.Name)

	// There is no interactive channel over HTTP, so conflicting imports
	// fail instead of prompting.
	wallet, err := keymanager.NewWalletManager(network, baseDir,
		keymanager.RefuseConfirm(interfaces.ErrHotkeyExists), logger)
	if err != nil {
		logger.Error("Failed to set up wallet manager", "err", err)
		return err
	}

	var backups *backup.Service
	if uris := cCtx.StringSlice(flags.BackupStorageFlag.Name); len(uris) > 0 {
		locations := make([]interfaces.StorageBackendLocation, 0, len(uris))
		for _, uri := range uris {
			locations = append(locations, interfaces.StorageBackendLocation(uri))
		}

		backend, err := storage.NewBackendFactory(logger).CreateMultiBackend(locations)
		if err != nil {
			logger.Error("Failed to set up backup storage", "err", err)
			return err
		}
		backups = backup.NewService(baseDir, backend, logger)
		logger.Info("Backup storage configured", "location", backend.LocationURI())
	}

	listenAddr := cCtx.String(flags.ListenAddrFlag.Name)
	cfg := flags.ConfigureServer(cCtx, logger, listenAddr)

	handler := api.NewHandler(wallet, backups, logger)
	server, err := httpserver.New(cfg, handler)
	if err != nil {
		logger.Error("Failed to create server", "err", err)
		return err
	}

	server.RunInBackground()
	logger.Info("Wallet daemon started",
		"listenAddr", listenAddr,
		"network", network.String(),
		"baseDir", baseDir)

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)
	<-exit

	logger.Info("Shutting down")
	server.Shutdown()
	return nil
}
