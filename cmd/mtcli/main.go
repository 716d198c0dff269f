package main

import (
	"encoding/hex"
	"fmt"
	"log"
	"os"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sonson0910/Moderntensor/backup"
	"github.com/sonson0910/Moderntensor/cmd/flags"
	"github.com/sonson0910/Moderntensor/interfaces"
	"github.com/sonson0910/Moderntensor/keymanager"
	"github.com/sonson0910/Moderntensor/storage"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"
)

var nameFlag = &cli.StringFlag{
	Name:     "name",
	Required: true,
	Usage:    "coldkey name",
}

var hotkeyNameFlag = &cli.StringFlag{
	Name:     "name",
	Required: true,
	Usage:    "hotkey name",
}

var coldkeyFlag = &cli.StringFlag{
	Name:     "coldkey",
	Required: true,
	Usage:    "name of the owning coldkey",
}

var overwriteFlag = &cli.BoolFlag{
	Name:  "overwrite",
	Usage: "replace an existing hotkey without asking",
}

func main() {
	app := &cli.App{
		Name:  "mtcli",
		Usage: "Manage coldkeys, hotkeys and wallet backups",
		Flags: []cli.Flag{
			flags.BaseDirFlag,
			flags.NetworkFlag,
			flags.PasswordFlag,
			flags.LogJsonFlag,
			flags.LogDebugFlag,
			flags.LogUidFlag,
			flags.LogServiceFlagFn("mtcli"),
		},
		Commands: []*cli.Command{
			{
				Name:  "coldkey",
				Usage: "Create and load coldkeys",
				Subcommands: []*cli.Command{
					{
						Name:   "create",
						Usage:  "Create a new coldkey with a fresh mnemonic",
						Flags:  []cli.Flag{nameFlag},
						Action: runColdkeyCreate,
					},
					{
						Name:   "load",
						Usage:  "Verify a coldkey password against its stored files",
						Flags:  []cli.Flag{nameFlag},
						Action: runColdkeyLoad,
					},
				},
			},
			{
				Name:  "hotkey",
				Usage: "Derive and import hotkeys",
				Subcommands: []*cli.Command{
					{
						Name:   "generate",
						Usage:  "Derive the next hotkey under a coldkey",
						Flags:  []cli.Flag{coldkeyFlag, hotkeyNameFlag},
						Action: runHotkeyGenerate,
					},
					{
						Name:  "import",
						Usage: "Import an encrypted hotkey payload",
						Flags: []cli.Flag{
							coldkeyFlag,
							hotkeyNameFlag,
							overwriteFlag,
							&cli.StringFlag{
								Name:     "data",
								Required: true,
								Usage:    "encrypted hotkey payload, as printed by generate",
							},
						},
						Action: runHotkeyImport,
					},
				},
			},
			{
				Name:  "wallet",
				Usage: "Inspect the wallet directory",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List coldkeys with their hotkey addresses",
						Action: runWalletList,
					},
				},
			},
			{
				Name:  "key",
				Usage: "Work with individual signing keys",
				Subcommands: []*cli.Command{
					{
						Name:  "decode",
						Usage: "Decrypt a hotkey and print its address",
						Flags: []cli.Flag{
							coldkeyFlag,
							&cli.StringFlag{
								Name:     "hotkey",
								Required: true,
								Usage:    "hotkey name",
							},
							&cli.BoolFlag{
								Name:  "reveal",
								Usage: "also print the private key hex",
							},
						},
						Action: runKeyDecode,
					},
				},
			},
			{
				Name:  "backup",
				Usage: "Export and restore coldkey snapshots",
				Subcommands: []*cli.Command{
					{
						Name:   "export",
						Usage:  "Store a coldkey snapshot on the backup backends",
						Flags:  []cli.Flag{nameFlag, flags.BackupStorageFlag},
						Action: runBackupExport,
					},
					{
						Name:  "restore",
						Usage: "Restore a coldkey snapshot by its ID",
						Flags: []cli.Flag{
							flags.BackupStorageFlag,
							&cli.StringFlag{
								Name:     "id",
								Required: true,
								Usage:    "snapshot content ID (hex)",
							},
							&cli.StringFlag{
								Name:  "as",
								Usage: "restore under a different coldkey name",
							},
							&cli.BoolFlag{
								Name:  "overwrite",
								Usage: "replace an existing coldkey directory",
							},
						},
						Action: runBackupRestore,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// newWallet builds the interactive wallet manager for a CLI invocation.
func newWallet(cCtx *cli.Context) (*keymanager.WalletManager, error) {
	logger := flags.SetupLogger(cCtx)

	network, err := interfaces.ParseNetwork(cCtx.String(flags.NetworkFlag.Name))
	if err != nil {
		return nil, err
	}

	confirm := &keymanager.ReaderConfirm{In: os.Stdin, Out: os.Stderr}
	return keymanager.NewWalletManager(network, cCtx.String(flags.BaseDirFlag.Name), confirm, logger)
}

// readPassword returns --password, or prompts on the terminal without echo.
func readPassword(cCtx *cli.Context) (string, error) {
	if pwd := cCtx.String(flags.PasswordFlag.Name); pwd != "" {
		return pwd, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(raw), nil
}

func newBackupService(cCtx *cli.Context) (*backup.Service, error) {
	logger := flags.SetupLogger(cCtx)

	uris := cCtx.StringSlice(flags.BackupStorageFlag.Name)
	if len(uris) == 0 {
		return nil, fmt.Errorf("at least one --backup-storage URI is required")
	}

	locations := make([]interfaces.StorageBackendLocation, 0, len(uris))
	for _, uri := range uris {
		locations = append(locations, interfaces.StorageBackendLocation(uri))
	}

	backend, err := storage.NewBackendFactory(logger).CreateMultiBackend(locations)
	if err != nil {
		return nil, err
	}

	return backup.NewService(cCtx.String(flags.BaseDirFlag.Name), backend, logger), nil
}

func runColdkeyCreate(cCtx *cli.Context) error {
	wallet, err := newWallet(cCtx)
	if err != nil {
		return err
	}

	password, err := readPassword(cCtx)
	if err != nil {
		return err
	}

	name := cCtx.String("name")
	if err := wallet.CreateColdkey(name, password); err != nil {
		return err
	}

	fmt.Printf("Coldkey %q created under %s\n", name, cCtx.String(flags.BaseDirFlag.Name))
	return nil
}

func runColdkeyLoad(cCtx *cli.Context) error {
	wallet, err := newWallet(cCtx)
	if err != nil {
		return err
	}

	password, err := readPassword(cCtx)
	if err != nil {
		return err
	}

	name := cCtx.String("name")
	if err := wallet.LoadColdkey(name, password); err != nil {
		return err
	}

	fmt.Printf("Coldkey %q loaded\n", name)
	return nil
}

func runHotkeyGenerate(cCtx *cli.Context) error {
	wallet, err := newWallet(cCtx)
	if err != nil {
		return err
	}

	password, err := readPassword(cCtx)
	if err != nil {
		return err
	}

	coldkeyName := cCtx.String("coldkey")
	if err := wallet.LoadColdkey(coldkeyName, password); err != nil {
		return err
	}

	encrypted, err := wallet.GenerateHotkey(coldkeyName, cCtx.String("name"))
	if err != nil {
		return err
	}

	fmt.Printf("Hotkey %q created\nEncrypted payload:\n%s\n", cCtx.String("name"), encrypted)
	return nil
}

func runHotkeyImport(cCtx *cli.Context) error {
	wallet, err := newWallet(cCtx)
	if err != nil {
		return err
	}

	password, err := readPassword(cCtx)
	if err != nil {
		return err
	}

	coldkeyName := cCtx.String("coldkey")
	if err := wallet.LoadColdkey(coldkeyName, password); err != nil {
		return err
	}

	err = wallet.ImportHotkey(coldkeyName, cCtx.String("data"), cCtx.String("name"), cCtx.Bool("overwrite"))
	if err != nil {
		return err
	}

	fmt.Printf("Hotkey %q import handled\n", cCtx.String("name"))
	return nil
}

func runWalletList(cCtx *cli.Context) error {
	wallet, err := newWallet(cCtx)
	if err != nil {
		return err
	}

	wallets, err := wallet.LoadAllWallets()
	if err != nil {
		return err
	}

	if len(wallets) == 0 {
		fmt.Println("No coldkeys found")
		return nil
	}

	for _, w := range wallets {
		fmt.Printf("%s\n", w.Name)
		for _, hk := range w.Hotkeys {
			fmt.Printf("  %s\t%s\n", hk.Name, hk.Address)
		}
	}
	return nil
}

func runKeyDecode(cCtx *cli.Context) error {
	password, err := readPassword(cCtx)
	if err != nil {
		return err
	}

	key, address, err := keymanager.DecodeHotkeySigningKey(
		cCtx.String(flags.BaseDirFlag.Name),
		cCtx.String("coldkey"),
		cCtx.String("hotkey"),
		password,
	)
	if err != nil {
		return err
	}

	fmt.Printf("Address: %s\n", address)
	if cCtx.Bool("reveal") {
		fmt.Printf("Private key: %s\n", hex.EncodeToString(crypto.FromECDSA(key)))
	}
	return nil
}

func runBackupExport(cCtx *cli.Context) error {
	svc, err := newBackupService(cCtx)
	if err != nil {
		return err
	}

	receipt, err := svc.Export(cCtx.Context, cCtx.String("name"))
	if err != nil {
		return err
	}

	fmt.Printf("Snapshot ID: %s\nManifest ID: %s\n",
		receipt.SnapshotID.String(), receipt.ManifestID.String())
	return nil
}

func runBackupRestore(cCtx *cli.Context) error {
	svc, err := newBackupService(cCtx)
	if err != nil {
		return err
	}

	id, err := interfaces.NewContentIDFromHex(cCtx.String("id"))
	if err != nil {
		return err
	}

	name, err := svc.Restore(cCtx.Context, id, cCtx.String("as"), cCtx.Bool("overwrite"))
	if err != nil {
		return err
	}

	fmt.Printf("Restored coldkey %q\n", name)
	return nil
}
