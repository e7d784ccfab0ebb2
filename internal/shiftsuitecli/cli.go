package shiftsuitecli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/phillip-england/shiftsuite/internal/apiapp"
	"github.com/phillip-england/shiftsuite/internal/envutil"
)

var ErrUsage = errors.New("usage")

func Execute(args []string) error {
	if len(args) < 1 {
		return usageError()
	}

	switch args[0] {
	case "setup":
		return runSetup(args[1:])
	case "run":
		return runCommand(args[1:])
	default:
		return usageError()
	}
}

func usageError() error {
	return fmt.Errorf("%w: shiftsuite <setup|run> [...]", ErrUsage)
}

func PrintUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: shiftsuite setup [--addr :8080] [--env-file .env] [--force]")
	fmt.Fprintln(w, "       shiftsuite run [api]")
}

func runSetup(args []string) error {
	fs := flag.NewFlagSet("setup", flag.ContinueOnError)
	addr := fs.String("addr", ":8080", "listen address for the api")
	envPath := fs.String("env-file", ".env", "path to .env file")
	force := fs.Bool("force", false, "overwrite existing env file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	values := map[string]string{
		"API_ADDR": *addr,
	}

	if err := envutil.WriteDotEnv(*envPath, values, *force); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", *envPath)
	return nil
}

func runCommand(args []string) error {
	// The api is the only run target; accept it by name for symmetry
	// with the setup output.
	if len(args) > 0 && args[0] != "api" {
		return fmt.Errorf("unknown run target %q", args[0])
	}

	if err := envutil.LoadDotEnv(".env"); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := apiapp.DefaultConfigFromEnv()
	if err := apiapp.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
