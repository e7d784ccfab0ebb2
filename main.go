package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/phillip-england/shiftsuite/internal/shiftsuitecli"
)

func main() {
	if err := shiftsuitecli.Execute(os.Args[1:]); err != nil {
		if errors.Is(err, shiftsuitecli.ErrUsage) {
			fmt.Fprintln(os.Stderr, err)
			fmt.Fprintln(os.Stderr, "usage: shiftsuite setup [--addr :8080] [--env-file .env] [--force]")
			fmt.Fprintln(os.Stderr, "       shiftsuite run [api]")
			os.Exit(2)
		}
		log.Fatal(err)
	}
}
