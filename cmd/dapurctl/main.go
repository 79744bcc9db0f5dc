package main

import (
	"os"

	"github.com/SscSPs/mbg_dapur_ledger/internal/commands"
)

func main() {
	os.Exit(commands.Execute())
}
