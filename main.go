package main

import (
	cmd "github.com/marketscope/marketscope/cmd/marketscope"
	"github.com/marketscope/marketscope/internal"
)

var log = internal.GetLogger()

func main() {
	log.Info("Starting marketscope")
	cmd.Execute()
}
