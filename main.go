package main

import (
	"context"
	"os"

	"casinobot/cmd"

	log "github.com/sirupsen/logrus"
)

func main() {
	if err := cmd.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		log.WithError(err).Error("casinobot failed")
		os.Exit(1)
	}
}
