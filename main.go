package main

import (
	"github.com/rs/zerolog/log"

	"vmc/experiments"
)

func main() {
	if err := experiments.RunAcceptanceStudy(); err != nil {
		log.Fatal().Err(err).Msg("acceptance study failed")
	}
}
