package main

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/hailam/perch/internal/engine"
	"github.com/hailam/perch/internal/experience"
	"github.com/hailam/perch/internal/uci"
)

func main() {
	viper.SetDefault("hash-mb", 64)
	viper.SetDefault("log-level", "info")
	viper.SetDefault("experience.enabled", true)
	viper.SetDefault("experience.path", "perch-experience")

	viper.SetConfigName("perch")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("perch")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Fatal().Err(err).Msg("reading config")
		}
	}

	// Protocol output owns stdout, so all logging goes to stderr.
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	level, err := zerolog.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger = logger.Level(level)

	var store *experience.Store
	if viper.GetBool("experience.enabled") {
		store, err = experience.Open(viper.GetString("experience.path"), false)
		if err != nil {
			logger.Warn().Err(err).Msg("experience store unavailable, continuing without")
		} else {
			defer store.Close()
		}
	}

	eng := engine.New(engine.Options{
		HashMB:     viper.GetInt("hash-mb"),
		Experience: store,
		Logger:     logger,
	})

	handler := uci.New(eng, os.Stdout, logger)
	if err := handler.Run(os.Stdin); err != nil {
		logger.Fatal().Err(err).Msg("uci loop failed")
	}
}
