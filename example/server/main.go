package main

import (
	"net/http"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/starius/restclient/example"
)

func main() {
	addr := pflag.String("addr", ":8080", "Address to listen on")
	secret := pflag.String("secret", "", "HMAC secret of bearer tokens, empty disables auth")
	debug := pflag.Bool("debug", false, "Log every request")
	pflag.Parse()

	config := zap.NewProductionConfig()
	if *debug {
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := config.Build()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	server := example.NewBookServer(logger, []byte(*secret))
	logger.Info("listening", zap.String("addr", *addr))
	if err := http.ListenAndServe(*addr, server.Handler()); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}
