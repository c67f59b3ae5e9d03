// Command voip-answer answers SIP calls with a recorded-announcement
// and voicemail service: it plays back a per-call program encoded in
// the request URI, records inbound audio when asked to, and invokes
// external scripts once a recording is finished.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/revk/voip-answer/engine"
	"github.com/revk/voip-answer/sipd"
)

func main() {
	var (
		bindHost   = pflag.StringP("bind-host", "h", "", "local address to listen on (default: all)")
		bindPort   = pflag.StringP("bind-port", "p", "sip", "local port or service name to listen on")
		directory  = pflag.StringP("directory", "d", "", "directory holding playback wav files and recordings")
		saveScript = pflag.StringP("save-script", "s", "", "script run as: saveScript <path> after a program recording")
		recScript  = pflag.StringP("rec-script", "r", "", "script run as: recScript <from> <to> <name> <email> per X-Record recipient")
		debug      = pflag.BoolP("debug", "v", false, "verbose (debug level) logging")
		dump       = pflag.BoolP("dump", "V", false, "debug level logging, the same as --debug; SIP messages themselves are not printed")
	)
	pflag.Usage = func() {
		os.Stderr.WriteString("voip-answer: SIP recorded-announcement and voicemail answering service\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{
		Out: os.Stderr,
	}).With().Timestamp().Logger().Level(zerolog.InfoLevel)
	if *debug || *dump {
		log = log.Level(zerolog.DebugLevel)
	}

	listener, err := sipd.Listen(*bindHost, *bindPort)
	if err != nil {
		log.Error().Err(err).Str("host", *bindHost).Str("port", *bindPort).Msg("cannot bind SIP socket")
		os.Exit(1)
	}
	defer listener.Close()

	cfg := engine.Config{
		Directory: *directory,
		Handlers: engine.Handlers{
			SaveScript: *saveScript,
			RecScript:  *recScript,
		},
		Debug: *dump,
	}

	srv := sipd.NewServer(listener, cfg, log)

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info().Msg("shutting down")
		cancel()
		listener.Close()
	}()

	log.Info().Str("host", *bindHost).Str("port", *bindPort).Msg("listening")
	if err := srv.Serve(ctx); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("serve loop exited")
	}
	srv.Wait()
}
