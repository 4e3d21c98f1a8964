// Package main is the CampusLink relay daemon. It starts the hub, runs the
// operator console on stdin and shuts down cleanly on exit/quit or a
// termination signal.
package main

import (
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/markoxley/campuslink/config"
	"github.com/markoxley/campuslink/hub"
)

var (
	configPath  string
	listenIP    string
	listenPort  uint16
	maxSessions int
	logLevel    string

	rootCmd = &cobra.Command{
		Use:           "campuslink",
		Short:         "CampusLink relay service",
		Long:          "Central relay routing messages between named campus endpoints",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          execute,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.json", "path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&listenIP, "listen", "", "address to bind the TCP listener to")
	rootCmd.PersistentFlags().Uint16Var(&listenPort, "port", 0, "TCP port to listen on")
	rootCmd.PersistentFlags().IntVar(&maxSessions, "max-sessions", 0, "cap on concurrent sessions, 0 for unlimited")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}

func execute(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("listen") {
		cfg.IP = listenIP
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = listenPort
	}
	if cmd.Flags().Changed("max-sessions") {
		cfg.MaxSessions = maxSessions
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = logLevel
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)

	server, err := hub.New(cfg)
	if err != nil {
		return err
	}
	if err := server.Run(); err != nil {
		return err
	}

	go server.Console(os.Stdin)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigs:
		log.Infof("Received %s, shutting down", sig)
		server.Stop()
	case <-server.Done():
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
