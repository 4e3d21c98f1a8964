// Package main is the interactive campus client. It registers with the
// relay under the given name, forwards stdin lines as routing messages and
// displays whatever arrives on either channel.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/markoxley/campuslink/campus"
	"github.com/markoxley/campuslink/config"
)

var (
	configPath string
	serverAddr string
	serverPort uint16
	udpPort    uint16

	rootCmd = &cobra.Command{
		Use:           "campus <name>",
		Short:         "CampusLink endpoint client",
		Long:          "Interactive client for the CampusLink relay. Registers under the given campus name and routes messages typed as '<DESTINATION>:<MESSAGE>' or 'BROADCAST:<MESSAGE>'.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          execute,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.json", "path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&serverAddr, "server", "", "relay address")
	rootCmd.PersistentFlags().Uint16Var(&serverPort, "port", 0, "relay TCP port")
	rootCmd.PersistentFlags().Uint16Var(&udpPort, "udp-port", 0, "local UDP port for broadcasts, 0 picks a free one")
}

// display prints inbound messages and restores the prompt.
type display struct {
	name string
}

func (d *display) HandleUnicast(message string) {
	fmt.Printf("\n<-- TCP MESSAGE RECEIVED -->\n   %s\n%s > ", message, d.name)
}

func (d *display) HandleBroadcast(message string) {
	fmt.Printf("\n*** UDP BROADCAST RECEIVED ***\n   %s\n%s > ", message, d.name)
}

func execute(cmd *cobra.Command, args []string) error {
	name := args[0]

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("server") {
		cfg.ServerAddress = serverAddr
	}
	if cmd.Flags().Changed("port") {
		cfg.ServerPort = serverPort
	}

	client, err := campus.Dial(cfg, name, udpPort, &display{name: name})
	if err != nil {
		return err
	}
	defer client.Close()

	fmt.Println("[HELP] Commands:")
	fmt.Println("       <DESTINATION>:<MESSAGE>  (e.g., Karachi:Hello)")
	fmt.Println("       BROADCAST:<MESSAGE>")
	fmt.Println("       exit / quit")

	// The relay closing the connection ends the session from under us
	userQuit := make(chan struct{})
	go func() {
		select {
		case <-client.Done():
			fmt.Println("\nConnection to relay closed. Exiting...")
			os.Exit(0)
		case <-userQuit:
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Printf("%s > ", name)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "exit" || line == "quit" {
			break
		}
		if line != "" {
			if err := client.Send(line); err != nil {
				log.Errorf("Send failed: %v", err)
				break
			}
		}
		fmt.Printf("%s > ", name)
	}
	close(userQuit)

	fmt.Printf("\nClient %q shutting down.\n", name)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
