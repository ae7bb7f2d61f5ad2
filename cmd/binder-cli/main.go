// Command binder-cli is a small interactive client for poking at a live
// Binder domain: pinging the context object, listing registered services,
// and checking a single one.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	binder "github.com/go-binder/binder"
	"github.com/go-binder/binder/internal/logging"
)

var (
	devicePath string
	verbose    bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "binder-cli",
		Short: "Inspect and exercise a live Binder domain",
	}
	root.PersistentFlags().StringVar(&devicePath, "device", "", "binder device path (default: "+binder.DefaultDevicePath+")")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newPingCmd(), newListServicesCmd(), newCheckServiceCmd())
	return root
}

func openConnection() (*binder.Connection, error) {
	level := logging.LevelInfo
	if verbose {
		level = logging.LevelDebug
	}
	logger := logging.NewLogger(&logging.Config{Level: level, Output: os.Stderr, Pretty: true})

	opts := []binder.Option{binder.WithLogger(logger)}
	if devicePath != "" {
		opts = append(opts, binder.WithDevicePath(devicePath))
	}
	return binder.Open(opts...)
}

func newPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Ping the context object (handle 0)",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := openConnection()
			if err != nil {
				return err
			}
			defer conn.Close()

			proxy, err := conn.ContextObject()
			if err != nil {
				return err
			}
			if proxy == nil {
				fmt.Println(color.YellowString("context object is dead"))
				return nil
			}
			defer proxy.Release()
			fmt.Println(color.GreenString("context object is alive (handle %d)", proxy.Handle()))
			return nil
		},
	}
}

func newListServicesCmd() *cobra.Command {
	var interactive bool
	cmd := &cobra.Command{
		Use:   "list-services",
		Short: "List every service registered with the Service Manager",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := openConnection()
			if err != nil {
				return err
			}
			defer conn.Close()

			sm, err := conn.ServiceManager()
			if err != nil {
				return err
			}
			if sm == nil {
				return fmt.Errorf("no context object registered; is this a Binder domain with a running service manager?")
			}

			names, err := sm.ListServices()
			if err != nil {
				return err
			}
			if !interactive {
				for _, n := range names {
					fmt.Println(n)
				}
				return nil
			}

			prompt := promptui.Select{Label: "Select a service to check", Items: names}
			_, chosen, err := prompt.Run()
			if err != nil {
				return fmt.Errorf("selection cancelled: %w", err)
			}
			return runCheckService(conn, sm, chosen)
		},
	}
	cmd.Flags().BoolVar(&interactive, "interactive", false, "pick a service from a list instead of printing all of them")
	return cmd
}

func newCheckServiceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-service [name]",
		Short: "Resolve a single service by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := openConnection()
			if err != nil {
				return err
			}
			defer conn.Close()

			sm, err := conn.ServiceManager()
			if err != nil {
				return err
			}
			if sm == nil {
				return fmt.Errorf("no context object registered")
			}
			return runCheckService(conn, sm, args[0])
		},
	}
}

func runCheckService(conn *binder.Connection, sm *binder.ServiceManager, name string) error {
	proxy, err := sm.CheckService(name)
	if err != nil {
		return err
	}
	if proxy == nil {
		fmt.Println(color.YellowString("%s: not registered", name))
		return nil
	}
	defer proxy.Release()
	fmt.Println(color.GreenString("%s: handle %d", name, proxy.Handle()))
	return nil
}
