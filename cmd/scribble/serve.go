package main

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/hashicorp/mdns"
	"github.com/pbaille/scribble/internal/api"
	"github.com/pbaille/scribble/internal/logging"
	"github.com/spf13/cobra"
)

const serviceType = "_scribble._tcp"

func serveCmd() *cobra.Command {
	var (
		addr      string
		advertise bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}

			ln, err := net.Listen("tcp", cfg.Addr)
			if err != nil {
				return fmt.Errorf("listen: %w", err)
			}

			if advertise {
				port := ln.Addr().(*net.TCPAddr).Port
				server, err := advertiseService(port)
				if err != nil {
					ln.Close()
					return err
				}
				defer server.Shutdown()
				logging.Logger().Info("advertising on mDNS", "service", serviceType, "port", port)
			}

			srv := api.New(s, api.Options{
				Addr:          cfg.Addr,
				MaxConns:      cfg.MaxConns,
				Mesh:          cfg.Mesh(),
				PlaybackSpeed: cfg.PlaybackSpeed,
			})
			fmt.Printf("Starting server on %s\n", ln.Addr())
			return srv.Serve(cmd.Context(), ln)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address (default $SCRIBBLE_ADDR)")
	cmd.Flags().BoolVar(&advertise, "mdns", false, "advertise the server on the local network")
	return cmd
}

// advertiseService announces the API as a zeroconf service
func advertiseService(port int) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("get hostname: %w", err)
	}

	info := []string{"scribble", "port=" + strconv.Itoa(port)}
	service, err := mdns.NewMDNSService(host, serviceType, "", "", port, nil, info)
	if err != nil {
		return nil, fmt.Errorf("create mdns service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("start mdns server: %w", err)
	}
	return server, nil
}
