/*
Copyright © 2025 Your Name

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aivan/internal/config"
	"aivan/internal/generate"
	"aivan/internal/llm"
	"aivan/internal/logger"
	"aivan/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the AIvan web interface",
	Long: `Start the HTTP server that serves the blog-writing web interface.

The server keeps all working state in memory: generated articles,
session history, and uploaded documents are forgotten on restart.

Examples:
  aivan serve
  aivan serve --port 3000
  AIVAN_PASSWORD=secret aivan serve`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		host, _ := cmd.Flags().GetString("host")
		return runServe(port, host)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Int("port", 0, "HTTP server port (default from config: 8080)")
	serveCmd.Flags().String("host", "", "HTTP server host (default from config)")
}

func runServe(port int, host string) error {
	log := logger.Get()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if port != 0 {
		cfg.Server.Port = port
	}
	if host != "" {
		cfg.Server.Host = host
	}

	applyLogging(cfg)

	client, err := llm.NewClient(cfg.AI.Gemini.Model)
	if err != nil {
		return fmt.Errorf("failed to initialize LLM client: %w", err)
	}
	defer client.Close()

	service := generate.NewService(client, retryPolicy(cfg), generateOptions(cfg))

	srv := server.New(cfg, service)

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Info("Shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
