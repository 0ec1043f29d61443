package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	router "github.com/dkeye/Rendezvous/internal/adapters/http"
)

func newStatusCmd() *cobra.Command {
	var (
		url     string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Query a running server's /health endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			h, err := fetchHealth(ctx, url)
			if err != nil {
				return err
			}
			renderHealth(cmd.OutOrStdout(), h)
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "http://localhost:3001", "Server base URL")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Request timeout")
	return cmd
}

func fetchHealth(ctx context.Context, base string) (router.HealthResponse, error) {
	var h router.HealthResponse
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(base, "/")+"/health", nil)
	if err != nil {
		return h, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return h, fmt.Errorf("health request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return h, fmt.Errorf("health request: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return h, fmt.Errorf("decode health: %w", err)
	}
	return h, nil
}

func renderHealth(w io.Writer, h router.HealthResponse) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Field", "Value"})
	t.AppendRows([]table.Row{
		{"Status", h.Status},
		{"Message", h.Message},
		{"Uptime", time.Duration(h.Uptime * float64(time.Second)).Round(time.Second).String()},
		{"Active rooms", h.ActiveRooms},
		{"Active users", h.ActiveUsers},
		{"Total visitors", h.TotalVisitors},
		{"Checked at", h.Timestamp.Format(time.RFC3339)},
	})
	t.Render()
}
