package main

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
)

type healthBody struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
}

func healthcheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Check a running server's health endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			url, _ := cmd.Flags().GetString("url")
			timeout, _ := cmd.Flags().GetDuration("timeout")
			if err := checkHealth(url, timeout); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
	cmd.Flags().String("url", "http://localhost:5004", "Base URL of the server")
	cmd.Flags().Duration("timeout", 5*time.Second, "Per-request timeout")
	return cmd
}

// checkHealth checks the API liveness endpoint and then the database endpoint.
func checkHealth(baseURL string, timeout time.Duration) error {
	client := resty.New().SetBaseURL(baseURL).SetTimeout(timeout)

	for _, path := range []string{"/api/health", "/health/db"} {
		var body healthBody
		resp, err := client.R().SetResult(&body).SetError(&body).Get(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if !resp.IsSuccess() || !body.Success {
			return fmt.Errorf("%s: status %d (%s)", path, resp.StatusCode(), body.Status)
		}
	}
	return nil
}
