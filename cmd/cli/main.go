package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	token   string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "kodbank-cli",
		Short: "KodBank admin CLI",
		Long:  `A command line interface for administering a running KodBank instance over its HTTP API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the KodBank API")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("KODBANK_TOKEN"), "Bearer token (defaults to KODBANK_TOKEN)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show ledger-wide aggregates",
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/admin/stats")
		},
	}

	transactionsCmd := &cobra.Command{
		Use:   "transactions",
		Short: "Show the most recent transactions across all accounts",
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/admin/transactions")
		},
	}

	auditCmd := &cobra.Command{
		Use:   "audit [account-id]",
		Short: "Show the audit trail, optionally for one account",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			path := "/api/v1/admin/audit"
			if len(args) == 1 {
				path += "?account_id=" + args[0]
			}
			get(path)
		},
	}

	freezeCmd := &cobra.Command{
		Use:   "freeze <account-id>",
		Short: "Freeze an account",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			post("/api/v1/admin/accounts/"+args[0]+"/freeze", map[string]any{"frozen": true})
		},
	}

	unfreezeCmd := &cobra.Command{
		Use:   "unfreeze <account-id>",
		Short: "Unfreeze an account",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			post("/api/v1/admin/accounts/"+args[0]+"/freeze", map[string]any{"frozen": false})
		},
	}

	rootCmd.AddCommand(statsCmd, transactionsCmd, auditCmd, freezeCmd, unfreezeCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func get(path string) {
	req, err := http.NewRequest(http.MethodGet, baseURL+path, nil)
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}

	do(req)
}

func post(path string, body map[string]any) {
	payload, _ := json.Marshal(body)

	req, err := http.NewRequest(http.MethodPost, baseURL+path, bytes.NewReader(payload))
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")

	do(req)
}

func do(req *http.Request) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		fmt.Printf("Request FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		fmt.Println(string(body))
		return
	}

	fmt.Println(pretty.String())
}
