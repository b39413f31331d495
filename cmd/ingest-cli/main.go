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
	serverURL string
	label     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ingest-cli",
		Short: "Manage the notice orchestrator's document index",
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("ORCHESTRATOR_URL", "http://localhost:8000"), "orchestrator base URL")

	ingestCmd := &cobra.Command{
		Use:   "ingest <path> [path...]",
		Short: "Ingest server-local documents into the index",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runIngest,
	}
	ingestCmd.Flags().StringVar(&label, "label", "", "source label stored with every chunk (defaults to filename stem)")

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the approximate index size",
		Args:  cobra.NoArgs,
		RunE:  runStats,
	}

	rootCmd.AddCommand(ingestCmd, statsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runIngest(cmd *cobra.Command, args []string) error {
	client := &http.Client{Timeout: 10 * time.Minute}

	failed := 0
	for _, path := range args {
		payload, _ := json.Marshal(map[string]string{
			"path":  path,
			"label": label,
		})

		resp, err := client.Post(serverURL+"/ingest-path", "application/json", bytes.NewReader(payload))
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed++
			continue
		}

		var body struct {
			Status string `json:"status"`
			Chunks int    `json:"chunks"`
			Source string `json:"source"`
			Error  string `json:"error"`
		}
		decodeErr := json.NewDecoder(resp.Body).Decode(&body)
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()

		if decodeErr != nil || resp.StatusCode != http.StatusOK {
			fmt.Fprintf(os.Stderr, "%s: status %d %s\n", path, resp.StatusCode, body.Error)
			failed++
			continue
		}

		fmt.Printf("%s: %d chunks indexed as %q\n", path, body.Chunks, body.Source)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(args))
	}
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	client := &http.Client{Timeout: 30 * time.Second}

	resp, err := client.Get(serverURL + "/stats")
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	var body struct {
		ApproxSamples int64  `json:"approx_samples"`
		Error         string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return err
	}
	if body.Error != "" {
		return fmt.Errorf("stats unavailable: %s", body.Error)
	}

	fmt.Printf("indexed chunks: %d\n", body.ApproxSamples)
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
