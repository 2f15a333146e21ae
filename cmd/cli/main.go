package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// errDown makes the process exit non-zero when a target is not healthy.
var errDown = errors.New("target down")

type statusRow struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Status      string    `json:"status"`
	LastProbeAt time.Time `json:"last_probe_at"`
	Reason      string    `json:"reason,omitempty"`
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	api := os.Getenv("API_BASE")
	if api == "" {
		api = "http://localhost:8080"
	}

	root := &cobra.Command{
		Use:           "healthctl",
		Short:         "Query a running health-check API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&api, "api", api, "base URL of the API (env API_BASE)")

	status := &cobra.Command{
		Use:   "status [id]",
		Short: "Show every target, or the verdict for one target",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := &http.Client{Timeout: time.Minute}
			base := strings.TrimRight(api, "/")
			var err error
			if len(args) == 1 {
				err = statusOne(client, base, args[0], cmd.OutOrStdout())
			} else {
				err = statusAll(client, base, cmd.OutOrStdout())
			}
			if err != nil && !errors.Is(err, errDown) {
				fmt.Fprintln(cmd.ErrOrStderr(), "Error contacting API:", err)
			}
			return err
		},
	}
	root.AddCommand(status)
	return root
}

func statusAll(client *http.Client, base string, out io.Writer) error {
	resp, err := client.Get(base + "/api/status")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API returned status: %s", resp.Status)
	}

	var rows []statusRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return fmt.Errorf("decode status: %w", err)
	}

	down := false
	for _, r := range rows {
		line := fmt.Sprintf("%-20s %-10s %s", r.ID, r.Status, r.URL)
		if r.Reason != "" {
			line += "  (" + r.Reason + ")"
		}
		fmt.Fprintln(out, line)
		if r.Status == "down" {
			down = true
		}
	}
	if down {
		return errDown
	}
	return nil
}

func statusOne(client *http.Client, base, id string, out io.Writer) error {
	resp, err := client.Get(base + "/" + url.PathEscape(id))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
	fmt.Fprintf(out, "%s: %s\n", id, strings.TrimSpace(string(body)))

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusInternalServerError:
		return errDown
	default:
		return fmt.Errorf("API returned status: %s", resp.Status)
	}
}
