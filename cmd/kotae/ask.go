package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/cli"
	"github.com/hyperjump/kotae/pkg/utils"
)

func newAskCmd(opts *rootOptions) *cobra.Command {
	var (
		serverURL string
		output    string
	)
	cmd := &cobra.Command{
		Use:   "ask <message...>",
		Short: "Ask a question",
		Long: `Ask a question and print the reply. With --server the message is sent to a running
kotae server; otherwise the matcher is built in-process and the match score is shown.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cli.ParseOutputFormat(output)
			if err != nil {
				return err
			}
			message := strings.Join(args, " ")
			ctx := cmd.Context()

			var res *cli.AskResult
			if serverURL != "" {
				res, err = askViaHTTP(ctx, serverURL, message)
			} else {
				res, err = askInProcess(ctx, opts, message)
			}
			if err != nil {
				return err
			}
			return cli.WriteAskResult(cmd.OutOrStdout(), res, format)
		},
	}
	cmd.Flags().StringVar(&serverURL, "server", "", "server URL (e.g. http://localhost:5000); empty builds the matcher in-process")
	cmd.Flags().StringVar(&output, "output", "text", "output format: text or json")
	return cmd
}

func askInProcess(ctx context.Context, opts *rootOptions, message string) (*cli.AskResult, error) {
	cfg, _, err := loadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	logger := zap.NewNop()
	if cfg.Debug || opts.debug {
		if logger, err = utils.NewLogger(true); err != nil {
			return nil, err
		}
		defer logger.Sync()
	}
	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	defer components.Close()

	match := components.Matcher.Match(ctx, message)
	return &cli.AskResult{Message: message, Response: match.Response, Match: &match}, nil
}

type chatReply struct {
	Response string `json:"response"`
	Status   string `json:"status"`
	Error    string `json:"error"`
}

func askViaHTTP(ctx context.Context, serverURL, message string) (*cli.AskResult, error) {
	body, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		return nil, err
	}
	url := strings.TrimRight(serverURL, "/") + "/chat"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	var reply chatReply
	if err := json.Unmarshal(data, &reply); err != nil {
		return nil, fmt.Errorf("invalid response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, reply.Error)
	}
	return &cli.AskResult{Message: message, Response: reply.Response}, nil
}
