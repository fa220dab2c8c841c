// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Check the configured endpoints.
//
// Every check goes to the network, bypassing both caches, and the checks run
// concurrently. The command fails with the first check error after printing
// the full report.

package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/rigrun-chat/internal/apierr"
	"github.com/jeranaias/rigrun-chat/internal/repository"
	"github.com/jeranaias/rigrun-chat/internal/transport"
)

// CheckResult is the outcome of one endpoint check.
type CheckResult struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	Status    string `json:"status"` // ok, fail or skip
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`

	err error
}

type check struct {
	name string
	doer transport.Doer
	base string
	path string
	skip string
}

func newStatusCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check connectivity to the chat and terminal backends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				results := runChecks(ctx, statusChecks(a))
				err := emit(cmd, opts, results, func(w io.Writer) error {
					return printChecks(w, a, results)
				})
				if err != nil {
					return err
				}
				for _, r := range results {
					if r.err != nil {
						return r.err
					}
				}
				return nil
			})
		},
	}
}

func statusChecks(a *app) []check {
	checks := []check{
		{name: "threads", doer: a.client, base: a.client.BaseURL(), path: "/v1/threads?limit=1"},
		{name: "models", doer: a.client, base: a.client.BaseURL(), path: "/v1/chat/models"},
	}

	baseURL, apiKey := a.source.TerminalEndpoint()
	term := check{name: "terminal", base: baseURL, path: "/api/v1/terminal/sessions"}
	if err := repository.ValidateTerminalEndpoint(baseURL, apiKey); err != nil {
		term.skip = apierr.UserMessage(err)
	} else {
		term.doer = newClient(baseURL, apiKey, a.cfg, a.log)
	}
	return append(checks, term)
}

// runChecks runs every check concurrently. Results keep the check order.
func runChecks(ctx context.Context, checks []check) []CheckResult {
	results := make([]CheckResult, len(checks))
	var g errgroup.Group
	for i, p := range checks {
		g.Go(func() error {
			results[i] = runCheck(ctx, p)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func runCheck(ctx context.Context, p check) CheckResult {
	res := CheckResult{Name: p.name, URL: p.base + p.path}
	if p.skip != "" {
		res.Status = "skip"
		res.Error = p.skip
		return res
	}

	req := transport.Request{Method: http.MethodGet, Path: p.path}
	if u, err := url.Parse(p.path); err == nil {
		req.Path, req.Query = u.Path, u.Query()
	}

	start := time.Now()
	resp, err := p.doer.Do(ctx, req)
	res.LatencyMS = time.Since(start).Milliseconds()
	if err == nil {
		resp.Body.Close()
		if !transport.IsSuccess(resp.StatusCode) {
			err = apierr.FromStatus(resp.StatusCode, "")
		}
	} else {
		err = apierr.Wrap(err)
	}

	if err != nil {
		res.Status = "fail"
		res.Error = apierr.UserMessage(err)
		res.err = err
		return res
	}
	res.Status = "ok"
	return res
}

func printChecks(w io.Writer, a *app, results []CheckResult) error {
	fmt.Fprintln(w, TitleStyle.Render("rigrun-chat status"))
	fmt.Fprintln(w, RenderField("API", a.client.BaseURL()))
	fmt.Fprintln(w, RenderField("API key", a.client.KeyFingerprint()))
	fmt.Fprintln(w, RenderField("Config", orDash(a.source.Path())))
	fmt.Fprintln(w)

	for _, r := range results {
		line := fmt.Sprintf("%s %-9s", RenderStatus(r.Status), r.Name)
		switch r.Status {
		case "ok":
			line += DimStyle.Render(fmt.Sprintf(" %dms", r.LatencyMS))
		default:
			line += " " + r.Error
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
