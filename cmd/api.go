package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/niliflix/internal/services"
	"github.com/desertthunder/niliflix/internal/shared"
	"github.com/urfave/cli/v3"
)

// APIGet makes a direct GET request to the catalog API
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: request path", shared.ErrMissingArgument)
	}

	resp, err := r.raw(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}

	if resp.IsJSON {
		if cmd.Bool("json") {
			return r.writeJSON(resp.JSONData, cmd.Bool("pretty"))
		}
		return r.writeJSON(resp.JSONData, true)
	}

	r.writeBytes(resp.Body)
	return r.writePlain("\n")
}

// APIRequest makes a direct request with any method to the catalog API
func (r *Runner) APIRequest(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: request path", shared.ErrMissingArgument)
	}
	method := strings.ToUpper(cmd.String("method"))
	data := cmd.String("data")

	var body []byte
	if data != "" {
		var jsonTest any
		if err := json.Unmarshal([]byte(data), &jsonTest); err != nil {
			return fmt.Errorf("%w: data is not valid JSON: %v", shared.ErrInvalidArgument, err)
		}
		body = []byte(data)
	}

	resp, err := r.raw(ctx, method, path, body)
	if err != nil {
		return err
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, true)
	}
	r.writeBytes(resp.Body)
	return r.writePlain("\n")
}

// raw performs the request and fails on non-2xx responses, keeping the body in the error for debugging.
func (r *Runner) raw(ctx context.Context, method, path string, body []byte) (*services.RawResponse, error) {
	if r.api == nil {
		return nil, fmt.Errorf("%w: raw requests need the HTTP catalog client", shared.ErrNotImplemented)
	}

	r.logger.Info("raw request", "method", method, "path", path)

	resp, err := r.api.Raw(ctx, method, path, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrServerError, err)
	}
	r.logger.Debug("raw response", "status", resp.StatusCode, "request_id", resp.RequestID)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d, body: %s", shared.ErrServerError, resp.StatusCode, string(resp.Body))
	}
	return resp, nil
}
