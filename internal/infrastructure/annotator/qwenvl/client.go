package qwenvl

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/OSH212/phmarcel-rpg/internal/core/domain"
	"github.com/OSH212/phmarcel-rpg/internal/infrastructure/resilience"
)

// Client talks to the vision-model sidecar that classifies document images
// and extracts kind-specific fields from them.
type Client struct {
	baseURL    string
	httpClient *http.Client
	executor   *resilience.Executor
	schemas    map[domain.DocKind][]string
}

func New(baseURL string, executor *resilience.Executor) (*Client, error) {
	schemas, err := loadFieldSchemas()
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 120 * time.Second},
		executor:   executor,
		schemas:    schemas,
	}, nil
}

func (c *Client) Classify(ctx context.Context, storagePath string) (domain.DocKind, error) {
	request := map[string]any{
		"image_path": storagePath,
	}

	var response struct {
		DocKind string `json:"doc_kind"`
	}
	if err := c.call(ctx, "/v1/classify", request, &response, "classify"); err != nil {
		return "", err
	}
	return domain.DocKind(strings.TrimSpace(response.DocKind)), nil
}

func (c *Client) Extract(ctx context.Context, storagePath string, kind domain.DocKind) (domain.FieldMap, error) {
	fields, ok := c.schemas[kind]
	if !ok {
		return nil, fmt.Errorf("no field schema for kind %q", kind)
	}

	request := map[string]any{
		"image_path": storagePath,
		"doc_kind":   string(kind),
		"fields":     fields,
	}

	var response struct {
		Fields domain.FieldMap `json:"fields"`
	}
	if err := c.call(ctx, "/v1/extract", request, &response, "extract"); err != nil {
		return nil, err
	}
	return response.Fields, nil
}

func (c *Client) call(ctx context.Context, path string, payload, out any, operation string) error {
	fn := func(ctx context.Context) error {
		return c.postJSON(ctx, path, payload, out, operation)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "qwenvl."+operation, fn, classifySidecarError)
	} else {
		err = fn(ctx)
	}
	return wrapTemporaryIfNeeded(operation, err)
}
