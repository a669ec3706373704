package acl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/clients"
)

// Upstream is a named remote service reached through a clients.Client.
// Every failure it returns is already a domain error.
type Upstream struct {
	client *clients.Client
	name   string
}

func NewUpstream(client *clients.Client, name string) Upstream {
	return Upstream{client: client, name: name}
}

func (u *Upstream) Client() *clients.Client { return u.client }

// ServiceName labels errors and health checks.
func (u *Upstream) ServiceName() string { return u.name }

// Get returns the body of a 2xx response. The caller closes it.
func (u *Upstream) Get(ctx context.Context, path, operation string) (io.ReadCloser, error) {
	resp, err := u.client.Get(ctx, path)

	return u.accept(resp, err, operation)
}

// PostJSON sends v and drains the response.
func (u *Upstream) PostJSON(ctx context.Context, path string, v any, operation string) error {
	resp, err := u.client.PostJSON(ctx, path, v)

	body, err := u.accept(resp, err, operation)
	if err != nil {
		return err
	}
	defer func() { _ = body.Close() }()

	_, _ = io.Copy(io.Discard, body)

	return nil
}

// accept turns a transport result into either an open body or a domain error.
func (u *Upstream) accept(resp *http.Response, err error, operation string) (io.ReadCloser, error) {
	switch {
	case err != nil:
		return nil, MapHTTPError(nil, err, u.name, operation)
	case resp.StatusCode >= http.StatusBadRequest:
		defer func() { _ = resp.Body.Close() }()
		return nil, MapHTTPError(resp, nil, u.name, operation)
	default:
		return resp.Body, nil
	}
}

// decodeJSON consumes and closes body.
func decodeJSON[T any](body io.ReadCloser) (T, error) {
	var out T
	if body == nil {
		return out, errors.New("empty response body")
	}
	defer func() { _ = body.Close() }()

	if err := json.NewDecoder(body).Decode(&out); err != nil {
		return out, fmt.Errorf("decoding %T: %w", out, err)
	}

	return out, nil
}

// Translator converts one external record to a domain value.
// A non-nil error means the record is dropped.
type Translator[External any, Domain any] func(ext *External) (Domain, error)

// TranslateAll keeps the successful translations in input order and
// reports how many records were dropped.
func TranslateAll[E any, D any](items []E, translate Translator[E, D]) (kept []D, dropped int) {
	kept = make([]D, 0, len(items))

	for i := range items {
		d, err := translate(&items[i])
		if err != nil {
			dropped++
			continue
		}
		kept = append(kept, d)
	}

	return kept, dropped
}
