// Package apiclient is the JSON-over-HTTP client shared by the portal's Go
// consumers. Requests go through fiber's fasthttp Agent; non-2xx responses
// come back as *StatusError carrying the server's error envelope.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

const DefaultTimeout = 15 * time.Second

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Status  int
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("http %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

// HasStatus reports whether err (or its cause) is a StatusError with status.
func HasStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == status
}

// HasCode reports whether err carries the given envelope code.
func HasCode(err error, code string) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

type Client struct {
	BaseURL string
	Timeout time.Duration
	Header  map[string]string

	// Token returns the bearer token to attach; empty means none.
	Token func() string
	// OnUnauthorized runs after any 401 response.
	OnUnauthorized func()
}

func New(baseURL string) *Client {
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), Timeout: DefaultTimeout}
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.Do(ctx, fiber.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, in, out interface{}) error {
	return c.Do(ctx, fiber.MethodPost, path, nil, in, out)
}

func (c *Client) Put(ctx context.Context, path string, in, out interface{}) error {
	return c.Do(ctx, fiber.MethodPut, path, nil, in, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, fiber.MethodDelete, path, nil, nil, nil)
}

// Do sends one request. in is JSON-encoded when non-nil; out is decoded from a
// 2xx body when non-nil.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target := c.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	a := fiber.AcquireAgent()
	req := a.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(target)
	req.Header.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	for k, v := range c.Header {
		req.Header.Set(k, v)
	}
	if c.Token != nil {
		if token := c.Token(); token != "" {
			req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
		}
	}
	if in != nil {
		a.JSON(in)
	}
	a.Timeout(c.timeout(ctx))

	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return errors.Wrapf(err, "%s %s", method, path)
	}

	status, body, errs := a.Bytes()
	if len(errs) > 0 {
		return errors.Wrapf(errs[0], "%s %s", method, path)
	}

	if status == fiber.StatusUnauthorized && c.OnUnauthorized != nil {
		c.OnUnauthorized()
	}
	if status < 200 || status > 299 {
		return decodeStatusError(status, body)
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	return errors.Wrapf(json.Unmarshal(body, out), "decode %s %s", method, path)
}

func (c *Client) timeout(ctx context.Context) time.Duration {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if deadline, ok := ctx.Deadline(); ok {
		if until := time.Until(deadline); until < timeout {
			timeout = until
		}
	}
	return timeout
}

func decodeStatusError(status int, body []byte) error {
	var envelope struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	se := &StatusError{Status: status}
	if json.Unmarshal(body, &envelope) == nil {
		se.Code = envelope.Code
		se.Message = envelope.Error
	}
	if se.Message == "" {
		se.Message = strings.TrimSpace(string(body))
	}
	return se
}
