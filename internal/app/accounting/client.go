/*
Package accounting is a read-only client for the Akaunting REST API.

A Client is bound to one organization's options. When those options lack a domain, user
name or password every call returns an empty result without touching the network, so
callers never branch on whether sync is configured.
*/
package accounting

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"kinbrio/internal/app/model"
	"kinbrio/internal/pkg/errs"
)

const maxResponseBytes = 8 << 20

// APIError is the error envelope returned by the accounting service.
type APIError struct {
	Status     int        `json:"-"`
	Message    string     `json:"message"`
	StatusCode statusCode `json:"status_code"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("accounting: %s (status %d)", e.Message, e.code())
}

func (e *APIError) code() int {
	if e.StatusCode != 0 {
		return int(e.StatusCode)
	}
	return e.Status
}

// statusCode accepts the envelope's status_code as a number or a numeric string.
type statusCode int

func (c *statusCode) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*c = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*c = statusCode(n)
	return nil
}

// CanSync reports whether opts carry enough to call the service.
func CanSync(opts model.AkauntingOptions) bool {
	return opts.AkauntingDomain != "" && opts.UserName != "" && opts.UserPass != ""
}

// Client calls the accounting service with one organization's credentials.
type Client struct {
	httpClient *http.Client
	opts       model.AkauntingOptions
}

func NewClient(httpClient *http.Client, opts model.AkauntingOptions) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{httpClient: httpClient, opts: opts}
}

// CanSync reports whether the client will make network calls.
func (c *Client) CanSync() bool {
	return CanSync(c.opts)
}

func (c *Client) authorization() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(c.opts.UserName+":"+c.opts.UserPass))
}

func (c *Client) ListCompanies(ctx context.Context) (CompanyList, error) {
	var out CompanyList
	err := c.get(ctx, "/companies", nil, &out)
	return out, err
}

func (c *Client) ListItems(ctx context.Context) (ItemList, error) {
	var out ItemList
	err := c.get(ctx, "/items", nil, &out)
	return out, err
}

func (c *Client) GetItem(ctx context.Context, id string) (ItemEnvelope, error) {
	var out ItemEnvelope
	err := c.get(ctx, "/items/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (c *Client) ListInvoices(ctx context.Context) (InvoiceList, error) {
	var out InvoiceList
	err := c.get(ctx, "/documents?search=type:invoice&page=1&limit=50", nil, &out)
	return out, err
}

func (c *Client) ListCustomers(ctx context.Context) (CustomerList, error) {
	var out CustomerList
	err := c.get(ctx, "/contacts?search=type:customer&page=1&limit=25", nil, &out)
	return out, err
}

// GetCustomer fetches one customer; this endpoint needs the company header.
func (c *Client) GetCustomer(ctx context.Context, id string) (CustomerEnvelope, error) {
	var out CustomerEnvelope
	header := http.Header{}
	header.Set("X-Company", c.opts.AkauntingCompanyID)
	err := c.get(ctx, "/contacts/"+url.PathEscape(id)+"?search=type%3Acustomer", header, &out)
	return out, err
}

func (c *Client) ListUsers(ctx context.Context) (UserList, error) {
	var out UserList
	err := c.get(ctx, "/users", nil, &out)
	return out, err
}

func (c *Client) get(ctx context.Context, path string, header http.Header, out any) error {
	if !c.CanSync() {
		return nil
	}

	target := strings.TrimRight(c.opts.AkauntingDomain, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return errs.WithKind(errs.KindUpstream, fmt.Errorf("accounting: build request: %w", err))
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Authorization", c.authorization())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errs.WithKind(errs.KindUpstream, fmt.Errorf("accounting: GET %s: %w", path, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return errs.WithKind(errs.KindUpstream, fmt.Errorf("accounting: read %s: %w", path, err))
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		if json.Unmarshal(body, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return errs.WithKind(errs.KindUpstream, apiErr)
	}

	if decodeErr := json.Unmarshal(body, out); decodeErr != nil {
		apiErr := &APIError{Status: resp.StatusCode}
		if json.Unmarshal(body, apiErr) == nil && apiErr.Message != "" {
			return errs.WithKind(errs.KindUpstream, apiErr)
		}
		return errs.WithKind(errs.KindUpstream, fmt.Errorf("accounting: decode %s: %w", path, decodeErr))
	}
	return nil
}
