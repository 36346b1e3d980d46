package client

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const apiPrefix = "/api/v1"

// BillingClient covers entries, reports and exports.
type BillingClient struct {
	client *Client
}

type dataEnvelope[T any] struct {
	Data  T   `json:"data"`
	Count int `json:"count,omitempty"`
}

func (k EntryKey) validate() error {
	if strings.TrimSpace(k.ClientID) == "" || strings.TrimSpace(k.Month) == "" {
		return fmt.Errorf("%w: client id and month are required", ErrInvalidRequest)
	}
	return nil
}

func (k EntryKey) path(suffix string) string {
	p := fmt.Sprintf("%s/billing/%s/%s%s", apiPrefix, url.PathEscape(k.ClientID), url.PathEscape(strings.ToLower(k.Month)), suffix)
	return withQuery(p, fyQuery(k.FYStart))
}

func fyQuery(fyStart int) url.Values {
	q := url.Values{}
	if fyStart != 0 {
		q.Set("financialYear", strconv.Itoa(fyStart))
	}
	return q
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

// Save creates or replaces an entry.
func (b *BillingClient) Save(ctx context.Context, req *SaveEntryRequest) (*SaveEntryResponse, error) {
	if req == nil || strings.TrimSpace(req.ClientID) == "" || strings.TrimSpace(req.Month) == "" {
		return nil, fmt.Errorf("%w: client id and month are required", ErrInvalidRequest)
	}
	var out SaveEntryResponse
	if err := b.client.do(ctx, http.MethodPost, apiPrefix+"/billing", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (b *BillingClient) Get(ctx context.Context, key EntryKey) (*Entry, error) {
	if err := key.validate(); err != nil {
		return nil, err
	}
	var out dataEnvelope[*Entry]
	if err := b.client.do(ctx, http.MethodGet, key.path(""), nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (b *BillingClient) List(ctx context.Context, opts ListOptions) ([]*Entry, error) {
	q := fyQuery(opts.FYStart)
	if opts.Month != "" {
		q.Set("month", strings.ToLower(opts.Month))
	}
	if opts.ClientID != "" {
		q.Set("clientId", opts.ClientID)
	}
	if opts.Status != "" {
		q.Set("status", opts.Status)
	}
	var out dataEnvelope[[]*Entry]
	if err := b.client.do(ctx, http.MethodGet, withQuery(apiPrefix+"/billing", q), nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (b *BillingClient) Delete(ctx context.Context, key EntryKey) error {
	if err := key.validate(); err != nil {
		return err
	}
	return b.client.do(ctx, http.MethodDelete, key.path(""), nil, nil)
}

// CarryIn returns the previous outstanding a new entry of key would start
// from.
func (b *BillingClient) CarryIn(ctx context.Context, key EntryKey) (*CarryIn, error) {
	if err := key.validate(); err != nil {
		return nil, err
	}
	var out CarryIn
	if err := b.client.do(ctx, http.MethodGet, key.path("/carry-in"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (b *BillingClient) UpdateStatus(ctx context.Context, key EntryKey, update StatusUpdate) (*Entry, error) {
	if err := key.validate(); err != nil {
		return nil, err
	}
	if update.Status == "" && update.InvoiceStatus == "" {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidRequest)
	}
	var out dataEnvelope[*Entry]
	if err := b.client.do(ctx, http.MethodPut, key.path("/status"), update, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// Summary aggregates month, or the whole financial year when month is blank.
func (b *BillingClient) Summary(ctx context.Context, month string, fyStart int) (*Summary, error) {
	q := fyQuery(fyStart)
	if month != "" {
		q.Set("month", strings.ToLower(month))
	}
	var out dataEnvelope[*Summary]
	if err := b.client.do(ctx, http.MethodGet, withQuery(apiPrefix+"/billing/reports/summary", q), nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (b *BillingClient) ClientReport(ctx context.Context, clientID string, fyStart int) (*ClientReport, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, fmt.Errorf("%w: client id is required", ErrInvalidRequest)
	}
	path := withQuery(apiPrefix+"/billing/reports/client/"+url.PathEscape(clientID), fyQuery(fyStart))
	var out dataEnvelope[*ClientReport]
	if err := b.client.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func exportPath(kind, month string, fyStart int) string {
	q := fyQuery(fyStart)
	if month != "" {
		q.Set("month", strings.ToLower(month))
	}
	return withQuery(apiPrefix+"/billing/exports/"+url.PathEscape(strings.ToLower(kind)), q)
}

// Download fetches a CSV export. The client master ignores month.
func (b *BillingClient) Download(ctx context.Context, kind, month string, fyStart int) (*Export, error) {
	if strings.TrimSpace(kind) == "" {
		return nil, fmt.Errorf("%w: export kind is required", ErrInvalidRequest)
	}
	resp, err := b.client.send(ctx, http.MethodGet, exportPath(kind, month, fyStart), nil)
	if err != nil {
		return nil, err
	}
	exp := &Export{Kind: strings.ToLower(kind), Data: resp.body}
	if _, params, err := mime.ParseMediaType(resp.header.Get("Content-Disposition")); err == nil {
		exp.Filename = params["filename"]
	}
	return exp, nil
}

// Publish archives an export in the server's object store.
func (b *BillingClient) Publish(ctx context.Context, kind, month string, fyStart int) (*PublishResult, error) {
	if strings.TrimSpace(kind) == "" {
		return nil, fmt.Errorf("%w: export kind is required", ErrInvalidRequest)
	}
	var out dataEnvelope[*PublishResult]
	if err := b.client.do(ctx, http.MethodPost, exportPath(kind, month, fyStart), nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

//Personal.AI order the ending
