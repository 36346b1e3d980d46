package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// ClientsClient reads the client roster.
type ClientsClient struct {
	client *Client
}

func (c *ClientsClient) List(ctx context.Context, activeOnly bool) ([]*RosterClient, error) {
	path := apiPrefix + "/clients"
	if activeOnly {
		path += "?activeOnly=true"
	}
	var out dataEnvelope[[]*RosterClient]
	if err := c.client.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *ClientsClient) Get(ctx context.Context, clientID string) (*RosterClient, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, fmt.Errorf("%w: client id is required", ErrInvalidRequest)
	}
	var out dataEnvelope[*RosterClient]
	if err := c.client.do(ctx, http.MethodGet, apiPrefix+"/clients/"+url.PathEscape(clientID), nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

//Personal.AI order the ending
