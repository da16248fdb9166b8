package cip

import (
	"context"
	"fmt"
)

// SessionService opens and closes server-side sessions. A session can hold
// DAM credentials for subsequent requests; credentials sent explicitly with
// a request take precedence.
type SessionService struct {
	c *Client
}

// OpenOptions are the optional session/open parameters.
type OpenOptions struct {
	ServerAddress string
	User          string
	Password      string
	CatalogName   string
	Locale        string
}

// Open creates a session. When remember is set the client sends the
// returned jsessionid with every later request.
func (s *SessionService) Open(ctx context.Context, opts OpenOptions, remember bool) (Response, error) {
	tree, err := s.c.Call(ctx, Request{
		Service:   ServiceSession,
		Operation: "open",
		Params: values(map[string]string{
			"serveraddress": opts.ServerAddress,
			"user":          opts.User,
			"password":      opts.Password,
			"catalogname":   opts.CatalogName,
			"locale":        opts.Locale,
		}, nil),
	})
	if err != nil {
		return nil, err
	}
	resp, err := toResponse(tree)
	if err != nil {
		return nil, err
	}
	if remember {
		id := resp.String("jsessionid")
		if id == "" {
			return resp, fmt.Errorf("open session: response has no jsessionid")
		}
		s.c.SetSessionID(id)
	}
	return resp, nil
}

// Close ends the current session and forgets its id. Requests after Close
// run without a session.
func (s *SessionService) Close(ctx context.Context) (Response, error) {
	tree, err := s.c.Call(ctx, Request{Service: ServiceSession, Operation: "close"})
	s.c.SetSessionID("")
	if err != nil {
		return nil, err
	}
	return toResponse(tree)
}

// SystemService reports information about the CIP server.
type SystemService struct {
	c *Client
}

// GetVersion returns the server's component versions.
func (s *SystemService) GetVersion(ctx context.Context) (Response, error) {
	tree, err := s.c.Call(ctx, Request{Service: ServiceSystem, Operation: "getversion"})
	if err != nil {
		return nil, err
	}
	return toResponse(tree)
}

// CIPVersion extracts version.cip.version from a getversion response.
func CIPVersion(resp Response) string {
	return resp.Object("version").Object("cip").String("version")
}

// CheckCompatibility fetches the server version and fails with
// ErrIncompatibleServer unless it matches ServerVersion.
func (c *Client) CheckCompatibility(ctx context.Context) error {
	resp, err := c.System().GetVersion(ctx)
	if err != nil {
		return fmt.Errorf("get version: %w", err)
	}
	if got := CIPVersion(resp); got != ServerVersion {
		return fmt.Errorf("%w: server runs %q, client expects %q", ErrIncompatibleServer, got, ServerVersion)
	}
	return nil
}
