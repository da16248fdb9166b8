package cip

import "context"

// LocationService manages files in the server's predefined locations.
type LocationService struct {
	c *Client
}

// Get lists the contents of location.
func (s *LocationService) Get(ctx context.Context, location string, params ...Param) (Response, error) {
	return s.c.invoke(ctx, Request{
		Service:     ServiceLocation,
		Operation:   "get",
		Params:      values(map[string]string{"location": location}, params),
		Credentials: true,
	})
}

// CreateDir creates the directory location.
func (s *LocationService) CreateDir(ctx context.Context, location string, params ...Param) (Response, error) {
	return s.c.invoke(ctx, Request{
		Service:     ServiceLocation,
		Operation:   "createdir",
		Params:      values(map[string]string{"location": location}, params),
		Credentials: true,
	})
}

// Copy copies the asset of record id to a location given with params.
func (s *LocationService) Copy(ctx context.Context, catalog string, id int64, params ...Param) (Response, error) {
	return s.c.invoke(ctx, Request{
		Service:     ServiceLocation,
		Operation:   "copy",
		Path:        []string{catalog, formatID(id)},
		Params:      values(nil, params),
		Credentials: true,
	})
}

// DeveloperService helps writing client code against a catalog view.
type DeveloperService struct {
	c *Client
}

// Describe documents the fields of a catalog view in language, e.g. "json".
func (s *DeveloperService) Describe(ctx context.Context, catalog, view, language string, params ...Param) (Response, error) {
	return s.c.invoke(ctx, Request{
		Service:     ServiceDeveloper,
		Operation:   "describe",
		Path:        []string{catalog, view},
		Params:      values(map[string]string{"language": language}, params),
		Credentials: true,
	})
}

// ConfigurationService reads client configuration stored on the server.
type ConfigurationService struct {
	c *Client
}

// GetClientConfiguration returns the named client configuration.
func (s *ConfigurationService) GetClientConfiguration(ctx context.Context, name string, params ...Param) (Response, error) {
	return s.c.invoke(ctx, Request{
		Service:   ServiceConfiguration,
		Operation: "getclientconfiguration",
		Params:    values(map[string]string{"name": name}, params),
	})
}

// GetView returns the definition of view name in catalog, optionally for a
// variant.
func (s *ConfigurationService) GetView(ctx context.Context, catalog, name, variant string, params ...Param) (Response, error) {
	return s.c.invoke(ctx, Request{
		Service:   ServiceConfiguration,
		Operation: "getview",
		Path:      []string{catalog, name, variant},
		Params:    values(nil, params),
	})
}
