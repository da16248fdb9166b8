package cip

import (
	"context"
	"net/http"
	"strconv"
	"strings"
)

// AssetService works with original assets: import, download, checkout,
// checkin and delete. All calls carry the client's DAM credentials.
type AssetService struct {
	c *Client
}

// AssetLocation names a location on the CIP server (a predefined location
// name or a path within one) and how to treat existing files there.
type AssetLocation struct {
	Location string
	Name     string
	IfExists string // "replace", "fail" or "rename"
}

func (l AssetLocation) pairs(into map[string]string) map[string]string {
	if into == nil {
		into = make(map[string]string)
	}
	into["location"] = l.Location
	into["name"] = l.Name
	into["ifexists"] = l.IfExists
	return into
}

func (s *AssetService) call(ctx context.Context, operation string, path []string, pairs map[string]string, params []Param) (Response, error) {
	return s.c.invoke(ctx, Request{
		Service:     ServiceAsset,
		Operation:   operation,
		Path:        path,
		Params:      values(pairs, params),
		Credentials: true,
	})
}

// Import imports the file at location as a new record of catalog.
func (s *AssetService) Import(ctx context.Context, catalog, view, location string, params ...Param) (Response, error) {
	return s.call(ctx, "import", []string{catalog, view}, map[string]string{"location": location}, params)
}

// Update replaces the asset of record id with the file at location.
func (s *AssetService) Update(ctx context.Context, catalog, view string, id int64, location string, params ...Param) (Response, error) {
	return s.call(ctx, "update", []string{catalog, view, formatID(id)}, map[string]string{"location": location}, params)
}

// DownloadOptions control asset/download. Leave Target empty and use
// DownloadRaw to receive the asset bytes.
type DownloadOptions struct {
	Version        int
	Options        string
	Target         AssetLocation
	MailFrom       string
	MailRecipients []string
	MailCC         []string
	MailBCC        []string
	MailSubject    string
	MailBody       string
	CacheControl   string
}

func (o DownloadOptions) pairs() map[string]string {
	return o.Target.pairs(map[string]string{
		"version":        itoa(o.Version),
		"options":        o.Options,
		"mailfrom":       o.MailFrom,
		"mailrecipients": strings.Join(o.MailRecipients, ","),
		"mailcc":         strings.Join(o.MailCC, ","),
		"mailbcc":        strings.Join(o.MailBCC, ","),
		"mailsubject":    o.MailSubject,
		"mailbody":       o.MailBody,
		"cachecontrol":   o.CacheControl,
	})
}

// Download stores the asset of record id at a server location or mails it.
func (s *AssetService) Download(ctx context.Context, catalog string, id int64, opts DownloadOptions, params ...Param) (Response, error) {
	return s.call(ctx, "download", []string{catalog, formatID(id)}, opts.pairs(), params)
}

// DownloadRaw returns the asset bytes of record id and their content type.
func (s *AssetService) DownloadRaw(ctx context.Context, catalog string, id int64, opts DownloadOptions, params ...Param) ([]byte, string, error) {
	return s.c.CallRaw(ctx, Request{
		Service:     ServiceAsset,
		Operation:   "download",
		Path:        []string{catalog, formatID(id)},
		Params:      values(opts.pairs(), params),
		Credentials: true,
		Method:      http.MethodGet,
	})
}

// Checkout checks out the asset of record id to target.
func (s *AssetService) Checkout(ctx context.Context, catalog string, id int64, target AssetLocation, params ...Param) (Response, error) {
	return s.call(ctx, "checkout", []string{catalog, formatID(id)}, target.pairs(nil), params)
}

// Checkin checks the asset at location back in as record id.
func (s *AssetService) Checkin(ctx context.Context, catalog string, id int64, location, comment string, params ...Param) (Response, error) {
	return s.call(ctx, "checkin", []string{catalog, formatID(id)}, map[string]string{
		"location": location,
		"comment":  comment,
	}, params)
}

// UndoCheckout cancels the checkout of record id.
func (s *AssetService) UndoCheckout(ctx context.Context, catalog string, id int64, params ...Param) (Response, error) {
	return s.call(ctx, "undocheckout", []string{catalog, formatID(id)}, nil, params)
}

// Rollback makes version the current version of record id.
func (s *AssetService) Rollback(ctx context.Context, catalog string, id int64, version int, params ...Param) (Response, error) {
	return s.call(ctx, "rollback", []string{catalog, formatID(id), strconv.Itoa(version)}, nil, params)
}

// GetVersions lists the stored versions of record id.
func (s *AssetService) GetVersions(ctx context.Context, catalog string, id int64, params ...Param) (Response, error) {
	return s.call(ctx, "getversions", []string{catalog, formatID(id)}, nil, params)
}

// Delete deletes record id, and its asset file when withAsset is set.
func (s *AssetService) Delete(ctx context.Context, catalog string, id int64, withAsset bool, params ...Param) (Response, error) {
	return s.call(ctx, "delete", []string{catalog, formatID(id)}, map[string]string{
		"withasset": boolParam(withAsset),
	}, params)
}
