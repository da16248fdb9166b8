package cip

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/NationalMuseumofDenmark/cip-go/cip/layout"
)

// DefaultTable is the table the server uses when a request names none.
const DefaultTable = "AssetRecords"

// statisticsTimeLayout formats startdatetime for field statistics.
const statisticsTimeLayout = "2006-01-02T15:04:05"

// MetadataService searches, reads and writes catalog metadata.
//
// Search and getfieldvalues records are keyed by field UUID on the wire.
// Once a layout for the same catalog table has been fetched with GetLayout,
// record keys are rewritten to normalized field names; SearchWithLayout
// fetches the layout on demand.
type MetadataService struct {
	c *Client

	mu          sync.Mutex
	collections map[string]layout.Scope // collection name -> table it was filled from
	layouts     map[layoutKey]struct{}  // layouts fetched by GetLayout
}

type layoutKey struct {
	scope layout.Scope
	view  string
}

// ScopeFor returns the directory scope of a catalog table. An empty table
// means DefaultTable.
func ScopeFor(catalog, table string) layout.Scope {
	if strings.TrimSpace(table) == "" {
		table = DefaultTable
	}
	return layout.NewScope(catalog, table)
}

// Fields returns the field directory for scope, creating it if needed.
func (m *MetadataService) Fields(scope layout.Scope) *layout.Directory {
	return m.c.processor.Registry().Directory(scope)
}

func (m *MetadataService) call(ctx context.Context, operation string, path []string, params url.Values, scope layout.Scope) (Response, error) {
	return m.c.invoke(ctx, Request{
		Service:     ServiceMetadata,
		Operation:   operation,
		Path:        path,
		Params:      params,
		Credentials: true,
		Scope:       scope,
	})
}

// GetCatalogs lists the catalogs the DAM user may access.
func (m *MetadataService) GetCatalogs(ctx context.Context, params ...Param) (Response, error) {
	return m.call(ctx, "getcatalogs", nil, values(nil, params), layout.Scope{})
}

// GetTables lists the tables of catalog.
func (m *MetadataService) GetTables(ctx context.Context, catalog string, params ...Param) (Response, error) {
	return m.call(ctx, "gettables", []string{catalog}, values(nil, params), layout.Scope{})
}

// GetLayout fetches the field layout of a catalog view and registers its
// fields in the directory for the requested table.
func (m *MetadataService) GetLayout(ctx context.Context, catalog, view string, params ...Param) (Response, error) {
	v := values(nil, params)
	scope := ScopeFor(catalog, v.Get("table"))
	resp, err := m.call(ctx, OpGetLayout, []string{catalog, view}, v, scope)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.layouts[layoutKey{scope, view}] = struct{}{}
	m.mu.Unlock()
	return resp, nil
}

func (m *MetadataService) hasLayout(scope layout.Scope, view string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.layouts[layoutKey{scope, view}]
	return ok
}

// SearchQuery holds the search parameters. Zero values are not sent.
type SearchQuery struct {
	Catalog     string
	View        string
	QuickSearch string
	QueryName   string
	Query       string
	StartIndex  int
	MaxReturned int
	SortBy      string
	// Collection stores the result ids in a named session collection.
	Collection string
	// Combine merges the result with the collection: new, add, remove, narrow.
	Combine string
}

func (q SearchQuery) values(params []Param) url.Values {
	return values(map[string]string{
		"quicksearchstring": q.QuickSearch,
		"queryname":         q.QueryName,
		"querystring":       q.Query,
		"startindex":        itoa(q.StartIndex),
		"maxreturned":       itoa(q.MaxReturned),
		"sortby":            q.SortBy,
		"collection":        q.Collection,
		"combine":           q.Combine,
	}, params)
}

// Search runs a quick search or query against a catalog view.
func (m *MetadataService) Search(ctx context.Context, q SearchQuery, params ...Param) (Response, error) {
	v := q.values(params)
	scope := ScopeFor(q.Catalog, v.Get("table"))
	resp, err := m.call(ctx, OpSearch, []string{q.Catalog, q.View}, v, scope)
	if err != nil {
		return nil, err
	}
	if q.Collection != "" {
		m.mu.Lock()
		m.collections[q.Collection] = scope
		m.mu.Unlock()
	}
	return resp, nil
}

// SearchWithLayout searches and makes sure the records come back keyed by
// field name: when the result holds field UUIDs the directory cannot
// resolve, the layout for the same catalog, view and table is fetched once
// and the records are rewritten again. UUIDs absent from the layout stay as
// they are.
func (m *MetadataService) SearchWithLayout(ctx context.Context, q SearchQuery, params ...Param) (Response, error) {
	resp, err := m.Search(ctx, q, params...)
	if err != nil {
		return nil, err
	}
	v := q.values(params)
	scope := ScopeFor(q.Catalog, v.Get("table"))
	dir := m.Fields(scope)
	if len(dir.Unresolved(map[string]any(resp))) == 0 || m.hasLayout(scope, q.View) {
		return resp, nil
	}

	layoutParams := []Param{
		Table(v.Get("table")),
		Locale(v.Get("locale")),
		CatalogName(v.Get("catalogname")),
	}
	if _, err := m.GetLayout(ctx, q.Catalog, q.View, layoutParams...); err != nil {
		return nil, fmt.Errorf("get layout: %w", err)
	}
	dir.RewriteItems(map[string]any(resp))
	return resp, nil
}

// SetFilterQuery installs a filter query that narrows every later search of
// table in this session.
func (m *MetadataService) SetFilterQuery(ctx context.Context, table, queryName, query string) (Response, error) {
	return m.call(ctx, "setfilterquery", nil, values(map[string]string{
		"table":       table,
		"queryname":   queryName,
		"querystring": query,
	}, nil), layout.Scope{})
}

// ClearFilterQuery removes the filter query of table.
func (m *MetadataService) ClearFilterQuery(ctx context.Context, table string) (Response, error) {
	return m.call(ctx, "clearfilterquery", nil, values(map[string]string{"table": table}, nil), layout.Scope{})
}

// CollectionScope reports the table a collection was filled from by Search.
func (m *MetadataService) CollectionScope(collection string) (layout.Scope, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	scope, ok := m.collections[collection]
	return scope, ok
}

// GetFieldValuesFromCollection pages through the records of a session
// collection. Records are rewritten with the directory of the table the
// collection was filled from.
func (m *MetadataService) GetFieldValuesFromCollection(ctx context.Context, view, collection string, startIndex, maxReturned int, params ...Param) (Response, error) {
	v := values(map[string]string{
		"collection":  collection,
		"startindex":  itoa(startIndex),
		"maxreturned": itoa(maxReturned),
	}, params)
	scope, _ := m.CollectionScope(collection)
	return m.call(ctx, OpGetFieldValues+"_collection", []string{view}, v, scope)
}

// GetFieldValues reads the fields of one record.
func (m *MetadataService) GetFieldValues(ctx context.Context, catalog, view string, id int64, params ...Param) (Response, error) {
	v := values(nil, params)
	return m.call(ctx, OpGetFieldValues+"_catalog", []string{catalog, view, formatID(id)}, v, ScopeFor(catalog, v.Get("table")))
}

// SetFieldValues writes records. Item keys may be field names known to the
// table's directory, field UUIDs, or "id"; names are translated to UUIDs
// before sending and an unknown name fails with layout.ErrFieldNotFound.
func (m *MetadataService) SetFieldValues(ctx context.Context, catalog, view string, items []layout.Item, params ...Param) (Response, error) {
	return m.write(ctx, "setfieldvalues", catalog, view, items, params)
}

// CreateItem creates records without assets, encoded like SetFieldValues.
func (m *MetadataService) CreateItem(ctx context.Context, catalog, view string, items []layout.Item, params ...Param) (Response, error) {
	return m.write(ctx, "createitem", catalog, view, items, params)
}

func (m *MetadataService) write(ctx context.Context, operation, catalog, view string, items []layout.Item, params []Param) (Response, error) {
	v := values(nil, params)
	scope := ScopeFor(catalog, v.Get("table"))
	dir := m.Fields(scope)

	encoded := make([]layout.Item, 0, len(items))
	for _, item := range items {
		out, err := dir.EncodeItem(item)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", operation, err)
		}
		encoded = append(encoded, out)
	}
	body, err := json.Marshal(map[string]any{"items": encoded})
	if err != nil {
		return nil, fmt.Errorf("encode %s body: %w", operation, err)
	}
	return m.c.invoke(ctx, Request{
		Service:     ServiceMetadata,
		Operation:   operation,
		Path:        []string{catalog, view},
		Params:      v,
		Credentials: true,
		Body:        body,
		ContentType: "application/json",
		Scope:       scope,
	})
}

// CategoryQuery selects categories for GetCategories.
type CategoryQuery struct {
	Collection string
	View       string
	Path       string
	CategoryID int64
	Levels     int
}

// GetCategories reads the category tree of a catalog.
func (m *MetadataService) GetCategories(ctx context.Context, catalog string, q CategoryQuery, params ...Param) (Response, error) {
	return m.call(ctx, "getcategories", []string{catalog}, values(map[string]string{
		"collection": q.Collection,
		"view":       q.View,
		"path":       q.Path,
		"categoryid": formatID(q.CategoryID),
		"levels":     itoa(q.Levels),
	}, params), layout.Scope{})
}

// CreateCategory creates a category named name. Place it with
// Set("path", ...) or Set("categoryid", ...).
func (m *MetadataService) CreateCategory(ctx context.Context, catalog, name string, params ...Param) (Response, error) {
	return m.call(ctx, "createcategory", []string{catalog}, values(map[string]string{"name": name}, params), layout.Scope{})
}

// AssignToCategories assigns record id to the categories selected by params.
func (m *MetadataService) AssignToCategories(ctx context.Context, catalog string, id int64, params ...Param) (Response, error) {
	return m.call(ctx, "assigntocategories", []string{catalog, formatID(id)}, values(nil, params), layout.Scope{})
}

// DetachFromCategories removes record id from the categories selected by
// params.
func (m *MetadataService) DetachFromCategories(ctx context.Context, catalog string, id int64, params ...Param) (Response, error) {
	return m.call(ctx, "detachfromcategories", []string{catalog, formatID(id)}, values(nil, params), layout.Scope{})
}

// DeleteCategory deletes the category selected by params.
func (m *MetadataService) DeleteCategory(ctx context.Context, catalog string, params ...Param) (Response, error) {
	return m.call(ctx, "deletecategory", []string{catalog}, values(nil, params), layout.Scope{})
}

// GetRelatedAssets lists records related to id by relation, e.g. "isalternatemasterof".
func (m *MetadataService) GetRelatedAssets(ctx context.Context, catalog string, id int64, relation string, params ...Param) (Response, error) {
	return m.call(ctx, "getrelatedassets", []string{catalog, formatID(id), relation}, values(nil, params), layout.Scope{})
}

// LinkRelatedAsset relates id to otherID.
func (m *MetadataService) LinkRelatedAsset(ctx context.Context, catalog string, id int64, relation string, otherID int64, params ...Param) (Response, error) {
	return m.call(ctx, "linkrelatedasset", []string{catalog, formatID(id), relation, formatID(otherID)}, values(nil, params), layout.Scope{})
}

// UnlinkRelatedAsset removes the relation between id and otherID.
func (m *MetadataService) UnlinkRelatedAsset(ctx context.Context, catalog string, id int64, relation string, otherID int64, params ...Param) (Response, error) {
	return m.call(ctx, "unlinkrelatedasset", []string{catalog, formatID(id), relation, formatID(otherID)}, values(nil, params), layout.Scope{})
}

// StatisticsQuery selects the period and field for field statistics.
type StatisticsQuery struct {
	Start time.Time
	Days  int
	Field string
}

func (q StatisticsQuery) pairs() map[string]string {
	start := ""
	if !q.Start.IsZero() {
		start = q.Start.Format(statisticsTimeLayout)
	}
	return map[string]string{
		"startdatetime": start,
		"numberofdays":  itoa(q.Days),
		"field":         q.Field,
	}
}

// GetFieldStatisticsForCollection returns per-day value statistics of a
// field over the records of a collection.
func (m *MetadataService) GetFieldStatisticsForCollection(ctx context.Context, collection string, q StatisticsQuery, params ...Param) (Response, error) {
	pairs := q.pairs()
	pairs["collection"] = collection
	return m.call(ctx, "getfieldstatistics_collection", nil, values(pairs, params), layout.Scope{})
}

// GetFieldStatistics returns per-day value statistics of a field over a
// catalog table.
func (m *MetadataService) GetFieldStatistics(ctx context.Context, catalog string, q StatisticsQuery, params ...Param) (Response, error) {
	return m.call(ctx, "getfieldstatistics_catalog", []string{catalog}, values(q.pairs(), params), layout.Scope{})
}

// LinkOptions describe a collection link mail.
type LinkOptions struct {
	StartIndex     int
	MaxReturned    int
	LinkCollection string
	Embargo        time.Time
	Expiration     time.Time
	Password       string
	BaseURL        string
	Permit         string
	Options        string
	MailFrom       string
	MailRecipients []string
	MailCC         []string
	MailBCC        []string
	MailSubject    string
	MailBody       string
}

func (o LinkOptions) pairs() map[string]string {
	return map[string]string{
		"startindex":     itoa(o.StartIndex),
		"maxreturned":    itoa(o.MaxReturned),
		"linkcollection": o.LinkCollection,
		"embargodate":    formatDate(o.Embargo),
		"expirationdate": formatDate(o.Expiration),
		"linkpassword":   o.Password,
		"linkbaseurl":    o.BaseURL,
		"permit":         o.Permit,
		"options":        o.Options,
		"mailfrom":       o.MailFrom,
		"mailrecipients": strings.Join(o.MailRecipients, ","),
		"mailcc":         strings.Join(o.MailCC, ","),
		"mailbcc":        strings.Join(o.MailBCC, ","),
		"mailsubject":    o.MailSubject,
		"mailbody":       o.MailBody,
	}
}

// SendCollectionLinkForCollection mails a link to the records of a
// collection.
func (m *MetadataService) SendCollectionLinkForCollection(ctx context.Context, collection string, link LinkOptions, params ...Param) (Response, error) {
	pairs := link.pairs()
	pairs["collection"] = collection
	return m.call(ctx, "sendcollectionlink_collection", nil, values(pairs, params), layout.Scope{})
}

// SendCollectionLink mails a link to records of a catalog table.
func (m *MetadataService) SendCollectionLink(ctx context.Context, catalog string, link LinkOptions, params ...Param) (Response, error) {
	return m.call(ctx, "sendcollectionlink_catalog", []string{catalog}, values(link.pairs(), params), layout.Scope{})
}

func formatID(id int64) string {
	if id <= 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
