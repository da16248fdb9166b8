package cip

import (
	"net/url"
	"strconv"
)

// Param sets an optional named parameter on a request.
type Param func(url.Values)

// CatalogName sets "catalogname", the catalog to use when the path names a
// catalog alias.
func CatalogName(name string) Param { return Set("catalogname", name) }

// Locale sets the two-letter ISO 639-1 language code for field values.
func Locale(locale string) Param { return Set("locale", locale) }

// Table sets the catalog table, e.g. "AssetRecords" or "Categories".
func Table(table string) Param { return Set("table", table) }

// Fields restricts the returned fields. Names are sent as given; pass UUIDs
// or names the server understands.
func Fields(fields ...string) Param {
	return func(v url.Values) {
		for _, f := range fields {
			if f != "" {
				v.Add("field", f)
			}
		}
	}
}

// Set sets an arbitrary parameter. Empty values are ignored.
func Set(key, value string) Param {
	return func(v url.Values) {
		if value != "" {
			v.Set(key, value)
		}
	}
}

// values collects non-empty pairs and then applies params, which win.
func values(pairs map[string]string, params []Param) url.Values {
	v := url.Values{}
	for key, value := range pairs {
		if value != "" {
			v.Set(key, value)
		}
	}
	for _, p := range params {
		if p != nil {
			p(v)
		}
	}
	return v
}

func itoa(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func boolParam(b bool) string {
	if !b {
		return ""
	}
	return "true"
}
