// Package cip is a client for the Canto Integration Platform (CIP) web
// service that fronts a Cumulus digital asset management server.
//
// # Overview
//
// A Client sends one HTTP request per operation to
// <server>/CIP/<service>/<operation>/<path...> and decodes the JSON answer.
// Operations are grouped by service:
//
//	client, err := cip.NewClient("https://cumulus.example.org",
//		cip.WithDAMCredentials(cip.DAMCredentials{User: "web", Password: "secret"}))
//	if err != nil {
//		return err
//	}
//	resp, err := client.Metadata().SearchWithLayout(ctx, cip.SearchQuery{
//		Catalog:     "Photos",
//		View:        "web",
//		QuickSearch: "harbour",
//		MaxReturned: 20,
//	})
//	for _, item := range resp.Items() {
//		fmt.Println(item["id"], item["filename"])
//	}
//
// # Response processing
//
// Every decoded response passes through a ResponseProcessor before it is
// returned. The processor runs the filter chain from package filter over
// every value, turning "/Date(1318781876000)/" strings into time.Time, and
// then applies field mapping from package layout:
//
//   - metadata/getlayout registers the fields of the requested table
//   - metadata/search and metadata/getfieldvalues records have their
//     UUID keys replaced by normalized field names
//
// Field directories are kept per catalog table (see ScopeFor), so layouts of
// different tables never mix. Keys that no fetched layout describes are left
// as UUIDs.
//
// # Sessions
//
// Session().Open stores the returned jsessionid on the client, which then
// appends ";jsessionid=<id>" to every request path until Session().Close.
//
// # Errors
//
// Responses with status 400 or above become *ServerError, carrying the
// server's message and stack trace. Transport failures are wrapped with the
// step that failed ("execute request: ...", "decode response: ...").
package cip
