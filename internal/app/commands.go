package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/NationalMuseumofDenmark/cip-go/cip"
	"github.com/NationalMuseumofDenmark/cip-go/internal/config"
)

const searchPageSize = 25

// runCommand runs a one-shot subcommand and prints its response as JSON.
func runCommand(ctx context.Context, client *cip.Client, cfg config.Config, command string, args []string, out io.Writer) error {
	var (
		resp cip.Response
		err  error
	)
	scope := []cip.Param{cip.Table(cfg.Table), cip.Locale(cfg.Locale)}

	switch command {
	case "version":
		resp, err = client.System().GetVersion(ctx)

	case "catalogs":
		resp, err = client.Metadata().GetCatalogs(ctx)

	case "tables":
		if err := requireCatalog(cfg); err != nil {
			return err
		}
		resp, err = client.Metadata().GetTables(ctx, cfg.Catalog)

	case "layout":
		if err := requireCatalog(cfg); err != nil {
			return err
		}
		resp, err = client.Metadata().GetLayout(ctx, cfg.Catalog, cfg.View, scope...)

	case "search":
		if err := requireCatalog(cfg); err != nil {
			return err
		}
		query := strings.TrimSpace(strings.Join(args, " "))
		if query == "" {
			return fmt.Errorf("search: missing query")
		}
		resp, err = client.Metadata().SearchWithLayout(ctx, cip.SearchQuery{
			Catalog:     cfg.Catalog,
			View:        cfg.View,
			QuickSearch: query,
			MaxReturned: searchPageSize,
		}, scope...)

	case "fields":
		if err := requireCatalog(cfg); err != nil {
			return err
		}
		if len(args) != 1 {
			return fmt.Errorf("fields: want exactly one record id")
		}
		id, perr := strconv.ParseInt(args[0], 10, 64)
		if perr != nil {
			return fmt.Errorf("fields: invalid record id %q", args[0])
		}
		resp, err = fetchFields(ctx, client.Metadata(), cfg, id, scope)

	default:
		return fmt.Errorf("unknown command %q", command)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", command, err)
	}
	return printJSON(out, resp)
}

// fetchFields reads one record. The layout is fetched first so the record
// comes back keyed by field name.
func fetchFields(ctx context.Context, md *cip.MetadataService, cfg config.Config, id int64, scope []cip.Param) (cip.Response, error) {
	if md.Fields(cip.ScopeFor(cfg.Catalog, cfg.Table)).Len() == 0 {
		if _, err := md.GetLayout(ctx, cfg.Catalog, cfg.View, scope...); err != nil {
			return nil, fmt.Errorf("get layout: %w", err)
		}
	}
	return md.GetFieldValues(ctx, cfg.Catalog, cfg.View, id, scope...)
}

func requireCatalog(cfg config.Config) error {
	if strings.TrimSpace(cfg.Catalog) == "" {
		return fmt.Errorf("no catalog configured; set catalog in config.toml")
	}
	return nil
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
