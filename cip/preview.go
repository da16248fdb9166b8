package cip

import (
	"context"
	"net/http"
	"strconv"
)

// PreviewService renders pixel previews of assets. Options are applied by
// the server in order: cropping, scaling, rotation, output format.
type PreviewService struct {
	c *Client
}

// Cropping selects a region of the original in pixels.
type Cropping struct {
	Left, Top, Width, Height int
}

// PreviewOptions configure image, purgecache and thumbnail requests.
// Zero fields are not sent.
type PreviewOptions struct {
	Name     string // named preview definition on the server
	Cropping *Cropping
	MaxSize  int
	Size     int
	Rotate   int // degrees, a multiple of 90
	Format   string
	Quality  int
	// Target stores the preview on the server instead of returning it.
	Target               AssetLocation
	UseCache             *bool
	CacheControl         string
	FallbackImageOnError *bool
	Version              int
}

func (o PreviewOptions) pairs() map[string]string {
	p := o.Target.pairs(map[string]string{
		"maxsize":      itoa(o.MaxSize),
		"size":         itoa(o.Size),
		"format":       o.Format,
		"quality":      itoa(o.Quality),
		"cachecontrol": o.CacheControl,
		"version":      itoa(o.Version),
	})
	if o.Rotate != 0 {
		p["rotate"] = strconv.Itoa(o.Rotate)
	}
	if o.Cropping != nil {
		p["left"] = strconv.Itoa(o.Cropping.Left)
		p["top"] = strconv.Itoa(o.Cropping.Top)
		p["width"] = strconv.Itoa(o.Cropping.Width)
		p["height"] = strconv.Itoa(o.Cropping.Height)
	}
	if o.UseCache != nil {
		p["usecache"] = strconv.FormatBool(*o.UseCache)
	}
	if o.FallbackImageOnError != nil {
		p["fallbackimageonerror"] = strconv.FormatBool(*o.FallbackImageOnError)
	}
	return p
}

func (s *PreviewService) raw(ctx context.Context, operation, catalog string, id int64, opts PreviewOptions, params []Param) ([]byte, string, error) {
	return s.c.CallRaw(ctx, Request{
		Service:     ServicePreview,
		Operation:   operation,
		Path:        []string{catalog, formatID(id), opts.Name},
		Params:      values(opts.pairs(), params),
		Credentials: true,
		Method:      http.MethodGet,
	})
}

// Image returns the preview image of record id and its content type.
func (s *PreviewService) Image(ctx context.Context, catalog string, id int64, opts PreviewOptions, params ...Param) ([]byte, string, error) {
	return s.raw(ctx, "image", catalog, id, opts, params)
}

// Thumbnail returns the thumbnail stored in the catalog for record id.
// Cropping and Name do not apply to thumbnails and are ignored.
func (s *PreviewService) Thumbnail(ctx context.Context, catalog string, id int64, opts PreviewOptions, params ...Param) ([]byte, string, error) {
	opts.Cropping = nil
	opts.Name = ""
	return s.raw(ctx, "thumbnail", catalog, id, opts, params)
}

// PurgeCache drops the cached previews of record id that match opts.
func (s *PreviewService) PurgeCache(ctx context.Context, catalog string, id int64, opts PreviewOptions, params ...Param) (Response, error) {
	return s.c.invoke(ctx, Request{
		Service:     ServicePreview,
		Operation:   "purgecache",
		Path:        []string{catalog, formatID(id), opts.Name},
		Params:      values(opts.pairs(), params),
		Credentials: true,
	})
}
