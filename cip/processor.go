package cip

import (
	"github.com/sirupsen/logrus"

	"github.com/NationalMuseumofDenmark/cip-go/cip/filter"
	"github.com/NationalMuseumofDenmark/cip-go/cip/layout"
)

// ResponseProcessor runs after every decoded response. It normalizes values
// through the filter chain and then, for the metadata operations that carry
// field-keyed records, feeds or applies the field directory of the request's
// scope.
type ResponseProcessor struct {
	normalizer *filter.Normalizer
	registry   *layout.Registry
	log        *logrus.Entry
}

// NewResponseProcessor builds a processor over filters, applied in order, and
// registry. A nil registry disables key rewriting.
func NewResponseProcessor(filters []filter.Filter, registry *layout.Registry) *ResponseProcessor {
	return &ResponseProcessor{
		normalizer: filter.NewNormalizer(filters...),
		registry:   registry,
		log:        cipLog,
	}
}

// Registry returns the directories the processor feeds.
func (p *ResponseProcessor) Registry() *layout.Registry {
	return p.registry
}

// Process normalizes tree and applies the layout pass. operation is the
// bare operation name, without a variant suffix.
func (p *ResponseProcessor) Process(service, operation string, scope layout.Scope, tree any) any {
	tree = p.normalizer.Process(service, operation, tree)
	if service != ServiceMetadata || p.registry == nil || scope.IsZero() {
		return tree
	}

	switch operation {
	case OpGetLayout:
		n := p.registry.Directory(scope).RegisterLayout(tree)
		p.log.WithFields(logrus.Fields{
			"scope":  scope.String(),
			"fields": n,
		}).Debug("registered layout")
	case OpSearch, OpGetFieldValues:
		if dir, ok := p.registry.Lookup(scope); ok {
			dir.RewriteItems(tree)
		}
	}
	return tree
}
