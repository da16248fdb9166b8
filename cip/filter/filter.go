package filter

// Filter transforms a single scalar value found in a decoded response.
//
// Apply receives the service and operation that produced the response and
// the key the value was stored under (array elements use their index). It
// returns the value to store in its place, which may be the input unchanged.
// Filters must not perform I/O and must not fail: a value the filter does not
// recognise is returned as-is.
type Filter interface {
	Apply(service, operation, key string, value any) any
}

// Func adapts an ordinary function to the Filter interface.
type Func func(service, operation, key string, value any) any

// Apply calls f.
func (f Func) Apply(service, operation, key string, value any) any {
	return f(service, operation, key, value)
}

// Scoped restricts f to responses of one service and/or operation. An empty
// service or operation matches any.
func Scoped(f Filter, service, operation string) Filter {
	return scoped{filter: f, service: service, operation: operation}
}

type scoped struct {
	filter    Filter
	service   string
	operation string
}

func (s scoped) Apply(service, operation, key string, value any) any {
	if s.service != "" && s.service != service {
		return value
	}
	if s.operation != "" && s.operation != operation {
		return value
	}
	return s.filter.Apply(service, operation, key, value)
}

// Defaults returns the built-in filters in registration order.
func Defaults() []Filter {
	return []Filter{DateFilter{}}
}
