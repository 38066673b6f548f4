package http

import (
	"net/http"

	"github.com/km-arc/go-ioc/framework/container"
)

// ContainerHandler lists the provider's registrations and resolvable keys.
//
//	GET /debug/container
//	{"data": {"services": [{"key": "*main.CatsController", "lifetime": "scoped", "kind": "struct"}], "keys": [...]}}
func ContainerHandler(p *container.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		keys := p.Keys()
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = k.String()
		}
		NewResponse(w).Success(envelope{
			"services": p.Descriptors(),
			"keys":     names,
		})
	}
}
