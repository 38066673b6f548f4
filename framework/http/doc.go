// Package http provides request and response helpers for handlers served
// behind routing.ScopeMiddleware.
//
// # Request
//
//	req := gohttp.NewRequest(r)
//
//	var payload struct {
//	    Name string `json:"name"`
//	}
//	if err := req.Bind(&payload); err != nil { ... }
//
//	id := req.RouteParam("id")
//	token := req.BearerToken()
//
//	// Services from the request's activation scope
//	handler, err := gohttp.Service[*GetCatRequestHandler](req)
//	repo, err := req.Resolve(container.Name("cats_repository"))
//
// # Response
//
//	res := gohttp.NewResponse(w)
//	res.Success(data)             // 200 {"data": ...}
//	res.Created(data)             // 201 {"data": ...}
//	res.NotFound()                // 404 {"message": "Not found."}
//	res.ValidationError(errs)     // 422 {"errors": {"field": ["msg"]}}
//	res.ContainerError(err)       // 404 or 500 {"message": ..., "code": ...}
//
// # Debug
//
// ContainerHandler serves the provider's registrations as JSON.
package http
