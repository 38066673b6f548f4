package cats

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/km-arc/go-ioc/framework/app"
	"github.com/km-arc/go-ioc/framework/container"
	gohttp "github.com/km-arc/go-ioc/framework/http"
	"github.com/km-arc/go-ioc/framework/validation"
)

// CatsController is resolved once per request. Handler comes in by type;
// Cats has no declared type and is found by its name.
type CatsController struct {
	app.Controller `di:"-"`

	Handler *GetCatRequestHandler
	Cats    any `di:"cats_repository"`
}

func (c *CatsController) repo() CatsRepository { return c.Cats.(CatsRepository) }

// Index lists every cat.
func (c *CatsController) Index(w http.ResponseWriter, r *http.Request) {
	res := c.Response(w)
	cats, err := c.repo().List(r.Context())
	if err != nil {
		res.ServerError(err.Error())
		return
	}
	res.Success(cats)
}

// Show returns one cat by id.
func (c *CatsController) Show(w http.ResponseWriter, r *http.Request) {
	req, res := c.Request(r), c.Response(w)
	id, err := strconv.Atoi(req.RouteParam("id"))
	if err != nil {
		res.NotFound()
		return
	}
	cat, err := c.Handler.Handle(r.Context(), id)
	switch {
	case errors.Is(err, ErrCatNotFound):
		res.NotFound("No cat with that id.")
	case err != nil:
		res.ServerError(err.Error())
	default:
		w.Header().Set("X-Handler-Id", c.Handler.RequestID().String())
		res.Success(cat)
	}
}

// Store adds a cat.
func (c *CatsController) Store(w http.ResponseWriter, r *http.Request) {
	req, res := c.Request(r), c.Response(w)
	var body struct {
		Name string `json:"name"`
	}
	if err := req.Bind(&body); err != nil {
		res.Error(http.StatusBadRequest, err.Error())
		return
	}
	v := validation.Make(
		map[string]string{"name": body.Name},
		validation.Rules{"name": "required|max:32|alpha_dash"},
	)
	if v.Fails() {
		res.ValidationError(v.Errors())
		return
	}
	cat, err := c.repo().Add(r.Context(), body.Name)
	if err != nil {
		res.ServerError(err.Error())
		return
	}
	res.Created(cat)
}

// Stats awaits the async stats service.
func (c *CatsController) Stats(w http.ResponseWriter, r *http.Request) {
	req, res := c.Request(r), c.Response(w)
	stats, err := req.AResolve(container.TypeKey[*Stats]())
	if err != nil {
		res.ContainerError(err)
		return
	}
	res.Success(stats)
}

// action resolves the request's controller and calls fn on it.
func action(fn func(*CatsController, http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := gohttp.Service[*CatsController](gohttp.NewRequest(r))
		if err != nil {
			gohttp.NewResponse(w).ContainerError(err)
			return
		}
		fn(c, w, r)
	}
}
