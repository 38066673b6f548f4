package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	gohttp "github.com/km-arc/go-ioc/framework/http"
)

func TestContainerHandler(t *testing.T) {
	p := newScopedProvider(t)

	rr := httptest.NewRecorder()
	gohttp.ContainerHandler(p)(rr, httptest.NewRequest(http.MethodGet, "/debug/container", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d want 200", rr.Code)
	}

	var body struct {
		Data struct {
			Services []struct {
				Key      string `json:"key"`
				Lifetime string `json:"lifetime"`
				Kind     string `json:"kind"`
			} `json:"services"`
			Keys []string `json:"keys"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(body.Data.Services) != 1 {
		t.Fatalf("services: got %d want 1", len(body.Data.Services))
	}
	svc := body.Data.Services[0]
	if svc.Key != "*http_test.visitCounter" || svc.Lifetime != "scoped" || svc.Kind != "factory" {
		t.Errorf("service: got %+v", svc)
	}
	if len(body.Data.Keys) == 0 || body.Data.Keys[0] != "*http_test.visitCounter" {
		t.Errorf("keys: got %v", body.Data.Keys)
	}
}
