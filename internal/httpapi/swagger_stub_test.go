//go:build !swagger

package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSwaggerNotMountedByDefault(t *testing.T) {
	w := httptest.NewRecorder()
	newTestMux(&stubGen{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("swagger UI served without the swagger tag: status=%d", w.Code)
	}
}
