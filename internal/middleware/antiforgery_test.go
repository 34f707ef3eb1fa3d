package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func okHandler() (http.Handler, *bool) {
	called := false
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}), &called
}

func TestIssueAntiForgery_SetsCookieWhenAbsent(t *testing.T) {
	next, _ := okHandler()
	h := IssueAntiForgery(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var found *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == AntiForgeryCookie {
			found = c
		}
	}
	if found == nil {
		t.Fatal("no anti-forgery cookie was set")
	}
	if found.Value == "" {
		t.Error("anti-forgery cookie is empty")
	}
	if found.HttpOnly {
		t.Error("anti-forgery cookie must be script-readable for AJAX headers")
	}
}

func TestIssueAntiForgery_KeepsExistingCookie(t *testing.T) {
	next, _ := okHandler()
	h := IssueAntiForgery(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: AntiForgeryCookie, Value: "existing"})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	for _, c := range rr.Result().Cookies() {
		if c.Name == AntiForgeryCookie {
			t.Error("a new token was issued over an existing one; parallel tabs would break")
		}
	}
}

func TestRequireAntiForgery_MissingCookie(t *testing.T) {
	next, called := okHandler()
	h := RequireAntiForgery(next)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusForbidden)
	}
	if *called {
		t.Error("handler ran without an anti-forgery cookie")
	}
}

func TestRequireAntiForgery_HeaderMatch(t *testing.T) {
	next, called := okHandler()
	h := RequireAntiForgery(next)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.AddCookie(&http.Cookie{Name: AntiForgeryCookie, Value: "tok-1"})
	req.Header.Set("X-CSRF-Token", "tok-1")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if !*called {
		t.Error("handler did not run for a matching header token")
	}
}

func TestRequireAntiForgery_FormFieldMatch(t *testing.T) {
	next, called := okHandler()
	h := RequireAntiForgery(next)

	form := url.Values{AntiForgeryField: {"tok-2"}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: AntiForgeryCookie, Value: "tok-2"})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if !*called {
		t.Error("handler did not run for a matching form token")
	}
}

func TestRequireAntiForgery_Mismatch(t *testing.T) {
	next, called := okHandler()
	h := RequireAntiForgery(next)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.AddCookie(&http.Cookie{Name: AntiForgeryCookie, Value: "tok-3"})
	req.Header.Set("X-CSRF-Token", "forged")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusForbidden)
	}
	if *called {
		t.Error("handler ran with a mismatched token")
	}
}
