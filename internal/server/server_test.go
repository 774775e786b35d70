package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	siports "github.com/siportevent/siports"
	"github.com/siportevent/siports/internal/auth"
	"github.com/siportevent/siports/internal/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend mimics the SIPORTS API endpoints used by the dashboard
type fakeBackend struct {
	*httptest.Server
	role          atomic.Value // role returned by the login endpoint
	revoked       atomic.Bool  // when set, authenticated endpoints answer 401
	validated     atomic.Value // id of the last validated user
	contactBody   atomic.Value // last body posted to the contact endpoint
	rejectBody    atomic.Value // last body posted to the reject endpoint
	lastRequestID atomic.Value
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()

	b := &fakeBackend{}
	b.role.Store("admin")
	b.validated.Store("")
	b.contactBody.Store("")
	b.rejectBody.Store("")
	b.lastRequestID.Store("")

	writeJSON := func(w http.ResponseWriter, status int, body string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}

	requireToken := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if b.revoked.Load() || r.Header.Get("Authorization") != "Bearer backend-token" {
				writeJSON(w, http.StatusUnauthorized, `{"detail":"Token invalide ou expiré"}`)
				return
			}
			next(w, r)
		}
	}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b.lastRequestID.Store(r.Header.Get(client.RequestIDHeader))
			next.ServeHTTP(w, r)
		})
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"status":"healthy","service":"siports-api","version":"2.0.0"}`)
	})
	r.Get("/api/visitor-packages", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"packages":[{"id":"free","name":"Pass Gratuit","price":0,"features":["Accès exposition"]}]}`)
	})
	r.Get("/api/partner-packages", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"packages":[{"id":"gold","name":"Gold","price":50000,"currency":"USD","features":["Stand premium"]}]}`)
	})
	r.Get("/api/exposants", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"exposants":[
			{"id":1,"name":"Marsa Maroc","category":"Équipements","description":"Manutention portuaire"},
			{"id":2,"name":"Tanger Med","category":"Opérations Portuaires","description":"Terminal à conteneurs"}]}`)
	})
	r.Get("/api/exposants/{id}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") != "1" {
			writeJSON(w, http.StatusNotFound, `{"detail":"Exposant non trouvé"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"exposant":{"id":1,"name":"Marsa Maroc","category":"Équipements"}}`)
	})
	r.Get("/api/exhibitor/{id}/mini-site", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"detail":"Mini-site non trouvé"}`)
	})
	r.Post("/api/exhibitor/mini-site/contact", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		b.contactBody.Store(string(body))
		writeJSON(w, http.StatusOK, `{"message":"Message transmis","status":"success"}`)
	})
	r.Post("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req client.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "admin123" {
			writeJSON(w, http.StatusUnauthorized, `{"detail":"Invalid credentials"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"access_token":"backend-token","token_type":"bearer","user":{"id":1,"email":"`+req.Email+`","user_type":"`+b.role.Load().(string)+`"}}`)
	})
	r.Get("/api/admin/dashboard/stats", requireToken(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"total_users":42,"total_visitors":30,"total_exhibitors":10,"total_partners":2,"pending_accounts":1}`)
	}))
	r.Get("/api/admin/users/pending", requireToken(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"users":[{"id":7,"email":"new-exhibitor@example.com","first_name":"Nadia","user_type":"exhibitor","status":"pending"}]}`)
	}))
	r.Post("/api/admin/users/{id}/validate", requireToken(func(w http.ResponseWriter, r *http.Request) {
		b.validated.Store(chi.URLParam(r, "id"))
		writeJSON(w, http.StatusOK, `{"message":"Utilisateur validé","user_id":7,"action":"validated"}`)
	}))

	r.Post("/api/admin/users/{id}/reject", requireToken(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		b.rejectBody.Store(string(body))
		writeJSON(w, http.StatusOK, `{"message":"Utilisateur rejeté","action":"rejected"}`)
	}))

	b.Server = httptest.NewServer(r)
	t.Cleanup(b.Close)
	return b
}

func newTestServer(t *testing.T, backendURL string) http.Handler {
	t.Helper()

	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("API_BASE_URL", backendURL)
	t.Setenv("SESSION_SECRET", "test-secret-test-secret-test-secret")

	cfg, corsConfigs, err := siports.NewServerConfig()
	require.NoError(t, err)

	s, err := NewServer(cfg, corsConfigs, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return s.Router()
}

// noRedirects returns a client that reports redirects instead of following them
func noRedirects() *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// login posts the login form and returns the session cookie
func login(t *testing.T, dashboardURL, password string) (*http.Response, *http.Cookie) {
	t.Helper()

	form := url.Values{"email": {"admin@siports.com"}, "password": {password}}
	res, err := noRedirects().PostForm(dashboardURL+auth.LoginPath, form)
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Body.Close() })

	for _, c := range res.Cookies() {
		if c.Name == siports.SessionCookieName {
			return res, c
		}
	}
	return res, nil
}

func get(t *testing.T, rawURL string, cookie *http.Cookie) (*http.Response, string) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	require.NoError(t, err)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	res, err := noRedirects().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, string(body)
}

// post submits a form, optionally with the session cookie, without following redirects
func post(t *testing.T, rawURL string, cookie *http.Cookie, form url.Values) (*http.Response, string) {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	res, err := noRedirects().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, string(body)
}

func TestPublicPages(t *testing.T) {
	backend := newFakeBackend(t)
	dashboard := httptest.NewServer(newTestServer(t, backend.URL))
	defer dashboard.Close()

	t.Run("home shows backend status and packages", func(t *testing.T) {
		res, body := get(t, dashboard.URL+"/", nil)
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Contains(t, body, "healthy")
		assert.Contains(t, body, "Pass Gratuit")
		assert.Contains(t, body, "50000 USD")
		assert.NotEmpty(t, backend.lastRequestID.Load(), "the dashboard request id is forwarded to the backend")
	})

	t.Run("directory filter is accent insensitive", func(t *testing.T) {
		res, body := get(t, dashboard.URL+"/exhibitors?q=equipements", nil)
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Contains(t, body, "Marsa Maroc")
		assert.NotContains(t, body, "Tanger Med")
	})

	t.Run("exhibitor without mini-site", func(t *testing.T) {
		res, body := get(t, dashboard.URL+"/exhibitors/1", nil)
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Contains(t, body, "Marsa Maroc")
	})

	t.Run("unknown exhibitor shows the backend message", func(t *testing.T) {
		res, body := get(t, dashboard.URL+"/exhibitors/99", nil)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
		assert.Contains(t, body, "Exposant non trouvé")
	})

	t.Run("contact form", func(t *testing.T) {
		valid := url.Values{
			"name":    {"Amina"},
			"email":   {"amina@example.com"},
			"subject": {"Visite du stand"},
			"message": {"Êtes-vous disponibles le deuxième jour ?"},
		}

		tests := []struct {
			name       string
			form       func() url.Values
			wantStatus int
			wantBody   string
			wantSent   bool
		}{
			{
				name: "missing fields",
				form: func() url.Values {
					f := url.Values{"name": {"Amina"}}
					return f
				},
				wantStatus: http.StatusUnprocessableEntity,
				wantBody:   "Merci de renseigner votre nom",
			},
			{
				name: "invalid email",
				form: func() url.Values {
					f := url.Values{}
					for k, v := range valid {
						f[k] = v
					}
					f.Set("email", "not-an-email")
					return f
				},
				wantStatus: http.StatusUnprocessableEntity,
				wantBody:   "Adresse email invalide.",
			},
			{
				name:       "sent",
				form:       func() url.Values { return valid },
				wantStatus: http.StatusOK,
				wantBody:   "Message transmis",
				wantSent:   true,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				backend.contactBody.Store("")

				res, body := post(t, dashboard.URL+"/exhibitors/1/contact", nil, tt.form())
				assert.Equal(t, tt.wantStatus, res.StatusCode)
				assert.Contains(t, body, tt.wantBody)

				sent := backend.contactBody.Load().(string)
				if !tt.wantSent {
					assert.Empty(t, sent, "invalid forms are not sent to the backend")
					return
				}
				assert.JSONEq(t, `{"exhibitor_id":1,"name":"Amina","email":"amina@example.com","subject":"Visite du stand","message":"Êtes-vous disponibles le deuxième jour ?"}`, sent)
			})
		}
	})

	t.Run("security headers", func(t *testing.T) {
		res, _ := get(t, dashboard.URL+"/", nil)
		assert.Equal(t, "nosniff", res.Header.Get("X-Content-Type-Options"))
	})
}

func TestHealthEndpoints(t *testing.T) {
	backend := newFakeBackend(t)
	dashboard := httptest.NewServer(newTestServer(t, backend.URL))
	defer dashboard.Close()

	res, body := get(t, dashboard.URL+"/health/live", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, `"status":"ok"`)

	res, body = get(t, dashboard.URL+"/health/ready", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, `"status":"ready"`)

	backend.Close()

	res, body = get(t, dashboard.URL+"/health/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
	assert.Contains(t, body, "backend_unavailable")
}

func TestAdminAccess(t *testing.T) {
	backend := newFakeBackend(t)
	dashboard := httptest.NewServer(newTestServer(t, backend.URL))
	defer dashboard.Close()

	t.Run("anonymous users are sent to login", func(t *testing.T) {
		res, _ := get(t, dashboard.URL+"/admin", nil)
		assert.Equal(t, http.StatusSeeOther, res.StatusCode)
		assert.Equal(t, auth.LoginPath, res.Header.Get("Location"))
	})

	t.Run("wrong password shows the backend message", func(t *testing.T) {
		res, cookie := login(t, dashboard.URL, "wrong")
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
		assert.Nil(t, cookie)

		body, err := io.ReadAll(res.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "Invalid credentials")
	})

	t.Run("non admin accounts cannot sign in", func(t *testing.T) {
		backend.role.Store("exhibitor")
		defer backend.role.Store("admin")

		res, cookie := login(t, dashboard.URL, "admin123")
		assert.Equal(t, http.StatusForbidden, res.StatusCode)
		assert.Nil(t, cookie)
	})

	t.Run("admin sees stats and pending users", func(t *testing.T) {
		res, cookie := login(t, dashboard.URL, "admin123")
		require.Equal(t, http.StatusSeeOther, res.StatusCode)
		require.NotNil(t, cookie)
		assert.Equal(t, "/admin", res.Header.Get("Location"))

		res, body := get(t, dashboard.URL+"/admin", cookie)
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Contains(t, body, "<span>42</span>")
		assert.Contains(t, body, "<span>30</span>", "total_ prefixed counters are accepted")
		assert.Contains(t, body, "new-exhibitor@example.com")
	})

	t.Run("validate a pending user", func(t *testing.T) {
		_, cookie := login(t, dashboard.URL, "admin123")
		require.NotNil(t, cookie)

		req, err := http.NewRequest(http.MethodPost, dashboard.URL+"/admin/users/7/validate", nil)
		require.NoError(t, err)
		req.AddCookie(cookie)
		res, err := noRedirects().Do(req)
		require.NoError(t, err)
		defer res.Body.Close()

		assert.Equal(t, http.StatusSeeOther, res.StatusCode)
		assert.True(t, strings.HasPrefix(res.Header.Get("Location"), "/admin?notice="))
		assert.Equal(t, "7", backend.validated.Load())
	})

	t.Run("reject a pending user", func(t *testing.T) {
		_, cookie := login(t, dashboard.URL, "admin123")
		require.NotNil(t, cookie)

		backend.rejectBody.Store("")
		res, _ := post(t, dashboard.URL+"/admin/users/7/reject", cookie, url.Values{})
		assert.Equal(t, http.StatusSeeOther, res.StatusCode)
		assert.Contains(t, res.Header.Get("Location"), url.QueryEscape("Merci d'indiquer le motif du rejet."))
		assert.Empty(t, backend.rejectBody.Load(), "a reason is required before calling the backend")

		res, _ = post(t, dashboard.URL+"/admin/users/7/reject", cookie, url.Values{
			"reason":  {"Documents manquants"},
			"comment": {"KBIS absent"},
		})
		assert.Equal(t, http.StatusSeeOther, res.StatusCode)
		assert.Equal(t, "/admin?notice="+url.QueryEscape("Utilisateur rejeté"), res.Header.Get("Location"))
		assert.JSONEq(t, `{"raison":"Documents manquants","commentaire":"KBIS absent","admin_email":"admin@siports.com"}`, backend.rejectBody.Load().(string))
	})

	t.Run("backend 401 clears the session", func(t *testing.T) {
		_, cookie := login(t, dashboard.URL, "admin123")
		require.NotNil(t, cookie)

		backend.revoked.Store(true)
		defer backend.revoked.Store(false)

		res, _ := get(t, dashboard.URL+"/admin", cookie)
		assert.Equal(t, http.StatusSeeOther, res.StatusCode)
		assert.Equal(t, auth.LoginPath, res.Header.Get("Location"))

		var cleared bool
		for _, c := range res.Cookies() {
			if c.Name == siports.SessionCookieName && c.MaxAge < 0 {
				cleared = true
			}
		}
		assert.True(t, cleared, "the session cookie should be removed")
	})

	t.Run("logout", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, dashboard.URL+"/admin/logout", nil)
		require.NoError(t, err)
		res, err := noRedirects().Do(req)
		require.NoError(t, err)
		defer res.Body.Close()

		assert.Equal(t, http.StatusSeeOther, res.StatusCode)
		assert.Equal(t, auth.LoginPath, res.Header.Get("Location"))
	})
}

func TestLoginRateLimit(t *testing.T) {
	t.Setenv("LOGIN_RATE_LIMIT_RPS", "1")
	t.Setenv("LOGIN_RATE_LIMIT_BURST", "1")

	backend := newFakeBackend(t)
	dashboard := httptest.NewServer(newTestServer(t, backend.URL))
	defer dashboard.Close()

	form := url.Values{"email": {"admin@siports.com"}, "password": {"wrong"}}

	res, _ := post(t, dashboard.URL+auth.LoginPath, nil, form)
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, body := post(t, dashboard.URL+auth.LoginPath, nil, form)
	assert.Equal(t, http.StatusTooManyRequests, res.StatusCode)
	assert.Equal(t, "1", res.Header.Get("Retry-After"))
	assert.Contains(t, res.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, "Trop de tentatives de connexion")
	assert.Contains(t, body, `value="admin@siports.com"`, "the email is kept in the form")
}
