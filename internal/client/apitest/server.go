// Package apitest is an in-process stand-in for the stock advisor API. It
// keeps users in memory, issues real HS256 tokens and answers the same
// routes and error bodies the production API does, so client packages can
// test against it over HTTP.
package apitest

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/crypto/bcrypt"

	"github.com/trinhnguyen1810/stock-advisor-app/internal/common"
)

// TokenValidity is how long issued access tokens live.
const TokenValidity = time.Hour

type user struct {
	ID        int
	Name      string
	Email     string
	Hash      []byte
	CreatedAt time.Time
}

func (u user) dict() map[string]any {
	return map[string]any{
		"id":         u.ID,
		"name":       u.Name,
		"email":      u.Email,
		"created_at": u.CreatedAt.Format("2006-01-02T15:04:05"),
	}
}

type analysis struct {
	ID     int             `json:"id"`
	UserID int             `json:"-"`
	Symbol string          `json:"symbol"`
	Notes  string          `json:"notes"`
	Body   json.RawMessage `json:"data,omitempty"`
}

var popular = []map[string]string{
	{"symbol": "AAPL", "name": "Apple Inc."},
	{"symbol": "MSFT", "name": "Microsoft Corporation"},
	{"symbol": "AMZN", "name": "Amazon.com, Inc."},
	{"symbol": "GOOGL", "name": "Alphabet Inc."},
	{"symbol": "NVDA", "name": "NVIDIA Corporation"},
}

type Server struct {
	router *mux.Router
	now    func() time.Time

	mu       sync.Mutex
	secret   []byte
	users    map[string]*user
	nextUser int
	saved    []analysis
	nextSave int
	hits     map[string]int
	auths    []string
	forced   map[string]int
	holds    map[string]chan struct{}
}

func New() *Server {
	s := &Server{
		now:      time.Now,
		secret:   newSecret(),
		users:    make(map[string]*user),
		nextUser: 1,
		nextSave: 1,
		hits:     make(map[string]int),
		forced:   make(map[string]int),
		holds:    make(map[string]chan struct{}),
	}
	s.router = s.routes()
	return s
}

// Start serves s on a loopback httptest server; the caller closes it.
// Clients dial the server's URL plus "/api".
func (s *Server) Start() *httptest.Server {
	return httptest.NewServer(s.Handler())
}

// Handler is the instrumented router.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s, "stockadvisor-api")
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api")

	s.mu.Lock()
	s.hits[path]++
	s.auths = append(s.auths, r.Header.Get(common.AuthorizationHeaderName))
	status, forced := s.forced[path]
	hold := s.holds[path]
	s.mu.Unlock()

	if hold != nil {
		select {
		case <-hold:
		case <-r.Context().Done():
			return
		}
	}
	if forced {
		writeJSON(w, status, map[string]string{"message": http.StatusText(status)})
		return
	}
	s.router.ServeHTTP(w, r)
}

func newSecret() []byte {
	secret, err := common.MakeRandHexString(32)
	if err != nil {
		panic(err)
	}
	return []byte(secret)
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/register", s.register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.login).Methods(http.MethodPost)
	api.HandleFunc("/auth/me", s.protected(s.me)).Methods(http.MethodGet)

	api.HandleFunc("/stocks/popular", s.protected(s.popularStocks)).Methods(http.MethodGet)
	api.HandleFunc("/stocks/search", s.protected(s.searchStocks)).Methods(http.MethodGet)
	api.HandleFunc("/stocks/details/{symbol}", s.protected(s.echo("details"))).Methods(http.MethodGet)
	api.HandleFunc("/stocks/{symbol}", s.protected(s.stockData)).Methods(http.MethodGet)

	api.HandleFunc("/analysis/causal/{symbol}", s.protected(s.echo("causal"))).Methods(http.MethodGet)
	api.HandleFunc("/analysis/recommendation/{symbol}", s.protected(s.echo("recommendation"))).Methods(http.MethodGet)
	api.HandleFunc("/analysis/sector/{sector}", s.protected(s.echo("sector_analysis"))).Methods(http.MethodGet)
	api.HandleFunc("/analysis/save", s.protected(s.saveAnalysis)).Methods(http.MethodPost)
	api.HandleFunc("/analysis/saved", s.protected(s.savedAnalyses)).Methods(http.MethodGet)
	api.HandleFunc("/analysis/saved/{id}", s.protected(s.deleteAnalysis)).Methods(http.MethodDelete)
	api.HandleFunc("/analysis/notes/stock/{symbol}", s.protected(s.stockNotes)).Methods(http.MethodGet)
	api.HandleFunc("/analysis/notes/{id}", s.protected(s.updateNote)).Methods(http.MethodPut)

	api.HandleFunc("/news/market", s.protected(s.echo("market_news"))).Methods(http.MethodGet)
	api.HandleFunc("/news/sector/{sector}", s.protected(s.echo("sector_news"))).Methods(http.MethodGet)
	api.HandleFunc("/news/{symbol}", s.protected(s.echo("stock_news"))).Methods(http.MethodGet)

	return r
}

// ---- test controls ----

// AddUser registers a user directly and returns its id.
func (s *Server) AddUser(name, email, password string) int {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(name, email, hash)
}

func (s *Server) addUserLocked(name, email string, hash []byte) int {
	u := &user{ID: s.nextUser, Name: name, Email: email, Hash: hash, CreatedAt: s.now().UTC()}
	s.nextUser++
	s.users[strings.ToLower(email)] = u
	return u.ID
}

// IssueToken returns a valid access token for the user with email.
func (s *Server) IssueToken(email string) string {
	s.mu.Lock()
	u, ok := s.users[strings.ToLower(email)]
	secret := s.secret
	s.mu.Unlock()
	if !ok {
		return ""
	}
	tok, err := GenerateToken(u.ID, secret, TokenValidity, s.now())
	if err != nil {
		panic(err)
	}
	return tok
}

// RotateSecret invalidates every token issued so far.
func (s *Server) RotateSecret() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secret = newSecret()
}

// Force makes every request to path answer status until Unforce.
func (s *Server) Force(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forced[path] = status
}

func (s *Server) Unforce(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.forced, path)
}

// Hold parks requests to path until the returned func is called.
func (s *Server) Hold(path string) (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.holds[path] = ch
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.holds, path)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// Hits returns how many requests reached path (without the /api prefix).
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// TotalHits counts every request received.
func (s *Server) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, v := range s.hits {
		n += v
	}
	return n
}

// AuthorizationHeaders returns the Authorization header of every request
// in arrival order; "" marks a request without one.
func (s *Server) AuthorizationHeaders() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.auths...)
}

// ---- handlers ----

func (s *Server) protected(next func(http.ResponseWriter, *http.Request, *user)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get(common.AuthorizationHeaderName)
		tok, ok := strings.CutPrefix(h, "Bearer ")
		if !ok || tok == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Missing Authorization Header"})
			return
		}

		s.mu.Lock()
		secret := s.secret
		s.mu.Unlock()

		id, err := UserIDFromToken(tok, secret)
		if err != nil {
			msg := "Signature verification failed"
			if errors.Is(err, ErrTokenExpired) {
				msg = "Token has expired"
			}
			writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": msg})
			return
		}

		u := s.userByID(id)
		if u == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "User not found"})
			return
		}
		next(w, r, u)
	}
}

func (s *Server) userByID(id int) *user {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			cp := *u
			return &cp
		}
	}
	return nil
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" || req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Missing required fields"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Server error: " + err.Error()})
		return
	}

	s.mu.Lock()
	if _, exists := s.users[strings.ToLower(req.Email)]; exists {
		s.mu.Unlock()
		writeJSON(w, http.StatusConflict, map[string]string{"message": "User already exists"})
		return
	}
	s.addUserLocked(req.Name, req.Email, hash)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully"})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Missing email or password"})
		return
	}

	s.mu.Lock()
	u, ok := s.users[strings.ToLower(req.Email)]
	var cp user
	if ok {
		cp = *u
	}
	secret := s.secret
	s.mu.Unlock()

	if !ok || bcrypt.CompareHashAndPassword(cp.Hash, []byte(req.Password)) != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		return
	}

	access, err := GenerateToken(cp.ID, secret, TokenValidity, s.now())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Server error: " + err.Error()})
		return
	}
	refresh, err := GenerateToken(cp.ID, secret, 30*24*time.Hour, s.now())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Server error: " + err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":       "Login successful",
		"access_token":  access,
		"refresh_token": refresh,
		"user":          cp.dict(),
	})
}

func (s *Server) me(w http.ResponseWriter, _ *http.Request, u *user) {
	writeJSON(w, http.StatusOK, u.dict())
}

func (s *Server) popularStocks(w http.ResponseWriter, _ *http.Request, _ *user) {
	writeJSON(w, http.StatusOK, popular)
}

func (s *Server) searchStocks(w http.ResponseWriter, r *http.Request, _ *user) {
	q := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("q")))
	out := []map[string]string{}
	if q == "" {
		writeJSON(w, http.StatusOK, out)
		return
	}
	for _, p := range popular {
		if strings.Contains(p["symbol"], q) || strings.Contains(strings.ToUpper(p["name"]), q) {
			out = append(out, p)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) stockData(w http.ResponseWriter, r *http.Request, _ *user) {
	writeJSON(w, http.StatusOK, map[string]any{
		"symbol":    mux.Vars(r)["symbol"],
		"timeframe": r.URL.Query().Get("timeframe"),
		"data":      []any{},
	})
}

// echo answers with the route's variables under kind.
func (s *Server) echo(kind string) func(http.ResponseWriter, *http.Request, *user) {
	return func(w http.ResponseWriter, r *http.Request, _ *user) {
		writeJSON(w, http.StatusOK, map[string]any{"kind": kind, "params": mux.Vars(r)})
	}
}

func (s *Server) saveAnalysis(w http.ResponseWriter, r *http.Request, u *user) {
	var req struct {
		Symbol string `json:"symbol"`
		Notes  string `json:"notes"`
	}
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil || json.Unmarshal(raw, &req) != nil || req.Symbol == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Missing required fields"})
		return
	}

	s.mu.Lock()
	a := analysis{ID: s.nextSave, UserID: u.ID, Symbol: req.Symbol, Notes: req.Notes, Body: raw}
	s.nextSave++
	s.saved = append(s.saved, a)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{"message": "Analysis saved successfully", "id": a.ID})
}

func (s *Server) savedAnalyses(w http.ResponseWriter, _ *http.Request, u *user) {
	s.mu.Lock()
	out := []map[string]any{}
	for _, a := range s.saved {
		if a.UserID == u.ID {
			out = append(out, map[string]any{"id": strconv.Itoa(a.ID), "symbol": a.Symbol, "notes": a.Notes})
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) deleteAnalysis(w http.ResponseWriter, r *http.Request, u *user) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid analysis id"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.saved {
		if a.ID == id && a.UserID == u.ID {
			s.saved = append(s.saved[:i], s.saved[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Analysis deleted successfully"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Analysis not found"})
}

func (s *Server) stockNotes(w http.ResponseWriter, r *http.Request, u *user) {
	symbol := mux.Vars(r)["symbol"]
	s.mu.Lock()
	out := []map[string]any{}
	for _, a := range s.saved {
		if a.UserID == u.ID && strings.EqualFold(a.Symbol, symbol) {
			out = append(out, map[string]any{"id": a.ID, "notes": a.Notes})
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) updateNote(w http.ResponseWriter, r *http.Request, u *user) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid note id"})
		return
	}
	var req struct {
		Notes string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.saved {
		if s.saved[i].ID == id && s.saved[i].UserID == u.ID {
			s.saved[i].Notes = req.Notes
			writeJSON(w, http.StatusOK, map[string]string{"message": "Note updated"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Note not found"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
