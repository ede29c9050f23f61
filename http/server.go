package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/fwojciec/cartex"
	"github.com/fwojciec/cartex/capture"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// ClientHeader identifies the client whose link a request belongs to.
const ClientHeader = "X-Client-ID"

// maxRequestBytes caps JSON request bodies.
const maxRequestBytes = 1 << 20

// Server exposes the capture router and the cart over HTTP.
// It stores one capture.Link per client, keyed by ClientHeader. Requests
// from the same client are handled one at a time. Clients whose link is
// dead are forgotten, since an unknown client starts disconnected anyway.
type Server struct {
	router  *capture.Router
	cart    cartex.CartService
	metrics http.Handler
	logger  *slog.Logger

	mu     sync.Mutex
	links  map[string]*client
	pruned time.Time
}

type client struct {
	mu      sync.Mutex
	link    capture.Link
	removed bool
}

// NewServer creates a new Server. metrics may be nil.
func NewServer(router *capture.Router, cart cartex.CartService, metrics http.Handler, logger *slog.Logger) *Server {
	return &Server{
		router:  router,
		cart:    cart,
		metrics: metrics,
		logger:  logger,
		links:   make(map[string]*client),
	}
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/connect", s.handleConnect)
	r.Get("/ping", s.handlePing)
	r.Post("/capture", s.handleCapture)

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", s.handleListCart)
		r.Post("/", s.handleAddToCart)
		r.Delete("/", s.handleClearCart)
		r.Delete("/{id}", s.handleDeleteItem)
	})

	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return r
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, capture.Request{Type: capture.TypeConnect})
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, capture.Request{Type: capture.TypePing})
}

func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	var req capture.Request
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	req.Type = capture.TypeCapture
	s.dispatch(w, r, req)
}

// dispatch routes req for the requesting client and stores its next link.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, req capture.Request) {
	if req.ID == "" {
		req.ID = middleware.GetReqID(r.Context())
	}
	id := r.Header.Get(ClientHeader)

	var resp capture.Response
	for {
		c := s.client(id)
		c.mu.Lock()
		if c.removed {
			c.mu.Unlock()
			continue
		}
		c.link, resp = s.router.Handle(r.Context(), s.router.Expire(c.link), req)
		alive := c.link.Alive
		c.mu.Unlock()

		if !alive {
			s.forget(id, c)
		}
		break
	}

	if time.Since(s.lastPruned()) >= capture.KeepaliveInterval {
		s.Prune()
	}
	writeJSON(w, responseStatus(resp), resp)
}

func (s *Server) client(id string) *client {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.links[id]
	if !ok {
		c = &client{}
		s.links[id] = c
	}
	return c
}

// forget removes c if its link is still dead once it can be locked.
func (s *Server) forget(id string, c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.links[id] != c || !c.mu.TryLock() {
		return
	}
	defer c.mu.Unlock()
	if !c.link.Alive {
		c.removed = true
		delete(s.links, id)
	}
}

func (s *Server) lastPruned() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pruned
}

// Prune expires idle links and forgets clients whose link is dead.
// Clients with a request in flight are skipped.
func (s *Server) Prune() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruned = time.Now()
	for id, c := range s.links {
		if !c.mu.TryLock() {
			continue
		}
		c.link = s.router.Expire(c.link)
		if !c.link.Alive {
			c.removed = true
			delete(s.links, id)
		}
		c.mu.Unlock()
	}
}

// Clients returns the number of clients with a stored link.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.links)
}

type cartResponse struct {
	Items     []*cartex.CartItem `json:"items"`
	Subtotals []string           `json:"subtotals"`
}

func (s *Server) handleListCart(w http.ResponseWriter, r *http.Request) {
	items, err := s.cart.FindItems(r.Context(), cartex.CartFilter{})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := cartResponse{Items: items, Subtotals: []string{}}
	if resp.Items == nil {
		resp.Items = []*cartex.CartItem{}
	}
	for _, p := range cartex.Subtotals(items) {
		resp.Subtotals = append(resp.Subtotals, p.String())
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	var result cartex.Result
	if err := decodeJSON(w, r, &result); err != nil {
		s.writeError(w, r, err)
		return
	}
	item := cartex.NewCartItem(&result)
	if err := s.cart.AddItem(r.Context(), item); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	if err := s.cart.ClearItems(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := s.cart.DeleteItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeError writes err as JSON with the status matching its code.
// Internal errors are logged and reported without detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, message := cartex.ErrorCode(err), cartex.ErrorMessage(err)
	if code == cartex.EINTERNAL && s.logger != nil {
		s.logger.Error("http error",
			"method", r.Method,
			"path", r.URL.Path,
			"err", err,
		)
	}
	writeJSON(w, ErrorStatusCode(code), map[string]string{"code": code, "error": message})
}

var codes = map[string]int{
	cartex.ECONFLICT:     http.StatusConflict,
	cartex.EINVALID:      http.StatusBadRequest,
	cartex.ENOTFOUND:     http.StatusNotFound,
	cartex.ETIMEOUT:      http.StatusGatewayTimeout,
	cartex.EDISCONNECTED: http.StatusConflict,
	cartex.EINTERNAL:     http.StatusInternalServerError,
}

// ErrorStatusCode returns the HTTP status for an application error code.
func ErrorStatusCode(code string) int {
	if v, ok := codes[code]; ok {
		return v
	}
	return http.StatusInternalServerError
}

func responseStatus(resp capture.Response) int {
	switch resp.Code {
	case "":
		return http.StatusOK
	case capture.CodeInvalidURL, capture.CodeInvalidRequest:
		return http.StatusBadRequest
	case capture.CodeTimeout:
		return http.StatusGatewayTimeout
	case capture.CodeDisconnected:
		return http.StatusConflict
	}
	return http.StatusBadGateway
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(v); err != nil {
		return cartex.Errorf(cartex.EINVALID, "invalid JSON body: %v", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
