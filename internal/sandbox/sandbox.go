// Package sandbox is an in-memory stand-in for the booking backend. It
// speaks the same routes and payloads, keeps everything in memory and is
// used by the client tests and by "sitecrew sandbox".
package sandbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/emilianohg/sitecrew/internal/logger"
)

const (
	sessionCookie = "session"
	tokenTTL      = 12 * time.Hour
)

type ctxKey int8

const ctxKeyUser ctxKey = iota

type Server struct {
	db     *store
	secret []byte
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]int64
}

// New returns a sandbox loaded with the demo data. Every seeded account
// uses the password "password".
func New() *Server {
	s := &Server{
		db:       &store{},
		secret:   uuid.Must(uuid.NewV4()).Bytes(),
		now:      time.Now,
		sessions: make(map[string]int64),
	}
	s.seed()
	return s
}

func (s *Server) Router() http.Handler {
	mux := chi.NewRouter()
	mux.Use(s.logRequests, s.recoverPanics)

	mux.Route("/api", func(r chi.Router) {
		r.Post("/register", s.register)
		r.Post("/login", s.login)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Post("/logout", s.logout)
			r.Get("/dashboard", s.dashboard)
			r.Get("/users", s.listUsers)
			r.Get("/employees", s.listEmployees)
			r.Get("/projects", s.listProjects)
			r.Get("/assignments", s.listAssignments)
			r.Get("/employee/tasks", s.employeeTasks)
			r.Put("/assignments/{id}/status", s.setAssignmentStatus)

			r.Get("/bookings", s.listBookings)
			r.Get("/bookings/mine", s.myBookings)
			r.Post("/bookings", s.createBooking)
			r.Post("/bookings/check_conflict", s.checkConflict)
			r.Put("/bookings/{id}", s.updateOwnBooking)
			r.Delete("/bookings/{id}", s.deleteOwnBooking)
			r.Post("/bookings/{id}/cancel", s.cancelBooking)

			r.Group(func(r chi.Router) {
				r.Use(s.requireRole("admin", "manager"))

				r.Post("/projects", s.createProject)
				r.Put("/projects/{id}", s.updateProject)
				r.Delete("/projects/{id}", s.deleteProject)

				r.Get("/assignments/all", s.allAssignments)
				r.Post("/assignments", s.createAssignment)
				r.Put("/assignments/{id}", s.updateAssignment)
				r.Delete("/assignments/{id}", s.deleteAssignment)

				r.Put("/admin/bookings/{id}", s.adminUpdateBooking)
			})

			r.Group(func(r chi.Router) {
				r.Use(s.requireRole("admin"))

				r.Get("/admin/users", s.listUsers)
				r.Post("/admin/user", s.createUser)
				r.Put("/admin/user/{id}", s.updateUser)
				r.Delete("/admin/user/{id}", s.deleteUser)

				r.Post("/employees", s.createEmployee)
				r.Put("/employees/{id}", s.updateEmployee)
				r.Delete("/employees/{id}", s.deleteEmployee)

				r.Get("/sites", s.listSites)
				r.Post("/sites", s.createSite)
				r.Put("/sites/{id}", s.updateSite)
				r.Delete("/sites/{id}", s.deleteSite)

				r.Get("/admin/bookings", s.adminBookings)
				r.Post("/admin/bookings", s.adminCreateBooking)
				r.Delete("/admin/bookings/{id}", s.adminDeleteBooking)

				r.Get("/reports/utilization", s.reportUtilization)
				r.Get("/reports/labour_cost_by_project", s.reportLabourCost)
				r.Get("/reports/attendance_summary", s.reportAttendance)
				r.Get("/reports/cert_expiry", s.reportCertExpiry)

				r.Get("/payroll/calculate", s.payrollCalculate)
				r.Get("/payroll/export", s.payrollExport)
			})
		})
	})

	return mux
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.Must(uuid.NewV4()).String()
		}

		ctx = logger.WithRequestID(ctx, requestID)
		w.Header().Set("X-Request-Id", requestID)

		slog.DebugContext(ctx, "sandbox request", "request", fmt.Sprintf("%s %s", r.Method, r.URL.Redacted()))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		defer func() {
			if err := recover(); err != nil {
				slog.ErrorContext(ctx, "recovered from panic", "error", err, "stack", string(debug.Stack()))
				sendErr(ctx, w, http.StatusInternalServerError, "Internal error")
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// authenticate accepts the session cookie or a bearer token.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, ok := s.sessionUser(r)
		if !ok {
			sendErr(ctx, w, http.StatusUnauthorized, "Not logged in")
			return
		}

		s.db.mu.Lock()
		user := s.db.users.find(userID)
		if user != nil {
			user = user.clone()
		}
		s.db.mu.Unlock()

		if user == nil {
			sendErr(ctx, w, http.StatusUnauthorized, "Not logged in")
			return
		}

		ctx = context.WithValue(ctx, ctxKeyUser, user)
		ctx = logger.WithUserID(ctx, userID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) sessionUser(r *http.Request) (int64, bool) {
	if ck, err := r.Cookie(sessionCookie); err == nil {
		s.mu.Lock()
		id, ok := s.sessions[ck.Value]
		s.mu.Unlock()
		if ok {
			return id, true
		}
	}

	raw, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !found || raw == "" {
		return 0, false
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return 0, false
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	return id, err == nil
}

func (s *Server) requireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := currentUser(r.Context()).str("role")
			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}
			sendErr(r.Context(), w, http.StatusForbidden, "Access denied")
		})
	}
}

func currentUser(ctx context.Context) record {
	u, _ := ctx.Value(ctxKeyUser).(record)
	return u
}

func (s *Server) issueToken(userID int64, role string) (string, error) {
	now := s.now()
	claims := struct {
		Role string `json:"role"`
		jwt.RegisteredClaims
	}{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func sendJSON(ctx context.Context, w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.ErrorContext(ctx, "encode response", "error", err)
	}
}

func sendErr(ctx context.Context, w http.ResponseWriter, code int, msg string) {
	sendJSON(ctx, w, code, map[string]string{"msg": msg})
}

func sendMsg(ctx context.Context, w http.ResponseWriter, msg string) {
	sendJSON(ctx, w, http.StatusOK, map[string]string{"msg": msg})
}

func readBody(r *http.Request) (record, error) {
	data := record{}

	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&data); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if data == nil {
		data = record{}
	}
	return data, nil
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}
