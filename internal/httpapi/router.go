package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/example/talentflow/internal/metrics"
)

type RouterConfig struct {
	Jobs          *JobHandler
	Candidates    *CandidateHandler
	Assessments   *AssessmentHandler
	Auth          *AuthHandler
	Notifications *NotificationHandler

	Faults         *FaultInjector
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
	Health         http.HandlerFunc

	Middleware []func(http.Handler) http.Handler
}

// NewRouter assembles the full route table. Fault policies are chosen per
// route and method; the operational endpoints bypass injection entirely.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	instrument := func(route string, handler http.Handler) http.Handler {
		return RequestMetrics(cfg.Metrics, route)(handler)
	}

	if cfg.Auth != nil {
		mux.Handle("/api/auth/login", instrument("/api/auth/login", cfg.Faults.Wrap("/api/auth/login", PolicyAuth, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.Login(w, r)
		})))
		mux.Handle("/api/auth/signup", instrument("/api/auth/signup", cfg.Faults.Wrap("/api/auth/signup", PolicyAuth, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.Signup(w, r)
		})))
		mux.Handle("/api/auth/logout", instrument("/api/auth/logout", cfg.Faults.Wrap("/api/auth/logout", PolicyAuth, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.Logout(w, r)
		})))
	}

	if cfg.Jobs != nil {
		mux.Handle("/api/jobs", instrument("/api/jobs", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Faults.Wrap("/api/jobs", PolicyRead, cfg.Jobs.List)(w, r)
			case http.MethodPost:
				cfg.Faults.Wrap("/api/jobs", PolicyWrite, cfg.Jobs.Create)(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})))
		mux.Handle("/api/jobs/", instrument("/api/jobs/{id}", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, sub := splitResourcePath(r.URL.Path, "/api/jobs/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithJobID(r.Context(), id))

			switch {
			case sub == "reorder":
				if r.Method != http.MethodPatch {
					methodNotAllowed(w, http.MethodPatch)
					return
				}
				cfg.Faults.Wrap("/api/jobs/{id}/reorder", PolicyReorder, cfg.Jobs.Reorder)(w, r)
			case sub == "":
				switch r.Method {
				case http.MethodGet:
					cfg.Faults.Wrap("/api/jobs/{id}", PolicyRead, cfg.Jobs.Get)(w, r)
				case http.MethodPatch:
					cfg.Faults.Wrap("/api/jobs/{id}", PolicyWrite, cfg.Jobs.Update)(w, r)
				case http.MethodDelete:
					cfg.Faults.Wrap("/api/jobs/{id}", PolicyWrite, cfg.Jobs.Delete)(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPatch, http.MethodDelete)
				}
			default:
				http.NotFound(w, r)
			}
		})))
	}

	if cfg.Candidates != nil {
		mux.Handle("/api/candidates", instrument("/api/candidates", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Faults.Wrap("/api/candidates", PolicyRead, cfg.Candidates.List)(w, r)
			case http.MethodPost:
				cfg.Faults.Wrap("/api/candidates", PolicyWrite, cfg.Candidates.Create)(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})))
		mux.Handle("/api/candidates/", instrument("/api/candidates/{id}", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, sub := splitResourcePath(r.URL.Path, "/api/candidates/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithCandidateID(r.Context(), id))

			switch {
			case sub == "timeline":
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Faults.Wrap("/api/candidates/{id}/timeline", PolicyRead, cfg.Candidates.Timeline)(w, r)
			case sub == "notes":
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Faults.Wrap("/api/candidates/{id}/notes", PolicyWrite, cfg.Candidates.AddNote)(w, r)
			case sub == "":
				switch r.Method {
				case http.MethodGet:
					cfg.Faults.Wrap("/api/candidates/{id}", PolicyRead, cfg.Candidates.Get)(w, r)
				case http.MethodPatch:
					cfg.Faults.Wrap("/api/candidates/{id}", PolicyWrite, cfg.Candidates.Update)(w, r)
				case http.MethodDelete:
					cfg.Faults.Wrap("/api/candidates/{id}", PolicyWrite, cfg.Candidates.Delete)(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPatch, http.MethodDelete)
				}
			default:
				http.NotFound(w, r)
			}
		})))
	}

	if cfg.Assessments != nil {
		mux.Handle("/api/assessments/", instrument("/api/assessments/{jobId}", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			jobID, sub := splitResourcePath(r.URL.Path, "/api/assessments/")
			if jobID == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithJobID(r.Context(), jobID))

			switch {
			case sub == "submit":
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Faults.Wrap("/api/assessments/{jobId}/submit", PolicyWrite, cfg.Assessments.Submit)(w, r)
			case sub == "":
				switch r.Method {
				case http.MethodGet:
					cfg.Faults.Wrap("/api/assessments/{jobId}", PolicyRead, cfg.Assessments.Get)(w, r)
				case http.MethodPut:
					cfg.Faults.Wrap("/api/assessments/{jobId}", PolicyWrite, cfg.Assessments.Save)(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPut)
				}
			default:
				http.NotFound(w, r)
			}
		})))
	}

	if cfg.Notifications != nil {
		mux.Handle("/api/notifications", instrument("/api/notifications", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Faults.Wrap("/api/notifications", PolicyRead, cfg.Notifications.List)(w, r)
			case http.MethodPost:
				cfg.Faults.Wrap("/api/notifications", PolicyWrite, cfg.Notifications.Create)(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})))
		mux.Handle("/api/notifications/", instrument("/api/notifications/{id}", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, sub := splitResourcePath(r.URL.Path, "/api/notifications/")

			switch {
			case id == "mark-all-read" && sub == "":
				if r.Method != http.MethodPatch {
					methodNotAllowed(w, http.MethodPatch)
					return
				}
				cfg.Faults.Wrap("/api/notifications/mark-all-read", PolicyWrite, cfg.Notifications.MarkAllRead)(w, r)
			case id == "stats" && sub == "":
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Faults.Wrap("/api/notifications/stats", PolicyRead, cfg.Notifications.Stats)(w, r)
			case id != "" && sub == "read":
				if r.Method != http.MethodPatch {
					methodNotAllowed(w, http.MethodPatch)
					return
				}
				r = r.WithContext(ContextWithNotificationID(r.Context(), id))
				cfg.Faults.Wrap("/api/notifications/{id}/read", PolicyWrite, cfg.Notifications.MarkRead)(w, r)
			case id != "" && sub == "":
				if r.Method != http.MethodDelete {
					methodNotAllowed(w, http.MethodDelete)
					return
				}
				r = r.WithContext(ContextWithNotificationID(r.Context(), id))
				cfg.Faults.Wrap("/api/notifications/{id}", PolicyWrite, cfg.Notifications.Delete)(w, r)
			default:
				http.NotFound(w, r)
			}
		})))
	}

	if cfg.MetricsHandler != nil {
		mux.Handle("/metrics", cfg.MetricsHandler)
	}
	if cfg.Health != nil {
		mux.Handle("/healthz", instrument("/healthz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Health(w, r)
		})))
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

// splitResourcePath separates "/api/xxx/{id}[/sub]" into the id and the
// remaining sub-path segment.
func splitResourcePath(path, prefix string) (id, sub string) {
	rest := strings.TrimPrefix(path, prefix)
	rest = strings.TrimSuffix(rest, "/")
	if rest == "" {
		return "", ""
	}
	if idx := strings.Index(rest, "/"); idx >= 0 {
		return rest[:idx], rest[idx+1:]
	}
	return rest, ""
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusMethodNotAllowed)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Message: "the requested method is not allowed for this resource",
		Error:   "method_not_allowed",
	})
}
