package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"successplan/internal/app"
	"successplan/internal/codec"
	"successplan/internal/domain"
	"successplan/internal/logger"
	"successplan/internal/report"
	"successplan/internal/share"
	"successplan/internal/viewmode"
)

// Config for the HTTP API handler.
type Config struct {
	State    *app.State
	BasePath string
	// PublicURL prefixes generated share links, e.g. https://plans.example.com.
	PublicURL string
	Share     share.Issuer
	Gatherer  prometheus.Gatherer
	Log       *logger.Logger
}

type apiErrorBody struct {
	Code    string         `json:"code" example:"not_found"`
	Message string         `json:"message" example:"objective 7: not found"`
	Details map[string]any `json:"details,omitempty" jsonschema:"type=object,additionalProperties=true"`
}

// apiError models the error envelope.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

type body[T any] struct {
	Body T
}

// New returns an HTTP handler exposing the success plan API.
func New(cfg Config) (http.Handler, error) {
	if cfg.State == nil {
		return nil, errors.New("server: state is required")
	}
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/v0"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	if cfg.Log == nil {
		cfg.Log = logger.Nop()
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}
	huma.DefaultArrayNullable = false
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, "", msg, nil)
	}
	huma.NewErrorWithContext = func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		if status == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(msg), "validation") {
			status = http.StatusBadRequest
		}
		var details map[string]any
		if len(errs) > 0 {
			details = map[string]any{"errors": errs}
		}
		return newAPIError(status, "", msg, details)
	}

	router := chi.NewRouter()
	router.Use(requestLogger(cfg.Log.With("component", "http")))
	router.Use(newExternalMiddleware(basePath, cfg.Share))
	hcfg := huma.DefaultConfig("Success Plan API", "0.1.0")
	hcfg.OpenAPIPath = ""
	hcfg.DocsPath = ""
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	st := cfg.State
	registerDocs(router, basePath)
	registerHealth(group)
	registerPlan(group, st)
	registerObjectives(group, st)
	registerStakeholders(group, st)
	registerRisks(group, st)
	registerTransfer(group, st)
	registerReport(group, st)
	registerView(group, st)
	registerShare(group, st, cfg.Share, strings.TrimRight(cfg.PublicURL, "/")+basePath)
	registerExternal(group, st)
	registerOpenAPI(router, api, basePath)
	router.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))

	return router, nil
}

func requestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Debug("request", "method", r.Method, "path", r.URL.Path, "status", ww.Status(), "duration", time.Since(start))
		})
	}
}

func newAPIError(status int, code, message string, details map[string]any) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{
		status: status,
		Body: apiErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

func handleError(err error) huma.StatusError {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case errors.Is(err, viewmode.ErrReadOnly):
		return newAPIError(http.StatusForbidden, "read_only", msg, nil)
	case errors.Is(err, app.ErrNoPlan):
		return newAPIError(http.StatusNotFound, "not_found", msg, map[string]any{"resource": "plan"})
	case errors.Is(err, app.ErrNotFound):
		return newAPIError(http.StatusNotFound, "not_found", msg, nil)
	case errors.Is(err, app.ErrConflict):
		return newAPIError(http.StatusConflict, "conflict", msg, nil)
	case errors.Is(err, codec.ErrShapeMismatch):
		return newAPIError(http.StatusBadRequest, "shape_mismatch", msg, nil)
	case errors.Is(err, codec.ErrUnsupportedVersion):
		return newAPIError(http.StatusBadRequest, "unsupported_version", msg, nil)
	case errors.Is(err, codec.ErrParse), errors.Is(err, app.ErrInvalid):
		return newAPIError(http.StatusBadRequest, "bad_request", msg, nil)
	case errors.Is(err, share.ErrNoSecret):
		return newAPIError(http.StatusBadRequest, "share_disabled", msg, nil)
	case errors.Is(err, share.ErrInvalidToken):
		return newAPIError(http.StatusUnauthorized, "invalid_token", msg, nil)
	default:
		return newAPIError(http.StatusInternalServerError, "internal_error", "internal error", map[string]any{"error": msg})
	}
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnprocessableEntity:
		return "validation_failed"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}

func registerDocs(r chi.Router, basePath string) {
	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, swaggerHTML(basePath))
	})
}

func registerOpenAPI(r chi.Router, api huma.API, basePath string) {
	var (
		once sync.Once
		spec []byte
	)
	specPath := path.Join(basePath, "openapi.json")
	r.Get(specPath, func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() {
			oas := api.OpenAPI()
			ensureDefaultErrorResponses(oas)
			applyShareSecurity(oas, basePath)
			spec, _ = json.Marshal(oas)
		})
		w.Header().Set("Content-Type", "application/json")
		w.Write(spec)
	})
}

func ensureDefaultErrorResponses(oas *huma.OpenAPI) {
	if oas == nil || oas.Paths == nil {
		return
	}
	for _, item := range oas.Paths {
		for _, op := range []*huma.Operation{
			item.Get, item.Put, item.Post, item.Delete, item.Options, item.Head, item.Patch, item.Trace,
		} {
			if op == nil {
				continue
			}
			if op.Responses == nil {
				op.Responses = map[string]*huma.Response{}
			}
			op.Responses["default"] = &huma.Response{
				Description: "Error",
				Content: map[string]*huma.MediaType{
					"application/json": {
						Schema: &huma.Schema{Ref: "#/components/schemas/ApiError"},
					},
				},
			}
		}
	}
}

// applyShareSecurity documents the share token on the external routes only.
func applyShareSecurity(oas *huma.OpenAPI, basePath string) {
	if oas == nil {
		return
	}
	if oas.Components == nil {
		oas.Components = &huma.Components{}
	}
	if oas.Components.SecuritySchemes == nil {
		oas.Components.SecuritySchemes = map[string]*huma.SecurityScheme{}
	}
	oas.Components.SecuritySchemes["shareToken"] = &huma.SecurityScheme{
		Type: "apiKey",
		In:   "query",
		Name: "token",
	}
	external := path.Join(basePath, "external") + "/"
	for route, item := range oas.Paths {
		if !strings.HasPrefix(route, external) {
			continue
		}
		if item.Get != nil {
			item.Get.Security = []map[string][]string{{"shareToken": {}}}
		}
	}
}

func swaggerHTML(basePath string) string {
	specURL := path.Join("/", path.Join(basePath, "openapi.json"))
	return fmt.Sprintf(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Success Plan API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" crossorigin></script>
    <script>
      window.onload = () => {
        SwaggerUIBundle({
          url: '%s',
          dom_id: '#swagger-ui'
        });
      };
    </script>
  </body>
</html>`, specURL)
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*body[map[string]string], error) {
		return &body[map[string]string]{Body: map[string]string{"status": "ok"}}, nil
	})
}

func residentPlan(st *app.State) (*domain.SuccessPlan, error) {
	p := st.Plan()
	if p == nil {
		return nil, app.ErrNoPlan
	}
	return p, nil
}

func registerPlan(api huma.API, st *app.State) {
	huma.Register(api, huma.Operation{
		OperationID: "get-plan",
		Method:      http.MethodGet,
		Path:        "/plan",
		Summary:     "Get the success plan",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, _ *struct{}) (*body[*domain.SuccessPlan], error) {
		p, err := residentPlan(st)
		if err != nil {
			return nil, handleError(err)
		}
		return &body[*domain.SuccessPlan]{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "patch-plan",
		Method:      http.MethodPatch,
		Path:        "/plan",
		Summary:     "Update plan fields",
		Errors:      []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound},
	}, func(ctx context.Context, input *body[domain.PlanPatch]) (*body[domain.SuccessPlan], error) {
		p, err := st.PatchPlan(ctx, input.Body)
		if err != nil {
			return nil, handleError(err)
		}
		return &body[domain.SuccessPlan]{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-plan-health",
		Method:      http.MethodPut,
		Path:        "/plan/health",
		Summary:     "Set plan health",
		Errors:      []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound},
	}, func(ctx context.Context, input *body[SetHealthRequest]) (*body[domain.SuccessPlan], error) {
		p, err := st.SetHealth(ctx, input.Body.Health)
		if err != nil {
			return nil, handleError(err)
		}
		return &body[domain.SuccessPlan]{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "reset-plan",
		Method:      http.MethodPost,
		Path:        "/plan/reset",
		Summary:     "Replace the plan with the seed plan",
		Errors:      []int{http.StatusForbidden},
	}, func(ctx context.Context, _ *struct{}) (*body[domain.SuccessPlan], error) {
		p, err := st.Reset(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &body[domain.SuccessPlan]{Body: p}, nil
	})
}

func registerObjectives(api huma.API, st *app.State) {
	huma.Register(api, huma.Operation{
		OperationID: "list-objectives",
		Method:      http.MethodGet,
		Path:        "/objectives",
		Summary:     "List active objectives",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		Search string `query:"search"`
		Owner  string `query:"owner"`
		Status string `query:"status"`
	}) (*body[ObjectiveList], error) {
		all, err := st.Objectives(domain.ObjectiveFilter{})
		if err != nil {
			return nil, handleError(err)
		}
		filtered := domain.FilterObjectives(all, domain.ObjectiveFilter{
			Search: input.Search,
			Owner:  input.Owner,
			Status: domain.Status(input.Status),
		})
		return &body[ObjectiveList]{Body: ObjectiveList{Objectives: filtered, Owners: domain.Owners(all)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-objective",
		Method:        http.MethodPost,
		Path:          "/objectives",
		Summary:       "Add an objective",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *body[CreateObjectiveRequest]) (*body[domain.Objective], error) {
		o, err := st.AddObjective(ctx, input.Body.objective())
		if err != nil {
			return nil, handleError(err)
		}
		return &body[domain.Objective]{Body: o}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-objective",
		Method:      http.MethodPatch,
		Path:        "/objectives/{id}",
		Summary:     "Update an active objective",
		Errors:      []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   string `path:"id"`
		Body domain.ObjectivePatch
	}) (*body[domain.Objective], error) {
		o, err := st.UpdateObjective(ctx, input.ID, input.Body)
		if err != nil {
			return nil, handleError(err)
		}
		return &body[domain.Objective]{Body: o}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-objective",
		Method:        http.MethodDelete,
		Path:          "/objectives/{id}",
		Summary:       "Delete an active objective",
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusForbidden, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct{}, error) {
		if err := st.DeleteObjective(ctx, input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "complete-objective",
		Method:      http.MethodPost,
		Path:        "/objectives/{id}/complete",
		Summary:     "Move an objective to completed",
		Errors:      []int{http.StatusForbidden, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*body[domain.Objective], error) {
		o, err := st.CompleteObjective(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &body[domain.Objective]{Body: o}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "advance-objective",
		Method:      http.MethodPost,
		Path:        "/objectives/{id}/advance",
		Summary:     "Move objective progress by a step",
		Errors:      []int{http.StatusForbidden, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   string `path:"id"`
		Body AdvanceObjectiveRequest
	}) (*body[domain.Objective], error) {
		o, err := st.AdvanceObjective(ctx, input.ID, input.Body.Step)
		if err != nil {
			return nil, handleError(err)
		}
		return &body[domain.Objective]{Body: o}, nil
	})
}

func registerStakeholders(api huma.API, st *app.State) {
	huma.Register(api, huma.Operation{
		OperationID: "list-stakeholders",
		Method:      http.MethodGet,
		Path:        "/stakeholders",
		Summary:     "List stakeholders",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, _ *struct{}) (*body[StakeholderList], error) {
		p, err := residentPlan(st)
		if err != nil {
			return nil, handleError(err)
		}
		return &body[StakeholderList]{Body: StakeholderList{Stakeholders: p.Stakeholders}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-stakeholder",
		Method:        http.MethodPost,
		Path:          "/stakeholders",
		Summary:       "Add a stakeholder",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *body[CreateStakeholderRequest]) (*body[domain.Stakeholder], error) {
		s, err := st.AddStakeholder(ctx, input.Body.stakeholder())
		if err != nil {
			return nil, handleError(err)
		}
		return &body[domain.Stakeholder]{Body: s}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-stakeholder",
		Method:      http.MethodPatch,
		Path:        "/stakeholders/{id}",
		Summary:     "Update a stakeholder",
		Errors:      []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   string `path:"id"`
		Body domain.StakeholderPatch
	}) (*body[domain.Stakeholder], error) {
		s, err := st.UpdateStakeholder(ctx, input.ID, input.Body)
		if err != nil {
			return nil, handleError(err)
		}
		return &body[domain.Stakeholder]{Body: s}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-stakeholder",
		Method:        http.MethodDelete,
		Path:          "/stakeholders/{id}",
		Summary:       "Delete a stakeholder",
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusForbidden, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct{}, error) {
		if err := st.DeleteStakeholder(ctx, input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerRisks(api huma.API, st *app.State) {
	huma.Register(api, huma.Operation{
		OperationID: "list-risks",
		Method:      http.MethodGet,
		Path:        "/risks",
		Summary:     "List risks",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, _ *struct{}) (*body[RiskList], error) {
		p, err := residentPlan(st)
		if err != nil {
			return nil, handleError(err)
		}
		return &body[RiskList]{Body: RiskList{Risks: p.Risks}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-risk",
		Method:        http.MethodPost,
		Path:          "/risks",
		Summary:       "Add a risk",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *body[CreateRiskRequest]) (*body[domain.Risk], error) {
		r, err := st.AddRisk(ctx, input.Body.risk())
		if err != nil {
			return nil, handleError(err)
		}
		return &body[domain.Risk]{Body: r}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-risk",
		Method:      http.MethodPatch,
		Path:        "/risks/{id}",
		Summary:     "Update a risk",
		Errors:      []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   string `path:"id"`
		Body domain.RiskPatch
	}) (*body[domain.Risk], error) {
		r, err := st.UpdateRisk(ctx, input.ID, input.Body)
		if err != nil {
			return nil, handleError(err)
		}
		return &body[domain.Risk]{Body: r}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-risk",
		Method:        http.MethodDelete,
		Path:          "/risks/{id}",
		Summary:       "Delete a risk",
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusForbidden, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct{}, error) {
		if err := st.DeleteRisk(ctx, input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

type fileOutput struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

func contentType(f codec.Format) string {
	if f == codec.FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

func registerTransfer(api huma.API, st *app.State) {
	huma.Register(api, huma.Operation{
		OperationID: "export-plan",
		Method:      http.MethodGet,
		Path:        "/export",
		Summary:     "Download the plan as JSON or YAML",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Format string `query:"format"`
	}) (*fileOutput, error) {
		f, err := codec.ParseFormat(input.Format)
		if err != nil {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", err.Error(), nil)
		}
		data, name, err := st.Export(f)
		if err != nil {
			return nil, handleError(err)
		}
		return &fileOutput{
			ContentType:        contentType(f),
			ContentDisposition: fmt.Sprintf("attachment; filename=%q", name),
			Body:               data,
		}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "import-plan",
		Method:      http.MethodPost,
		Path:        "/import",
		Summary:     "Replace the plan with an exported document",
		Errors:      []int{http.StatusBadRequest, http.StatusForbidden},
	}, func(ctx context.Context, input *struct {
		Format      string `query:"format"`
		ContentType string `header:"Content-Type"`
		RawBody     []byte
	}) (*body[domain.SuccessPlan], error) {
		format := input.Format
		if format == "" && strings.Contains(strings.ToLower(input.ContentType), "yaml") {
			format = "yaml"
		}
		f, err := codec.ParseFormat(format)
		if err != nil {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", err.Error(), nil)
		}
		p, err := st.Import(ctx, input.RawBody, f)
		if err != nil {
			return nil, handleError(err)
		}
		return &body[domain.SuccessPlan]{Body: p}, nil
	})
}

func registerReport(api huma.API, st *app.State) {
	huma.Register(api, huma.Operation{
		OperationID: "build-report",
		Method:      http.MethodPost,
		Path:        "/report",
		Summary:     "Select report content",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *body[ReportRequest]) (*body[ReportResponse], error) {
		res, err := buildReport(st, input.Body.config())
		if err != nil {
			return nil, handleError(err)
		}
		return &body[ReportResponse]{Body: res}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "mark-report-exported",
		Method:      http.MethodPost,
		Path:        "/report/exported",
		Summary:     "Record a finished report export",
		Errors:      []int{http.StatusForbidden, http.StatusNotFound},
	}, func(ctx context.Context, input *body[ReportExportedRequest]) (*body[domain.SuccessPlan], error) {
		preset := input.Body.Preset
		if preset == "" {
			preset = domain.PresetQBR
		}
		p, err := st.MarkExported(ctx, preset)
		if err != nil {
			return nil, handleError(err)
		}
		return &body[domain.SuccessPlan]{Body: p}, nil
	})
}

func buildReport(st *app.State, cfg domain.ReportConfig) (ReportResponse, error) {
	blocks, err := st.Report(cfg)
	if err != nil {
		return ReportResponse{}, err
	}
	return ReportResponse{Filename: report.Filename(st.Plan()), Config: cfg, Blocks: blocks}, nil
}

func registerView(api huma.API, st *app.State) {
	huma.Register(api, huma.Operation{
		OperationID: "get-view",
		Method:      http.MethodGet,
		Path:        "/view",
		Summary:     "Current view mode",
	}, func(ctx context.Context, _ *struct{}) (*body[ViewResponse], error) {
		return &body[ViewResponse]{Body: ViewResponse{External: st.Gate().External()}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "toggle-view",
		Method:      http.MethodPost,
		Path:        "/view/toggle",
		Summary:     "Switch between internal and external view",
	}, func(ctx context.Context, _ *struct{}) (*body[ViewResponse], error) {
		return &body[ViewResponse]{Body: ViewResponse{External: st.Gate().Toggle()}}, nil
	})
}

func registerShare(api huma.API, st *app.State, issuer share.Issuer, defaultBase string) {
	huma.Register(api, huma.Operation{
		OperationID: "create-share-link",
		Method:      http.MethodPost,
		Path:        "/share",
		Summary:     "Issue a read-only link to the plan",
		Errors:      []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound},
	}, func(ctx context.Context, input *body[ShareRequest]) (*body[ShareResponse], error) {
		if st.Gate().External() || viewmode.IsReadOnly(ctx) {
			return nil, handleError(viewmode.ErrReadOnly)
		}
		p, err := residentPlan(st)
		if err != nil {
			return nil, handleError(err)
		}
		token, exp, err := issuer.Issue(p.ID)
		if err != nil {
			return nil, handleError(err)
		}
		base := input.Body.BaseURL
		if base == "" {
			base = defaultBase
		}
		return &body[ShareResponse]{Body: ShareResponse{
			Token:     token,
			URL:       share.Link(base, p.ID, token),
			ExpiresAt: exp.UTC(),
		}}, nil
	})
}

func registerExternal(api huma.API, st *app.State) {
	type externalPath struct {
		ID    string `path:"id"`
		Token string `query:"token"`
	}
	huma.Register(api, huma.Operation{
		OperationID: "external-plan",
		Method:      http.MethodGet,
		Path:        "/external/{id}",
		Summary:     "Read-only plan view",
		Errors:      []int{http.StatusUnauthorized, http.StatusNotFound},
	}, func(ctx context.Context, input *externalPath) (*body[*domain.SuccessPlan], error) {
		p, err := residentPlan(st)
		if err != nil {
			return nil, handleError(err)
		}
		return &body[*domain.SuccessPlan]{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "external-report",
		Method:      http.MethodGet,
		Path:        "/external/{id}/report",
		Summary:     "Redacted report content for the read-only view",
		Errors:      []int{http.StatusUnauthorized, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID     string `path:"id"`
		Token  string `query:"token"`
		Preset string `query:"preset"`
	}) (*body[ReportResponse], error) {
		cfg := report.DefaultConfig(domain.Preset(input.Preset))
		cfg.RedactInternalNotes = true
		res, err := buildReport(st, cfg)
		if err != nil {
			return nil, handleError(err)
		}
		return &body[ReportResponse]{Body: res}, nil
	})
}
