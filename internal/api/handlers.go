package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/mmrzaf/datacraft/internal/app"
	"github.com/mmrzaf/datacraft/internal/domain"
	"github.com/mmrzaf/datacraft/internal/infra/repos/runs"
	"github.com/mmrzaf/datacraft/internal/metrics"
	"github.com/mmrzaf/datacraft/internal/validation"
	"github.com/mmrzaf/datacraft/internal/web"
)

const (
	defaultCount = 10
	maxCount     = 10000
	maxBodyBytes = 1 << 20
)

type Handler struct {
	runService *app.RunService
}

func NewHandler(runService *app.RunService) *Handler {
	return &Handler{runService: runService}
}

// Register mounts every route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", web.IndexHandler)
	mux.HandleFunc("GET /healthz", h.Health)
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("GET /api/users", h.GenerateUsers)
	mux.HandleFunc("POST /api/custom", h.GenerateCustom)
	mux.HandleFunc("POST /api/relationships", h.GenerateRelationships)
	mux.HandleFunc("POST /api/schemas/validate", h.ValidateSchema)

	mux.HandleFunc("GET /api/presets", h.ListPresets)
	mux.HandleFunc("GET /api/presets/{name}", h.GeneratePreset)
	mux.HandleFunc("GET /api/templates", h.ListTemplates)
	mux.HandleFunc("POST /api/templates/{name}/generate", h.GenerateTemplate)

	mux.HandleFunc("POST /api/targets/check", h.CheckTarget)

	mux.HandleFunc("GET /api/runs", h.ListRuns)
	mux.HandleFunc("GET /api/runs/{id}", h.GetRun)
}

type generateBody struct {
	Schema domain.DataSchema    `json:"schema,omitempty"`
	Count  *int                 `json:"count,omitempty"`
	Locale string               `json:"locale,omitempty"`
	Seed   *int64               `json:"seed,omitempty"`
	Format domain.Format        `json:"format,omitempty"`
	Target *domain.TargetConfig `json:"target,omitempty"`
}

func (b generateBody) request() (app.GenerateRequest, error) {
	count := defaultCount
	if b.Count != nil {
		count = *b.Count
	}
	if err := checkCount(count); err != nil {
		return app.GenerateRequest{}, err
	}
	return app.GenerateRequest{
		Schema: b.Schema,
		Count:  count,
		Locale: b.Locale,
		Seed:   b.Seed,
		Format: b.Format,
		Target: b.Target,
	}, nil
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (h *Handler) GenerateUsers(w http.ResponseWriter, r *http.Request) {
	req, err := queryRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := h.runService.GenerateUsers(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeGenerated(w, res)
}

func (h *Handler) ListPresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.runService.ListPresets())
}

func (h *Handler) GeneratePreset(w http.ResponseWriter, r *http.Request) {
	req, err := queryRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := h.runService.GeneratePreset(r.Context(), r.PathValue("name"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeGenerated(w, res)
}

// queryRequest reads count, seed, locale and format from the query string.
func queryRequest(r *http.Request) (app.GenerateRequest, error) {
	q := r.URL.Query()
	var body generateBody
	if c := q.Get("count"); c != "" {
		n, err := strconv.Atoi(c)
		if err != nil {
			return app.GenerateRequest{}, errors.New("invalid count")
		}
		body.Count = &n
	}
	if s := q.Get("seed"); s != "" {
		seed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return app.GenerateRequest{}, errors.New("invalid seed")
		}
		body.Seed = &seed
	}
	body.Locale = q.Get("locale")
	body.Format = domain.Format(q.Get("format"))
	return body.request()
}

func (h *Handler) GenerateCustom(w http.ResponseWriter, r *http.Request) {
	var body generateBody
	if err := decodeJSONStrict(w, r, &body); err != nil {
		writeError(w, err)
		return
	}
	if len(body.Schema) == 0 {
		http.Error(w, "schema is required", http.StatusBadRequest)
		return
	}
	req, err := body.request()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := h.runService.Generate(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeGenerated(w, res)
}

func (h *Handler) GenerateTemplate(w http.ResponseWriter, r *http.Request) {
	var body generateBody
	if r.ContentLength != 0 {
		if err := decodeJSONStrict(w, r, &body); err != nil {
			writeError(w, err)
			return
		}
	}
	req, err := body.request()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := h.runService.GenerateFromTemplate(r.Context(), r.PathValue("name"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeGenerated(w, res)
}

type relationshipsBody struct {
	UsersSchema  domain.DataSchema `json:"usersSchema,omitempty"`
	OrdersSchema domain.DataSchema `json:"ordersSchema,omitempty"`
	Users        *int              `json:"users,omitempty"`
	Orders       *int              `json:"orders,omitempty"`
	Locale       string            `json:"locale,omitempty"`
	Seed         *int64            `json:"seed,omitempty"`
}

func (h *Handler) GenerateRelationships(w http.ResponseWriter, r *http.Request) {
	var body relationshipsBody
	if err := decodeJSONStrict(w, r, &body); err != nil {
		writeError(w, err)
		return
	}
	users, orders := defaultCount, defaultCount
	if body.Users != nil {
		users = *body.Users
	}
	if body.Orders != nil {
		orders = *body.Orders
	}
	for _, n := range []int{users, orders} {
		if err := checkCount(n); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	res, err := h.runService.GenerateRelationships(r.Context(), app.RelationshipsRequest{
		UserSchema:  body.UsersSchema,
		OrderSchema: body.OrdersSchema,
		UserCount:   users,
		OrderCount:  orders,
		Locale:      body.Locale,
		Seed:        body.Seed,
		Format:      domain.FormatJSON,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	setRunHeaders(w, res.Run)
	writeJSON(w, res.Relationships)
}

type validateResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// ValidateSchema answers with the boolean check and, when it fails deeper
// in generator parameters, the first problem found.
func (h *Handler) ValidateSchema(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Schema json.RawMessage `json:"schema"`
	}
	if err := decodeJSONStrict(w, r, &body); err != nil {
		writeError(w, err)
		return
	}

	var raw any
	if len(body.Schema) > 0 {
		if err := json.Unmarshal(body.Schema, &raw); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
	}
	if !validation.ValidateSchema(raw) {
		writeJSON(w, validateResponse{Valid: false, Error: "schema is not a mapping of fields with known types"})
		return
	}

	var schema domain.DataSchema
	if err := json.Unmarshal(body.Schema, &schema); err != nil {
		writeJSON(w, validateResponse{Valid: false, Error: err.Error()})
		return
	}
	if err := h.runService.ValidateSchema(schema); err != nil {
		writeJSON(w, validateResponse{Valid: false, Error: err.Error()})
		return
	}
	writeJSON(w, validateResponse{Valid: true})
}

func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.runService.ListTemplates())
}

func (h *Handler) CheckTarget(w http.ResponseWriter, r *http.Request) {
	var t domain.TargetConfig
	if err := decodeJSONStrict(w, r, &t); err != nil {
		writeError(w, err)
		return
	}
	check, err := app.CheckTarget(r.Context(), &t)
	if check != nil {
		writeJSON(w, check)
		return
	}
	http.Error(w, err.Error(), http.StatusBadRequest)
}

func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if q := r.URL.Query().Get("limit"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}
	list, err := h.runService.ListRuns(limit, r.URL.Query().Get("status"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, list)
}

func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.runService.GetRun(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, run)
}

var errBadCount = errors.New("count out of range")

func checkCount(n int) error {
	if n < 0 || n > maxCount {
		return errBadCount
	}
	return nil
}

func setRunHeaders(w http.ResponseWriter, run *domain.Run) {
	w.Header().Set("X-Datacraft-Run-Id", run.ID)
	w.Header().Set("X-Datacraft-Seed", strconv.FormatInt(run.Seed, 10))
}

func writeGenerated(w http.ResponseWriter, res *app.GenerateResult) {
	setRunHeaders(w, res.Run)
	switch res.Run.Format {
	case domain.FormatCSV:
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	case domain.FormatXML:
		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	default:
		w.Header().Set("Content-Type", "application/json")
	}
	_, _ = w.Write([]byte(res.Rendered))
}

func writeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
	case errors.Is(err, errInvalidJSON):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrTemplateNotFound), errors.Is(err, domain.ErrUnknownPreset), errors.Is(err, runs.ErrRunNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrTemplateFileMissing), errors.Is(err, domain.ErrTemplateParse):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, domain.ErrInvalidSchema),
		errors.Is(err, domain.ErrUnsupportedFieldType),
		errors.Is(err, domain.ErrInvalidContentFormat),
		errors.Is(err, domain.ErrUnsupportedFormat),
		errors.Is(err, domain.ErrInvalidTarget),
		errors.Is(err, domain.ErrNoUsers),
		errors.Is(err, domain.ErrMissingUserID):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

var errInvalidJSON = errors.New("invalid json")

func decodeJSONStrict(w http.ResponseWriter, r *http.Request, out any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return errors.Join(errInvalidJSON, err)
	}
	return nil
}
