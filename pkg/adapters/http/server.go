package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/aretw0/weave"
	"github.com/aretw0/weave/internal/logging"
	"github.com/aretw0/weave/internal/presentation/graph"
	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/forms"
	"github.com/aretw0/weave/pkg/options"
	"github.com/aretw0/weave/pkg/schema"
	"github.com/aretw0/weave/pkg/variables"
	"github.com/aretw0/weave/pkg/workflow"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
)

// maxDocumentSize bounds imported workflow documents.
const maxDocumentSize = 1 << 20

// Server exposes a weave.Service over REST.
type Server struct {
	svc     *weave.Service
	streams *StreamManager
	spec    *openapi3.T
	logger  *slog.Logger
}

// Option configures the HTTP server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithStreams serves /events from sm. sm only receives changes if it is also
// the service host (weave.WithHost).
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.streams = sm
	}
}

// NewHandler creates the HTTP handler for svc.
func NewHandler(svc *weave.Service, opts ...Option) (http.Handler, error) {
	spec, err := Spec()
	if err != nil {
		return nil, err
	}
	s := &Server{
		svc:    svc,
		spec:   spec,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.streams == nil {
		s.streams = NewStreamManager(WithStreamLogger(s.logger))
	}

	r := chi.NewRouter()
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	r.Handle("/metrics", svc.Metrics().Handler())
	r.Get("/workflows/{id}/events", s.SubscribeEvents)

	r.Group(func(r chi.Router) {
		r.Use(s.validateRequest)

		r.Get("/health", s.GetHealth)
		r.Get("/info", s.GetInfo)

		r.Get("/workflows", s.ListWorkflows)
		r.Post("/workflows", s.CreateWorkflow)
		r.Get("/workflows/{id}", s.GetWorkflow)
		r.Delete("/workflows/{id}", s.DeleteWorkflow)
		r.Get("/workflows/{id}/document", s.ExportWorkflow)
		r.Put("/workflows/{id}/document", s.ImportWorkflow)
		r.Get("/workflows/{id}/mermaid", s.GetMermaid)
		r.Post("/workflows/{id}/nodes", s.AddNode)
		r.Put("/workflows/{id}/nodes/{nodeID}/data", s.UpdateNodeData)
		r.Put("/workflows/{id}/nodes/{nodeID}/position", s.MoveNode)
		r.Get("/workflows/{id}/nodes/{nodeID}/fields", s.GetFields)
		r.Get("/workflows/{id}/nodes/{nodeID}/options/{field}", s.GetFieldOptions)
		r.Post("/workflows/{id}/connections", s.Connect)
		r.Put("/workflows/{id}/selection", s.SetSelection)
		r.Delete("/workflows/{id}/selection", s.DeleteSelection)
		r.Post("/workflows/{id}/publish", s.Publish)

		r.Get("/variables", s.ListVariables)
		r.Post("/variables", s.CreateVariable)
		r.Get("/variables/resolve", s.ResolveVariable)
		r.Put("/variables/{name}", s.UpdateVariable)
		r.Delete("/variables/{name}", s.DeleteVariable)

		r.Get("/options/{fieldType}", s.GetOptions)
	})

	return enableCORS(r), nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Weave API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// -- Responses --

type errorBody struct {
	Error  string                       `json:"error"`
	Title  string                       `json:"title,omitempty"`
	Reason string                       `json:"reason,omitempty"`
	Nodes  map[string]map[string]string `json:"nodes,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	json.NewEncoder(w).Encode(v)
}

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, weave.ErrEditorNotFound),
		errors.Is(err, domain.ErrNodeNotFound),
		errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConnectionRejected),
		errors.Is(err, domain.ErrDeletionRejected),
		errors.Is(err, domain.ErrDuplicateName),
		errors.Is(err, domain.ErrKindMismatch):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidWorkflow),
		errors.Is(err, domain.ErrNoTrigger),
		errors.Is(err, domain.ErrInvalidName),
		errors.Is(err, domain.ErrUnknownType),
		errors.Is(err, domain.ErrUnknownKind),
		errors.Is(err, domain.ErrUnknownHandle),
		errors.Is(err, domain.ErrUnknownVariant),
		errors.Is(err, weave.ErrUnknownField):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := errorBody{Error: err.Error()}

	var rejected *domain.ConnectionRejectedError
	var invalid *domain.InvalidWorkflowError
	switch {
	case errors.As(err, &rejected):
		body.Title = rejected.Title()
		body.Reason = string(rejected.Reason)
	case errors.As(err, &invalid):
		body.Nodes = invalid.Nodes
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	} else {
		s.logger.Debug("request refused", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	}
	writeJSON(w, status, body)
}

func (s *Server) badRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
}

func (s *Server) editor(w http.ResponseWriter, r *http.Request) (*weave.Editor, bool) {
	ed, err := s.svc.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	return ed, true
}

// -- Meta --

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if s.spec.Info != nil {
		apiVersion = s.spec.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "weave-http",
		"version":     strings.TrimSpace(weave.Version),
		"api_version": apiVersion,
	})
}

// -- Workflows --

type workflowResponse struct {
	ID        string          `json:"id"`
	Snapshot  domain.Snapshot `json:"snapshot"`
	Selection selection       `json:"selection"`
}

type selection struct {
	Nodes []string `json:"nodes"`
	Edges []string `json:"edges"`
}

func describe(ed *weave.Editor) workflowResponse {
	nodes, edges := ed.Workflow().Selection()
	if nodes == nil {
		nodes = []string{}
	}
	if edges == nil {
		edges = []string{}
	}
	return workflowResponse{
		ID:        ed.ID(),
		Snapshot:  ed.Workflow().Snapshot(),
		Selection: selection{Nodes: nodes, Edges: edges},
	}
}

// ListWorkflows handles the GET /workflows request.
func (s *Server) ListWorkflows(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"workflows": s.svc.List()})
}

// CreateWorkflow handles the POST /workflows request.
func (s *Server) CreateWorkflow(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Sample bool `json:"sample"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		s.badRequest(w, err)
		return
	}
	ed, err := s.svc.Create(r.Context(), body.Sample)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Location", "/workflows/"+ed.ID())
	writeJSON(w, http.StatusCreated, describe(ed))
}

// GetWorkflow handles the GET /workflows/{id} request.
func (s *Server) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, describe(ed))
}

// DeleteWorkflow handles the DELETE /workflows/{id} request.
func (s *Server) DeleteWorkflow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.svc.Delete(id); err != nil {
		s.fail(w, r, err)
		return
	}
	s.streams.Forget(id)
	w.WriteHeader(http.StatusNoContent)
}

// ExportWorkflow handles the GET /workflows/{id}/document request.
func (s *Server) ExportWorkflow(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}
	format := workflow.Format(r.URL.Query().Get("format"))
	data, err := workflow.MarshalDocument(ed.Workflow().Snapshot(), format)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if format == workflow.FormatJSON {
		w.Header().Set("Content-Type", "application/json")
	} else {
		w.Header().Set("Content-Type", "application/yaml")
	}
	w.Write(data)
}

// ImportWorkflow handles the PUT /workflows/{id}/document request.
func (s *Server) ImportWorkflow(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentSize))
	if err != nil {
		s.badRequest(w, err)
		return
	}
	doc, err := workflow.ParseDocument(data)
	if err != nil {
		s.badRequest(w, err)
		return
	}
	if err := ed.Workflow().Load(r.Context(), doc); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, describe(ed))
}

// GetMermaid handles the GET /workflows/{id}/mermaid request.
func (s *Server) GetMermaid(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}
	nodes, _ := ed.Workflow().Selection()
	overlay := &graph.GraphOverlay{Selected: nodes}
	w.Header().Set("Content-Type", "text/plain")
	io.WriteString(w, graph.GenerateMermaid(ed.Workflow().Snapshot(), overlay))
}

// -- Nodes --

// AddNode handles the POST /workflows/{id}/nodes request.
func (s *Server) AddNode(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}
	var body struct {
		Kind string `json:"kind"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.badRequest(w, err)
		return
	}
	kind, err := domain.ParseNodeKind(body.Kind)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	n, err := ed.Workflow().AddNode(r.Context(), kind)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

// UpdateNodeData handles the PUT /workflows/{id}/nodes/{nodeID}/data request.
func (s *Server) UpdateNodeData(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		s.badRequest(w, err)
		return
	}
	data, err := workflow.DecodeNodeData(raw)
	if errors.Is(err, domain.ErrUnknownVariant) {
		s.fail(w, r, err)
		return
	}
	if err != nil {
		s.badRequest(w, err)
		return
	}
	nodeID := chi.URLParam(r, "nodeID")
	n, ok := ed.Workflow().UpdateNodeData(r.Context(), nodeID, data)
	if !ok {
		s.fail(w, r, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, nodeID))
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// MoveNode handles the PUT /workflows/{id}/nodes/{nodeID}/position request.
func (s *Server) MoveNode(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}
	var pos domain.Position
	if err := json.NewDecoder(r.Body).Decode(&pos); err != nil {
		s.badRequest(w, err)
		return
	}
	nodeID := chi.URLParam(r, "nodeID")
	if !ed.Workflow().MoveNode(r.Context(), nodeID, pos) {
		s.fail(w, r, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, nodeID))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type fieldsResponse struct {
	Fields []schema.Field    `json:"fields"`
	Values map[string]string `json:"values"`
	Errors map[string]string `json:"errors,omitempty"`
}

// GetFields handles the GET /workflows/{id}/nodes/{nodeID}/fields request.
func (s *Server) GetFields(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}
	nodeID := chi.URLParam(r, "nodeID")
	fields, err := ed.Fields(r.Context(), nodeID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	n, _ := ed.Workflow().Node(nodeID)
	if fields == nil {
		fields = []schema.Field{}
	}
	writeJSON(w, http.StatusOK, fieldsResponse{
		Fields: fields,
		Values: forms.Values(n.Kind, n.Data),
		Errors: n.Data.Errors,
	})
}

// GetFieldOptions handles the GET /workflows/{id}/nodes/{nodeID}/options/{field}
// request. With wait=true it blocks until the list settles or the client
// goes away.
func (s *Server) GetFieldOptions(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}
	nodeID, field := chi.URLParam(r, "nodeID"), chi.URLParam(r, "field")
	done, err := ed.RequestOptions(r.Context(), nodeID, field)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if wait, _ := strconv.ParseBool(r.URL.Query().Get("wait")); wait {
		select {
		case <-done:
		case <-r.Context().Done():
			return
		}
	}
	writeJSON(w, http.StatusOK, ed.OptionsState(nodeID, field))
}

// -- Graph --

// Connect handles the POST /workflows/{id}/connections request.
func (s *Server) Connect(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		s.badRequest(w, err)
		return
	}
	c, err := workflow.DecodeCandidate(raw)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownHandle) {
			s.fail(w, r, err)
			return
		}
		s.badRequest(w, err)
		return
	}
	e, err := ed.Workflow().ApplyConnection(r.Context(), c)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// SetSelection handles the PUT /workflows/{id}/selection request.
func (s *Server) SetSelection(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}
	var body selection
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.badRequest(w, err)
		return
	}
	ed.Workflow().SetSelection(body.Nodes, body.Edges)
	w.WriteHeader(http.StatusNoContent)
}

// DeleteSelection handles the DELETE /workflows/{id}/selection request.
func (s *Server) DeleteSelection(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}
	plan, err := ed.Workflow().DeleteSelection(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	removed := selection{Nodes: plan.Nodes, Edges: plan.Edges}
	if removed.Nodes == nil {
		removed.Nodes = []string{}
	}
	if removed.Edges == nil {
		removed.Edges = []string{}
	}
	writeJSON(w, http.StatusOK, removed)
}

// Publish handles the POST /workflows/{id}/publish request.
func (s *Server) Publish(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}
	pub, err := ed.Workflow().Publish(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pub)
}

// -- Events --

// SubscribeEvents handles the GET /workflows/{id}/events request (SSE). The
// stream opens with the full snapshot, then carries diffs and publications.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("sse: streaming not supported")
		return
	}

	ch, cancel := s.streams.Subscribe(ed.ID())
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	snap, err := json.Marshal(ed.Workflow().Snapshot())
	if err != nil {
		s.logger.Error("sse: failed to encode snapshot", "err", err)
		return
	}
	fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", snap)
	flusher.Flush()
	s.logger.Info("sse client subscribed", "workflow", ed.ID())

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("sse client disconnected", "workflow", ed.ID())
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, ev.Data)
			flusher.Flush()
		}
	}
}

// -- Variables --

// ListVariables handles the GET /variables request. Filters combine.
func (s *Server) ListVariables(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reg := s.svc.Registry()
	q := r.URL.Query()

	vars := reg.Search(ctx, q.Get("q"))
	if vars == nil {
		vars = []domain.Variable{}
	}
	if raw := q.Get("category"); raw != "" {
		c, _ := variables.ParseCategory(raw)
		vars = filter(vars, func(v domain.Variable) bool { return variables.CategoryOf(v.Name) == c })
	}
	if raw := q.Get("type"); raw != "" {
		vars = filter(vars, func(v domain.Variable) bool { return string(v.Type) == raw })
	}
	writeJSON(w, http.StatusOK, map[string][]domain.Variable{"variables": vars})
}

func filter(vars []domain.Variable, keep func(domain.Variable) bool) []domain.Variable {
	out := make([]domain.Variable, 0, len(vars))
	for _, v := range vars {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// CreateVariable handles the POST /variables request.
func (s *Server) CreateVariable(w http.ResponseWriter, r *http.Request) {
	var v domain.Variable
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		s.badRequest(w, err)
		return
	}
	if err := s.svc.Registry().Create(r.Context(), v); err != nil {
		s.fail(w, r, err)
		return
	}
	s.svc.RefreshAll(r.Context())
	name, _ := variables.QualifiedName(v.Name)
	created, _ := s.svc.Registry().Lookup(r.Context(), name)
	writeJSON(w, http.StatusCreated, created)
}

// UpdateVariable handles the PUT /variables/{name} request.
func (s *Server) UpdateVariable(w http.ResponseWriter, r *http.Request) {
	var v domain.Variable
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		s.badRequest(w, err)
		return
	}
	if err := s.svc.Registry().Update(r.Context(), chi.URLParam(r, "name"), v); err != nil {
		s.fail(w, r, err)
		return
	}
	s.svc.RefreshAll(r.Context())
	name, _ := variables.QualifiedName(v.Name)
	updated, _ := s.svc.Registry().Lookup(r.Context(), name)
	writeJSON(w, http.StatusOK, updated)
}

// DeleteVariable handles the DELETE /variables/{name} request.
func (s *Server) DeleteVariable(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Registry().Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.fail(w, r, err)
		return
	}
	s.svc.RefreshAll(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// ResolveVariable handles the GET /variables/resolve request.
func (s *Server) ResolveVariable(w http.ResponseWriter, r *http.Request) {
	ref := r.URL.Query().Get("ref")
	t, resolved := s.svc.Registry().Resolve(r.Context(), ref)
	if !resolved {
		t = domain.TypeText
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ref":       ref,
		"type":      t,
		"resolved":  resolved,
		"operators": forms.OperatorsForType(t, resolved),
	})
}

// -- Options --

// GetOptions handles the GET /options/{fieldType} request.
func (s *Server) GetOptions(w http.ResponseWriter, r *http.Request) {
	opts := s.svc.Options().Get(r.Context(), chi.URLParam(r, "fieldType"))
	writeJSON(w, http.StatusOK, options.State{Options: opts})
}
