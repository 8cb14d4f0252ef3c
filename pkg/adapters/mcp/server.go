package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/weave"
	"github.com/aretw0/weave/internal/logging"
	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/forms"
	"github.com/aretw0/weave/pkg/variables"
	"github.com/aretw0/weave/pkg/workflow"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// VariablesURI is the resource listing every known variable.
const VariablesURI = "weave://variables"

// WorkflowResponse carries an editor id and its current graph.
type WorkflowResponse struct {
	ID       string          `json:"id" jsonschema_description:"Workflow id"`
	Snapshot domain.Snapshot `json:"snapshot" jsonschema_description:"Current nodes and edges"`
}

// VariablesResponse lists variables.
type VariablesResponse struct {
	Variables []domain.Variable `json:"variables" jsonschema_description:"Matching variables"`
}

// ResolveResponse reports the declared type behind a reference.
type ResolveResponse struct {
	Ref       string            `json:"ref"`
	Type      domain.VarType    `json:"type" jsonschema_description:"Declared type, text when unresolved"`
	Resolved  bool              `json:"resolved" jsonschema_description:"Whether the reference names a known variable"`
	Operators []domain.Operator `json:"operators" jsonschema_description:"Condition operators applicable to the type"`
}

// Server exposes a weave.Service as an MCP server.
type Server struct {
	svc       *weave.Service
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the MCP server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(svc *weave.Service, opts ...Option) *Server {
	s := &Server{
		svc:       svc,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("weave-mcp", strings.TrimSpace(weave.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx
// is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutdown signal received, stopping MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, Baggage, Sentry-Trace")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: list_variables
	s.mcpServer.AddTool(mcp.NewTool("list_variables",
		mcp.WithDescription("List system and custom variables usable as {{name}} references."),
		mcp.WithString("query", mcp.Description("Case-insensitive filter on name or description")),
		mcp.WithString("category", mcp.Description("One of task, project, user, trigger, custom")),
		mcp.WithOutputSchema[VariablesResponse](),
	), mcp.NewStructuredToolHandler(s.handleListVariables))

	// TOOL: resolve_type
	s.mcpServer.AddTool(mcp.NewTool("resolve_type",
		mcp.WithDescription("Report the declared type of a variable reference and the operators it supports."),
		mcp.WithString("ref", mcp.Required(), mcp.Description("Variable name or {{expression}}")),
		mcp.WithOutputSchema[ResolveResponse](),
	), mcp.NewStructuredToolHandler(s.handleResolveType))

	// TOOL: create_variable
	s.mcpServer.AddTool(mcp.NewTool("create_variable",
		mcp.WithDescription("Create a custom variable under the variables. namespace."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Name, with or without the variables. prefix")),
		mcp.WithString("type", mcp.Description("text, number, email, date, status, priority, assignee or team")),
		mcp.WithString("description", mcp.Description("Human readable description")),
	), mcp.NewStructuredToolHandler(s.handleCreateVariable))

	// TOOL: create_workflow
	s.mcpServer.AddTool(mcp.NewTool("create_workflow",
		mcp.WithDescription("Open a new workflow, empty or seeded with the sample graph."),
		mcp.WithBoolean("sample", mcp.Description("Start from the sample workflow")),
		mcp.WithOutputSchema[WorkflowResponse](),
	), mcp.NewStructuredToolHandler(s.handleCreateWorkflow))

	// TOOL: get_workflow
	s.mcpServer.AddTool(mcp.NewTool("get_workflow",
		mcp.WithDescription("Return the nodes and edges of an open workflow."),
		mcp.WithString("workflow_id", mcp.Required(), mcp.Description("Workflow id")),
		mcp.WithOutputSchema[WorkflowResponse](),
	), mcp.NewStructuredToolHandler(s.handleGetWorkflow))

	// TOOL: add_node
	s.mcpServer.AddTool(mcp.NewTool("add_node",
		mcp.WithDescription("Add a trigger, condition or action node with default configuration."),
		mcp.WithString("workflow_id", mcp.Required(), mcp.Description("Workflow id")),
		mcp.WithString("kind", mcp.Required(), mcp.Enum("trigger", "condition", "action")),
	), mcp.NewStructuredToolHandler(s.handleAddNode))

	// TOOL: update_node
	s.mcpServer.AddTool(mcp.NewTool("update_node",
		mcp.WithDescription("Replace the configuration of a node. Inline errors are returned on the node."),
		mcp.WithString("workflow_id", mcp.Required(), mcp.Description("Workflow id")),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("Node id")),
		mcp.WithString("data", mcp.Required(), mcp.Description("JSON object with label and one of trigger, condition or action")),
	), mcp.NewStructuredToolHandler(s.handleUpdateNode))

	// TOOL: connect_nodes
	s.mcpServer.AddTool(mcp.NewTool("connect_nodes",
		mcp.WithDescription("Connect two nodes. Conditions need a true or false handle."),
		mcp.WithString("workflow_id", mcp.Required(), mcp.Description("Workflow id")),
		mcp.WithString("source", mcp.Required(), mcp.Description("Source node id")),
		mcp.WithString("target", mcp.Required(), mcp.Description("Target node id")),
		mcp.WithString("handle", mcp.Description("true or false, for condition sources")),
	), mcp.NewStructuredToolHandler(s.handleConnectNodes))

	// TOOL: publish_workflow
	s.mcpServer.AddTool(mcp.NewTool("publish_workflow",
		mcp.WithDescription("Validate and publish a workflow."),
		mcp.WithString("workflow_id", mcp.Required(), mcp.Description("Workflow id")),
	), mcp.NewStructuredToolHandler(s.handlePublishWorkflow))
}

// Handler methods for structured tools

func str(args map[string]interface{}, key string) string {
	v, _ := args[key].(string)
	return v
}

func (s *Server) editor(args map[string]interface{}) (*weave.Editor, error) {
	return s.svc.Get(str(args, "workflow_id"))
}

func (s *Server) handleListVariables(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (VariablesResponse, error) {
	vars := s.svc.Registry().Search(ctx, str(args, "query"))
	if raw := str(args, "category"); raw != "" {
		c, ok := variables.ParseCategory(raw)
		if !ok {
			return VariablesResponse{}, fmt.Errorf("unknown category %q", raw)
		}
		kept := vars[:0]
		for _, v := range vars {
			if variables.CategoryOf(v.Name) == c {
				kept = append(kept, v)
			}
		}
		vars = kept
	}
	if vars == nil {
		vars = []domain.Variable{}
	}
	return VariablesResponse{Variables: vars}, nil
}

func (s *Server) handleResolveType(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ResolveResponse, error) {
	ref := str(args, "ref")
	t, ok := s.svc.Registry().Resolve(ctx, ref)
	if !ok {
		t = domain.TypeText
	}
	return ResolveResponse{Ref: ref, Type: t, Resolved: ok, Operators: forms.OperatorsForType(t, ok)}, nil
}

func (s *Server) handleCreateVariable(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.Variable, error) {
	v := domain.Variable{
		Name:        str(args, "name"),
		Type:        domain.VarType(str(args, "type")),
		Description: str(args, "description"),
	}
	if err := s.svc.Registry().Create(ctx, v); err != nil {
		return domain.Variable{}, err
	}
	s.svc.RefreshAll(ctx)
	name, _ := variables.QualifiedName(v.Name)
	created, _ := s.svc.Registry().Lookup(ctx, name)
	return created, nil
}

func (s *Server) handleCreateWorkflow(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (WorkflowResponse, error) {
	sample, _ := args["sample"].(bool)
	ed, err := s.svc.Create(ctx, sample)
	if err != nil {
		return WorkflowResponse{}, err
	}
	return WorkflowResponse{ID: ed.ID(), Snapshot: ed.Workflow().Snapshot()}, nil
}

func (s *Server) handleGetWorkflow(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (WorkflowResponse, error) {
	ed, err := s.editor(args)
	if err != nil {
		return WorkflowResponse{}, err
	}
	return WorkflowResponse{ID: ed.ID(), Snapshot: ed.Workflow().Snapshot()}, nil
}

func (s *Server) handleAddNode(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.Node, error) {
	ed, err := s.editor(args)
	if err != nil {
		return domain.Node{}, err
	}
	kind, err := domain.ParseNodeKind(str(args, "kind"))
	if err != nil {
		return domain.Node{}, err
	}
	return ed.Workflow().AddNode(ctx, kind)
}

func (s *Server) handleUpdateNode(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.Node, error) {
	ed, err := s.editor(args)
	if err != nil {
		return domain.Node{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(str(args, "data")), &raw); err != nil {
		return domain.Node{}, fmt.Errorf("data must be a JSON object: %w", err)
	}
	data, err := workflow.DecodeNodeData(raw)
	if err != nil {
		return domain.Node{}, err
	}
	nodeID := str(args, "node_id")
	n, ok := ed.Workflow().UpdateNodeData(ctx, nodeID, data)
	if !ok {
		return domain.Node{}, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, nodeID)
	}
	return n, nil
}

func (s *Server) handleConnectNodes(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.Edge, error) {
	ed, err := s.editor(args)
	if err != nil {
		return domain.Edge{}, err
	}
	c, err := workflow.DecodeCandidate(map[string]any{
		"source":       str(args, "source"),
		"target":       str(args, "target"),
		"sourceHandle": str(args, "handle"),
	})
	if err != nil {
		return domain.Edge{}, err
	}
	e, err := ed.Workflow().ApplyConnection(ctx, c)
	if err != nil {
		var rejected *domain.ConnectionRejectedError
		if errors.As(err, &rejected) {
			return domain.Edge{}, fmt.Errorf("%s: %w", rejected.Title(), err)
		}
		return domain.Edge{}, err
	}
	return e, nil
}

func (s *Server) handlePublishWorkflow(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.Publication, error) {
	ed, err := s.editor(args)
	if err != nil {
		return domain.Publication{}, err
	}
	pub, err := ed.Workflow().Publish(ctx)
	if err != nil {
		var invalid *domain.InvalidWorkflowError
		if errors.As(err, &invalid) {
			details, _ := json.Marshal(invalid.Nodes)
			return domain.Publication{}, fmt.Errorf("%w: %s", err, details)
		}
		return domain.Publication{}, err
	}
	return pub, nil
}

func (s *Server) registerResources() {
	// EXPOSE: weave://variables
	s.mcpServer.AddResource(mcp.NewResource(VariablesURI, "Variable Catalog",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.svc.Registry().ListAll(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to encode variables: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      VariablesURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
