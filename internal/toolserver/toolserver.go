// Package toolserver exposes the memory store as an MCP tool surface over
// stdio, for long-lived use by an agent host.
package toolserver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/michimem/michimem/internal/checkpoint"
	"github.com/michimem/michimem/internal/config"
	"github.com/michimem/michimem/internal/model"
	"github.com/michimem/michimem/internal/store"
	"github.com/michimem/michimem/internal/tiering"
)

// Server holds the one long-lived Store handle the tool surface is built
// around, plus everything the individual tool handlers need to render
// results and resolve paths.
type Server struct {
	store store.Store
	cfg   config.Config
	paths config.Paths
	log   zerolog.Logger
	mcp   *server.MCPServer
}

// New wires a Server and registers its five tools against an MCP server
// instance, ready to be served over stdio.
func New(s store.Store, cfg config.Config, paths config.Paths, log zerolog.Logger) *Server {
	srv := &Server{
		store: s,
		cfg:   cfg,
		paths: paths,
		log:   log,
		mcp:   server.NewMCPServer("michimem", "0.1.0"),
	}
	srv.registerTools()
	return srv
}

// Serve blocks, speaking MCP over standard input/output until the
// transport closes.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("mem_search",
		mcp.WithDescription("Search stored memories by full-text query."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query text")),
		mcp.WithNumber("limit", mcp.Description("Maximum results to return (default 10)")),
	), s.handleSearch)

	s.mcp.AddTool(mcp.NewTool("mem_recall",
		mcp.WithDescription("Fetch the full rendered content of one memory by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Memory id")),
	), s.handleRecall)

	s.mcp.AddTool(mcp.NewTool("mem_store",
		mcp.WithDescription("Store or update a memory record."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Title")),
		mcp.WithString("summary", mcp.Required(), mcp.Description("One-line summary")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Full content")),
		mcp.WithString("type", mcp.Description("diary|insight|knowledge|shared (default insight)")),
		mcp.WithNumber("priority", mcp.Description("0=permanent, 1=insight, 2=ephemeral (default 1)")),
		mcp.WithArray("tags", mcp.Description("Tags")),
	), s.handleStore)

	s.mcp.AddTool(mcp.NewTool("mem_stats",
		mcp.WithDescription("Summarize the store's contents."),
	), s.handleStats)

	s.mcp.AddTool(mcp.NewTool("mem_restore",
		mcp.WithDescription("Fetch the latest checkpoint's restore block for a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
	), s.handleRestore)
}

func (s *Server) handleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	limit := int(req.GetFloat("limit", 10))
	s.log.Debug().Str("tool", "mem_search").Str("query", query).Msg("tool call")

	hits, err := s.store.Search(ctx, query, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	if len(hits) == 0 {
		return mcp.NewToolResultText("No memories found."), nil
	}

	var sb strings.Builder
	for i, h := range hits {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "**%s** (%s/P%d) [id:%s]\n%s", h.Title, h.Type, h.Priority, h.ID, h.Summary)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (s *Server) handleRecall(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	s.log.Debug().Str("tool", "mem_recall").Str("id", id).Msg("tool call")

	m, err := s.store.GetByID(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("recall failed: %v", err)), nil
	}
	if m == nil {
		return mcp.NewToolResultError(fmt.Sprintf("Memory not found: %s", id)), nil
	}

	rendered := tiering.BuildL2(*m)
	return mcp.NewToolResultText(rendered.Text), nil
}

func (s *Server) handleStore(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := req.GetString("title", "")
	summary := req.GetString("summary", "")
	content := req.GetString("content", "")
	typ := req.GetString("type", model.TypeInsight)
	priority := int(req.GetFloat("priority", model.PriorityInsight))
	tags := stringSlice(req, "tags")

	s.log.Debug().Str("tool", "mem_store").Str("title", title).Str("type", typ).Msg("tool call")

	existing, err := s.store.FindByTitle(ctx, typ, title)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("store failed: %v", err)), nil
	}
	if existing != nil {
		newSummary, newContent := summary, content
		if _, err := s.store.Update(ctx, existing.ID, model.UpdateFields{
			Summary: &newSummary,
			Content: &newContent,
		}); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("update failed: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Updated existing memory %s", existing.ID)), nil
	}

	in := model.MemoryInput{
		Type: typ, Priority: priority, Title: title, Summary: summary, Content: content, Tags: tags,
	}
	in.ExpiresAt = expiryForPriority(priority, s.cfg)

	m, err := s.store.Insert(ctx, in)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("store failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Stored new memory %s", m.ID)), nil
}

func (s *Server) handleStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.log.Debug().Str("tool", "mem_stats").Msg("tool call")
	st, err := s.store.Stats(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("stats failed: %v", err)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "**Total:** %d\n**Expired:** %d\n\n", st.Total, st.Expired)
	sb.WriteString("**By type:**\n")
	for t, n := range st.ByType {
		fmt.Fprintf(&sb, "- %s: %d\n", t, n)
	}
	sb.WriteString("\n**By priority:**\n")
	for p, n := range st.ByPriority {
		fmt.Fprintf(&sb, "- P%d: %d\n", p, n)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (s *Server) handleRestore(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := req.GetString("session_id", "")
	s.log.Debug().Str("tool", "mem_restore").Str("session_id", sessionID).Msg("tool call")

	cp, err := checkpoint.GetLatestCheckpoint(s.paths.CheckpointsDir, sessionID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("restore failed: %v", err)), nil
	}
	if cp == nil {
		return mcp.NewToolResultError(fmt.Sprintf("No checkpoint found for session: %s", sessionID)), nil
	}
	return mcp.NewToolResultText(tiering.BuildRestoreContext(*cp)), nil
}

func stringSlice(req mcp.CallToolRequest, key string) []string {
	raw, ok := req.GetArguments()[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func expiryForPriority(priority int, cfg config.Config) *time.Time {
	var d int
	switch priority {
	case model.PriorityInsight:
		d = cfg.TTL.InsightDays
	case model.PriorityEphemeral:
		d = cfg.TTL.DiaryDays
	default:
		return nil
	}
	t := time.Now().AddDate(0, 0, d)
	return &t
}
