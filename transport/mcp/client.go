package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cast"

	"github.com/wricardo/digmaze/game/engine"
	"github.com/wricardo/digmaze/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Dig Maze",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Dig Maze - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Steer the digger (@) through the maze, tunnel through walls (#) and pick up
gems (*) while the adversaries (E) chase you. Collect the required number of
gems to clear the level.

AVAILABLE TOOLS:
- create_session: Create a new game session (manual sessions step only through advance)
- list_sessions / get_session: Inspect sessions
- snapshot: Current board as text
- set_direction: Steer the player (up/down/left/right/none)
- advance: Step a manual session N ticks, optionally setting a direction first
- restart: Start over at level 1
- event_log: Paginated game events
- list_configs: List available rule sets
- game_instructions: Full rules
- describe_cell: Inspect a single board cell`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func directionProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        []string{"up", "down", "left", "right", "none"},
		"description": description,
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Config to use (optional, see list_configs)",
				},
				"seed": map[string]interface{}{
					"type":        "integer",
					"description": "Maze seed for a reproducible game (optional)",
				},
				"live": map[string]interface{}{
					"type":        "boolean",
					"description": "Let the server clock tick the session in real time (default false)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "snapshot",
		Description: "Get the current board, entities and progress",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleSnapshot)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "set_direction",
		Description: "Set the direction the player will move in",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"direction":  directionProperty("Direction to steer; none stops at the next cell"),
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleSetDirection)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "advance",
		Description: "Step a manual session forward by a number of ticks",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"ticks": map[string]interface{}{
					"type":        "integer",
					"description": "Ticks to run (default 1, at most 10000)",
				},
				"dt": map[string]interface{}{
					"type":        "number",
					"description": "Seconds per tick (default 1/30)",
				},
				"direction": directionProperty("Direction to set before stepping (optional)"),
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of what you are trying to do (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleAdvance)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "restart",
		Description: "Restart the game at level 1 with a fresh maze",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleRestart)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "event_log",
		Description: "Get the event log for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Oldest or newest first (default desc)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleEventLog)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Get detailed information about a specific board cell: what occupies it and whether the player or the adversaries can enter it.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "X coordinate (column, 0-based)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Y coordinate (row, 0-based, row 0 is the top)",
				},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleDescribeCell)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// arguments coerces the tool arguments into a map; clients may send either
// an object or its JSON encoding.
func arguments(request mcp.CallToolRequest) map[string]interface{} {
	return cast.ToStringMap(request.Params.Arguments)
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

func requireSession(args map[string]interface{}) (string, *mcp.CallToolResult) {
	sessionID := strings.TrimSpace(cast.ToString(args["session_id"]))
	if sessionID == "" {
		return "", mcp.NewToolResultError("session_id is required")
	}
	return sessionID, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	body := map[string]interface{}{}
	if configID := cast.ToString(args["config_id"]); configID != "" {
		body["config_id"] = configID
	}
	if seed, ok := args["seed"]; ok && seed != nil {
		s, err := cast.ToInt64E(seed)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid seed: %v", err)), nil
		}
		body["seed"] = s
	}
	if cast.ToBool(args["live"]) {
		body["live"] = true
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	mode := "manual (use advance to step)"
	if session.Live {
		mode = "live (ticked by the server clock)"
	}
	result := fmt.Sprintf("Created session: %s\nConfig: %s\nSeed: %d\nMode: %s\n",
		session.ID, session.ConfigName, session.Seed, mode)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		score, phase := 0, engine.Phase("")
		if s.Snapshot != nil {
			score, phase = s.Snapshot.Progress.Score, s.Snapshot.Progress.Phase
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Live: %v, Score: %d, Phase: %s, Created: %s)\n",
			s.ID, s.ConfigName, s.Live, score, phase, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleSnapshot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var snap engine.Snapshot
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/snapshot"), nil, &snap); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSnapshot(&snap)), nil
}

func (c *Client) handleSetDirection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}

	body := map[string]string{"direction": cast.ToString(args["direction"])}

	var snap engine.Snapshot
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/direction"), body, &snap); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Direction set to %s\n\n%s", snap.Input, formatSnapshot(&snap))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleAdvance(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = args["intent"]

	body := map[string]interface{}{}
	if ticks, ok := args["ticks"]; ok && ticks != nil {
		n, err := cast.ToIntE(ticks)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid ticks: %v", err)), nil
		}
		body["ticks"] = n
	}
	if dt, ok := args["dt"]; ok && dt != nil {
		f, err := cast.ToFloat64E(dt)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid dt: %v", err)), nil
		}
		body["dt"] = f
	}
	if dir := cast.ToString(args["direction"]); dir != "" {
		body["direction"] = dir
	}

	var result service.AdvanceResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/advance"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatAdvanceResult(sessionID, &result)), nil
}

func (c *Client) handleRestart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var response struct {
		Message string                 `json:"message"`
		Result  *service.AdvanceResult `json:"result"`
	}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/restart"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := response.Message
	if response.Result != nil {
		result += "\n\n" + formatSnapshot(response.Result.Snapshot)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleEventLog(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}

	params := url.Values{}
	if page := cast.ToInt(args["page"]); page > 0 {
		params.Set("page", cast.ToString(page))
	}
	if limit := cast.ToInt(args["limit"]); limit > 0 {
		params.Set("limit", cast.ToString(limit))
	}
	if order := cast.ToString(args["order"]); order != "" {
		params.Set("order", order)
	}

	path := sessionPath(sessionID, "/events")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatEventLog(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Board: %dx%d, Adversaries: %d, Gems per level: %d, Lives: %d\n\n",
			config.Name, config.ConfigID, config.Description,
			config.Width, config.Height, config.EnemyCount, config.CollectiblesRequired, config.InitialLives)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Dig Maze - Complete Instructions

GAME OBJECTIVE:
Collect gems (*) scattered through an underground maze while adversaries (E)
hunt you. Gather the required number of gems to clear the level; each new
level is faster.

BOARD LEGEND:
• @ - You (the digger)
• E - Adversary
• * - Gem (collectible)
• # - Earth wall (you can dig through it, adversaries cannot)
• . - Tunnel you dug (open to everyone)
• (space) - Open corridor
• = - Border (nobody passes)

COORDINATES:
x is the column, y is the row. Row 0 is the top of the board, so "up"
lowers y. The top and bottom rows inside the border are open lanes.

MOVEMENT:
• set_direction steers you; the direction is held until changed.
• Movement is continuous: you travel from cell center to cell center and
  can only turn once you arrive.
• Digging into a wall turns it into tunnel, scores points and slows you for
  a moment.
• Setting "none" stops you at the next cell.

ADVERSARIES:
• They move through open cells and tunnels, never through earth.
• At every junction they pick a random direction but never turn straight
  back unless it is a dead end.
• If one reaches your cell, or you walk into one, you lose a life and
  everyone returns to their spawn after a short freeze.

SCORING:
• Digging a wall and collecting a gem score points, scaled up as levels
  get harder.
• Clearing a level awards a bonus, regenerates the maze and speeds
  everything up.

SESSIONS:
• Manual sessions (default) only move when you call advance. This gives
  you full control: set a direction, advance a few ticks, look at the
  snapshot, repeat.
• Live sessions are ticked by the server in real time and are meant for
  WebSocket clients; advance is refused for them.
• A session with the same seed always generates the same maze.

TIPS:
• 30 ticks is about one second of game time.
• Use describe_cell before committing to a tunnel to check what is there.
• Adversaries cannot follow you into earth, but they can use any tunnel you
  dig afterwards.
• The event log lists every dig, gem, lost life and level change.

GAME OVER:
The game ends when you run out of lives. Use restart to begin again.`

	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}
	x, errX := cast.ToIntE(args["x"])
	y, errY := cast.ToIntE(args["y"])
	if errX != nil || errY != nil {
		return mcp.NewToolResultError("x and y must be integers"), nil
	}

	var snap engine.Snapshot
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/snapshot"), nil, &snap); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	cell, ok := snap.CellAt(engine.Position{X: x, Y: y})
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("Coordinates (%d, %d) are out of bounds. Board is %dx%d (x 0-%d, y 0-%d)",
			x, y, snap.Width, snap.Height, snap.Width-1, snap.Height-1)), nil
	}

	return mcp.NewToolResultText(describeCell(x, y, cell)), nil
}

// describeCell explains a cell's content and who may enter it.
func describeCell(x, y int, cell engine.Cell) string {
	var cellType, description string
	switch cell.Kind {
	case engine.Empty:
		cellType, description = "Corridor", "Open corridor carved by the maze"
	case engine.Tunnel:
		cellType, description = "Tunnel", "Tunnel dug by the player, open to everyone"
	case engine.Wall:
		cellType, description = "Earth", "Earth wall: the player can dig through it, adversaries cannot"
	case engine.BorderWall:
		cellType, description = "Border", "Board border: impassable for everyone"
	case engine.Player:
		cellType, description = "Player", "Your current cell"
	case engine.Enemy:
		cellType, description = fmt.Sprintf("Adversary #%d", cell.ID), "Touching it costs a life"
	case engine.Collectible:
		cellType, description = fmt.Sprintf("Gem #%d", cell.ID), "Collect it for points"
	default:
		cellType, description = "Unknown", "Unknown cell content"
	}

	return fmt.Sprintf(`Cell at position (%d, %d):
━━━━━━━━━━━━━━━━━━━━━━━━
Glyph: %c
Type: %s
Player can enter: %v
Adversaries can enter: %v
Description: %s`,
		x, y,
		engine.GlyphFor(cell),
		cellType,
		cell.Kind != engine.BorderWall,
		engine.EnemyCanEnter(cell),
		description)
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nLive: %v\nSeed: %d\nCreated: %s\n\n%s",
		session.ID, session.ConfigName, session.Live, session.Seed,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatSnapshot(session.Snapshot))
}

func formatSnapshot(snap *engine.Snapshot) string {
	if snap == nil {
		return "No snapshot available"
	}

	var b strings.Builder
	p := snap.Progress
	fmt.Fprintf(&b, "Tick: %d | Level: %d | Score: %d | Lives: %d | Gems: %d/%d | Phase: %s\n",
		snap.Tick, p.Level, p.Score, p.Lives, p.Collected, p.Required, p.Phase)
	fmt.Fprintf(&b, "Player: (%d,%d) %s facing %s | Input: %s",
		snap.Player.Cell.X, snap.Player.Cell.Y, snap.Player.State, snap.Player.Facing, snap.Input)
	if snap.Slowed {
		b.WriteString(" | slowed")
	}
	b.WriteString("\n")

	if len(snap.Enemies) > 0 {
		b.WriteString("Adversaries:")
		for _, e := range snap.Enemies {
			fmt.Fprintf(&b, " #%d(%d,%d)", e.ID, e.Cell.X, e.Cell.Y)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for _, row := range engine.RenderASCII(snap) {
		b.WriteString(row)
		b.WriteString("\n")
	}

	switch p.Phase {
	case engine.PhaseOver:
		b.WriteString("\nGAME OVER")
	case engine.PhaseCleared:
		b.WriteString("\nLEVEL CLEARED")
	case engine.PhasePaused:
		b.WriteString("\nCaught! Respawning")
	}

	return b.String()
}

func formatAdvanceResult(sessionID string, result *service.AdvanceResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Session: %s\n", sessionID)
	fmt.Fprintf(&b, "Ran %d/%d ticks", result.TicksRun, result.TicksRequested)
	if result.Truncated {
		fmt.Fprintf(&b, " (capped at %d)", result.Limit)
	}
	b.WriteString("\n")
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped: %s\n", result.StoppedReason)
	}
	fmt.Fprintf(&b, "Score change: %+d\n", result.ScoreDelta)

	if len(result.Events) > 0 {
		b.WriteString("\nEvents:\n")
		for _, event := range result.Events {
			fmt.Fprintf(&b, "- %s at (%d,%d): %s\n", event.Type, event.Cell.X, event.Cell.Y, event.Message)
		}
	}

	if len(result.PossibleMoves) > 0 {
		b.WriteString("\nPossible moves: ")
		b.WriteString(strings.Join(result.PossibleMoves, ","))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(formatSnapshot(result.Snapshot))
	return b.String()
}

func formatEventLog(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Event Log (Page %d/%d) - Total: %d\n\n",
		history.Page, history.TotalPages, history.TotalEvents)

	for i, event := range history.Events {
		num := (history.Page-1)*history.PageSize + i + 1
		fmt.Fprintf(&b, "%d. [tick %d] %s: %s (score %d, lives %d, level %d)\n",
			num, event.Tick, event.Type, event.Message, event.Score, event.Lives, event.Level)
	}

	if len(history.Events) == 0 {
		b.WriteString("(no events)\n")
	}
	return b.String()
}
