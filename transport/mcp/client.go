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
	"github.com/wricardo/black-block-blast/game/engine"
	"github.com/wricardo/black-block-blast/game/service"
)

// maxBatch bounds the commands or ticks applied in one tool call
const maxBatch = 100

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
		"Black Block Blast",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Black Block Blast - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Falling-block puzzle. Steer each tetromino with left/right/rotate/down and
complete horizontal rows; every cleared row scores 100 points (by default).
The game ends when a new piece cannot spawn.

AVAILABLE TOOLS:
- create_session: Create a new game session (optional config_id and seed)
- list_sessions / get_session: Inspect sessions
- start_game / stop_game: Start (or restart) and stop a game
- command: Apply left, right, rotate or down (one or a list)
- tick: Advance gravity manually
- game_state: Render the board
- list_configs: List rule sets
- game_instructions: Full rules and board legend

The board is drawn with '.' for empty cells, '#' for locked blocks and '@'
for the falling piece.`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new idle game session with optional config and seed",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Rule set to use (see list_configs); defaults to classic",
				},
				"seed": map[string]interface{}{
					"type":        "integer",
					"description": "Random seed for a reproducible piece sequence (optional)",
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
		Name:        "game_state",
		Description: "Get the current board, piece, score and status",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "start_game",
		Description: "Clear the board and start playing; also restarts after game over",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleStartGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "stop_game",
		Description: "Stop gravity and ignore input until the next start",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleStopGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "command",
		Description: "Apply one command, or a list of commands in order (stops early on game over)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"command": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"left", "right", "rotate", "down"},
					"description": "Single command",
				},
				"commands": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
						"enum": []string{"left", "right", "rotate", "down"},
					},
					"description": "Commands applied in order",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleCommand)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "tick",
		Description: "Advance gravity by one or more steps",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"count": map[string]interface{}{
					"type":        "integer",
					"description": "Number of gravity steps (default 1)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleTick)

	// Configuration
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available rule sets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the game rules, board legend and playing tips",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// apiCall makes an HTTP request to the REST API
func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	endpoint := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
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

// arguments returns the tool arguments, tolerating a missing object
func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func requireSessionID(args map[string]interface{}) (string, *mcp.CallToolResult) {
	sessionID, _ := args["session_id"].(string)
	if strings.TrimSpace(sessionID) == "" {
		return "", mcp.NewToolResultError("session_id is required")
	}
	return sessionID, nil
}

// sessionPath builds a REST path with the session ID as a single escaped segment
func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// intArg reads a JSON number argument
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	}
	return 0, false
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	body := map[string]interface{}{}
	if configID, _ := args["config_id"].(string); configID != "" {
		body["config_id"] = configID
	}
	if seed, ok := intArg(args, "seed"); ok {
		if seed < 0 {
			return mcp.NewToolResultError("seed must be non-negative"), nil
		}
		body["seed"] = uint64(seed)
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\nSeed: %d\n\nCall start_game to begin.\n",
		session.ID, session.ConfigName, session.Seed)
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

	var result strings.Builder
	fmt.Fprintf(&result, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status, score := engine.Idle, 0
		if s.GameState != nil {
			status, score = s.GameState.Status, s.GameState.Score
		}
		fmt.Fprintf(&result, "- %s (Config: %s, Status: %s, Score: %d, Created: %s)\n",
			s.ID, s.ConfigName, status, score, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSessionID(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSessionID(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.lifecycle(ctx, request, "start")
}

func (c *Client) handleStopGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.lifecycle(ctx, request, "stop")
}

func (c *Client) lifecycle(ctx context.Context, request mcp.CallToolRequest, action string) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSessionID(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/"+action), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(response.Message + "\n\n" + formatGameState(response.State)), nil
}

func (c *Client) handleCommand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSessionID(args)
	if errResult != nil {
		return errResult, nil
	}

	var commands []string
	if single, _ := args["command"].(string); single != "" {
		commands = append(commands, single)
	}
	if list, ok := args["commands"].([]interface{}); ok {
		for _, item := range list {
			cmd, ok := item.(string)
			if !ok {
				return mcp.NewToolResultError("commands must be strings"), nil
			}
			commands = append(commands, cmd)
		}
	}
	if len(commands) == 0 {
		return mcp.NewToolResultError("provide command or commands"), nil
	}
	if len(commands) > maxBatch {
		return mcp.NewToolResultError(fmt.Sprintf("at most %d commands per call", maxBatch)), nil
	}

	results := make([]*service.CommandResult, 0, len(commands))
	for _, cmd := range commands {
		var result service.CommandResult
		if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/command"), map[string]string{"command": cmd}, &result); err != nil {
			if len(results) == 0 {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return mcp.NewToolResultText(formatResults(results) + "\nStopped: " + err.Error()), nil
		}
		results = append(results, &result)
		if result.GameState != nil && result.GameState.Status == engine.GameOver {
			break
		}
	}

	return mcp.NewToolResultText(formatResults(results)), nil
}

func (c *Client) handleTick(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSessionID(args)
	if errResult != nil {
		return errResult, nil
	}

	count := 1
	if n, ok := intArg(args, "count"); ok {
		count = n
	}
	if count < 1 || count > maxBatch {
		return mcp.NewToolResultError(fmt.Sprintf("count must be between 1 and %d", maxBatch)), nil
	}

	results := make([]*service.CommandResult, 0, count)
	for i := 0; i < count; i++ {
		var result service.CommandResult
		if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/tick"), nil, &result); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		results = append(results, &result)
		if result.GameState != nil && result.GameState.Status != engine.Running {
			break
		}
	}

	return mcp.NewToolResultText(formatResults(results)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	result.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&result, "• %s (config_id: %s)\n  %s\n  Board: %d cols x %d rows, gravity %dms, %d points per line\n\n",
			config.Name, config.ConfigID, config.Description,
			config.Cols, config.Rows, config.TickIntervalMS, config.PointsPerLine)
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `Black Block Blast - Complete Instructions

GAME OBJECTIVE:
Place falling tetrominoes so they complete horizontal rows. Each completed row
is removed, everything above it drops by one row, and you score points per
row (100 by default, no bonus for clearing several at once).

GAME FLOW:
• create_session, then start_game. A new session is idle until started.
• Each gravity tick moves the piece down one row. When it cannot move down it
  locks in place, full rows clear, and the next piece spawns at the top center.
• The game ends when a freshly spawned piece overlaps locked blocks.
• start_game restarts at any time with an empty board and zero score.
• stop_game freezes the game; commands and ticks are ignored until start_game.

BOARD LEGEND:
• . - empty cell
• # - locked block
• @ - falling piece
Row 0 is the top of the well; x grows to the right.

PIECES:
I (1x4), O (2x2), T, L, J, S, Z (2x3). Piece kind and color are random.

COMMANDS:
• left / right - shift one column; ignored at walls or against blocks
• rotate - turn 90° clockwise; ignored when the turned piece would not fit
  (there are no wall kicks, so move away from the wall first)
• down - soft drop one row; locks the piece if it has landed

GRAVITY:
The server applies gravity on its own clock while a game is running. Use the
tick tool to advance gravity yourself, for example to lock a piece quickly.

TIPS:
• Read the board from the bottom up and keep the surface flat.
• Leave one column open for I pieces to clear several rows at once.
• Batch moves: command with commands=["rotate","left","left","down"].`

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nSeed: %d\nCreated: %s\n\n%s",
		session.ID, session.ConfigName, session.Seed,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Status: %s | Score: %d | Lines: %d | Pieces: %d\n",
		state.Status, state.Score, state.LinesCleared, state.PiecesLocked)

	if state.Active != nil {
		fmt.Fprintf(&result, "Piece: %s at (%d,%d)\n",
			state.Active.Kind, state.Active.Position.X, state.Active.Position.Y)
	}
	result.WriteString("\n")

	for _, row := range engine.RenderRows(state) {
		result.WriteString("|" + row + "|\n")
	}
	if state.Cols > 0 {
		result.WriteString("+" + strings.Repeat("-", state.Cols) + "+\n")
	}

	if state.Status == engine.GameOver {
		result.WriteString("\nGAME OVER")
	}

	if state.Message != "" {
		fmt.Fprintf(&result, "\nMessage: %s", state.Message)
	}

	return result.String()
}

// formatResults summarizes a batch of commands or ticks and renders the final board
func formatResults(results []*service.CommandResult) string {
	if len(results) == 0 {
		return "No commands applied"
	}

	var result strings.Builder
	applied, lines := 0, 0
	for i, r := range results {
		status := "ignored"
		if r.Applied {
			status = "ok"
			applied++
		}
		lines += r.Outcome.LinesCleared

		var notes []string
		for _, e := range r.Events {
			notes = append(notes, e.Type)
		}
		line := fmt.Sprintf("%d. %s: %s", i+1, r.Command, status)
		if len(notes) > 0 {
			line += " [" + strings.Join(notes, ", ") + "]"
		}
		result.WriteString(line + "\n")
	}

	fmt.Fprintf(&result, "\nApplied %d/%d", applied, len(results))
	if lines > 0 {
		fmt.Fprintf(&result, ", cleared %d line(s)", lines)
	}
	result.WriteString("\n\n")
	result.WriteString(formatGameState(results[len(results)-1].GameState))
	return result.String()
}
