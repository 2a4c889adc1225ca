package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/black-block-blast/game/config"
	"github.com/wricardo/black-block-blast/game/engine"
	"github.com/wricardo/black-block-blast/game/service"
	"github.com/wricardo/black-block-blast/game/session"
	"github.com/wricardo/black-block-blast/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	// Session Management
	CreateSessionFunc func(ctx context.Context, configName string, seed *uint64) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	// Game Operations
	StartFunc   func(ctx context.Context, sessionID string) (*engine.GameState, error)
	StopFunc    func(ctx context.Context, sessionID string) (*engine.GameState, error)
	CommandFunc func(ctx context.Context, sessionID, command string) (*service.CommandResult, error)
	TickFunc    func(ctx context.Context, sessionID string) (*service.CommandResult, error)

	// Game State
	GetGameStateFunc func(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Configuration
	ListConfigsFunc func(ctx context.Context) ([]*service.ConfigInfo, error)
	LoadConfigFunc  func(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfigFunc  func(ctx context.Context, configName string, config *engine.GameConfig) error
}

func (m *MockGameService) CreateSession(ctx context.Context, configName string, seed *uint64) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, configName, seed)
	}
	return &service.SessionInfo{ID: "ab12", ConfigName: configName, CreatedAt: time.Now()}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{ID: sessionID, ConfigName: "classic", CreatedAt: time.Now()}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockGameService) CleanupExpiredSessions(ctx context.Context, maxAge time.Duration) int {
	return 0
}

func (m *MockGameService) Start(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.StartFunc != nil {
		return m.StartFunc(ctx, sessionID)
	}
	return &engine.GameState{Status: engine.Running}, nil
}

func (m *MockGameService) Stop(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.StopFunc != nil {
		return m.StopFunc(ctx, sessionID)
	}
	return &engine.GameState{Status: engine.Idle}, nil
}

func (m *MockGameService) Command(ctx context.Context, sessionID, command string) (*service.CommandResult, error) {
	if m.CommandFunc != nil {
		return m.CommandFunc(ctx, sessionID, command)
	}
	return &service.CommandResult{Command: command, GameState: &engine.GameState{}}, nil
}

func (m *MockGameService) Tick(ctx context.Context, sessionID string) (*service.CommandResult, error) {
	if m.TickFunc != nil {
		return m.TickFunc(ctx, sessionID)
	}
	return &service.CommandResult{Command: "tick", GameState: &engine.GameState{}}, nil
}

func (m *MockGameService) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.GetGameStateFunc != nil {
		return m.GetGameStateFunc(ctx, sessionID)
	}
	return &engine.GameState{}, nil
}

func (m *MockGameService) ListConfigs(ctx context.Context) ([]*service.ConfigInfo, error) {
	if m.ListConfigsFunc != nil {
		return m.ListConfigsFunc(ctx)
	}
	return []*service.ConfigInfo{}, nil
}

func (m *MockGameService) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	if m.LoadConfigFunc != nil {
		return m.LoadConfigFunc(ctx, configName)
	}
	return engine.DefaultGameConfig(), nil
}

func (m *MockGameService) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	if m.SaveConfigFunc != nil {
		return m.SaveConfigFunc(ctx, configName, config)
	}
	return nil
}

func (m *MockGameService) Shutdown() {}

// Test helpers
func setupTestServer(t *testing.T, mockService service.GameService) *Server {
	t.Helper()
	hub := websocket.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return NewServer(mockService, hub)
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func serve(t *testing.T, server *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), target), w.Body.String())
}

func notFound(id string) error {
	return fmt.Errorf("session %s: %w", id, session.ErrSessionNotFound)
}

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		setupMock      func(*testing.T, *MockGameService)
		expectedStatus int
		expectedID     string
	}{
		{
			name: "default config and random seed",
			body: nil,
			setupMock: func(t *testing.T, m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string, seed *uint64) (*service.SessionInfo, error) {
					assert.Empty(t, configName)
					assert.Nil(t, seed)
					return &service.SessionInfo{ID: "ab12", ConfigName: "classic"}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			expectedID:     "ab12",
		},
		{
			name: "config and seed",
			body: map[string]interface{}{"config_id": "sprint", "seed": 42},
			setupMock: func(t *testing.T, m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string, seed *uint64) (*service.SessionInfo, error) {
					assert.Equal(t, "sprint", configName)
					require.NotNil(t, seed)
					assert.Equal(t, uint64(42), *seed)
					return &service.SessionInfo{ID: "cd34", ConfigName: configName, Seed: *seed}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			expectedID:     "cd34",
		},
		{
			name: "unknown config",
			body: map[string]string{"config_id": "nope"},
			setupMock: func(t *testing.T, m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string, seed *uint64) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("config 'nope' not found: %w", config.ErrConfigNotFound)
				}
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "service error",
			body: nil,
			setupMock: func(t *testing.T, m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string, seed *uint64) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("service error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			tt.setupMock(t, mockService)
			server := setupTestServer(t, mockService)

			w := serve(t, server, makeRequest("POST", "/api/sessions", tt.body))
			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedID != "" {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				assert.Equal(t, tt.expectedID, resp.ID)
			} else {
				var resp map[string]string
				parseResponse(t, w, &resp)
				assert.NotEmpty(t, resp["error"])
			}
		})
	}

	t.Run("malformed body", func(t *testing.T) {
		server := setupTestServer(t, &MockGameService{})
		req := httptest.NewRequest("POST", "/api/sessions", strings.NewReader("{"))
		w := serve(t, server, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestListSessions(t *testing.T) {
	now := time.Now()
	mockService := &MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "s1", CreatedAt: now.Add(-3 * time.Minute), LastAccessedAt: now.Add(-1 * time.Minute), GameState: &engine.GameState{Score: 200}},
				{ID: "s2", CreatedAt: now.Add(-2 * time.Minute), LastAccessedAt: now.Add(-3 * time.Minute), GameState: &engine.GameState{Score: 700}},
				{ID: "s3", CreatedAt: now.Add(-1 * time.Minute), LastAccessedAt: now.Add(-2 * time.Minute), GameState: &engine.GameState{Score: 0}},
			}, nil
		},
	}
	server := setupTestServer(t, mockService)

	tests := []struct {
		query    string
		expected []string
	}{
		{"", []string{"s1", "s3", "s2"}},
		{"?sort=created", []string{"s3", "s2", "s1"}},
		{"?sort=created&order=asc", []string{"s1", "s2", "s3"}},
		{"?sort=score", []string{"s2", "s1", "s3"}},
		{"?sort=score&limit=1", []string{"s2"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := serve(t, server, makeRequest("GET", "/api/sessions"+tt.query, nil))
			require.Equal(t, http.StatusOK, w.Code)

			var resp struct {
				Count    int                    `json:"count"`
				Total    int                    `json:"total"`
				Sessions []*service.SessionInfo `json:"sessions"`
			}
			parseResponse(t, w, &resp)

			ids := make([]string, len(resp.Sessions))
			for i, s := range resp.Sessions {
				ids[i] = s.ID
			}
			assert.Equal(t, tt.expected, ids)
			assert.Equal(t, len(tt.expected), resp.Count)
			assert.Equal(t, 3, resp.Total)
		})
	}
}

func TestSessionNotFoundMapsTo404(t *testing.T) {
	mockService := &MockGameService{
		GetSessionFunc: func(ctx context.Context, id string) (*service.SessionInfo, error) {
			return nil, notFound(id)
		},
		DeleteSessionFunc: func(ctx context.Context, id string) error {
			return notFound(id)
		},
		GetGameStateFunc: func(ctx context.Context, id string) (*engine.GameState, error) {
			return nil, notFound(id)
		},
		StartFunc: func(ctx context.Context, id string) (*engine.GameState, error) {
			return nil, notFound(id)
		},
		StopFunc: func(ctx context.Context, id string) (*engine.GameState, error) {
			return nil, notFound(id)
		},
		CommandFunc: func(ctx context.Context, id, command string) (*service.CommandResult, error) {
			return nil, notFound(id)
		},
		TickFunc: func(ctx context.Context, id string) (*service.CommandResult, error) {
			return nil, notFound(id)
		},
	}
	server := setupTestServer(t, mockService)

	requests := []*http.Request{
		makeRequest("GET", "/api/sessions/zz99", nil),
		makeRequest("DELETE", "/api/sessions/zz99", nil),
		makeRequest("GET", "/api/sessions/zz99/state", nil),
		makeRequest("POST", "/api/sessions/zz99/start", nil),
		makeRequest("POST", "/api/sessions/zz99/stop", nil),
		makeRequest("POST", "/api/sessions/zz99/command", map[string]string{"command": "left"}),
		makeRequest("POST", "/api/sessions/zz99/tick", nil),
		makeRequest("GET", "/ws?session=zz99", nil),
	}

	for _, req := range requests {
		t.Run(req.Method+" "+req.URL.Path, func(t *testing.T) {
			w := serve(t, server, req)
			assert.Equal(t, http.StatusNotFound, w.Code)

			var resp map[string]string
			parseResponse(t, w, &resp)
			assert.Contains(t, resp["error"], "session not found")
		})
	}
}

func TestStartAndStop(t *testing.T) {
	var calls []string
	mockService := &MockGameService{
		StartFunc: func(ctx context.Context, id string) (*engine.GameState, error) {
			calls = append(calls, "start:"+id)
			return &engine.GameState{Status: engine.Running}, nil
		},
		StopFunc: func(ctx context.Context, id string) (*engine.GameState, error) {
			calls = append(calls, "stop:"+id)
			return &engine.GameState{Status: engine.Idle}, nil
		},
	}
	server := setupTestServer(t, mockService)

	w := serve(t, server, makeRequest("POST", "/api/sessions/ab12/start", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	parseResponse(t, w, &resp)
	assert.Equal(t, engine.Running, resp.State.Status)

	w = serve(t, server, makeRequest("POST", "/api/sessions/ab12/stop", nil))
	require.Equal(t, http.StatusOK, w.Code)
	parseResponse(t, w, &resp)
	assert.Equal(t, engine.Idle, resp.State.Status)

	assert.Equal(t, []string{"start:ab12", "stop:ab12"}, calls)

	// GET is not routed to the start handler
	w = serve(t, server, makeRequest("GET", "/api/sessions/ab12/start", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestCommand(t *testing.T) {
	mockService := &MockGameService{
		CommandFunc: func(ctx context.Context, id, command string) (*service.CommandResult, error) {
			if command == "hold" {
				return nil, fmt.Errorf("%w: %q", service.ErrUnknownCommand, command)
			}
			return &service.CommandResult{
				Command:   command,
				Applied:   true,
				Outcome:   engine.Outcome{Changed: true},
				GameState: &engine.GameState{Status: engine.Running, Score: 100},
			}, nil
		},
	}
	server := setupTestServer(t, mockService)

	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
	}{
		{"valid command", map[string]string{"command": "rotate"}, http.StatusOK},
		{"unknown command", map[string]string{"command": "hold"}, http.StatusBadRequest},
		{"missing command", map[string]string{}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(t, server, makeRequest("POST", "/api/sessions/ab12/command", tt.body))
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}

	w := serve(t, server, makeRequest("POST", "/api/sessions/ab12/command", map[string]string{"command": "left"}))
	var result service.CommandResult
	parseResponse(t, w, &result)
	assert.Equal(t, "left", result.Command)
	assert.True(t, result.Applied)
	assert.Equal(t, 100, result.GameState.Score)
}

func TestConfigs(t *testing.T) {
	var saved *engine.GameConfig
	mockService := &MockGameService{
		ListConfigsFunc: func(ctx context.Context) ([]*service.ConfigInfo, error) {
			return []*service.ConfigInfo{{ConfigID: "classic", Name: "classic", Rows: 20, Cols: 10}}, nil
		},
		LoadConfigFunc: func(ctx context.Context, name string) (*engine.GameConfig, error) {
			if name != "classic" {
				return nil, config.ErrConfigNotFound
			}
			return engine.DefaultGameConfig(), nil
		},
		SaveConfigFunc: func(ctx context.Context, name string, c *engine.GameConfig) error {
			if err := engine.ValidateGameConfig(c); err != nil {
				return fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
			}
			saved = c
			return nil
		},
	}
	server := setupTestServer(t, mockService)

	t.Run("list", func(t *testing.T) {
		w := serve(t, server, makeRequest("GET", "/api/configs", nil))
		require.Equal(t, http.StatusOK, w.Code)
		var configs []*service.ConfigInfo
		parseResponse(t, w, &configs)
		require.Len(t, configs, 1)
		assert.Equal(t, 20, configs[0].Rows)
	})

	t.Run("get", func(t *testing.T) {
		w := serve(t, server, makeRequest("GET", "/api/configs/classic", nil))
		require.Equal(t, http.StatusOK, w.Code)
		var got engine.GameConfig
		parseResponse(t, w, &got)
		assert.Equal(t, engine.DefaultTickMS, got.TickIntervalMS)

		w = serve(t, server, makeRequest("GET", "/api/configs/missing", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("create", func(t *testing.T) {
		c := engine.DefaultGameConfig()
		c.Name = "mine"
		w := serve(t, server, makeRequest("POST", "/api/configs", c))
		require.Equal(t, http.StatusCreated, w.Code)
		require.NotNil(t, saved)
		assert.Equal(t, "mine", saved.Name)

		c.Rows = 1
		w = serve(t, server, makeRequest("POST", "/api/configs", c))
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = serve(t, server, makeRequest("POST", "/api/configs", map[string]string{"description": "no name"}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHealth(t *testing.T) {
	server := setupTestServer(t, &MockGameService{})
	w := serve(t, server, makeRequest("GET", "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	parseResponse(t, w, &resp)
	assert.Equal(t, "healthy", resp["status"])
}

func TestWebSocketRequiresSession(t *testing.T) {
	server := setupTestServer(t, &MockGameService{})
	w := serve(t, server, makeRequest("GET", "/ws", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// tinyConfig is a 4x4 well so a soft-dropped game tops out quickly
const tinyConfig = `{
  "name": "tiny",
  "description": "4x4 well",
  "rows": 4,
  "cols": 4,
  "messages": {"welcome": "hi", "game_over": "full"}
}`

// newLiveServer wires the real session, config and service packages behind
// an httptest server
func newLiveServer(t *testing.T) (*httptest.Server, *websocket.Hub) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tiny.json"), []byte(tinyConfig), 0644))
	configs, err := config.NewManager(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	hub := websocket.NewHub()
	svc := service.NewGameService(session.NewManager(), configs, service.WithNotifier(hub))
	hub.SetCommandHandler(func(ctx context.Context, id, cmd string) error {
		_, err := svc.Command(ctx, id, cmd)
		return err
	})
	go hub.Run(ctx)

	ts := httptest.NewServer(NewServer(svc, hub))
	t.Cleanup(func() {
		ts.Close()
		svc.Shutdown()
		cancel()
	})
	return ts, hub
}

func postJSON(t *testing.T, url string, body interface{}, target interface{}) int {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer resp.Body.Close()

	if target != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
	}
	return resp.StatusCode
}

// readAll drains a connection into a channel until it closes
func readAll(conn *gorillaws.Conn) <-chan websocket.Message {
	out := make(chan websocket.Message, 1024)
	go func() {
		defer close(out)
		for {
			var message websocket.Message
			if err := conn.ReadJSON(&message); err != nil {
				return
			}
			out <- message
		}
	}()
	return out
}

func TestLiveGameOverHTTPAndWebSocket(t *testing.T) {
	ts, hub := newLiveServer(t)

	var info service.SessionInfo
	seed := uint64(7)
	require.Equal(t, http.StatusCreated, postJSON(t, ts.URL+"/api/sessions", map[string]interface{}{"seed": seed}, &info))
	assert.Equal(t, seed, info.Seed)
	assert.Equal(t, engine.Idle, info.GameState.Status)
	assert.Equal(t, "tiny", info.GameConfig.Name)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?session=" + strings.ToUpper(info.ID)
	conn, _, err := gorillaws.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount(info.ID) == 1 }, time.Second, 5*time.Millisecond)
	messages := readAll(conn)

	// start over the socket, then read the pushed snapshot
	require.NoError(t, conn.WriteJSON(websocket.Incoming{Command: "start"}))
	select {
	case pushed := <-messages:
		assert.Equal(t, websocket.EventStateUpdate, pushed.Event)
		assert.Equal(t, engine.Running, pushed.GameState.Status)
	case <-time.After(time.Second):
		t.Fatal("no snapshot pushed after start")
	}

	// Soft drop until the well fills
	var result service.CommandResult
	for i := 0; i < 1000; i++ {
		result = service.CommandResult{}
		require.Equal(t, http.StatusOK, postJSON(t, ts.URL+"/api/sessions/"+info.ID+"/command", map[string]string{"command": "down"}, &result))
		if result.GameState.Status == engine.GameOver {
			break
		}
	}
	require.Equal(t, engine.GameOver, result.GameState.Status)

	// A game_over event is pushed to the socket
	deadline := time.After(2 * time.Second)
	for gameOver := false; !gameOver; {
		select {
		case message, ok := <-messages:
			require.True(t, ok, "connection closed before game_over")
			gameOver = message.Event == websocket.EventGameOver
		case <-deadline:
			t.Fatal("no game_over event pushed")
		}
	}

	// Input after game over is ignored
	result = service.CommandResult{}
	require.Equal(t, http.StatusOK, postJSON(t, ts.URL+"/api/sessions/"+info.ID+"/command", map[string]string{"command": "left"}, &result))
	assert.False(t, result.Applied)

	status := postJSON(t, ts.URL+"/api/sessions/"+info.ID+"/command", map[string]string{"command": "hold"}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}
