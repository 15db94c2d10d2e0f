package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ironsheep/color-tracker/internal/detection"
	"github.com/ironsheep/color-tracker/internal/imaging"
	"github.com/ironsheep/color-tracker/internal/tracking"
)

const (
	// queryTimeout bounds commit log queries made on behalf of a tool call.
	queryTimeout = 5 * time.Second

	defaultDebugViewWidth = 160
	minMarkerSize         = 5
	maxMarkerSize         = 20
)

var (
	errNoCommitLog = errors.New("no commit database configured (start with --db)")
	errNoFrame     = errors.New("no frame has been scanned yet")
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "tracker_status").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "tracker_status":
		return s.handleTrackerStatus()
	case "tracker_config":
		return s.cfg, nil
	case "tracker_commits":
		return s.handleTrackerCommits(args)
	case "tracker_sessions":
		return s.handleTrackerSessions()
	case "tracker_sample_color":
		return s.handleTrackerSampleColor(args)
	case "tracker_debug_view":
		return s.handleTrackerDebugView(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// unmarshalArgs decodes optional tool arguments. Missing or null arguments
// leave v untouched.
func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	return json.Unmarshal(args, v)
}

func (s *Server) handleTrackerStatus() (interface{}, error) {
	if s.status == nil {
		return nil, errors.New("tracker not running")
	}
	return s.status.Status(), nil
}

type trackerCommitsArgs struct {
	SessionID string `json:"session_id"`
	Limit     int    `json:"limit"`
}

// CommitsResult is the tracker_commits payload.
type CommitsResult struct {
	SessionID string            `json:"session_id"`
	Total     int               `json:"total"`
	Commits   []tracking.Commit `json:"commits"`
}

func (s *Server) handleTrackerCommits(args json.RawMessage) (interface{}, error) {
	var a trackerCommitsArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if s.commits == nil {
		return nil, errNoCommitLog
	}
	if a.SessionID == "" {
		if s.status == nil {
			return nil, errors.New("session_id is required")
		}
		a.SessionID = s.status.Status().SessionID
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	commits, err := s.commits.Commits(ctx, a.SessionID)
	if err != nil {
		return nil, err
	}

	result := CommitsResult{SessionID: a.SessionID, Total: len(commits), Commits: commits}
	if a.Limit > 0 && len(commits) > a.Limit {
		result.Commits = commits[len(commits)-a.Limit:]
	}
	if result.Commits == nil {
		result.Commits = []tracking.Commit{}
	}
	return result, nil
}

func (s *Server) handleTrackerSessions() (interface{}, error) {
	if s.commits == nil {
		return nil, errNoCommitLog
	}
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	sessions, err := s.commits.Sessions(ctx)
	if err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []string{}
	}
	return map[string]interface{}{"sessions": sessions}, nil
}

type trackerSampleColorArgs struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// SampleColorResult is the tracker_sample_color payload.
type SampleColorResult struct {
	X      int            `json:"x"`
	Y      int            `json:"y"`
	Swatch imaging.Swatch `json:"swatch"`

	// Matches reports the classifier outcome for each tracking color using
	// the configured thresholds.
	Matches map[string]bool `json:"matches"`
}

func (s *Server) handleTrackerSampleColor(args json.RawMessage) (interface{}, error) {
	var a trackerSampleColorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if s.status == nil {
		return nil, errNoFrame
	}
	frame := s.status.LastFrame()
	if frame == nil {
		return nil, errNoFrame
	}

	swatch, err := imaging.SampleColor(frame, a.X, a.Y)
	if err != nil {
		return nil, err
	}

	r, g, b := frame.RGB(a.X, a.Y)
	thresholds := s.cfg.Thresholds()
	matches := make(map[string]bool, 3)
	for _, c := range detection.ScanOrder(detection.Auto) {
		matches[c.String()] = detection.Classify(r, g, b, c, thresholds)
	}

	return &SampleColorResult{X: a.X, Y: a.Y, Swatch: *swatch, Matches: matches}, nil
}

type trackerDebugViewArgs struct {
	Width       int `json:"width"`
	GridSpacing int `json:"grid_spacing"`
}

// DebugViewResult is the tracker_debug_view payload.
type DebugViewResult struct {
	*imaging.DebugView
	Color     detection.TrackingColor `json:"color"`
	HasTarget bool                    `json:"has_target"`
	Debounce  string                  `json:"debounce"`
}

// handleTrackerDebugView renders the last scanned frame with a marker at the
// smoothed position. The marker takes the active color and grows with the
// smoothed area between the configured minimum and maximum area.
func (s *Server) handleTrackerDebugView(args json.RawMessage) (interface{}, error) {
	a := trackerDebugViewArgs{Width: defaultDebugViewWidth}
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if s.status == nil {
		return nil, errNoFrame
	}
	frame := s.status.LastFrame()
	if frame == nil {
		return nil, errNoFrame
	}
	st := s.status.Status()

	m := s.cfg.MappingConfig()
	n := tracking.InverseLerp(
		float64(m.MinAreaPixels*m.AreaUnit),
		float64(m.MaxAreaPixels*m.AreaUnit),
		float64(st.Area))
	marker := imaging.Marker{
		Position: st.Position,
		Size:     int(tracking.Lerp(minMarkerSize, maxMarkerSize, n)),
		Color:    st.Color.Display(),
	}

	labels := []string{
		fmt.Sprintf("%.2f,%.2f", st.Position.X, st.Position.Y),
		fmt.Sprintf("%d", st.Area),
	}
	if st.Target != nil {
		labels = append(labels, fmt.Sprintf("%.2f,%.2f,%.2f", st.Target.X, st.Target.Y, st.Target.Z))
	}

	view, err := imaging.RenderDebugView(frame, marker, imaging.DebugViewOptions{
		Width:       a.Width,
		GridSpacing: a.GridSpacing,
		Labels:      labels,
	})
	if err != nil {
		return nil, err
	}
	return &DebugViewResult{
		DebugView: view,
		Color:     st.Color,
		HasTarget: st.HasTarget,
		Debounce:  st.Debounce,
	}, nil
}
