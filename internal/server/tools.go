package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "tracker_status",
			Description: "Get the live tracker diagnostics: smoothed position and area, active color with swatch, debounce status, has-target flag, current target position and scan counters.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "tracker_config",
			Description: "Get the configuration the tracker is running with.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "tracker_commits",
			Description: "List the detections committed by the update gate for a session. Requires a commit database.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": map[string]interface{}{
						"type":        "string",
						"description": "Session to query. Defaults to the running tracker's session.",
					},
					"limit": map[string]interface{}{
						"type":        "integer",
						"description": "Return only the most recent N commits. 0 returns all.",
						"default":     0,
					},
				},
			},
		},
		{
			Name:        "tracker_sessions",
			Description: "List the session IDs stored in the commit database, most recent first.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "tracker_sample_color",
			Description: "Sample a pixel of the most recently scanned frame and report its color and whether each tracking color's classifier accepts it. Useful when tuning thresholds.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate in frame pixels (0-based)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate in frame pixels (0-based)",
					},
				},
				"required": []string{"x", "y"},
			},
		},
		{
			Name:        "tracker_debug_view",
			Description: "Render the most recently scanned frame as a PNG with a marker at the smoothed position. The marker takes the active color and grows with the smoothed area. Labels below the frame show the position, the area and the target coordinate.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Output width in pixels; height keeps the frame aspect ratio",
						"default":     160,
					},
					"grid_spacing": map[string]interface{}{
						"type":        "integer",
						"description": "Draw a pixel grid every N output pixels. 0 disables the grid.",
						"default":     0,
					},
				},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
