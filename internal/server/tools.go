package server

import "github.com/ironsheep/edge-tools-mcp/internal/imaging"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

// pipelineProperties describes the optional per-call overrides shared by
// edge_detect and edge_stats. Omitted values fall back to the server's
// configured pipeline.
func pipelineProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": pathProperty(),
		"region": map[string]interface{}{
			"type":        "object",
			"description": "Optional region to analyze (x2/y2 exclusive). If omitted, analyzes entire image.",
			"properties": map[string]interface{}{
				"x1": map[string]interface{}{"type": "integer"},
				"y1": map[string]interface{}{"type": "integer"},
				"x2": map[string]interface{}{"type": "integer"},
				"y2": map[string]interface{}{"type": "integer"},
			},
			"required": []string{"x1", "y1", "x2", "y2"},
		},
		"kernel_size": map[string]interface{}{
			"type":        "integer",
			"description": "Side of the square derivative-of-Gaussian kernels",
			"minimum":     1,
		},
		"sigma": map[string]interface{}{
			"type":        "number",
			"description": "Gaussian standard deviation (> 0)",
		},
		"distance_range": map[string]interface{}{
			"type":        "integer",
			"description": "Non-maximum suppression probe half-width, offsets [-R, R)",
			"minimum":     1,
		},
		"weak": map[string]interface{}{
			"type":        "number",
			"description": "Weak edge magnitude threshold (inclusive)",
		},
		"strong": map[string]interface{}{
			"type":        "number",
			"description": "Strong edge magnitude threshold (exclusive, >= weak)",
		},
		"radius": map[string]interface{}{
			"type":        "integer",
			"description": "Hysteresis promotion window radius, offsets [-r, r)",
			"minimum":     0,
		},
		"border": map[string]interface{}{
			"type":        "string",
			"description": "How convolution samples outside the image",
			"enum":        []string{"zero", "replicate"},
		},
		"strict_bounds": map[string]interface{}{
			"type":        "boolean",
			"description": "Reject neighbours outside the image instead of wrapping across rows",
		},
		"unit_direction": map[string]interface{}{
			"type":        "boolean",
			"description": "Quantise the unit gradient direction instead of the magnitude-scaled one",
		},
		"propagate": map[string]interface{}{
			"type":        "boolean",
			"description": "Follow chains of weak edges instead of promoting in a single pass",
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	detectProps := pipelineProperties()
	detectProps["stage"] = map[string]interface{}{
		"type":        "string",
		"description": "Pipeline product to render. Default: edges",
		"enum":        imaging.Stages,
	}

	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format. The decoded image is cached for subsequent edge tools.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Edge Pipeline
		{
			Name:        "edge_kernels",
			Description: "Synthesize the horizontal and vertical derivative-of-Gaussian kernels and return their coefficients row by row.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"size": map[string]interface{}{
						"type":        "integer",
						"description": "Kernel side length. Default: configured kernel_size",
						"minimum":     1,
					},
					"sigma": map[string]interface{}{
						"type":        "number",
						"description": "Gaussian standard deviation. Default: configured sigma",
					},
				},
			},
		},
		{
			Name:        "edge_detect",
			Description: "Run Canny edge detection and return one pipeline stage as base64-encoded PNG, with pixel counts and timings. Edge images are white for strong edges, dark gray for weak edges and black elsewhere.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": detectProps,
				"required":   []string{"path"},
			},
		},
		{
			Name:        "edge_stats",
			Description: "Run Canny edge detection and return only pixel counts and stage timings.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": pipelineProperties(),
				"required":   []string{"path"},
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
