package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/ironsheep/edge-tools-mcp/internal/canny"
	"github.com/ironsheep/edge-tools-mcp/internal/config"
	"github.com/ironsheep/edge-tools-mcp/internal/imaging"
	"github.com/ironsheep/edge-tools-mcp/internal/raster"
)

// errInvalidArguments marks tool failures caused by the caller's arguments.
// They are reported with the JSON-RPC invalid params code.
var errInvalidArguments = errors.New("invalid arguments")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "edge_detect").
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
// Argument and parameter errors return -32602; any other tool failure
// returns -32000. Every call is logged under a fresh run id.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	runID := uuid.NewString()
	logger := s.logger.With("run_id", runID, "tool", params.Name)
	start := time.Now()

	result, err := s.executeTool(ctx, logger, runID, params.Name, params.Arguments)
	if err != nil {
		logger.Warn("tool failed", "err", err)
		if errors.Is(err, errInvalidArguments) || errors.Is(err, canny.ErrInvalidParameter) {
			return errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
		}
		return errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}
	logger.Info("tool completed", "duration", time.Since(start).Round(time.Millisecond))

	return toolResult(logger, req.ID, result)
}

// toolResult wraps a tool's result as pretty-printed JSON text content. A
// result that cannot be encoded (e.g. a NaN float) is logged and reported
// as a tool failure.
func toolResult(logger *log.Logger, id interface{}, result interface{}) *MCPResponse {
	text, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Error("failed to encode tool result", "err", err)
		return errorResponse(id, codeToolFailed, "Tool execution failed", err.Error())
	}
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": string(text),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, logger *log.Logger, runID, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Edge Pipeline
	case "edge_kernels":
		return s.handleEdgeKernels(args)
	case "edge_detect":
		return s.handleEdgeDetect(ctx, logger, runID, args)
	case "edge_stats":
		return s.handleEdgeStats(ctx, logger, runID, args)

	default:
		return nil, fmt.Errorf("%w: unknown tool: %s", errInvalidArguments, name)
	}
}

// decodeArgs unmarshals tool arguments; absent arguments decode as {}.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidArguments, err)
	}
	return nil
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (a imageLoadArgs) validate() error {
	if a.Path == "" {
		return fmt.Errorf("%w: path is required", errInvalidArguments)
	}
	return nil
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Edge Pipeline Handlers ===

type edgeKernelsArgs struct {
	Size  *int     `json:"size"`
	Sigma *float64 `json:"sigma"`
}

// KernelsResult holds both gradient kernels as rows of coefficients.
type KernelsResult struct {
	Size  int         `json:"size"`
	Sigma float64     `json:"sigma"`
	GX    [][]float64 `json:"gx"`
	GY    [][]float64 `json:"gy"`
}

func (s *Server) handleEdgeKernels(args json.RawMessage) (interface{}, error) {
	var a edgeKernelsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	size, sigma := s.pipeline.KernelSize, s.pipeline.Sigma
	if a.Size != nil {
		size = *a.Size
	}
	if a.Sigma != nil {
		sigma = *a.Sigma
	}

	gx, gy, err := canny.SynthesizeKernels(size, sigma)
	if err != nil {
		return nil, err
	}
	return &KernelsResult{
		Size:  size,
		Sigma: sigma,
		GX:    rows(gx),
		GY:    rows(gy),
	}, nil
}

func rows(r *raster.Raster[float64]) [][]float64 {
	out := make([][]float64, r.Height())
	for row := range out {
		out[row] = r.Data()[row*r.Width() : (row+1)*r.Width()]
	}
	return out
}

// edgeArgs carries the image selection and per-call pipeline overrides.
// Nil fields keep the server's configured value.
type edgeArgs struct {
	Path          string          `json:"path"`
	Region        *imaging.Region `json:"region"`
	KernelSize    *int            `json:"kernel_size"`
	Sigma         *float64        `json:"sigma"`
	DistanceRange *int            `json:"distance_range"`
	Weak          *float64        `json:"weak"`
	Strong        *float64        `json:"strong"`
	Radius        *int            `json:"radius"`
	Border        *string         `json:"border"`
	StrictBounds  *bool           `json:"strict_bounds"`
	UnitDirection *bool           `json:"unit_direction"`
	Propagate     *bool           `json:"propagate"`
}

func (a edgeArgs) apply(p config.Pipeline) config.Pipeline {
	setInt(&p.KernelSize, a.KernelSize)
	setFloat(&p.Sigma, a.Sigma)
	setInt(&p.DistanceRange, a.DistanceRange)
	setFloat(&p.Weak, a.Weak)
	setFloat(&p.Strong, a.Strong)
	setInt(&p.Radius, a.Radius)
	if a.Border != nil {
		p.Border = *a.Border
	}
	setBool(&p.StrictBounds, a.StrictBounds)
	setBool(&p.UnitDirection, a.UnitDirection)
	setBool(&p.Propagate, a.Propagate)
	return p
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// detect loads, optionally crops and runs the pipeline on the image named
// by a.
func (s *Server) detect(ctx context.Context, logger *log.Logger, a edgeArgs) (*canny.Result, canny.Params, error) {
	if a.Path == "" {
		return nil, canny.Params{}, fmt.Errorf("%w: path is required", errInvalidArguments)
	}
	pipeline := a.apply(s.pipeline)
	if err := pipeline.Validate(); err != nil {
		return nil, canny.Params{}, err
	}
	conv, err := pipeline.Convolver()
	if err != nil {
		return nil, canny.Params{}, err
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, canny.Params{}, err
	}
	if a.Region != nil {
		if img, err = imaging.CropRegion(img, *a.Region); err != nil {
			return nil, canny.Params{}, fmt.Errorf("%w: %v", errInvalidArguments, err)
		}
	}
	intensity, err := imaging.ToRaster(img)
	if err != nil {
		return nil, canny.Params{}, err
	}

	det, err := canny.NewDetector(pipeline.Params, conv, logger)
	if err != nil {
		return nil, canny.Params{}, err
	}
	res, err := det.DetectContext(ctx, intensity)
	if err != nil {
		return nil, canny.Params{}, err
	}
	return res, pipeline.Params, nil
}

type edgeDetectArgs struct {
	edgeArgs
	Stage string `json:"stage"`
}

// EdgeDetectResult is the rendered stage plus the run's statistics.
type EdgeDetectResult struct {
	imaging.EdgeImageResult
	RunID  string       `json:"run_id"`
	Stage  string       `json:"stage"`
	Params canny.Params `json:"params"`
	Stats  canny.Stats  `json:"stats"`
}

func (s *Server) handleEdgeDetect(ctx context.Context, logger *log.Logger, runID string, args json.RawMessage) (interface{}, error) {
	var a edgeDetectArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Stage == "" {
		a.Stage = imaging.StageEdges
	}
	if !validStage(a.Stage) {
		return nil, fmt.Errorf("%w: unknown stage %q (valid: %v)", errInvalidArguments, a.Stage, imaging.Stages)
	}

	res, params, err := s.detect(ctx, logger, a.edgeArgs)
	if err != nil {
		return nil, err
	}
	img, err := imaging.RenderStage(res, a.Stage)
	if err != nil {
		return nil, err
	}
	encoded, err := imaging.EncodePNG(img)
	if err != nil {
		return nil, err
	}

	return &EdgeDetectResult{
		EdgeImageResult: *encoded,
		RunID:           runID,
		Stage:           a.Stage,
		Params:          params,
		Stats:           res.Stats,
	}, nil
}

func validStage(stage string) bool {
	for _, s := range imaging.Stages {
		if s == stage {
			return true
		}
	}
	return false
}

// EdgeStatsResult reports the statistics of a detection run.
type EdgeStatsResult struct {
	RunID  string       `json:"run_id"`
	Params canny.Params `json:"params"`
	Stats  canny.Stats  `json:"stats"`
}

func (s *Server) handleEdgeStats(ctx context.Context, logger *log.Logger, runID string, args json.RawMessage) (interface{}, error) {
	var a edgeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	res, params, err := s.detect(ctx, logger, a)
	if err != nil {
		return nil, err
	}
	return &EdgeStatsResult{
		RunID:  runID,
		Params: params,
		Stats:  res.Stats,
	}, nil
}
