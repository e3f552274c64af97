package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/ironsheep/edge-tools-mcp/internal/imaging"
)

// createTestImageFile writes a solid-colour PNG and returns its path.
func createTestImageFile(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return writeTestPNG(t, img)
}

// createStepImageFile writes a 5×5 grayscale PNG that is black in columns
// 0-1 and white from column 2 on.
func createStepImageFile(t *testing.T) string {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 5, 5))
	for y := 0; y < 5; y++ {
		for x := 2; x < 5; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	return writeTestPNG(t, img)
}

func writeTestPNG(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "handler-test.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

func callTool(t *testing.T, s *Server, name string, args interface{}) *MCPResponse {
	t.Helper()
	paramsJSON, err := json.Marshal(map[string]interface{}{
		"name":      name,
		"arguments": args,
	})
	if err != nil {
		t.Fatalf("failed to marshal params: %v", err)
	}

	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// decodeToolResult unmarshals the JSON text content of a successful call.
func decodeToolResult(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("Result should be a map, got %T", resp.Result)
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("unexpected content: %#v", result["content"])
	}
	if content[0]["type"] != "text" {
		t.Errorf("content type: got %v, want text", content[0]["type"])
	}
	if err := json.Unmarshal([]byte(content[0]["text"].(string)), v); err != nil {
		t.Fatalf("failed to decode tool result: %v", err)
	}
}

func assertErrorCode(t *testing.T, resp *MCPResponse, code int) {
	t.Helper()
	if resp.Error == nil {
		t.Fatalf("expected error code %d, got result %v", code, resp.Result)
	}
	if resp.Error.Code != code {
		t.Errorf("Error code: got %d, want %d (%v)", resp.Error.Code, code, resp.Error.Data)
	}
}

func TestHandleToolsCall_ImageLoad(t *testing.T) {
	s := newTestServer(t)
	imgPath := createTestImageFile(t, 100, 80, color.RGBA{255, 0, 0, 255})

	var info imaging.ImageInfo
	decodeToolResult(t, callTool(t, s, "image_load", map[string]interface{}{"path": imgPath}), &info)

	if info.Width != 100 || info.Height != 80 || info.Format != "png" {
		t.Errorf("got %+v, want 100x80 png", info)
	}
	if s.cache.Len() != 1 {
		t.Errorf("cache size: got %d, want 1", s.cache.Len())
	}
}

func TestHandleToolsCall_ImageDimensions(t *testing.T) {
	s := newTestServer(t)
	imgPath := createTestImageFile(t, 200, 150, color.RGBA{0, 255, 0, 255})

	var dims imaging.DimensionsResult
	decodeToolResult(t, callTool(t, s, "image_dimensions", map[string]interface{}{"path": imgPath}), &dims)

	if dims.Width != 200 || dims.Height != 150 {
		t.Errorf("got %dx%d, want 200x150", dims.Width, dims.Height)
	}
}

func TestHandleToolsCall_EdgeKernels(t *testing.T) {
	s := newTestServer(t)

	var res KernelsResult
	decodeToolResult(t, callTool(t, s, "edge_kernels", map[string]interface{}{"size": 4, "sigma": 2.0}), &res)

	if res.Size != 4 || res.Sigma != 2.0 {
		t.Errorf("got size %d sigma %v, want 4 and 2", res.Size, res.Sigma)
	}
	if len(res.GX) != 4 || len(res.GY) != 4 {
		t.Fatalf("rows: got %d/%d, want 4", len(res.GX), len(res.GY))
	}
	for i := range res.GX {
		if len(res.GX[i]) != 4 || len(res.GY[i]) != 4 {
			t.Fatalf("row %d: got %d/%d columns, want 4", i, len(res.GX[i]), len(res.GY[i]))
		}
	}
}

func TestHandleToolsCall_EdgeKernels_Defaults(t *testing.T) {
	s := newTestServer(t)

	var res KernelsResult
	decodeToolResult(t, callTool(t, s, "edge_kernels", nil), &res)
	if res.Size != 3 || res.Sigma != 1 {
		t.Errorf("got size %d sigma %v, want the configured 3 and 1", res.Size, res.Sigma)
	}
}

func TestHandleToolsCall_EdgeDetect(t *testing.T) {
	s := newTestServer(t)
	imgPath := createStepImageFile(t)

	var res EdgeDetectResult
	decodeToolResult(t, callTool(t, s, "edge_detect", map[string]interface{}{"path": imgPath}), &res)

	if res.Stage != "edges" {
		t.Errorf("Stage: got %q, want edges", res.Stage)
	}
	if res.RunID == "" {
		t.Error("RunID should be set")
	}
	if res.Width != 5 || res.Height != 5 || res.MimeType != "image/png" {
		t.Errorf("image: got %dx%d %s", res.Width, res.Height, res.MimeType)
	}
	if res.Stats.Strong != 10 || res.Stats.Weak != 0 || res.Stats.Null != 15 {
		t.Errorf("stats: got strong=%d weak=%d null=%d, want 10/0/15",
			res.Stats.Strong, res.Stats.Weak, res.Stats.Null)
	}

	data, err := base64.StdEncoding.DecodeString(res.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			want := uint8(0)
			if x == 1 || x == 2 {
				want = 255
			}
			if got := color.GrayModel.Convert(decoded.At(x, y)).(color.Gray).Y; got != want {
				t.Errorf("pixel (%d,%d): got %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestHandleToolsCall_EdgeDetect_Stages(t *testing.T) {
	s := newTestServer(t)
	imgPath := createStepImageFile(t)

	for _, stage := range imaging.Stages {
		t.Run(stage, func(t *testing.T) {
			var res EdgeDetectResult
			decodeToolResult(t, callTool(t, s, "edge_detect", map[string]interface{}{
				"path":  imgPath,
				"stage": stage,
			}), &res)
			if res.Stage != stage {
				t.Errorf("Stage: got %q, want %q", res.Stage, stage)
			}
			if res.ImageBase64 == "" {
				t.Error("ImageBase64 should not be empty")
			}
		})
	}
}

func TestHandleToolsCall_EdgeDetect_Overrides(t *testing.T) {
	s := newTestServer(t)
	imgPath := createStepImageFile(t)

	var res EdgeDetectResult
	decodeToolResult(t, callTool(t, s, "edge_detect", map[string]interface{}{
		"path":   imgPath,
		"weak":   0.5,
		"strong": 5.0,
		"radius": 0,
	}), &res)

	if res.Params.Weak != 0.5 || res.Params.Strong != 5 || res.Params.Radius != 0 {
		t.Errorf("overrides not applied: %+v", res.Params)
	}
	// Untouched parameters keep the server configuration.
	if res.Params.KernelSize != 3 || res.Params.DistanceRange != 1 {
		t.Errorf("configured params lost: %+v", res.Params)
	}
	// Every step edge now falls between the thresholds and nothing promotes it.
	if res.Stats.Strong != 0 || res.Stats.SnapshotWeak != 10 {
		t.Errorf("stats: got strong=%d snapshot_weak=%d, want 0/10", res.Stats.Strong, res.Stats.SnapshotWeak)
	}
}

func TestHandleToolsCall_EdgeDetect_Region(t *testing.T) {
	s := newTestServer(t)
	imgPath := createStepImageFile(t)

	var res EdgeDetectResult
	decodeToolResult(t, callTool(t, s, "edge_detect", map[string]interface{}{
		"path":   imgPath,
		"region": map[string]int{"x1": 0, "y1": 0, "x2": 2, "y2": 5},
	}), &res)

	if res.Width != 2 || res.Height != 5 {
		t.Errorf("dimensions: got %dx%d, want 2x5", res.Width, res.Height)
	}
	if res.Stats.Strong != 0 {
		t.Errorf("a flat black region has no edges, got %d strong", res.Stats.Strong)
	}
}

func TestHandleToolsCall_EdgeStats(t *testing.T) {
	s := newTestServer(t)
	imgPath := createStepImageFile(t)

	var res EdgeStatsResult
	decodeToolResult(t, callTool(t, s, "edge_stats", map[string]interface{}{"path": imgPath}), &res)

	if res.Stats.Width != 5 || res.Stats.Height != 5 {
		t.Errorf("shape: got %dx%d", res.Stats.Width, res.Stats.Height)
	}
	if res.Stats.EdgePixels != 10 || res.Stats.SuppressedPixels != 10 || res.Stats.Strong != 10 {
		t.Errorf("stats: %+v", res.Stats)
	}
	if res.RunID == "" {
		t.Error("RunID should be set")
	}
}

func TestHandleToolsCall_Errors(t *testing.T) {
	s := newTestServer(t)
	imgPath := createStepImageFile(t)

	tests := []struct {
		name string
		tool string
		args interface{}
		code int
	}{
		{"unknown tool", "nonexistent_tool", map[string]interface{}{}, -32602},
		{"missing path", "edge_detect", map[string]interface{}{}, -32602},
		{"missing path load", "image_load", nil, -32602},
		{"wrong argument type", "edge_stats", map[string]interface{}{"path": 42}, -32602},
		{"weak above strong", "edge_detect", map[string]interface{}{"path": imgPath, "weak": 0.5, "strong": 0.2}, -32602},
		{"zero kernel", "edge_kernels", map[string]interface{}{"size": 0}, -32602},
		{"oversized kernel", "edge_kernels", map[string]interface{}{"size": 60000}, -32602},
		{"overflowing kernel", "edge_kernels", map[string]interface{}{"size": 3037000500}, -32602},
		{"oversized kernel_size", "edge_stats", map[string]interface{}{"path": imgPath, "kernel_size": 60000}, -32602},
		{"bad border", "edge_stats", map[string]interface{}{"path": imgPath, "border": "mirror"}, -32602},
		{"bad stage", "edge_detect", map[string]interface{}{"path": imgPath, "stage": "histogram"}, -32602},
		{"region outside image", "edge_detect", map[string]interface{}{
			"path":   imgPath,
			"region": map[string]int{"x1": 0, "y1": 0, "x2": 9, "y2": 5},
		}, -32602},
		{"non-existent file", "edge_detect", map[string]interface{}{"path": "/nonexistent/image.png"}, -32000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertErrorCode(t, callTool(t, s, tt.tool, tt.args), tt.code)
		})
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`"not an object"`),
	})
	assertErrorCode(t, resp, -32602)
}

func TestToolResult_EncodeFailure(t *testing.T) {
	var logs bytes.Buffer
	logger := log.New(&logs)

	resp := toolResult(logger, 7, map[string]float64{"magnitude": math.NaN()})
	assertErrorCode(t, resp, -32000)
	if resp.ID != 7 {
		t.Errorf("ID: got %v, want 7", resp.ID)
	}
	if !strings.Contains(logs.String(), "failed to encode tool result") {
		t.Errorf("encode failure not logged: %q", logs.String())
	}
}

func TestHandleToolsCall_EdgeStats_Cancelled(t *testing.T) {
	s := newTestServer(t)
	paramsJSON, err := json.Marshal(map[string]interface{}{
		"name":      "edge_stats",
		"arguments": map[string]interface{}{"path": createStepImageFile(t)},
	})
	if err != nil {
		t.Fatalf("failed to marshal params: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	resp := s.handleRequest(ctx, &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	assertErrorCode(t, resp, -32000)
	if data, _ := resp.Error.Data.(string); !strings.Contains(data, context.Canceled.Error()) {
		t.Errorf("error data %q does not report cancellation", data)
	}
}
