package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/helixml/compset/domain/geo"
	"github.com/helixml/compset/domain/graph"
	"github.com/helixml/compset/domain/hotel"
	"github.com/helixml/compset/domain/index"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDay = time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)

// fakeIndex implements IndexReader with canned snapshots keyed by property.
type fakeIndex struct {
	snapshots map[int64]index.Snapshot
	trendDays int
}

func (f *fakeIndex) Latest(_ context.Context, propertyID int64) (*index.Snapshot, error) {
	snap, ok := f.snapshots[propertyID]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func (f *fakeIndex) Trend(_ context.Context, propertyID int64, days int) ([]index.TrendPoint, error) {
	f.trendDays = days
	snap, ok := f.snapshots[propertyID]
	if !ok {
		return []index.TrendPoint{}, nil
	}
	return []index.TrendPoint{{
		Date:                 snap.Date(),
		OverallIndex:         snap.OverallIndex(),
		PriceCompetitiveness: snap.PriceCompetitiveness(),
	}}, nil
}

// fakeCompetitors implements CompetitorLister with a canned list.
type fakeCompetitors struct {
	competitors []graph.Competitor
}

func (f *fakeCompetitors) Competitors(_ context.Context, _ int64, limit int) ([]graph.Competitor, error) {
	if limit > 0 && limit < len(f.competitors) {
		return f.competitors[:limit], nil
	}
	return f.competitors, nil
}

func testSnapshot() index.Snapshot {
	day := 1.5
	return index.ReconstructSnapshot(1, 7, testDay, index.Scores{
		OverallIndex:         66.4,
		PriceCompetitiveness: 63.64,
		ValueScore:           88,
		PositioningScore:     40,
		MarketPosition:       index.MarketMid,
		Pricing: &index.Pricing{
			PropertyPrice:     100,
			MedianPrice:       110,
			AvgPrice:          110,
			Percentile:        40,
			PricedCompetitors: 5,
		},
		CompetitorsAnalyzed: 5,
		Changes:             index.Changes{Day: &day},
		Advantages:          []string{index.TagStrongValue},
		Weaknesses:          []string{},
	}, testDay, testDay)
}

func testCompetitor(id int64, rank int, name string) graph.Competitor {
	return graph.Competitor{
		Relationship: graph.ReconstructRelationship(id, 7, id, 0.9, 1, 1, 0.96, 0.5, rank, graph.DefaultWeights(), testDay),
		Hotel: hotel.ReconstructHotel(id, "ext", "feed", name, geo.ReconstructLocation(48.85, 2.35),
			nil, nil, 0, []string{}, []float64{}, testDay, testDay, testDay),
	}
}

func testServer() *Server {
	return NewServer(
		&fakeIndex{snapshots: map[int64]index.Snapshot{7: testSnapshot()}},
		&fakeCompetitors{competitors: []graph.Competitor{
			testCompetitor(11, 1, "Hotel Lutetia"),
			testCompetitor(12, 2, "Hotel Costes"),
		}},
		"0.1.0-test",
		nil,
	)
}

// sendMessage marshals a JSON-RPC request, sends it through HandleMessage,
// and returns the JSONRPCResponse.
func sendMessage(t *testing.T, srv *Server, method string, id int, params map[string]any) mcp.JSONRPCResponse {
	t.Helper()

	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  method,
	}
	if params != nil {
		msg["params"] = params
	}

	raw, err := json.Marshal(msg)
	require.NoError(t, err)

	result := srv.MCPServer().HandleMessage(context.Background(), raw)
	resp, ok := result.(mcp.JSONRPCResponse)
	require.True(t, ok, "expected JSONRPCResponse, got %T: %+v", result, result)
	return resp
}

// resultJSON re-marshals the Result field through JSON into dst.
func resultJSON(t *testing.T, resp mcp.JSONRPCResponse, dst any) {
	t.Helper()
	b, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, dst))
}

func initializeParams() map[string]any {
	return map[string]any{
		"protocolVersion": "2025-06-18",
		"capabilities":    map[string]any{},
		"clientInfo": map[string]any{
			"name":    "test-client",
			"version": "0.0.1",
		},
	}
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) mcp.CallToolResult {
	t.Helper()
	sendMessage(t, srv, "initialize", 1, initializeParams())
	resp := sendMessage(t, srv, "tools/call", 2, map[string]any{
		"name":      name,
		"arguments": args,
	})
	var result mcp.CallToolResult
	resultJSON(t, resp, &result)
	return result
}

func textFromContent(t *testing.T, result mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content, "no content in result")
	b, err := json.Marshal(result.Content[0])
	require.NoError(t, err)
	var tc struct {
		Text string `json:"text"`
	}
	require.NoError(t, json.Unmarshal(b, &tc))
	return tc.Text
}

func TestServer_Initialize(t *testing.T) {
	srv := testServer()
	resp := sendMessage(t, srv, "initialize", 1, initializeParams())

	var result mcp.InitializeResult
	resultJSON(t, resp, &result)

	assert.Equal(t, "compset", result.ServerInfo.Name)
	assert.Equal(t, "0.1.0", result.ServerInfo.Version)
	assert.NotNil(t, result.Capabilities.Tools)
}

func TestServer_ListTools(t *testing.T) {
	srv := testServer()
	sendMessage(t, srv, "initialize", 1, initializeParams())
	resp := sendMessage(t, srv, "tools/list", 2, nil)

	var result mcp.ListToolsResult
	resultJSON(t, resp, &result)
	require.Len(t, result.Tools, 4)

	tools := map[string]mcp.Tool{}
	for _, tool := range result.Tools {
		tools[tool.Name] = tool
	}
	for _, name := range []string{"get_version", "get_latest_index", "get_index_trend", "list_competitors"} {
		assert.Contains(t, tools, name)
	}
	assert.Contains(t, tools["get_index_trend"].InputSchema.Required, "property_id")
	assert.Contains(t, tools["get_index_trend"].InputSchema.Properties, "days")
}

func TestServer_GetVersion(t *testing.T) {
	result := callTool(t, testServer(), "get_version", map[string]any{})
	require.False(t, result.IsError)
	assert.Equal(t, "0.1.0-test", textFromContent(t, result))
}

func TestServer_GetLatestIndex(t *testing.T) {
	result := callTool(t, testServer(), "get_latest_index", map[string]any{"property_id": 7})
	require.False(t, result.IsError, textFromContent(t, result))

	var snap snapshotResult
	require.NoError(t, json.Unmarshal([]byte(textFromContent(t, result)), &snap))
	assert.Equal(t, int64(7), snap.PropertyID)
	assert.Equal(t, "2026-10-14", snap.Date)
	assert.Equal(t, 66.4, snap.OverallIndex)
	assert.True(t, snap.PriceDataAvailable)
	require.NotNil(t, snap.MedianPrice)
	assert.Equal(t, 110.0, *snap.MedianPrice)
	require.NotNil(t, snap.Change1d)
	assert.Equal(t, 1.5, *snap.Change1d)
	assert.Nil(t, snap.Change7d)
	assert.Equal(t, []string{index.TagStrongValue}, snap.Advantages)
}

func TestServer_GetLatestIndexWithoutSnapshot(t *testing.T) {
	result := callTool(t, testServer(), "get_latest_index", map[string]any{"property_id": 8})
	require.False(t, result.IsError)
	assert.Equal(t, "null", textFromContent(t, result))
}

func TestServer_GetLatestIndexMissingProperty(t *testing.T) {
	result := callTool(t, testServer(), "get_latest_index", map[string]any{})
	require.True(t, result.IsError)
	assert.Contains(t, textFromContent(t, result), "property_id is required")
}

func TestServer_GetIndexTrend(t *testing.T) {
	idx := &fakeIndex{snapshots: map[int64]index.Snapshot{7: testSnapshot()}}
	srv := NewServer(idx, &fakeCompetitors{}, "test", nil)

	result := callTool(t, srv, "get_index_trend", map[string]any{"property_id": 7, "days": 14})
	require.False(t, result.IsError)
	assert.Equal(t, 14, idx.trendDays)

	var points []struct {
		Date         string  `json:"date"`
		OverallIndex float64 `json:"overall_index"`
	}
	require.NoError(t, json.Unmarshal([]byte(textFromContent(t, result)), &points))
	require.Len(t, points, 1)
	assert.Equal(t, "2026-10-14", points[0].Date)

	callTool(t, srv, "get_index_trend", map[string]any{"property_id": 7})
	assert.Equal(t, defaultTrendDays, idx.trendDays)
}

func TestServer_ListCompetitors(t *testing.T) {
	result := callTool(t, testServer(), "list_competitors", map[string]any{"property_id": 7, "limit": 1})
	require.False(t, result.IsError)

	var items []struct {
		Rank    int    `json:"rank"`
		HotelID int64  `json:"hotel_id"`
		Name    string `json:"name"`
	}
	require.NoError(t, json.Unmarshal([]byte(textFromContent(t, result)), &items))
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Rank)
	assert.Equal(t, "Hotel Lutetia", items[0].Name)
}

// Ensure fakes satisfy interfaces at compile time.
var (
	_ IndexReader      = (*fakeIndex)(nil)
	_ CompetitorLister = (*fakeCompetitors)(nil)
)
