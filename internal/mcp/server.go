// Package mcp provides Model Context Protocol server functionality.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/helixml/compset/domain/calendar"
	"github.com/helixml/compset/domain/graph"
	"github.com/helixml/compset/domain/index"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Default tool arguments.
const (
	defaultTrendDays       = 30
	defaultCompetitorLimit = 10
)

// IndexReader provides snapshot lookups for MCP tools.
type IndexReader interface {
	Latest(ctx context.Context, propertyID int64) (*index.Snapshot, error)
	Trend(ctx context.Context, propertyID int64, days int) ([]index.TrendPoint, error)
}

// CompetitorLister provides ranked competitors for MCP tools.
type CompetitorLister interface {
	Competitors(ctx context.Context, propertyID int64, limit int) ([]graph.Competitor, error)
}

// Server wraps the MCP server with competitive-intelligence tools.
type Server struct {
	mcpServer   *server.MCPServer
	index       IndexReader
	competitors CompetitorLister
	version     string
	logger      *slog.Logger
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(indexReader IndexReader, competitors CompetitorLister, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		index:       indexReader,
		competitors: competitors,
		version:     version,
		logger:      logger,
	}

	mcpServer := server.NewMCPServer(
		"compset",
		"0.1.0",
		server.WithToolCapabilities(true),
	)
	s.registerTools(mcpServer)

	s.mcpServer = mcpServer
	return s
}

func (s *Server) registerTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(mcp.NewTool("get_version",
		mcp.WithDescription("Get the compset server version"),
	), s.handleGetVersion)

	mcpServer.AddTool(mcp.NewTool("get_latest_index",
		mcp.WithDescription("Get the most recent neighborhood competitive index of a property, or null if none has been computed"),
		mcp.WithNumber("property_id",
			mcp.Required(),
			mcp.Description("The property ID"),
		),
	), s.handleLatestIndex)

	mcpServer.AddTool(mcp.NewTool("get_index_trend",
		mcp.WithDescription("Get the daily overall index and price competitiveness of a property, oldest first"),
		mcp.WithNumber("property_id",
			mcp.Required(),
			mcp.Description("The property ID"),
		),
		mcp.WithNumber("days",
			mcp.Description("Number of calendar days ending today, 1-90 (default: 30)"),
		),
	), s.handleTrend)

	mcpServer.AddTool(mcp.NewTool("list_competitors",
		mcp.WithDescription("List the most similar competitor hotels of a property in rank order"),
		mcp.WithNumber("property_id",
			mcp.Required(),
			mcp.Description("The property ID"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Number of competitors to return (default: 10)"),
		),
	), s.handleCompetitors)
}

func (s *Server) handleGetVersion(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.version), nil
}

type snapshotResult struct {
	PropertyID           int64    `json:"property_id"`
	Date                 string   `json:"date"`
	OverallIndex         float64  `json:"overall_index"`
	PriceCompetitiveness float64  `json:"price_competitiveness_score"`
	ValueScore           float64  `json:"value_score"`
	PositioningScore     float64  `json:"positioning_score"`
	MarketPosition       string   `json:"market_position"`
	PriceDataAvailable   bool     `json:"price_data_available"`
	PropertyPrice        *float64 `json:"property_price"`
	MedianPrice          *float64 `json:"neighborhood_median_price"`
	CompetitorsAnalyzed  int      `json:"competitors_analyzed"`
	Change1d             *float64 `json:"index_change_1d"`
	Change7d             *float64 `json:"index_change_7d"`
	Change30d            *float64 `json:"index_change_30d"`
	Advantages           []string `json:"competitive_advantages"`
	Weaknesses           []string `json:"competitive_weaknesses"`
}

func (s *Server) handleLatestIndex(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	propertyID, errResult := requirePropertyID(request)
	if errResult != nil {
		return errResult, nil
	}

	snap, err := s.index.Latest(ctx, propertyID)
	if err != nil {
		s.logger.Error("failed to get latest index", slog.Int64("property_id", propertyID), slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("failed to get latest index: %v", err)), nil
	}
	if snap == nil {
		return mcp.NewToolResultText("null"), nil
	}

	changes := snap.Changes()
	result := snapshotResult{
		PropertyID:           snap.PropertyID(),
		Date:                 calendar.Format(snap.Date()),
		OverallIndex:         snap.OverallIndex(),
		PriceCompetitiveness: snap.PriceCompetitiveness(),
		ValueScore:           snap.ValueScore(),
		PositioningScore:     snap.PositioningScore(),
		MarketPosition:       string(snap.MarketPosition()),
		CompetitorsAnalyzed:  snap.CompetitorsAnalyzed(),
		Change1d:             changes.Day,
		Change7d:             changes.Week,
		Change30d:            changes.Month,
		Advantages:           snap.Advantages(),
		Weaknesses:           snap.Weaknesses(),
	}
	if p, ok := snap.Pricing(); ok {
		result.PriceDataAvailable = true
		result.PropertyPrice = &p.PropertyPrice
		result.MedianPrice = &p.MedianPrice
	}
	return jsonResult(result)
}

func (s *Server) handleTrend(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	propertyID, errResult := requirePropertyID(request)
	if errResult != nil {
		return errResult, nil
	}
	days := request.GetInt("days", defaultTrendDays)

	points, err := s.index.Trend(ctx, propertyID, days)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get trend: %v", err)), nil
	}

	type trendResult struct {
		Date                 string  `json:"date"`
		OverallIndex         float64 `json:"overall_index"`
		PriceCompetitiveness float64 `json:"price_competitiveness_score"`
	}
	results := make([]trendResult, len(points))
	for i, p := range points {
		results[i] = trendResult{
			Date:                 calendar.Format(p.Date),
			OverallIndex:         p.OverallIndex,
			PriceCompetitiveness: p.PriceCompetitiveness,
		}
	}
	return jsonResult(results)
}

func (s *Server) handleCompetitors(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	propertyID, errResult := requirePropertyID(request)
	if errResult != nil {
		return errResult, nil
	}
	limit := request.GetInt("limit", defaultCompetitorLimit)

	competitors, err := s.competitors.Competitors(ctx, propertyID, limit)
	if err != nil {
		s.logger.Error("failed to list competitors", slog.Int64("property_id", propertyID), slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("failed to list competitors: %v", err)), nil
	}

	type competitorResult struct {
		Rank              int     `json:"rank"`
		HotelID           int64   `json:"hotel_id"`
		Name              string  `json:"name"`
		DistanceKm        float64 `json:"distance_km"`
		OverallSimilarity float64 `json:"overall_similarity"`
	}
	results := make([]competitorResult, len(competitors))
	for i, c := range competitors {
		results[i] = competitorResult{
			Rank:              c.Relationship.Rank(),
			HotelID:           c.Hotel.ID(),
			Name:              c.Hotel.Name(),
			DistanceKm:        c.Relationship.DistanceKm(),
			OverallSimilarity: c.Relationship.OverallSimilarity(),
		}
	}
	return jsonResult(results)
}

func requirePropertyID(request mcp.CallToolRequest) (int64, *mcp.CallToolResult) {
	id := request.GetInt("property_id", 0)
	if id <= 0 {
		return 0, mcp.NewToolResultError("property_id is required")
	}
	return int64(id), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// MCPServer returns the underlying MCP server for stdio serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio runs the MCP server on stdio.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
