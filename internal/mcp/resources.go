package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerResources(server *mcp.Server, signals SignalReader, trades TradeReaderWriter, riskState RiskReader) {
	server.AddResource(&mcp.Resource{
		URI:         "signals://latest",
		Name:        "signals-latest",
		Description: "The most recently generated recommendation, if one is cached",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if signals == nil {
			return nil, fmt.Errorf("signal service unavailable")
		}
		rec, err := signals.Latest(ctx)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return nil, fmt.Errorf("no signal generated yet")
		}
		return jsonResource(req.Params.URI, signalGenerateOutput{Recommendation: *rec})
	})

	server.AddResource(&mcp.Resource{
		URI:         "stats://summary",
		Name:        "stats-summary",
		Description: "Aggregate statistics over the whole trade history",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if trades == nil {
			return nil, fmt.Errorf("trade service unavailable")
		}
		return jsonResource(req.Params.URI, statisticsGetOutput{Statistics: trades.Statistics(ctx)})
	})

	server.AddResource(&mcp.Resource{
		URI:         "risk://status",
		Name:        "risk-status",
		Description: "Current risk counters and stop status",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if riskState == nil {
			return nil, fmt.Errorf("risk manager unavailable")
		}
		return jsonResource(req.Params.URI, riskStatusOutput{Summary: riskState.Summary(), Status: riskState.ShouldStop()})
	})

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "trades://recent{?limit}",
		Name:        "trades-recent",
		Description: "Most recent recorded trades; optional limit query param",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if trades == nil {
			return nil, fmt.Errorf("trade service unavailable")
		}

		parsed, err := url.Parse(req.Params.URI)
		if err != nil {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		if parsed.Scheme != "trades" || parsed.Host != "recent" {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}

		limit := defaultTradeLimit
		if rawLimit := strings.TrimSpace(parsed.Query().Get("limit")); rawLimit != "" {
			n, err := strconv.Atoi(rawLimit)
			if err != nil {
				return nil, fmt.Errorf("invalid limit: %s", rawLimit)
			}
			limit = normalizeTradeLimit(n)
		}

		result := trades.Recent(ctx, limit)
		return jsonResource(req.Params.URI, tradesListOutput{Trades: result})
	})

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "trades://summary{?date}",
		Name:        "trades-daily-summary",
		Description: "Daily trade summary; optional date query param (2006-01-02, default today)",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if trades == nil {
			return nil, fmt.Errorf("trade service unavailable")
		}

		parsed, err := url.Parse(req.Params.URI)
		if err != nil {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		if parsed.Scheme != "trades" || parsed.Host != "summary" {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}

		date, err := normalizeSummaryDate(parsed.Query().Get("date"))
		if err != nil {
			return nil, err
		}

		summary := trades.DailySummary(ctx, date)
		return jsonResource(req.Params.URI, dailySummaryOutput{Summary: summary})
	})
}

func jsonResource(uri string, payload any) (*mcp.ReadResourceResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(body),
		}},
	}, nil
}
