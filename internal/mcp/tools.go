package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerTools(server *mcp.Server, signals SignalReader, trades TradeReaderWriter, riskState RiskReader) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "signal_generate",
		Description: "Generate a Crypto IDX trading recommendation (direction, confidence, duration, risk, amount)",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ signalGenerateInput) (*mcp.CallToolResult, signalGenerateOutput, error) {
		if signals == nil {
			return nil, signalGenerateOutput{}, fmt.Errorf("signal service unavailable")
		}
		rec, err := signals.Generate(ctx)
		if err != nil {
			return nil, signalGenerateOutput{}, err
		}
		return nil, signalGenerateOutput{Recommendation: rec}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "trades_list",
		Description: "Get the most recent recorded trades",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in tradesListInput) (*mcp.CallToolResult, tradesListOutput, error) {
		if trades == nil {
			return nil, tradesListOutput{}, fmt.Errorf("trade service unavailable")
		}
		result := trades.Recent(ctx, normalizeTradeLimit(in.Limit))
		return nil, tradesListOutput{Trades: result}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "trade_record",
		Description: "Record a completed trade outcome and report the resulting stop status",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in tradeRecordInput) (*mcp.CallToolResult, tradeRecordOutput, error) {
		if trades == nil {
			return nil, tradeRecordOutput{}, fmt.Errorf("trade service unavailable")
		}
		trade, err := normalizeTradeRecord(in)
		if err != nil {
			return nil, tradeRecordOutput{}, err
		}
		recorded, status, err := trades.Record(ctx, trade)
		if err != nil {
			return nil, tradeRecordOutput{}, err
		}
		return nil, tradeRecordOutput{Trade: recorded, Stop: status}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "statistics_get",
		Description: "Get aggregate statistics over the whole trade history",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ statisticsGetInput) (*mcp.CallToolResult, statisticsGetOutput, error) {
		if trades == nil {
			return nil, statisticsGetOutput{}, fmt.Errorf("trade service unavailable")
		}
		return nil, statisticsGetOutput{Statistics: trades.Statistics(ctx)}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "risk_status",
		Description: "Get the current risk counters and whether trading should stop",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ riskStatusInput) (*mcp.CallToolResult, riskStatusOutput, error) {
		if riskState == nil {
			return nil, riskStatusOutput{}, fmt.Errorf("risk manager unavailable")
		}
		return nil, riskStatusOutput{Summary: riskState.Summary(), Status: riskState.ShouldStop()}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "history_clear",
		Description: "Delete every recorded trade from the log",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ historyClearInput) (*mcp.CallToolResult, historyClearOutput, error) {
		if trades == nil {
			return nil, historyClearOutput{}, fmt.Errorf("trade service unavailable")
		}
		if err := trades.ClearHistory(ctx); err != nil {
			return nil, historyClearOutput{}, err
		}
		return nil, historyClearOutput{Cleared: true}, nil
	})
}
