package mcp

import (
	"context"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func TestToolsListAndInvoke(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	srv, signals, trades, _ := testServer()
	session, shutdown, err := connectInMemory(ctx, srv)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer shutdown()
	defer session.Close()

	tools, err := session.ListTools(ctx, &sdkmcp.ListToolsParams{})
	if err != nil {
		t.Fatalf("list tools failed: %v", err)
	}
	if len(tools.Tools) < 6 {
		t.Fatalf("expected at least 6 tools, got %d", len(tools.Tools))
	}

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: "signal_generate", Arguments: map[string]any{}})
	if err != nil {
		t.Fatalf("signal_generate failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %+v", res.Content)
	}
	if signals.generated != 1 {
		t.Fatalf("expected one generation, got %d", signals.generated)
	}

	res, err = session.CallTool(ctx, &sdkmcp.CallToolParams{Name: "trades_list", Arguments: map[string]any{"limit": 5}})
	if err != nil {
		t.Fatalf("trades_list failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected trades_list error: %+v", res.Content)
	}
	if trades.lastLimit != 5 {
		t.Fatalf("expected limit 5, got %d", trades.lastLimit)
	}
}

func TestToolTradeRecord(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	srv, _, trades, _ := testServer()
	session, shutdown, err := connectInMemory(ctx, srv)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer shutdown()
	defer session.Close()

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name: "trade_record",
		Arguments: map[string]any{
			"direction":   "down",
			"amount":      250,
			"profit_loss": -250,
		},
	})
	if err != nil {
		t.Fatalf("trade_record failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected trade_record error: %+v", res.Content)
	}
	if trades.lastRecorded.Direction != "DOWN" {
		t.Fatalf("expected DOWN, got %s", trades.lastRecorded.Direction)
	}
	if trades.lastRecorded.Result != "LOSS" {
		t.Fatalf("expected derived LOSS, got %s", trades.lastRecorded.Result)
	}
	if trades.lastRecorded.Duration != 5 {
		t.Fatalf("expected default duration 5, got %d", trades.lastRecorded.Duration)
	}
}

func TestToolValidationFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	srv, _, _, _ := testServer()
	session, shutdown, err := connectInMemory(ctx, srv)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer shutdown()
	defer session.Close()

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "trade_record",
		Arguments: map[string]any{"direction": "SIDEWAYS", "amount": 100, "profit_loss": 0},
	})
	if err != nil {
		t.Fatalf("unexpected protocol error: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected tool-level validation error")
	}
}

func TestToolHistoryClear(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	srv, _, trades, _ := testServer()
	session, shutdown, err := connectInMemory(ctx, srv)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer shutdown()
	defer session.Close()

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: "history_clear", Arguments: map[string]any{}})
	if err != nil {
		t.Fatalf("history_clear failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected history_clear error: %+v", res.Content)
	}
	if !trades.cleared {
		t.Fatal("expected the trade log to be cleared")
	}
}
