package mcp

import (
	"context"
	"encoding/json"
	"time"

	"crypto-idx-bot/internal/domain"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type stubSignalReader struct {
	rec       domain.Recommendation
	latest    *domain.Recommendation
	generated int
}

func (s *stubSignalReader) Generate(ctx context.Context) (domain.Recommendation, error) {
	s.generated++
	return s.rec, nil
}

func (s *stubSignalReader) Latest(ctx context.Context) (*domain.Recommendation, error) {
	if s.latest == nil {
		return nil, nil
	}
	copy := *s.latest
	return &copy, nil
}

type stubTradeService struct {
	trades []domain.TradeRecord
	stats  domain.Statistics

	lastLimit    int
	lastDate     string
	lastRecorded domain.TradeRecord
	cleared      bool
}

func (s *stubTradeService) Record(ctx context.Context, trade domain.TradeRecord) (domain.TradeRecord, domain.StopStatus, error) {
	trade.TradeID = int64(len(s.trades) + 1)
	s.trades = append(s.trades, trade)
	s.lastRecorded = trade
	return trade, domain.StopStatus{Stop: false, Reason: "Trading allowed"}, nil
}

func (s *stubTradeService) Recent(ctx context.Context, n int) []domain.TradeRecord {
	s.lastLimit = n
	if n > len(s.trades) {
		n = len(s.trades)
	}
	return append([]domain.TradeRecord(nil), s.trades[len(s.trades)-n:]...)
}

func (s *stubTradeService) Statistics(ctx context.Context) domain.Statistics {
	return s.stats
}

func (s *stubTradeService) DailySummary(ctx context.Context, date string) *domain.DailySummary {
	s.lastDate = date
	if len(s.trades) == 0 {
		return nil
	}
	return &domain.DailySummary{Date: date, Trades: len(s.trades)}
}

func (s *stubTradeService) ClearHistory(ctx context.Context) error {
	s.cleared = true
	s.trades = nil
	return nil
}

type stubRiskReader struct {
	summary domain.RiskSummary
	status  domain.StopStatus
}

func (s *stubRiskReader) Summary() domain.RiskSummary   { return s.summary }
func (s *stubRiskReader) ShouldStop() domain.StopStatus { return s.status }

func testServer() (*sdkmcp.Server, *stubSignalReader, *stubTradeService, *stubRiskReader) {
	signals := &stubSignalReader{
		rec: domain.Recommendation{
			Signal: domain.Signal{
				Direction:   domain.DirectionUp,
				Confidence:  82.5,
				Duration:    10,
				Volatility:  0.45,
				GeneratedAt: time.Unix(0, 0).UTC(),
			},
			Risk:   domain.RiskAssessment{Level: domain.RiskMedium, Score: 2, Recommended: true},
			Amount: 400,
		},
	}
	trades := &stubTradeService{
		trades: []domain.TradeRecord{{
			TradeID:    1,
			Timestamp:  time.Unix(0, 0).UTC(),
			Direction:  domain.DirectionUp,
			Amount:     300,
			Duration:   10,
			Result:     domain.ResultWin,
			ProfitLoss: 180,
		}},
		stats: domain.Statistics{TotalTrades: 1, WinRate: 100, TotalProfit: 180},
	}
	riskState := &stubRiskReader{
		summary: domain.RiskSummary{MaxDailyLoss: 2000, MaxConsecutiveLosses: 3},
		status:  domain.StopStatus{Stop: false, Reason: "Trading allowed"},
	}

	srv := NewServer(nil, signals, trades, riskState, ServerConfig{RequestTimeout: time.Second})
	return srv, signals, trades, riskState
}

func connectInMemory(ctx context.Context, srv *sdkmcp.Server) (*sdkmcp.ClientSession, context.CancelFunc, error) {
	clientTransport, serverTransport := sdkmcp.NewInMemoryTransports()
	runCtx, cancel := context.WithCancel(ctx)
	go func() { _ = srv.Run(runCtx, serverTransport) }()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "mcp-test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	return session, cancel, nil
}

func decodeResourceJSON(result *sdkmcp.ReadResourceResult, out any) error {
	if len(result.Contents) == 0 {
		return nil
	}
	return json.Unmarshal([]byte(result.Contents[0].Text), out)
}
