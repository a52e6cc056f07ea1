package bot

import (
	"testing"

	"crypto-idx-bot/internal/domain"
)

func TestStartTelegramBotSkipsWithoutToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	if alerts := StartTelegramBot(Services{}, Options{}); alerts != nil {
		t.Fatal("expected nil dispatcher without a token")
	}
}

func TestParseRecordArgs(t *testing.T) {
	trade, err := parseRecordArgs([]string{"up", "300", "180", "10"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trade.Direction != domain.DirectionUp || trade.Amount != 300 || trade.ProfitLoss != 180 || trade.Duration != 10 {
		t.Fatalf("unexpected trade: %+v", trade)
	}
	if trade.Result != domain.ResultWin {
		t.Fatalf("expected WIN result, got %s", trade.Result)
	}
}

func TestParseRecordArgsDefaultsDuration(t *testing.T) {
	trade, err := parseRecordArgs([]string{"DOWN", "200", "-150"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trade.Duration != 5 {
		t.Fatalf("expected default duration 5, got %d", trade.Duration)
	}
	if trade.Result != domain.ResultLoss {
		t.Fatalf("expected LOSS result for negative profit, got %s", trade.Result)
	}
}

func TestParseRecordArgsRejectsBadInput(t *testing.T) {
	cases := [][]string{
		{"up", "300"},
		{"sideways", "300", "180"},
		{"up", "zero", "180"},
		{"up", "-50", "180"},
		{"up", "300", "abc"},
		{"up", "300", "180", "0"},
	}
	for _, args := range cases {
		if _, err := parseRecordArgs(args); err == nil {
			t.Errorf("expected error for args %v", args)
		}
	}
}

func TestOptionsNormalized(t *testing.T) {
	opts := Options{}.normalized()
	if opts.RiskThreshold != 70 || opts.BatchSize != 10 || opts.Location == nil {
		t.Fatalf("unexpected defaults: %+v", opts)
	}

	opts = Options{RiskThreshold: 80, BatchSize: 5, Location: testIST}.normalized()
	if opts.RiskThreshold != 80 || opts.BatchSize != 5 || opts.Location != testIST {
		t.Fatalf("explicit options were replaced: %+v", opts)
	}
}
