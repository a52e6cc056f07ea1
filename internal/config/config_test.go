package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("HISTORY_FILE", "")
	t.Setenv("HISTORY_MAX", "")
	t.Setenv("TIMEZONE", "")
	t.Setenv("DATA_POINTS", "")
	t.Setenv("MIN_TRADE_AMOUNT", "")
	t.Setenv("MAX_TRADE_AMOUNT", "")
	t.Setenv("TRADE_STEP", "")
	t.Setenv("RISK_THRESHOLD", "")
	t.Setenv("MAX_DAILY_LOSS", "")
	t.Setenv("MAX_CONSECUTIVE_LOSSES", "")
	t.Setenv("BATCH_SIZE", "")
	t.Setenv("BATCH_DELAY_SECS", "")
	t.Setenv("SIGNAL_COOLDOWN_SECS", "")
	t.Setenv("CACHE_TTL_SECS", "")
	t.Setenv("MCP_TRANSPORT", "")
	t.Setenv("MCP_HTTP_ENABLED", "")
	t.Setenv("MCP_HTTP_BIND", "")
	t.Setenv("MCP_HTTP_PORT", "")
	t.Setenv("MCP_AUTH_TOKEN", "")
	t.Setenv("MCP_REQUEST_TIMEOUT_SECS", "")
	t.Setenv("MCP_RATE_LIMIT_PER_MIN", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_MODEL", "")
	t.Setenv("ADVISOR_MAX_HISTORY", "")
	t.Setenv("SCAN_ENABLED", "")
	t.Setenv("SCAN_ANOMALY_THRESHOLD", "")
	t.Setenv("SCAN_TREES", "")
	t.Setenv("SCAN_SAMPLE_SIZE", "")
	t.Setenv("TUI_SSH_ENABLED", "")
	t.Setenv("TUI_SSH_BIND", "")
	t.Setenv("TUI_SSH_PORT", "")
	t.Setenv("TUI_SSH_HOST_KEY", "")
	t.Setenv("TUI_AUTHORIZED_KEYS", "")

	cfg := Load()
	if cfg.HTTPPort != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.HTTPPort)
	}
	if cfg.HistoryFile != "trade_history.json" || cfg.HistoryMax != 1000 {
		t.Fatalf("unexpected history defaults: %s max=%d", cfg.HistoryFile, cfg.HistoryMax)
	}
	if cfg.Timezone != "Asia/Kolkata" || cfg.Location == nil {
		t.Fatalf("unexpected timezone defaults: %s %v", cfg.Timezone, cfg.Location)
	}
	if cfg.DataPoints != 100 {
		t.Fatalf("expected default data points 100, got %d", cfg.DataPoints)
	}
	if cfg.MinTradeAmount != 100 || cfg.MaxTradeAmount != 500 || cfg.TradeStep != 50 {
		t.Fatalf("unexpected trade amount defaults: %d/%d/%d", cfg.MinTradeAmount, cfg.MaxTradeAmount, cfg.TradeStep)
	}
	if cfg.RiskThreshold != 70 || cfg.MaxDailyLoss != 2000 || cfg.MaxConsecutiveLosses != 3 {
		t.Fatalf("unexpected risk defaults: %+v", cfg)
	}
	if cfg.BatchSize != 10 || cfg.BatchDelaySecs != 30 {
		t.Fatalf("unexpected batch defaults: size=%d delay=%d", cfg.BatchSize, cfg.BatchDelaySecs)
	}
	if cfg.SignalCooldownSecs != 300 || cfg.CacheTTLSecs != 300 {
		t.Fatalf("unexpected cooldown/cache defaults: %d/%d", cfg.SignalCooldownSecs, cfg.CacheTTLSecs)
	}
	if cfg.MCPTransport != "stdio" {
		t.Fatalf("expected default MCP transport stdio, got %s", cfg.MCPTransport)
	}
	if cfg.MCPHTTPBind != "127.0.0.1" || cfg.MCPHTTPPort != 8090 {
		t.Fatalf("unexpected MCP http defaults: %s:%d", cfg.MCPHTTPBind, cfg.MCPHTTPPort)
	}
	if cfg.MCPRequestTimeoutSecs != 5 || cfg.MCPRateLimitPerMin != 60 {
		t.Fatalf("unexpected MCP defaults: timeout=%d rate=%d", cfg.MCPRequestTimeoutSecs, cfg.MCPRateLimitPerMin)
	}
	if cfg.OpenAIModel != "gpt-4o-mini" || cfg.AdvisorMaxHistory != 20 {
		t.Fatalf("unexpected advisor defaults: %s max=%d", cfg.OpenAIModel, cfg.AdvisorMaxHistory)
	}
	if !cfg.ScanEnabled || cfg.ScanThreshold != 0.6 || cfg.ScanTrees != 100 || cfg.ScanSampleSize != 64 {
		t.Fatalf("unexpected scan defaults: %+v", cfg)
	}
	if cfg.TUISSHEnabled || cfg.TUISSHBind != "127.0.0.1" || cfg.TUISSHPort != 2323 {
		t.Fatalf("unexpected TUI ssh defaults: %+v", cfg)
	}
	if cfg.TUISSHHostKey != ".ssh/crypto_idx_ed25519" || cfg.TUIAuthorizedKeys != "" {
		t.Fatalf("unexpected TUI key defaults: %s %s", cfg.TUISSHHostKey, cfg.TUIAuthorizedKeys)
	}
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("REDIS_URL", "redis:6379")
	t.Setenv("PORT", "9090")
	t.Setenv("HISTORY_FILE", "/tmp/trades.json")
	t.Setenv("HISTORY_MAX", "500")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("DATA_POINTS", "200")
	t.Setenv("MIN_TRADE_AMOUNT", "50")
	t.Setenv("MAX_TRADE_AMOUNT", "1000")
	t.Setenv("TRADE_STEP", "25")
	t.Setenv("RISK_THRESHOLD", "80")
	t.Setenv("MAX_DAILY_LOSS", "5000")
	t.Setenv("MAX_CONSECUTIVE_LOSSES", "5")
	t.Setenv("BATCH_SIZE", "3")
	t.Setenv("BATCH_DELAY_SECS", "10")
	t.Setenv("SIGNAL_COOLDOWN_SECS", "60")
	t.Setenv("CACHE_TTL_SECS", "120")
	t.Setenv("MCP_TRANSPORT", "http")
	t.Setenv("MCP_HTTP_ENABLED", "true")
	t.Setenv("MCP_HTTP_BIND", "0.0.0.0")
	t.Setenv("MCP_HTTP_PORT", "9191")
	t.Setenv("MCP_AUTH_TOKEN", "secret")
	t.Setenv("MCP_REQUEST_TIMEOUT_SECS", "9")
	t.Setenv("MCP_RATE_LIMIT_PER_MIN", "75")
	t.Setenv("OPENAI_API_KEY", "key")
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("ADVISOR_MAX_HISTORY", "8")
	t.Setenv("SCAN_ENABLED", "false")
	t.Setenv("SCAN_ANOMALY_THRESHOLD", "0.75")
	t.Setenv("SCAN_TREES", "111")
	t.Setenv("SCAN_SAMPLE_SIZE", "32")
	t.Setenv("TUI_SSH_ENABLED", "true")
	t.Setenv("TUI_SSH_BIND", "0.0.0.0")
	t.Setenv("TUI_SSH_PORT", "2222")
	t.Setenv("TUI_SSH_HOST_KEY", "/etc/keys/host")
	t.Setenv("TUI_AUTHORIZED_KEYS", "/etc/keys/authorized")

	cfg := Load()
	if cfg.TelegramBotToken != "token" || cfg.RedisURL != "redis:6379" || cfg.HTTPPort != 9090 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.HistoryFile != "/tmp/trades.json" || cfg.HistoryMax != 500 {
		t.Fatalf("unexpected history config: %s max=%d", cfg.HistoryFile, cfg.HistoryMax)
	}
	if cfg.Timezone != "UTC" || cfg.Location == nil {
		t.Fatalf("unexpected timezone config: %s", cfg.Timezone)
	}
	if cfg.DataPoints != 200 {
		t.Fatalf("expected data points 200, got %d", cfg.DataPoints)
	}
	if cfg.MinTradeAmount != 50 || cfg.MaxTradeAmount != 1000 || cfg.TradeStep != 25 {
		t.Fatalf("unexpected trade amounts: %d/%d/%d", cfg.MinTradeAmount, cfg.MaxTradeAmount, cfg.TradeStep)
	}
	if cfg.RiskThreshold != 80 || cfg.MaxDailyLoss != 5000 || cfg.MaxConsecutiveLosses != 5 {
		t.Fatalf("unexpected risk config: %+v", cfg)
	}
	if cfg.BatchSize != 3 || cfg.BatchDelaySecs != 10 || cfg.SignalCooldownSecs != 60 || cfg.CacheTTLSecs != 120 {
		t.Fatalf("unexpected batch/cooldown config: %+v", cfg)
	}
	if cfg.MCPTransport != "http" || !cfg.MCPHTTPEnabled || cfg.MCPHTTPBind != "0.0.0.0" || cfg.MCPHTTPPort != 9191 || cfg.MCPAuthToken != "secret" {
		t.Fatalf("unexpected MCP config: %+v", cfg)
	}
	if cfg.MCPRequestTimeoutSecs != 9 || cfg.MCPRateLimitPerMin != 75 {
		t.Fatalf("unexpected MCP timeout/rate: %+v", cfg)
	}
	if cfg.OpenAIAPIKey != "key" || cfg.OpenAIModel != "gpt-4o" || cfg.AdvisorMaxHistory != 8 {
		t.Fatalf("unexpected advisor config: %+v", cfg)
	}
	if cfg.ScanEnabled || cfg.ScanThreshold != 0.75 || cfg.ScanTrees != 111 || cfg.ScanSampleSize != 32 {
		t.Fatalf("unexpected scan config: %+v", cfg)
	}
	if !cfg.TUISSHEnabled || cfg.TUISSHBind != "0.0.0.0" || cfg.TUISSHPort != 2222 {
		t.Fatalf("unexpected TUI ssh config: %+v", cfg)
	}
	if cfg.TUISSHHostKey != "/etc/keys/host" || cfg.TUIAuthorizedKeys != "/etc/keys/authorized" {
		t.Fatalf("unexpected TUI key config: %s %s", cfg.TUISSHHostKey, cfg.TUIAuthorizedKeys)
	}

	t.Setenv("PORT", "bad")
	t.Setenv("HISTORY_MAX", "bad")
	t.Setenv("DATA_POINTS", "bad")
	t.Setenv("MIN_TRADE_AMOUNT", "bad")
	t.Setenv("MAX_TRADE_AMOUNT", "bad")
	t.Setenv("TRADE_STEP", "bad")
	t.Setenv("RISK_THRESHOLD", "bad")
	t.Setenv("MAX_DAILY_LOSS", "bad")
	t.Setenv("MAX_CONSECUTIVE_LOSSES", "bad")
	t.Setenv("BATCH_SIZE", "bad")
	t.Setenv("BATCH_DELAY_SECS", "bad")
	t.Setenv("SIGNAL_COOLDOWN_SECS", "bad")
	t.Setenv("CACHE_TTL_SECS", "bad")
	t.Setenv("MCP_HTTP_PORT", "bad")
	t.Setenv("MCP_REQUEST_TIMEOUT_SECS", "bad")
	t.Setenv("MCP_RATE_LIMIT_PER_MIN", "bad")
	t.Setenv("SCAN_ENABLED", "bad")
	t.Setenv("SCAN_ANOMALY_THRESHOLD", "1.5")
	t.Setenv("SCAN_TREES", "bad")
	t.Setenv("SCAN_SAMPLE_SIZE", "bad")
	t.Setenv("TUI_SSH_PORT", "bad")
	cfg = Load()
	if cfg.HTTPPort != 8080 || cfg.HistoryMax != 1000 || cfg.DataPoints != 100 {
		t.Fatalf("invalid numeric values should fall back to defaults: %+v", cfg)
	}
	if cfg.MinTradeAmount != 100 || cfg.MaxTradeAmount != 500 || cfg.TradeStep != 50 {
		t.Fatalf("invalid trade amounts should fall back to defaults: %+v", cfg)
	}
	if cfg.RiskThreshold != 70 || cfg.MaxDailyLoss != 2000 || cfg.MaxConsecutiveLosses != 3 {
		t.Fatalf("invalid risk values should fall back to defaults: %+v", cfg)
	}
	if cfg.BatchSize != 10 || cfg.BatchDelaySecs != 30 || cfg.SignalCooldownSecs != 300 || cfg.CacheTTLSecs != 300 {
		t.Fatalf("invalid batch values should fall back to defaults: %+v", cfg)
	}
	if cfg.MCPHTTPPort != 8090 || cfg.MCPRequestTimeoutSecs != 5 || cfg.MCPRateLimitPerMin != 60 {
		t.Fatalf("invalid MCP numeric values should fall back to defaults: %+v", cfg)
	}
	if !cfg.ScanEnabled || cfg.ScanThreshold != 0.6 || cfg.ScanTrees != 100 || cfg.ScanSampleSize != 64 {
		t.Fatalf("invalid scan values should fall back to defaults: %+v", cfg)
	}
	if cfg.TUISSHPort != 2323 {
		t.Fatalf("invalid TUI ssh port should fall back to default, got %d", cfg.TUISSHPort)
	}
}

func TestLoadUnknownTimezoneFallsBack(t *testing.T) {
	t.Setenv("TIMEZONE", "Not/AZone")

	cfg := Load()
	if cfg.Location == nil {
		t.Fatal("expected a fallback location")
	}
	_, offset := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC).In(cfg.Location).Zone()
	if offset != 5*3600+30*60 {
		t.Fatalf("expected fixed IST offset, got %d", offset)
	}
}
