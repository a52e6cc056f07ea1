package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	TelegramBotToken string
	RedisURL         string
	HTTPPort         int

	HistoryFile string
	HistoryMax  int

	Timezone string
	Location *time.Location

	DataPoints           int
	MinTradeAmount       int
	MaxTradeAmount       int
	TradeStep            int
	RiskThreshold        float64
	MaxDailyLoss         float64
	MaxConsecutiveLosses int

	BatchSize          int
	BatchDelaySecs     int
	SignalCooldownSecs int
	CacheTTLSecs       int

	MCPTransport          string
	MCPHTTPEnabled        bool
	MCPHTTPBind           string
	MCPHTTPPort           int
	MCPAuthToken          string
	MCPRequestTimeoutSecs int
	MCPRateLimitPerMin    int

	OpenAIAPIKey      string
	OpenAIModel       string
	AdvisorMaxHistory int

	ScanEnabled    bool
	ScanThreshold  float64
	ScanTrees      int
	ScanSampleSize int

	TUISSHEnabled     bool
	TUISSHBind        string
	TUISSHPort        int
	TUISSHHostKey     string
	TUIAuthorizedKeys string
}

func Load() *Config {
	cfg := &Config{
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		RedisURL:         os.Getenv("REDIS_URL"),
		MCPAuthToken:     os.Getenv("MCP_AUTH_TOKEN"),
	}

	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, recommendation cache disabled")
	}

	cfg.HTTPPort = 8080
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HTTPPort = n
		}
	}

	cfg.HistoryFile = strings.TrimSpace(os.Getenv("HISTORY_FILE"))
	if cfg.HistoryFile == "" {
		cfg.HistoryFile = "trade_history.json"
	}

	cfg.HistoryMax = 1000
	if v := strings.TrimSpace(os.Getenv("HISTORY_MAX")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HistoryMax = n
		}
	}

	cfg.Timezone = strings.TrimSpace(os.Getenv("TIMEZONE"))
	if cfg.Timezone == "" {
		cfg.Timezone = "Asia/Kolkata"
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Printf("Warning: unknown TIMEZONE=%q, using fixed IST offset", cfg.Timezone)
		loc = time.FixedZone("IST", 5*3600+30*60)
	}
	cfg.Location = loc

	cfg.DataPoints = 100
	if v := strings.TrimSpace(os.Getenv("DATA_POINTS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.DataPoints = n
		}
	}

	cfg.MinTradeAmount = 100
	if v := strings.TrimSpace(os.Getenv("MIN_TRADE_AMOUNT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MinTradeAmount = n
		}
	}

	cfg.MaxTradeAmount = 500
	if v := strings.TrimSpace(os.Getenv("MAX_TRADE_AMOUNT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > cfg.MinTradeAmount {
			cfg.MaxTradeAmount = n
		}
	}

	cfg.TradeStep = 50
	if v := strings.TrimSpace(os.Getenv("TRADE_STEP")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TradeStep = n
		}
	}

	cfg.RiskThreshold = 70
	if v := strings.TrimSpace(os.Getenv("RISK_THRESHOLD")); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n > 0 && n <= 100 {
			cfg.RiskThreshold = n
		}
	}

	cfg.MaxDailyLoss = 2000
	if v := strings.TrimSpace(os.Getenv("MAX_DAILY_LOSS")); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n > 0 {
			cfg.MaxDailyLoss = n
		}
	}

	cfg.MaxConsecutiveLosses = 3
	if v := strings.TrimSpace(os.Getenv("MAX_CONSECUTIVE_LOSSES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxConsecutiveLosses = n
		}
	}

	cfg.BatchSize = 10
	if v := strings.TrimSpace(os.Getenv("BATCH_SIZE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.BatchSize = n
		}
	}

	cfg.BatchDelaySecs = 30
	if v := strings.TrimSpace(os.Getenv("BATCH_DELAY_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.BatchDelaySecs = n
		}
	}

	cfg.SignalCooldownSecs = 300
	if v := strings.TrimSpace(os.Getenv("SIGNAL_COOLDOWN_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SignalCooldownSecs = n
		}
	}

	cfg.CacheTTLSecs = 300
	if v := strings.TrimSpace(os.Getenv("CACHE_TTL_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CacheTTLSecs = n
		}
	}

	cfg.MCPTransport = strings.ToLower(strings.TrimSpace(os.Getenv("MCP_TRANSPORT")))
	if cfg.MCPTransport == "" {
		cfg.MCPTransport = "stdio"
	}
	if cfg.MCPTransport != "stdio" && cfg.MCPTransport != "http" {
		log.Printf("Warning: unsupported MCP_TRANSPORT=%q, defaulting to stdio", cfg.MCPTransport)
		cfg.MCPTransport = "stdio"
	}

	cfg.MCPHTTPEnabled = strings.EqualFold(strings.TrimSpace(os.Getenv("MCP_HTTP_ENABLED")), "true")

	cfg.MCPHTTPBind = strings.TrimSpace(os.Getenv("MCP_HTTP_BIND"))
	if cfg.MCPHTTPBind == "" {
		cfg.MCPHTTPBind = "127.0.0.1"
	}

	cfg.MCPHTTPPort = 8090
	if v := strings.TrimSpace(os.Getenv("MCP_HTTP_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MCPHTTPPort = n
		}
	}

	cfg.MCPRequestTimeoutSecs = 5
	if v := strings.TrimSpace(os.Getenv("MCP_REQUEST_TIMEOUT_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MCPRequestTimeoutSecs = n
		}
	}

	cfg.MCPRateLimitPerMin = 60
	if v := strings.TrimSpace(os.Getenv("MCP_RATE_LIMIT_PER_MIN")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MCPRateLimitPerMin = n
		}
	}

	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	if cfg.OpenAIAPIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set, advisor will be disabled")
	}

	cfg.OpenAIModel = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o-mini"
	}

	cfg.AdvisorMaxHistory = 20
	if v := os.Getenv("ADVISOR_MAX_HISTORY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.AdvisorMaxHistory = n
		}
	}

	cfg.ScanEnabled = true
	if v := strings.TrimSpace(os.Getenv("SCAN_ENABLED")); v != "" {
		if strings.EqualFold(v, "true") {
			cfg.ScanEnabled = true
		} else if strings.EqualFold(v, "false") {
			cfg.ScanEnabled = false
		}
	}

	cfg.ScanThreshold = 0.6
	if v := strings.TrimSpace(os.Getenv("SCAN_ANOMALY_THRESHOLD")); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n > 0 && n < 1 {
			cfg.ScanThreshold = n
		}
	}

	cfg.ScanTrees = 100
	if v := strings.TrimSpace(os.Getenv("SCAN_TREES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ScanTrees = n
		}
	}

	cfg.ScanSampleSize = 64
	if v := strings.TrimSpace(os.Getenv("SCAN_SAMPLE_SIZE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ScanSampleSize = n
		}
	}

	cfg.TUISSHEnabled = strings.EqualFold(strings.TrimSpace(os.Getenv("TUI_SSH_ENABLED")), "true")

	cfg.TUISSHBind = strings.TrimSpace(os.Getenv("TUI_SSH_BIND"))
	if cfg.TUISSHBind == "" {
		cfg.TUISSHBind = "127.0.0.1"
	}

	cfg.TUISSHPort = 2323
	if v := strings.TrimSpace(os.Getenv("TUI_SSH_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TUISSHPort = n
		}
	}

	cfg.TUISSHHostKey = strings.TrimSpace(os.Getenv("TUI_SSH_HOST_KEY"))
	if cfg.TUISSHHostKey == "" {
		cfg.TUISSHHostKey = ".ssh/crypto_idx_ed25519"
	}

	cfg.TUIAuthorizedKeys = strings.TrimSpace(os.Getenv("TUI_AUTHORIZED_KEYS"))

	return cfg
}
