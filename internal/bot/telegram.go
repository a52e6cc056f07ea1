package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"crypto-idx-bot/internal/domain"

	tele "gopkg.in/telebot.v3"
)

type SignalSource interface {
	Generate(ctx context.Context) (domain.Recommendation, error)
}

type TradeBook interface {
	Record(ctx context.Context, trade domain.TradeRecord) (domain.TradeRecord, domain.StopStatus, error)
	Recent(ctx context.Context, n int) []domain.TradeRecord
	Statistics(ctx context.Context) domain.Statistics
	DailySummary(ctx context.Context, date string) *domain.DailySummary
	ExportCSV(ctx context.Context, w io.Writer) error
}

type RiskStatus interface {
	Summary() domain.RiskSummary
	ShouldStop() domain.StopStatus
	ResetDaily()
}

type Advisor interface {
	Ask(ctx context.Context, chatID int64, message string) (string, error)
}

// BatchControl runs per-chat batch sessions. Start returns an error when a
// session is already active for the chat.
type BatchControl interface {
	Start(chatID int64, send func(string)) error
	Cancel(chatID int64) bool
}

// Services bundles the dependencies handed to the Telegram bot.
type Services struct {
	Signals SignalSource
	Trades  TradeBook
	Risk    RiskStatus
	Advisor Advisor
	Batch   BatchControl
}

type Options struct {
	RiskThreshold float64
	BatchSize     int
	Location      *time.Location
}

func (o Options) normalized() Options {
	if o.RiskThreshold <= 0 {
		o.RiskThreshold = 70
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 10
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	return o
}

func StartTelegramBot(svc Services, opts Options) *AlertDispatcher {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil
	}
	opts = opts.normalized()

	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}
	alerts := NewAlertDispatcher(b, opts)

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/start", func(c tele.Context) error {
		return c.Send(welcomeMessage, tele.ModeMarkdown)
	})

	b.Handle("/help", func(c tele.Context) error {
		return c.Send(helpMessage, tele.ModeMarkdown)
	})

	b.Handle("/signal", func(c tele.Context) error {
		if svc.Signals == nil {
			return c.Send("Signal service unavailable")
		}
		rec, err := svc.Signals.Generate(context.Background())
		if err != nil {
			log.Printf("signal generation failed for chat %d: %v", c.Chat().ID, err)
			return c.Send("❌ Error generating signal. Please try again.")
		}
		return c.Send(FormatRecommendation(rec, opts.Location, opts.RiskThreshold), tele.ModeMarkdown)
	})

	b.Handle("/batch", func(c tele.Context) error {
		if svc.Batch == nil {
			return c.Send("Batch mode unavailable")
		}
		chat := c.Chat()
		if chat == nil {
			return c.Send("Unable to detect chat")
		}
		chatID := chat.ID
		err := svc.Batch.Start(chatID, func(text string) {
			if _, err := b.Send(&tele.Chat{ID: chatID}, text, tele.ModeMarkdown); err != nil {
				log.Printf("batch send to chat %d failed: %v", chatID, err)
			}
		})
		if err != nil {
			return c.Send("⚠️ Batch already running. Use /stop to cancel it.")
		}
		return c.Send(fmt.Sprintf("🔄 Starting batch mode... %d trades remaining", opts.BatchSize))
	})

	b.Handle("/stop", func(c tele.Context) error {
		if svc.Batch == nil {
			return c.Send("Batch mode unavailable")
		}
		chat := c.Chat()
		if chat == nil {
			return c.Send("Unable to detect chat")
		}
		if svc.Batch.Cancel(chat.ID) {
			return c.Send("🛑 Batch cancelled.")
		}
		return c.Send("No active batch.")
	})

	b.Handle("/history", func(c tele.Context) error {
		if svc.Trades == nil {
			return c.Send("Trade history unavailable")
		}
		trades := svc.Trades.Recent(context.Background(), 5)
		if len(trades) == 0 {
			return c.Send("📊 No trade history yet.")
		}
		parts := make([]string, 0, len(trades))
		for _, trade := range trades {
			parts = append(parts, FormatTrade(trade, opts.Location))
		}
		return c.Send("📈 **Recent Trades:**\n\n"+strings.Join(parts, "\n\n"), tele.ModeMarkdown)
	})

	b.Handle("/record", func(c tele.Context) error {
		if svc.Trades == nil {
			return c.Send("Trade history unavailable")
		}
		trade, err := parseRecordArgs(c.Args())
		if err != nil {
			return c.Send("Usage: /record UP|DOWN <amount> <profit_loss> [duration]\nExample: /record UP 300 180 10")
		}
		recorded, stop, err := svc.Trades.Record(context.Background(), trade)
		if err != nil {
			return c.Send(fmt.Sprintf("❌ Failed to record trade: %v", err))
		}
		msg := fmt.Sprintf("✅ Trade #%d recorded.", recorded.TradeID)
		if stop.Stop {
			msg += "\n🔴 Trading halted: " + stop.Reason
		}
		return c.Send(msg)
	})

	b.Handle("/stats", func(c tele.Context) error {
		if svc.Trades == nil {
			return c.Send("Trade history unavailable")
		}
		return c.Send(FormatStatistics(svc.Trades.Statistics(context.Background())), tele.ModeMarkdown)
	})

	b.Handle("/summary", func(c tele.Context) error {
		if svc.Trades == nil {
			return c.Send("Trade history unavailable")
		}
		return c.Send(FormatDailySummary(svc.Trades.DailySummary(context.Background(), "")), tele.ModeMarkdown)
	})

	b.Handle("/export", func(c tele.Context) error {
		if svc.Trades == nil {
			return c.Send("Trade history unavailable")
		}
		name := fmt.Sprintf("trade_history_%s.csv", time.Now().In(opts.Location).Format("20060102_150405"))
		path := filepath.Join(os.TempDir(), name)
		f, err := os.Create(path)
		if err != nil {
			return c.Send(fmt.Sprintf("❌ Export failed: %v", err))
		}
		if err := svc.Trades.ExportCSV(context.Background(), f); err != nil {
			f.Close()
			os.Remove(path)
			return c.Send(fmt.Sprintf("❌ Export failed: %v", err))
		}
		f.Close()
		defer os.Remove(path)
		doc := &tele.Document{File: tele.FromDisk(path), FileName: name}
		return c.Send(doc)
	})

	b.Handle("/risk", func(c tele.Context) error {
		if svc.Risk == nil {
			return c.Send("Risk status unavailable")
		}
		return c.Send(FormatRiskStatus(svc.Risk.Summary(), svc.Risk.ShouldStop()), tele.ModeMarkdown)
	})

	b.Handle("/reset", func(c tele.Context) error {
		if svc.Risk == nil {
			return c.Send("Risk status unavailable")
		}
		svc.Risk.ResetDaily()
		return c.Send("🔄 Daily risk counters reset.")
	})

	b.Handle("/alerts", func(c tele.Context) error {
		chat := c.Chat()
		if chat == nil {
			return c.Send("Unable to detect chat")
		}

		mode, err := parseAlertMode(c.Args())
		if err != nil {
			return c.Send("Usage: /alerts on | /alerts off | /alerts status")
		}

		switch mode {
		case "on":
			if alerts.Subscribe(chat.ID) {
				return c.Send("Proactive alerts enabled for this chat.")
			}
			return c.Send("Proactive alerts are already enabled for this chat.")
		case "off":
			if alerts.Unsubscribe(chat.ID) {
				return c.Send("Proactive alerts disabled for this chat.")
			}
			return c.Send("Proactive alerts are already disabled for this chat.")
		default:
			if alerts.IsSubscribed(chat.ID) {
				return c.Send("Alerts status: ON")
			}
			return c.Send("Alerts status: OFF")
		}
	})

	b.Handle("/ask", func(c tele.Context) error {
		if svc.Advisor == nil {
			return c.Send("Advisor not configured. Set OPENAI_API_KEY to enable.")
		}
		question := strings.TrimSpace(c.Message().Payload)
		if question == "" {
			return c.Send("Usage: /ask <question>\nExample: /ask Why is the signal DOWN?")
		}
		return handleAdvisorQuery(c, svc.Advisor, question)
	})

	b.Handle(tele.OnText, func(c tele.Context) error {
		if svc.Advisor == nil {
			return nil
		}
		text := strings.TrimSpace(c.Text())
		if text == "" {
			return nil
		}
		return handleAdvisorQuery(c, svc.Advisor, text)
	})

	log.Println("Telegram bot started")
	go b.Start()
	return alerts
}

func handleAdvisorQuery(c tele.Context, adv Advisor, question string) error {
	_ = c.Notify(tele.Typing)

	reply, err := adv.Ask(context.Background(), c.Chat().ID, question)
	if err != nil {
		log.Printf("advisor error for chat %d: %v", c.Chat().ID, err)
		return c.Send("Sorry, I'm having trouble right now. Try /signal or /stats for raw data.")
	}

	if len(reply) > 4000 {
		reply = reply[:4000] + "\n\n[truncated]"
	}

	return c.Send(reply)
}

func parseRecordArgs(args []string) (domain.TradeRecord, error) {
	if len(args) < 3 {
		return domain.TradeRecord{}, errors.New("missing arguments")
	}

	direction, ok := domain.ParseDirection(args[0])
	if !ok {
		return domain.TradeRecord{}, errors.New("invalid direction")
	}

	amount, err := strconv.Atoi(args[1])
	if err != nil || amount <= 0 {
		return domain.TradeRecord{}, errors.New("invalid amount")
	}

	profitLoss, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return domain.TradeRecord{}, errors.New("invalid profit/loss")
	}

	duration := 5
	if len(args) >= 4 {
		duration, err = strconv.Atoi(args[3])
		if err != nil || duration <= 0 {
			return domain.TradeRecord{}, errors.New("invalid duration")
		}
	}

	result := domain.ResultWin
	if profitLoss < 0 {
		result = domain.ResultLoss
	}

	return domain.TradeRecord{
		Direction:  direction,
		Amount:     amount,
		Duration:   duration,
		Result:     result,
		ProfitLoss: profitLoss,
	}, nil
}
