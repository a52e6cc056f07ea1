package repository

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"crypto-idx-bot/internal/domain"
)

const DefaultMaxTrades = 1000

var csvHeader = []string{"trade_id", "timestamp", "direction", "amount", "duration", "result", "profit_loss"}

// TradeRepository holds the capped trade log. The backing file is a single
// JSON document rewritten in full on every append; the in-memory slice stays
// authoritative when a write fails. A missing or corrupt file loads as an
// empty log, never an error.
type TradeRepository struct {
	tracer trace.Tracer
	path   string
	max    int

	mu     sync.Mutex
	trades []domain.TradeRecord
	nextID int64
}

func NewTradeRepository(path string, max int, tracer trace.Tracer) *TradeRepository {
	if max <= 0 {
		max = DefaultMaxTrades
	}
	r := &TradeRepository{tracer: tracer, path: path, max: max, nextID: 1}
	r.load()
	return r
}

func (r *TradeRepository) load() {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("trade history %s unreadable, starting empty: %v", r.path, err)
		}
		return
	}
	var trades []domain.TradeRecord
	if err := json.Unmarshal(data, &trades); err != nil {
		log.Printf("trade history %s corrupt, starting empty: %v", r.path, err)
		return
	}
	if len(trades) > r.max {
		trades = trades[len(trades)-r.max:]
	}
	r.trades = trades
	for _, t := range trades {
		if t.TradeID >= r.nextID {
			r.nextID = t.TradeID + 1
		}
	}
}

// save must be called with the lock held.
func (r *TradeRepository) save() error {
	data, err := json.MarshalIndent(r.trades, "", "  ")
	if err != nil {
		return fmt.Errorf("encode trade history: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("write trade history: %w", err)
	}
	return nil
}

// Append assigns the next trade ID, applies the cap, and rewrites the backing
// file. The returned record is always live in memory; the error only reports
// a failed write.
func (r *TradeRepository) Append(ctx context.Context, trade domain.TradeRecord) (domain.TradeRecord, error) {
	_, span := r.tracer.Start(ctx, "trade-repo.append")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	trade.TradeID = r.nextID
	r.nextID++
	if trade.Timestamp.IsZero() {
		trade.Timestamp = time.Now()
	}
	if trade.Direction == "" {
		trade.Direction = domain.Unknown
	}
	if trade.Result == "" {
		trade.Result = domain.ResultUnknown
	}

	r.trades = append(r.trades, trade)
	if len(r.trades) > r.max {
		r.trades = append(r.trades[:0:0], r.trades[len(r.trades)-r.max:]...)
	}

	return trade, r.save()
}

// Recent returns the last n trades, oldest first. n <= 0 means ten.
func (r *TradeRepository) Recent(ctx context.Context, n int) []domain.TradeRecord {
	_, span := r.tracer.Start(ctx, "trade-repo.recent")
	defer span.End()

	if n <= 0 {
		n = 10
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if n > len(r.trades) {
		n = len(r.trades)
	}
	out := make([]domain.TradeRecord, n)
	copy(out, r.trades[len(r.trades)-n:])
	return out
}

func (r *TradeRepository) All(ctx context.Context) []domain.TradeRecord {
	_, span := r.tracer.Start(ctx, "trade-repo.all")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.TradeRecord, len(r.trades))
	copy(out, r.trades)
	return out
}

func (r *TradeRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.trades)
}

// Clear drops every record and removes the backing file. IDs restart at 1.
func (r *TradeRepository) Clear(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "trade-repo.clear")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.trades = nil
	r.nextID = 1
	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove trade history: %w", err)
	}
	return nil
}

// ExportCSV writes the full log with the record schema as header row.
func (r *TradeRepository) ExportCSV(ctx context.Context, w io.Writer) error {
	_, span := r.tracer.Start(ctx, "trade-repo.export-csv")
	defer span.End()

	r.mu.Lock()
	trades := make([]domain.TradeRecord, len(r.trades))
	copy(trades, r.trades)
	r.mu.Unlock()

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, t := range trades {
		row := []string{
			strconv.FormatInt(t.TradeID, 10),
			t.Timestamp.Format(time.RFC3339Nano),
			string(t.Direction),
			strconv.Itoa(t.Amount),
			strconv.Itoa(t.Duration),
			string(t.Result),
			strconv.FormatFloat(t.ProfitLoss, 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ImportCSV replaces the log with the parsed rows and rewrites the backing
// file. The input must carry the export header.
func (r *TradeRepository) ImportCSV(ctx context.Context, reader io.Reader) error {
	_, span := r.tracer.Start(ctx, "trade-repo.import-csv")
	defer span.End()

	cr := csv.NewReader(reader)
	rows, err := cr.ReadAll()
	if err != nil {
		return fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("read csv: missing header")
	}
	if len(rows[0]) != len(csvHeader) {
		return fmt.Errorf("read csv: unexpected header %v", rows[0])
	}

	trades := make([]domain.TradeRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		t, err := recordFromRow(row)
		if err != nil {
			return fmt.Errorf("read csv row %d: %w", i+2, err)
		}
		trades = append(trades, t)
	}
	if len(trades) > r.max {
		trades = trades[len(trades)-r.max:]
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.trades = trades
	r.nextID = 1
	for _, t := range trades {
		if t.TradeID >= r.nextID {
			r.nextID = t.TradeID + 1
		}
	}
	return r.save()
}

func recordFromRow(row []string) (domain.TradeRecord, error) {
	if len(row) != len(csvHeader) {
		return domain.TradeRecord{}, fmt.Errorf("expected %d fields, got %d", len(csvHeader), len(row))
	}
	id, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return domain.TradeRecord{}, fmt.Errorf("trade_id: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, row[1])
	if err != nil {
		return domain.TradeRecord{}, fmt.Errorf("timestamp: %w", err)
	}
	amount, err := strconv.Atoi(row[3])
	if err != nil {
		return domain.TradeRecord{}, fmt.Errorf("amount: %w", err)
	}
	duration, err := strconv.Atoi(row[4])
	if err != nil {
		return domain.TradeRecord{}, fmt.Errorf("duration: %w", err)
	}
	pl, err := strconv.ParseFloat(row[6], 64)
	if err != nil {
		return domain.TradeRecord{}, fmt.Errorf("profit_loss: %w", err)
	}
	return domain.TradeRecord{
		TradeID:    id,
		Timestamp:  ts,
		Direction:  domain.Direction(row[2]),
		Amount:     amount,
		Duration:   duration,
		Result:     domain.TradeResult(row[5]),
		ProfitLoss: pl,
	}, nil
}
