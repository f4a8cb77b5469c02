package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"SignalDesk/internal/model"
)

func sampleSignal() *model.TradingSignal {
	return &model.TradingSignal{
		Asset:      "EUR/USD",
		Signal:     model.Buy,
		Strength:   92,
		Confidence: 88,
		Timestamp:  time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC).UnixMilli(),
		Timeframe:  "1m",
		Indicators: []model.IndicatorResult{
			{Name: "RSI", Signal: model.Buy, Strength: 60},
			{Name: "MACD", Signal: model.Sell, Strength: 20},
		},
		Reasoning:        []string{"EMA stack bullish", "price < upper band"},
		RiskLevel:        model.RiskLow,
		ExpectedDuration: 60,
	}
}

type telegramStub struct {
	mu    sync.Mutex
	sent  []map[string]string
	fails int
}

func (s *telegramStub) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		switch {
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			if s.fails > 0 {
				s.fails--
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			var payload map[string]string
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Errorf("decode payload: %v", err)
			}
			s.sent = append(s.sent, payload)
			fmt.Fprint(w, `{"ok":true}`)
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			fmt.Fprint(w, `{"ok":true,"result":[
				{"update_id":7,"message":{"text":" /assets "}},
				{"update_id":8}
			]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func newStubNotifier(t *testing.T, stub *telegramStub) *TelegramNotifier {
	srv := httptest.NewServer(stub.handler(t))
	t.Cleanup(srv.Close)
	n := NewTelegramNotifier("token", "42", "")
	n.APIBase = srv.URL
	return n
}

func TestSend(t *testing.T) {
	stub := &telegramStub{}
	n := newStubNotifier(t, stub)

	if err := n.Send("<b>hi</b>"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(stub.sent) != 1 || stub.sent[0]["chat_id"] != "42" || stub.sent[0]["parse_mode"] != "HTML" {
		t.Errorf("unexpected payload %v", stub.sent)
	}

	stub.fails = 1
	if err := n.Send("x"); err == nil {
		t.Error("expected error on non-200 status")
	}
}

func TestRetry(t *testing.T) {
	calls := 0
	err := retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Errorf("expected success on third call, got %d calls, %v", calls, err)
	}

	calls = 0
	err = retry(context.Background(), 2, time.Millisecond, func() error {
		calls++
		return errors.New("down")
	})
	if err == nil || calls != 3 {
		t.Errorf("expected 3 attempts and an error, got %d, %v", calls, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = retry(ctx, 5, time.Hour, func() error { return errors.New("down") })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestPoll(t *testing.T) {
	stub := &telegramStub{}
	n := newStubNotifier(t, stub)

	var got []string
	next, err := n.poll(context.Background(), http.DefaultClient, 0, func(cmd string) string {
		got = append(got, cmd)
		return "reply to " + cmd
	})
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if next != 9 {
		t.Errorf("next offset = %d, want 9", next)
	}
	if len(got) != 1 || got[0] != "/assets" {
		t.Errorf("handler saw %v", got)
	}
	if len(stub.sent) != 1 || stub.sent[0]["text"] != "reply to /assets" {
		t.Errorf("reply not sent: %v", stub.sent)
	}
}

func TestFormatSignal(t *testing.T) {
	msg := FormatSignal(sampleSignal())
	for _, want := range []string{
		"<b>EUR/USD BUY</b>",
		"Strength: 92%",
		"Confidence: 88%",
		"Risk: LOW",
		"2024-03-05 14:30:00",
		"<b>Agreeing:</b> RSI\n",
		"price &lt; upper band",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestFormatPerformance(t *testing.T) {
	msg := FormatPerformance(&model.Performance{Total: 5, Wins: 3, Losses: 1, Draws: 1, WinRate: 75})
	if !strings.Contains(msg, "all assets") || !strings.Contains(msg, "Win rate: 75.0%") {
		t.Errorf("unexpected message:\n%s", msg)
	}
	if msg := FormatPerformance(&model.Performance{Asset: "GOLD"}); !strings.Contains(msg, "GOLD") {
		t.Errorf("asset scope missing:\n%s", msg)
	}
}

func TestFormatAssets(t *testing.T) {
	msg := FormatAssets([]model.Asset{
		{Symbol: "EUR/USD", Name: "Euro", Type: model.ClassCurrency},
		{Symbol: "GBP/USD", Name: "Pound", Type: model.ClassCurrency},
		{Symbol: "S&P500", Name: "S&P 500 Index", Type: model.ClassIndex},
	})
	if strings.Count(msg, "<b>"+string(model.ClassCurrency)+"</b>") != 1 {
		t.Errorf("currency header should appear once:\n%s", msg)
	}
	if !strings.Contains(msg, "S&amp;P500") || !strings.Contains(msg, "(3)") {
		t.Errorf("unexpected message:\n%s", msg)
	}
}

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaPublisher(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w, topic: "signals"}
	sig := sampleSignal()

	if err := p.Publish(context.Background(), sig); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(w.msgs) != 1 || string(w.msgs[0].Key) != "EUR/USD" {
		t.Fatalf("unexpected messages %+v", w.msgs)
	}
	var decoded map[string]any
	if err := json.Unmarshal(w.msgs[0].Value, &decoded); err != nil {
		t.Fatalf("value is not JSON: %v", err)
	}
	if decoded["signal"] != "BUY" || decoded["riskLevel"] != "LOW" {
		t.Errorf("unexpected payload %v", decoded)
	}

	w.err = io.ErrClosedPipe
	if err := p.Publish(context.Background(), sig); !errors.Is(err, io.ErrClosedPipe) {
		t.Errorf("expected wrapped writer error, got %v", err)
	}
	if err := p.Close(); err != nil || !w.closed {
		t.Error("writer not closed")
	}

	if _, err := NewKafkaPublisher(nil, "signals"); err == nil {
		t.Error("expected error without brokers")
	}
}
