package telegram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rewired-gh/rentscore/internal/models"
)

func sampleReport() models.Report {
	return models.Report{
		ID:      "r1",
		ZipCode: "78244",
		Profile: "balanced",
		Fetched: 2,
		Scores: []models.InvestmentScore{
			{
				PropertyID:   "house",
				Address:      "5500 Grand Lake Dr, San Antonio, TX 78244",
				OverallScore: 84.5,
				Factors: map[string]float64{
					models.FactorCapRate:      103.2,
					models.FactorPricePerSqft: 100,
					models.FactorUnitDensity:  57.1,
					models.FactorSize:         33.3,
					models.FactorPropertyType: 70,
				},
				Rating: models.RatingFor(84.5),
			},
			{
				PropertyID:   "apt-1",
				OverallScore: 52,
				Factors:      map[string]float64{models.FactorCapRate: 50},
				Rating:       models.RatingFor(52),
			},
		},
		GeneratedAt: time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

func TestEscapeMarkdownV2(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"84.5", "84\\.5"},
		{"a_b*c", "a\\_b\\*c"},
		{"(1-2)", "\\(1\\-2\\)"},
		{"x|y!", "x\\|y\\!"},
		{`back\slash`, `back\\slash`},
	}
	for _, tt := range tests {
		if got := escapeMarkdownV2(tt.in); got != tt.want {
			t.Errorf("escapeMarkdownV2(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatMessage(t *testing.T) {
	msg := formatMessage(sampleReport())

	wants := []string{
		"*Top Rental Investments*",
		"Zip 78244 \\| profile balanced",
		"Generated: 2025\\-03\\-14 09:30:00",
		"1\\. *84\\.5* ★★★★☆ Very Good",
		"5500 Grand Lake Dr, San Antonio, TX 78244",
		"Cap 103\\.2 \\| $/sqft 100\\.0 \\| Density 57\\.1 \\| Size 33\\.3 \\| Type 70\\.0",
		"2\\. *52\\.0* ★★★☆☆ Good",
		"   apt\\-1\n",
		"   Cap 50\\.0\n",
	}
	for _, want := range wants {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestFormatMessage_Empty(t *testing.T) {
	r := sampleReport()
	r.Scores = nil
	msg := formatMessage(r)
	if !strings.Contains(msg, "No properties scored \\(2 fetched\\)\\.") {
		t.Errorf("unexpected empty message:\n%s", msg)
	}
}

func TestFormatMessage_Truncates(t *testing.T) {
	r := sampleReport()
	r.Scores = nil
	for i := 0; i < maxListed+3; i++ {
		r.Scores = append(r.Scores, models.InvestmentScore{PropertyID: "p", OverallScore: 50, Rating: models.RatingFor(50)})
	}
	r.Fetched = len(r.Scores)

	msg := formatMessage(r)
	if !strings.Contains(msg, "…and 3 more") {
		t.Errorf("expected truncation note:\n%s", msg)
	}
	if strings.Contains(msg, "11\\.") {
		t.Errorf("expected at most %d entries:\n%s", maxListed, msg)
	}
}

// fakeBotServer serves getMe and sendMessage; sendMessage fails until failures is exhausted.
func fakeBotServer(t *testing.T, failures int32, sent *int32, lastText *atomic.Value) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"rentscore","username":"rentscore_bot"}}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			n := atomic.AddInt32(sent, 1)
			if n <= failures {
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"ok":false,"error_code":429,"description":"Too Many Requests"}`))
				return
			}
			if err := r.ParseForm(); err == nil {
				lastText.Store(r.FormValue("text"))
			}
			_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":12345,"type":"private"}}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func newTestClient(t *testing.T, server *httptest.Server, maxRetries int) *Client {
	t.Helper()
	bot, err := tgbotapi.NewBotAPIWithClient("test-token", server.URL+"/bot%s/%s", server.Client())
	if err != nil {
		t.Fatalf("NewBotAPIWithClient failed: %v", err)
	}
	c, err := newClient(bot, "12345", maxRetries, time.Millisecond)
	if err != nil {
		t.Fatalf("newClient failed: %v", err)
	}
	return c
}

func TestSend_RetriesThenSucceeds(t *testing.T) {
	var sent int32
	var lastText atomic.Value
	server := fakeBotServer(t, 2, &sent, &lastText)
	defer server.Close()

	c := newTestClient(t, server, 3)
	if err := c.Send(context.Background(), sampleReport()); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if n := atomic.LoadInt32(&sent); n != 3 {
		t.Errorf("expected 3 send attempts, got %d", n)
	}
	text, _ := lastText.Load().(string)
	if !strings.Contains(text, "Top Rental Investments") {
		t.Errorf("unexpected message text: %q", text)
	}
}

func TestSend_GivesUp(t *testing.T) {
	var sent int32
	var lastText atomic.Value
	server := fakeBotServer(t, 100, &sent, &lastText)
	defer server.Close()

	c := newTestClient(t, server, 2)
	if err := c.Send(context.Background(), sampleReport()); err == nil {
		t.Fatal("expected error after retries")
	}
	if n := atomic.LoadInt32(&sent); n != 2 {
		t.Errorf("expected 2 send attempts, got %d", n)
	}
}

func TestSend_NoBackoffAfterLastAttempt(t *testing.T) {
	var sent int32
	var lastText atomic.Value
	server := fakeBotServer(t, 100, &sent, &lastText)
	defer server.Close()

	c := newTestClient(t, server, 1)
	c.retryDelayBase = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := c.Send(ctx, sampleReport())
	if err == nil {
		t.Fatal("expected error after retries")
	}
	if errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected send to return without waiting out the backoff, got %v", err)
	}
}

func TestNewClient_InvalidChatID(t *testing.T) {
	if _, err := newClient(nil, "not-a-number", 3, time.Second); err == nil {
		t.Error("expected error for invalid chat ID")
	}
}

func TestSendErrorAndRecovery(t *testing.T) {
	var sent int32
	var lastText atomic.Value
	server := fakeBotServer(t, 0, &sent, &lastText)
	defer server.Close()

	c := newTestClient(t, server, 1)

	if err := c.SendError(context.Background(), errors.New("zip 78244: timeout")); err != nil {
		t.Fatalf("SendError failed: %v", err)
	}
	text, _ := lastText.Load().(string)
	if !strings.Contains(text, "zip 78244: timeout") || !strings.Contains(text, "Scoring cycle failed") {
		t.Errorf("unexpected error text: %q", text)
	}

	if err := c.SendRecovery(context.Background(), 2); err != nil {
		t.Fatalf("SendRecovery failed: %v", err)
	}
	text, _ = lastText.Load().(string)
	if !strings.Contains(text, "after 2 failed cycles") {
		t.Errorf("unexpected recovery text: %q", text)
	}
}
