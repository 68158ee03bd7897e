package execution

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"ctabot-go/internal/metrics"
)

type stubVenue struct {
	sent      []Intent
	cancelled []string
	err       error
}

func (v *stubVenue) Send(intent Intent) (string, error) {
	if v.err != nil {
		return "", v.err
	}
	v.sent = append(v.sent, intent)
	return "ord-1", nil
}

func (v *stubVenue) Cancel(id string) error {
	v.cancelled = append(v.cancelled, id)
	return v.err
}

func TestSubmitLogsOrder(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	venue := &stubVenue{}

	exec := NewExecutor(logger, venue)
	before := testutil.ToFloat64(metrics.OrdersTotal.WithLabelValues("BTCUSDT", "Buy-Open"))
	id, err := exec.Submit(Buy("BTCUSDT", 100, 1))
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if id != "ord-1" || len(venue.sent) != 1 {
		t.Fatalf("intent not forwarded to venue")
	}
	out := buf.String()
	if !strings.Contains(out, "BTCUSDT") || !strings.Contains(out, "Buy-Open") {
		t.Fatalf("log does not contain symbol and type: %s", out)
	}
	if got := testutil.ToFloat64(metrics.OrdersTotal.WithLabelValues("BTCUSDT", "Buy-Open")); got != before+1 {
		t.Fatalf("orders_total not incremented: %.0f", got)
	}
}

func TestSubmitVenueError(t *testing.T) {
	exec := NewExecutor(zerolog.Nop(), &stubVenue{err: errors.New("rejected")})
	if _, err := exec.Submit(Sell("BTCUSDT", 100, 1)); err == nil {
		t.Fatalf("expected venue error")
	}
	if _, err := NewExecutor(zerolog.Nop(), nil).Submit(Sell("BTCUSDT", 100, 1)); !errors.Is(err, ErrNoVenue) {
		t.Fatalf("expected ErrNoVenue, got %v", err)
	}
}

func TestCancelForwards(t *testing.T) {
	venue := &stubVenue{}
	exec := NewExecutor(zerolog.Nop(), venue)
	if err := exec.Cancel("BTCUSDT", "abc"); err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}
	if len(venue.cancelled) != 1 || venue.cancelled[0] != "abc" {
		t.Fatalf("cancel not forwarded: %v", venue.cancelled)
	}
}

func TestIntentConstructorsAndLabels(t *testing.T) {
	cases := map[string]Intent{
		"Buy-Open":   Buy("X", 1, 1),
		"Sell-Close": Sell("X", 1, 1),
		"Sell-Open":  Short("X", 1, 1),
		"Buy-Close":  Cover("X", 1, 1),
	}
	for label, intent := range cases {
		if got := intent.Label(); got != label {
			t.Fatalf("expected %s got %s", label, got)
		}
	}
	if Label("", Open) != "Unknown" {
		t.Fatalf("expected Unknown for empty direction")
	}
}

func TestTradeSigned(t *testing.T) {
	if (Trade{Direction: DirLong, Qty: 2}).Signed() != 2 {
		t.Fatalf("long trade should be positive")
	}
	if (Trade{Direction: DirShort, Qty: 2}).Signed() != -2 {
		t.Fatalf("short trade should be negative")
	}
}
