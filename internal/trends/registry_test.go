package trends

import (
	"testing"
	"time"

	"resume-insights/internal/contract"
)

func TestRegistryDeliversToUserSubscribers(t *testing.T) {
	r := NewRegistry()
	alice, disposeAlice := r.Subscribe("alice", 1)
	defer disposeAlice()
	bob, disposeBob := r.Subscribe("bob", 1)
	defer disposeBob()

	point := contract.TrendPoint{Timestamp: time.Now(), ATSScore: 80}
	if n := r.Publish("alice", point); n != 1 {
		t.Fatalf("expected 1 delivery, got %d", n)
	}
	select {
	case got := <-alice:
		if got.ATSScore != 80 {
			t.Fatalf("unexpected point %+v", got)
		}
	default:
		t.Fatalf("expected alice to receive the point")
	}
	select {
	case got := <-bob:
		t.Fatalf("bob must not receive alice's point, got %+v", got)
	default:
	}
}

func TestRegistryDisposerUnregisters(t *testing.T) {
	r := NewRegistry()
	ch, dispose := r.Subscribe("u", 1)
	if r.Subscribers("u") != 1 {
		t.Fatalf("expected one subscriber")
	}
	dispose()
	dispose()
	if r.Subscribers("u") != 0 {
		t.Fatalf("expected subscription removed")
	}
	if _, ok := <-ch; ok {
		t.Fatalf("expected channel closed")
	}
	if n := r.Publish("u", contract.TrendPoint{}); n != 0 {
		t.Fatalf("expected no deliveries after dispose, got %d", n)
	}
}

func TestRegistryDropsForSlowSubscriber(t *testing.T) {
	r := NewRegistry()
	_, dispose := r.Subscribe("u", 1)
	defer dispose()

	if n := r.Publish("u", contract.TrendPoint{ATSScore: 1}); n != 1 {
		t.Fatalf("expected first point delivered")
	}
	if n := r.Publish("u", contract.TrendPoint{ATSScore: 2}); n != 0 {
		t.Fatalf("expected second point dropped for a full buffer, got %d", n)
	}
}
