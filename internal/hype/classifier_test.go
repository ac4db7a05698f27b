package hype

import (
	"math"
	"testing"
)

func TestScore_BullHeavy(t *testing.T) {
	got := Score("AFRM to the moon, diamond hands", "yolo calls all the way")
	if got <= 0.5 {
		t.Fatalf("expected bullish score, got %v", got)
	}
}

func TestScore_BearHeavy(t *testing.T) {
	got := Score("buying puts before the crash", "dump it, paper everything")
	if got >= 0.5 {
		t.Fatalf("expected bearish score, got %v", got)
	}
}

func TestScore_NeutralWithoutLoadedWords(t *testing.T) {
	got := Score("quarterly filing posted", "nothing unusual in the report")
	if got != 0.5 {
		t.Fatalf("expected 0.5 neutral, got %v", got)
	}
}

func TestScore_MixedCountsDistinctWords(t *testing.T) {
	// one bull word, one bear word -> 0.5
	got := Score("moon or crash", "")
	if got != 0.5 {
		t.Fatalf("expected 0.5, got %v", got)
	}
}

func TestNewsSentiment_Positive(t *testing.T) {
	got := NewsSentiment("Shares surge to record after earnings beat", "")
	if got != 1.0 {
		t.Fatalf("expected 1.0, got %v", got)
	}
}

func TestNewsSentiment_Negative(t *testing.T) {
	got := NewsSentiment("Stock drops after earnings miss", "analysts bearish")
	if got != -1.0 {
		t.Fatalf("expected -1.0, got %v", got)
	}
}

func TestNewsSentiment_Mixed(t *testing.T) {
	// surge (+), rally (+), crash (-) -> (2-1)/3
	got := NewsSentiment("surge then rally then crash", "")
	if got != 0.3333 {
		t.Fatalf("expected 0.3333, got %v", got)
	}
}

func TestNewsSentiment_NoSignal(t *testing.T) {
	if got := NewsSentiment("company announces dividend", ""); got != 0.0 {
		t.Fatalf("expected 0.0, got %v", got)
	}
}

func TestShock_ScalesWithTitleLength(t *testing.T) {
	title := "aaaaaaaaaaaaaaaaaaaa" // len 20 -> scale 1
	if got := Shock(0.5, title); got != 0.5 {
		t.Fatalf("expected 0.5, got %v", got)
	}
}

func TestShock_CapsScaleAtFive(t *testing.T) {
	long := make([]byte, 400)
	for i := range long {
		long[i] = 'x'
	}
	got := Shock(-1.0, string(long))
	if got != 5.0 {
		t.Fatalf("expected cap at 5.0, got %v", got)
	}
}

func TestShock_ZeroSentiment(t *testing.T) {
	if got := Shock(0, "any headline at all"); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
	if math.Signbit(Shock(0, "x")) {
		t.Fatal("expected positive zero")
	}
}
