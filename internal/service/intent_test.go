package service

import (
	"context"
	"errors"
	"testing"

	"cartagent/internal/model"
)

// Without a chat client the parser falls back to pattern extraction.
func TestIntentParser_HeuristicFallback(t *testing.T) {
	parser := NewIntentParser(nil)

	intent, err := parser.Parse(context.Background(), "wireless mouse under 500")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if intent.Product != "wireless mouse" {
		t.Errorf("Product = %q, want %q", intent.Product, "wireless mouse")
	}
	if intent.MaxPrice() == nil || *intent.MaxPrice() != 500 {
		t.Error("expected max price 500")
	}
	if intent.MinPrice() != nil {
		t.Error("expected no min price")
	}
}

func TestIntentParser_HeuristicRating(t *testing.T) {
	parser := NewIntentParser(nil)

	intent, err := parser.Parse(context.Background(), "earbuds rating above 4.5 under 1500")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if intent.MinRating() == nil || *intent.MinRating() != 4.5 {
		t.Error("expected min rating 4.5")
	}
	if intent.MaxPrice() == nil || *intent.MaxPrice() != 1500 {
		t.Error("expected max price 1500")
	}
}

func TestIntentParser_EmptyQuery(t *testing.T) {
	parser := NewIntentParser(nil)

	_, err := parser.Parse(context.Background(), "   ")
	if err == nil {
		t.Fatal("expected error for empty query")
	}
	var validationErr *model.ValidationError
	if !errors.As(err, &validationErr) {
		t.Errorf("expected ValidationError, got %T", err)
	}
}

// An out-of-scale rating extracted from text must fail validation, not
// silently pass through to the agent.
func TestIntentParser_HeuristicInvalidRating(t *testing.T) {
	parser := NewIntentParser(nil)

	_, err := parser.Parse(context.Background(), "mouse rating above 4000")
	if err == nil {
		t.Fatal("expected validation error for rating above 5")
	}
	var validationErr *model.ValidationError
	if !errors.As(err, &validationErr) {
		t.Errorf("expected ValidationError, got %T", err)
	}
}
