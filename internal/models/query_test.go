package models

import (
	"errors"
	"testing"
)

func TestSearchQuery_Validate(t *testing.T) {
	tests := []struct {
		name     string
		query    *SearchQuery
		wantErr  bool
		wantTopK int
	}{
		{"empty query", &SearchQuery{Query: ""}, true, 0},
		{"sets default top_k", &SearchQuery{Query: "x"}, false, DefaultTopK},
		{"keeps explicit top_k", &SearchQuery{Query: "x", TopK: 7}, false, 7},
		{"negative top_k", &SearchQuery{Query: "x", TopK: -1}, true, 0},
		{"top_k above max", &SearchQuery{Query: "x", TopK: MaxTopK + 1}, true, 0},
		{"top_k at max", &SearchQuery{Query: "x", TopK: MaxTopK}, false, MaxTopK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate(0, 0)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var ve *ValidationError
				if !errors.As(err, &ve) {
					t.Errorf("expected *ValidationError, got %T", err)
				}
				return
			}
			if tt.query.TopK != tt.wantTopK {
				t.Errorf("TopK = %d, want %d", tt.query.TopK, tt.wantTopK)
			}
		})
	}
}

func TestSearchQuery_ValidateCustomLimits(t *testing.T) {
	q := &SearchQuery{Query: "x"}
	if err := q.Validate(3, 10); err != nil {
		t.Fatal(err)
	}
	if q.TopK != 3 {
		t.Errorf("TopK = %d, want 3", q.TopK)
	}
	q = &SearchQuery{Query: "x", TopK: 11}
	if err := q.Validate(3, 10); err == nil {
		t.Error("expected error above custom max")
	}
}

func TestDocumentInput_Validate(t *testing.T) {
	in := &DocumentInput{}
	if err := in.Validate(); err == nil {
		t.Error("expected error for empty content")
	}
	in = &DocumentInput{Content: "hello"}
	if err := in.Validate(); err != nil {
		t.Fatal(err)
	}
	if in.Metadata == nil {
		t.Error("metadata should default to an empty map")
	}
}
