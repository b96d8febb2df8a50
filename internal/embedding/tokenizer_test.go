package embedding

import (
	"testing"
)

func TestSimpleTokenizer_Tokenize(t *testing.T) {
	tok := &SimpleTokenizer{}
	ids, attn, types := tok.Tokenize("hello world", 10)
	if len(ids) != 10 || len(attn) != 10 || len(types) != 10 {
		t.Fatalf("lengths: ids=%d attn=%d types=%d", len(ids), len(attn), len(types))
	}
	if ids[0] != tokenCLS {
		t.Errorf("expected CLS %d, got %d", tokenCLS, ids[0])
	}
	if ids[3] != tokenSEP {
		t.Errorf("expected SEP at position 3, got %d", ids[3])
	}
	if attn[3] != 1 || attn[4] != 0 {
		t.Errorf("attention mask should cover CLS, two words, SEP: %v", attn)
	}
	for _, id := range ids[1:3] {
		if id < firstWordID || id >= vocabCap {
			t.Errorf("word id %d outside [%d, %d)", id, firstWordID, vocabCap)
		}
	}
}

func TestSimpleTokenizer_SplitsPunctuationAndCase(t *testing.T) {
	tok := &SimpleTokenizer{}
	a, _, _ := tok.Tokenize("Hello, World!", 6)
	b, _, _ := tok.Tokenize("hello world", 6)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("position %d: %d != %d", i, a[i], b[i])
		}
	}
}

func TestSimpleTokenizer_TruncatesLongInput(t *testing.T) {
	tok := &SimpleTokenizer{}
	ids, attn, _ := tok.Tokenize("a b c d e f g h", 4)
	if len(ids) != 4 {
		t.Fatalf("len(ids)=%d", len(ids))
	}
	if ids[3] != tokenSEP {
		t.Errorf("expected SEP in last position, got %d", ids[3])
	}
	for i, a := range attn {
		if a != 1 {
			t.Errorf("attention[%d] = %d, want 1", i, a)
		}
	}
}

func TestSimpleTokenizer_DefaultLength(t *testing.T) {
	ids, _, _ := (&SimpleTokenizer{}).Tokenize("x", 0)
	if len(ids) != defaultMaxToken {
		t.Errorf("len(ids)=%d, want %d", len(ids), defaultMaxToken)
	}
}

func TestSplitWords(t *testing.T) {
	got := splitWords("Vector-search: 3 QUICK tips")
	want := []string{"vector", "search", "3", "quick", "tips"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("word %d = %q, want %q", i, got[i], want[i])
		}
	}
}
