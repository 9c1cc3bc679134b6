package expr

import (
	"errors"
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	t.Parallel()

	toks, err := Tokenize("x1 = (12 << 3) >= -y, ~z != 0")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	var kinds []TokenKind
	var texts []string
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
		texts = append(texts, tok.Text)
	}
	wantKinds := []TokenKind{IdentTok, Assign, LParen, Number, Operator, Number, RParen, Operator, Operator, IdentTok, Comma, Operator, IdentTok, Operator, Number, EOF}
	wantTexts := []string{"x1", "=", "(", "12", "<<", "3", ")", ">=", "-", "y", ",", "~", "z", "!=", "0", ""}
	if !reflect.DeepEqual(kinds, wantKinds) {
		t.Errorf("kinds = %v\nwant    %v", kinds, wantKinds)
	}
	if !reflect.DeepEqual(texts, wantTexts) {
		t.Errorf("texts = %q\nwant    %q", texts, wantTexts)
	}
	if toks[3].Pos != 6 || toks[len(toks)-1].Pos != 29 {
		t.Errorf("positions: number at %d, EOF at %d", toks[3].Pos, toks[len(toks)-1].Pos)
	}
}

func TestTokenize_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		src string
		pos int
	}{
		{"1 + $", 4},
		{"12ab", 2},
		{"a ! b", 2},
		{"3.5", 1},
	}
	for _, tt := range tests {
		_, err := Tokenize(tt.src)
		var se *SyntaxError
		if !errors.As(err, &se) {
			t.Errorf("Tokenize(%q) error = %v, want *SyntaxError", tt.src, err)
			continue
		}
		if se.Pos != tt.pos {
			t.Errorf("Tokenize(%q) position = %d, want %d", tt.src, se.Pos, tt.pos)
		}
	}
}

func TestTokenKind_String(t *testing.T) {
	t.Parallel()
	if EOF.String() != "end of input" || Assign.String() != "'='" {
		t.Errorf("unexpected names %q %q", EOF, Assign)
	}
	if TokenKind(99).String() != "TokenKind(99)" {
		t.Errorf("unexpected fallback %q", TokenKind(99))
	}
}
