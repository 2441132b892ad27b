package pkg

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestName(t *testing.T) {
	if Name != "tagfn" {
		t.Errorf("Expected Name to be %q, got %q", "tagfn", Name)
	}
}

func TestVersion(t *testing.T) {
	v := Version()
	if v == "" {
		t.Fatal("Expected embedded Version to be non-empty")
	}

	if strings.TrimSpace(v) != v {
		t.Errorf("Expected Version without surrounding space, got %q", v)
	}

	if strings.Count(v, ".") != 2 {
		t.Errorf("Expected semantic version, got %q", v)
	}
}

func TestAuthorStruct(t *testing.T) {
	if len(Author) == 0 {
		t.Error("Expected Author to have at least one entry")
	}

	for i, author := range Author {
		if author.Name == "" && author.Email == "" {
			t.Errorf("Author[%d] must define at least Name or Email", i)
		}
	}
}

func TestError_Chain(t *testing.T) {
	err := ErrReadInput.Wrap(io.ErrUnexpectedEOF).Wrapf("file %q", "a.tf")

	if got, want := err.Error(),
		`failed to read input: unexpected EOF: file "a.tf"`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	if !errors.Is(err, ErrReadInput) {
		t.Error("expected chain to match its sentinel")
	}

	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("expected chain to match wrapped cause")
	}

	if errors.Is(err, ErrInvalidFormat) {
		t.Error("chain matched unrelated sentinel")
	}

	if errors.Is(ErrReadInput, err) {
		t.Error("sentinel matched longer chain")
	}

	if len(ErrReadInput) != 1 {
		t.Error("Wrap modified the sentinel")
	}
}

func TestMakeError_SkipsNil(t *testing.T) {
	if err := MakeError(nil, nil); len(err) != 0 {
		t.Errorf("expected empty chain, got %v", err)
	}
}
