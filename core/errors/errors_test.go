package errors

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"testing"
)

func TestParseError(t *testing.T) {
	tests := []struct {
		name    string
		err     *ParseError
		wantMsg string
	}{
		{
			name:    "message only",
			err:     &ParseError{Format: "BioC XML", Message: "unexpected element"},
			wantMsg: "failed to parse BioC XML: unexpected element",
		},
		{
			name:    "with path",
			err:     &ParseError{Format: "BioC XML", Path: "a.xml", Message: "bad offset"},
			wantMsg: "failed to parse BioC XML at a.xml: bad offset",
		},
		{
			name:    "with path and line",
			err:     &ParseError{Format: "DTD", Path: "BioC.dtd", Line: 3, Message: "bad decl"},
			wantMsg: "failed to parse DTD at BioC.dtd:3: bad decl",
		},
		{
			name:    "with line",
			err:     &ParseError{Format: "BioC XML", Line: 7, Err: io.ErrUnexpectedEOF},
			wantMsg: "failed to parse BioC XML at line 7: unexpected EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if !errors.Is(tt.err, ErrInvalidInput) {
				t.Error("ParseError should match ErrInvalidInput")
			}
		})
	}

	t.Run("wraps lexical error", func(t *testing.T) {
		err := &ParseError{Format: "BioC XML", Message: "token", Err: io.ErrUnexpectedEOF}
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Error("ParseError should unwrap to the lexical error")
		}
		if got := err.Error(); got != "failed to parse BioC XML: token: unexpected EOF" {
			t.Errorf("Error() = %q", got)
		}
	})
}

func TestMissingFieldError(t *testing.T) {
	err := NewMissingField("passage", "offset")
	if got := err.Error(); got != "passage: required field offset is not set" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, ErrMissingField) {
		t.Error("MissingFieldError should match ErrMissingField")
	}
}

func TestProtocolViolationError(t *testing.T) {
	err := NewProtocol("write document", "collection header not written")
	if got := err.Error(); got != "protocol violation: cannot write document: collection header not written" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, ErrProtocol) {
		t.Error("should match ErrProtocol")
	}

	closed := &ProtocolViolationError{Operation: "write document", Reason: "writer closed", Err: fs.ErrClosed}
	if !errors.Is(closed, fs.ErrClosed) {
		t.Error("closed writer error should match fs.ErrClosed")
	}
	if !errors.Is(closed, ErrProtocol) {
		t.Error("closed writer error should still match ErrProtocol")
	}
}

func TestValidatorErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantMsg  string
		wantBase error
	}{
		{
			name:     "duplicate id",
			err:      &DuplicateIDError{Scope: "passage@0", Kind: "annotation", ID: "T1"},
			wantMsg:  `passage@0: duplicate annotation id "T1"`,
			wantBase: ErrDuplicateID,
		},
		{
			name: "text mismatch",
			err: &AnnotationTextMismatchError{DocumentID: "1", AnnotationID: "T1",
				Offset: 0, Length: 5, Expected: "Raf-1", Actual: "Raf1"},
			wantMsg:  `document 1: annotation T1 at 0:5: expected "Raf-1", actual "Raf1"`,
			wantBase: ErrTextMismatch,
		},
		{
			name: "text mismatch with reason",
			err: &AnnotationTextMismatchError{DocumentID: "1", AnnotationID: "T2",
				Offset: 90, Length: 5, Reason: "location outside scope text"},
			wantMsg:  "document 1: annotation T2 at 90:5: location outside scope text",
			wantBase: ErrTextMismatch,
		},
		{
			name:     "overlap",
			err:      &OverlapError{DocumentID: "1", Scope: "passage", Offset: 3, End: 10},
			wantMsg:  "document 1: passage at offset 3 overlaps text ending at 10",
			wantBase: ErrOverlap,
		},
		{
			name:     "dangling reference",
			err:      &DanglingReferenceError{DocumentID: "1", RelationID: "R1", RefID: "T99", Role: "Arg1"},
			wantMsg:  `document 1: relation R1: node "T99" (role "Arg1") references unknown id`,
			wantBase: ErrDanglingReference,
		},
		{
			name:     "invalid value",
			err:      &InvalidValueError{DocumentID: "1", Field: "passage.offset", Message: "negative"},
			wantMsg:  "document 1: passage.offset: negative",
			wantBase: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if !errors.Is(tt.err, tt.wantBase) {
				t.Errorf("errors.Is(%v) = false", tt.wantBase)
			}
		})
	}
}

func TestIOError(t *testing.T) {
	underlying := fmt.Errorf("disk full")
	err := NewIO("write", "out.xml", underlying)
	if got := err.Error(); got != "failed to write out.xml: disk full" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, underlying) {
		t.Error("IOError should unwrap to underlying error")
	}

	noPath := NewIO("flush", "", underlying)
	if got := noPath.Error(); got != "failed to flush: disk full" {
		t.Errorf("Error() = %q", got)
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("Wrap(nil) should return nil")
	}
	if Wrapf(nil, "context %d", 1) != nil {
		t.Error("Wrapf(nil) should return nil")
	}

	base := errors.New("base")
	wrapped := Wrapf(base, "reading %s", "a.xml")
	if wrapped.Error() != "reading a.xml: base" {
		t.Errorf("Wrapf() = %q", wrapped.Error())
	}
	if !Is(wrapped, base) {
		t.Error("Is should find wrapped error")
	}

	var dup *DuplicateIDError
	err := Wrap(&DuplicateIDError{Scope: "s", Kind: "relation", ID: "R1"}, "add")
	if !As(err, &dup) || dup.ID != "R1" {
		t.Error("As should extract DuplicateIDError")
	}
}
