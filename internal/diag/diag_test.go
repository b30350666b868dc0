package diag

import "testing"

func TestSinkAccumulatesAndGates(t *testing.T) {
	s := NewSink()
	file := s.AddFile("main.ctl")

	s.Errorf(CodeType, Span{Pos: 0, Len: 1, File: file}, "type mismatch: expected %s, found %s", "i32", "bool")
	if !s.HasErrors() {
		t.Fatalf("expected HasErrors after logging an error")
	}

	checkpoint := s.CaptureErrors()
	prev := s.SetErrorsEnabled(false)
	if !prev {
		t.Fatalf("expected errors to have been enabled before the toggle")
	}
	s.Errorf(CodeResolution, Span{File: file}, "no symbol 'foo' found in this module")
	if len(s.Errors()) != checkpoint {
		t.Fatalf("error logged while disabled should have been dropped, got %d errors", len(s.Errors()))
	}

	s.SetErrorsEnabled(true)
	s.Warnf(CodeWarning, Span{File: file}, "unused variable 'x'")
	if len(s.Warnings()) != 1 {
		t.Fatalf("warnings must not be gated by SetErrorsEnabled(false)")
	}

	s.Errorf(CodeType, Span{File: file}, "second error")
	s.TruncateErrors(checkpoint)
	if len(s.Errors()) != checkpoint {
		t.Fatalf("TruncateErrors should roll back to the checkpoint, got %d", len(s.Errors()))
	}
}

func TestErrorCatalogRendersMessage(t *testing.T) {
	d := TypeMismatch("i32", "bool", Span{})
	want := "type mismatch: expected type 'i32', found 'bool'"
	if d.Message != want {
		t.Fatalf("got %q, want %q", d.Message, want)
	}
	if d.Code != CodeType {
		t.Fatalf("TypeMismatch should carry CodeType, got %s", d.Code)
	}
}

func TestFilePathRoundTrip(t *testing.T) {
	s := NewSink()
	a := s.AddFile("a.ctl")
	b := s.AddFile("b.ctl")
	if s.FilePath(a) != "a.ctl" || s.FilePath(b) != "b.ctl" {
		t.Fatalf("file ids did not round-trip to their paths")
	}
}
