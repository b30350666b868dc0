package main

import "testing"

func TestParseArgsSharedFlags(t *testing.T) {
	sf, bf, rest := parseArgs([]string{"--no-core", "--leak", "-i", "--lib", "input.ctl"})
	if !sf.noCore || !sf.leak || !sf.noBitInt || !sf.lib {
		t.Fatalf("expected all shared flags set, got %+v", sf)
	}
	if len(rest) != 1 || rest[0] != "input.ctl" {
		t.Fatalf("expected 'input.ctl' as the sole positional arg, got %v", rest)
	}
	if bf.cc != "clang" {
		t.Fatalf("expected default cc 'clang', got %q", bf.cc)
	}
}

func TestParseArgsBuildFlags(t *testing.T) {
	_, bf, rest := parseArgs([]string{"--cc", "gcc", "--ccargs", "-O2", "-v", "input.ctl", "output"})
	if bf.cc != "gcc" {
		t.Fatalf("expected --cc to override the compiler, got %q", bf.cc)
	}
	if bf.ccargs != "-O2" {
		t.Fatalf("expected --ccargs to be captured, got %q", bf.ccargs)
	}
	if !bf.verbose {
		t.Fatal("expected -v to set verbose")
	}
	if len(rest) != 2 || rest[0] != "input.ctl" || rest[1] != "output" {
		t.Fatalf("expected input and output positionals, got %v", rest)
	}
}

func TestParseArgsNoFlags(t *testing.T) {
	sf, _, rest := parseArgs([]string{"input.ctl"})
	if sf.noCore || sf.noStd || sf.leak || sf.noBitInt || sf.lib {
		t.Fatalf("expected no flags set, got %+v", sf)
	}
	if len(rest) != 1 || rest[0] != "input.ctl" {
		t.Fatalf("expected just the input path, got %v", rest)
	}
}
