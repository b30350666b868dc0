package diag

// The functions below are a direct catalog of the diagnostics the checker
// raises, one per distinct situation named in spec.md §7 and in the
// original compiler's error catalog (original_source/src/error.rs). Callers
// build a Diagnostic and hand it to Sink.Error/Warn; none of these mutate
// state, so speculative callers can build-then-discard freely.

func InvalidOperator(op, ty string, span Span) Diagnostic {
	return New(CodeType, span, "operator '%s' is invalid for a value of type '%s'", op, ty)
}

func SharedMember(name string, span Span) Diagnostic {
	return New(CodeStructural, span, "cannot declare variant member with same name as shared member '%s'", name)
}

func UnterminatedString(span Span) Diagnostic {
	return New(CodeLexical, span, "unterminated string literal")
}

func NonASCIIChar(span Span) Diagnostic {
	return New(CodeLexical, span, "invalid char escape (must be within the range 0..=0x7f)")
}

func NotValidHere(tok string, span Span) Diagnostic {
	return New(CodeParse, span, "'%s' is not valid here", tok)
}

func TypeMismatch(expected, received string, span Span) Diagnostic {
	return New(CodeType, span, "type mismatch: expected type '%s', found '%s'", expected, received)
}

func Private(item string, span Span) Diagnostic {
	return New(CodeResolution, span, "'%s' is private", item)
}

func PrivateMember(ty, member string, span Span) Diagnostic {
	return New(CodeResolution, span, "cannot access private member '%s' of type '%s'", member, ty)
}

func NoMember(ty, member string, span Span) Diagnostic {
	return New(CodeResolution, span, "no member '%s' found on type '%s'", member, ty)
}

func NoMethod(ty, method string, span Span) Diagnostic {
	return New(CodeResolution, span, "no method '%s' found on type '%s'", method, ty)
}

func NoSymbol(symbol string, span Span) Diagnostic {
	return New(CodeResolution, span, "no symbol '%s' found in this module", symbol)
}

func NoLangItem(name string, span Span) Diagnostic {
	return New(CodeResolution, span, "missing language item: '%s'", name)
}

func DoesntImplement(ty, traitName string, span Span) Diagnostic {
	return New(CodeGenerics, span, "type '%s' does not implement '%s'", ty, traitName)
}

func WildcardImport(span Span) Diagnostic {
	return New(CodeResolution, span, "wildcard import is only valid with modules")
}

func IsUnsafe(span Span) Diagnostic {
	return New(CodeSafety, span, "this operation is unsafe")
}

func Redefinition(name string, span Span) Diagnostic {
	return RedefinitionK("name", name, span)
}

func RedefinitionK(kind, name string, span Span) Diagnostic {
	return New(CodeStructural, span, "redefinition of %s '%s'", kind, name)
}

func MustBeIrrefutable(ty string, span Span) Diagnostic {
	return New(CodePattern, span, "%s must be irrefutable", ty)
}

func ExpectedFound(expected, received string, span Span) Diagnostic {
	return New(CodeType, span, "expected %s, found %s", expected, received)
}

func MatchNotExhaustive(why string, span Span) Diagnostic {
	return New(CodePattern, span, "match statement does not cover all cases %s", why)
}

func Cyclic(a, b string, span Span) Diagnostic {
	return New(CodeResolution, span, "cyclic dependency between %s and %s", a, b)
}

func BadDestructure(ty string, span Span) Diagnostic {
	return New(CodePattern, span, "cannot destructure value of type '%s'", ty)
}

func SubscriptAddr(span Span) Diagnostic {
	return New(CodeSemantic, span, "taking address of subscript that returns a value creates a temporary")
}

func RecursiveType(member string, span Span, variant bool) Diagnostic {
	kind := "member"
	if variant {
		kind = "variant"
	}
	return New(CodeStructural, span, "%s '%s' gives this struct infinite size", kind, member)
}

func NoConsteval(span Span) Diagnostic {
	return New(CodeType, span, "expression is not compile time evaluatable")
}

func ConstevalOverflow(span Span) Diagnostic {
	return New(CodeType, span, "expression overflows during constant evaluation")
}

func CannotInfer(param string, span Span) Diagnostic {
	return New(CodeGenerics, span, "cannot infer type of parameter '%s'", param)
}

func AmbiguousReceiver(span Span) Diagnostic {
	return New(CodeType, span, "ambiguous receiver for extension method across multiple pointer levels")
}

func ReturnOutsideFunction(span Span) Diagnostic {
	return New(CodeSemantic, span, "return statement outside of a function")
}

func BreakOutsideLoop(span Span) Diagnostic {
	return New(CodeSemantic, span, "break statement outside of a loop")
}

func UnknownAttribute(name string, span Span) Diagnostic {
	return New(CodeStructural, span, "unknown attribute '%s'", name)
}

// LeadingZeroDecimal is a warning, never an error (spec.md §9 open question).
func LeadingZeroDecimal(span Span) Diagnostic {
	return New(CodeWarning, span, "leading zero in decimal literal is ambiguous with octal")
}

func UnusedVariable(name string, span Span) Diagnostic {
	return New(CodeWarning, span, "unused variable '%s'", name)
}
