package check

import (
	"strconv"

	"github.com/delta229/ctl/internal/ast"
	"github.com/delta229/ctl/internal/diag"
	"github.com/delta229/ctl/internal/scope"
	"github.com/delta229/ctl/internal/types"
)

// declareStmts is the forward-declaration pass (spec.md §4.4): every name
// a module introduces becomes visible in its scope before any body is
// type-checked, so mutually-recursive functions/types resolve regardless
// of source order.
func (c *Checker) declareStmts(stmts []ast.Stmt, sc scope.ScopeId) {
	for _, s := range stmts {
		c.declareStmt(s, sc)
	}
}

func (c *Checker) declareStmt(s ast.Stmt, sc scope.ScopeId) {
	switch st := s.(type) {
	case *ast.UserTypeStmt:
		c.declareUserType(st.Decl, sc)
	case *ast.FnStmt:
		c.declareFunction(&st.Decl, st.Body, sc, false, nil)
	case *ast.StaticStmt:
		c.declareStatic(st, sc)
	case *ast.ModuleStmt:
		child := c.Scopes.New(sc, true, scope.KindModule, 0, st.Name)
		c.Scopes.DeclareType(sc, st.Name, 0, st.Public) // modules share the type namespace as a path segment
		c.declareStmts(st.Body, child)
	case *ast.UseStmt:
		c.Scopes.QueueUse(sc, scope.PendingUse{Path: st.Path, Public: st.Public, All: st.All})
	case *ast.ExtensionStmt:
		c.declareExtension(st, sc)
	}
}

func (c *Checker) declareUserType(decl ast.UserTypeDecl, sc scope.ScopeId) {
	switch decl.Kind {
	case ast.KindStruct:
		c.declareStruct(decl.Struct, sc)
	case ast.KindUnion, ast.KindUnsafeUnion:
		c.declareUnion(decl.Union, decl.Kind == ast.KindUnsafeUnion, sc)
	case ast.KindTrait:
		c.declareTrait(decl.Trait, sc)
	}
}

func (c *Checker) declareStruct(d *ast.StructDecl, parent scope.ScopeId) {
	tsc := c.Scopes.New(parent, true, scope.KindUserType, 0, d.Name)
	id := scope.UserTypeId(len(c.UserTypes) + 1)
	if !c.Scopes.DeclareType(parent, d.Name, id, d.Public) {
		c.Sink.Error(diag.Redefinition(d.Name, d.NameSpan))
	}
	rec := UserTypeRecord{Scope: tsc, FullName: c.Scopes.FullName(parent, d.Name), MemberOf: map[string]types.Type{}, Impls: implRecords(d.Impls, tsc), IsPacked: d.Packed}
	c.withTypeParams(d.TypeParams, func() {
		for _, m := range d.Members {
			rec.MemberOf[m.Name] = c.resolveTypeHint(m.Ty, tsc)
		}
	})
	c.UserTypes = append(c.UserTypes, rec)
	decl := ast.UserTypeDecl{Kind: ast.KindStruct, Struct: d}
	c.UserTypes[len(c.UserTypes)-1].Decl = decl
	selfTy := c.selfTypeOf(id, c.UserTypes[len(c.UserTypes)-1].FullName, d.TypeParams)
	c.withTypeParams(d.TypeParams, func() {
		c.declareStructCtor(d, parent, selfTy, &c.UserTypes[len(c.UserTypes)-1])
		for i := range d.Functions {
			c.declareFunction(&d.Functions[i].Decl, d.Functions[i].Body, tsc, true, &c.UserTypes[len(c.UserTypes)-1])
		}
	})
}

// selfTypeOf builds the types.User a synthesized constructor returns: the
// just-declared type applied to its own type parameters unsubstituted (a
// generic struct's constructor is itself generic).
func (c *Checker) selfTypeOf(id scope.UserTypeId, fullName string, tps []ast.TypeParam) types.Type {
	args := make([]types.Type, len(tps))
	for i, tp := range tps {
		args[i] = types.TypeParamRef{Name: tp.Name}
	}
	return types.User{Id: uint32(id), Name: fullName, Args: args}
}

// declareStructCtor installs the synthesized `Name(field: value, ...)`
// constructor a struct declaration implies (spec.md §4.4 point 2): one
// keyword parameter per member, declared into the struct's own name in the
// value namespace so it aliases the type's TNS entry (spec.md §9 "a
// struct and its constructor share a name across the two namespaces
// intentionally").
func (c *Checker) declareStructCtor(d *ast.StructDecl, parent scope.ScopeId, selfTy types.Type, rec *UserTypeRecord) {
	params := make([]ast.Param, len(d.Members))
	paramTypes := make([]types.Type, len(d.Members))
	for i, m := range d.Members {
		params[i] = ast.Param{Keyword: true, Pattern: &ast.IdentPattern{Name: m.Name}, Default: m.Default}
		paramTypes[i] = rec.MemberOf[m.Name]
	}
	fnDecl := &ast.FnDecl{Name: d.Name, NameSpan: d.NameSpan, Public: d.Public, Params: params, TypeParams: d.TypeParams}
	id := scope.FunctionId(len(c.Functions) + 1)
	if !c.Scopes.DeclareFunction(parent, d.Name, id, d.Public) {
		c.Sink.Error(diag.Redefinition(d.Name, d.NameSpan))
	}
	c.Functions = append(c.Functions, FunctionRecord{
		Decl: fnDecl, Scope: rec.Scope, ParamTypes: paramTypes, RetType: selfTy,
		FullName: c.Scopes.FullName(parent, d.Name), IsCtor: true,
	})
	c.bodies = append(c.bodies, nil)
}

func (c *Checker) declareUnion(d *ast.UnionDecl, unsafeUnion bool, parent scope.ScopeId) {
	tsc := c.Scopes.New(parent, true, scope.KindUserType, 0, d.Base.Name)
	id := scope.UserTypeId(len(c.UserTypes) + 1)
	if !c.Scopes.DeclareType(parent, d.Base.Name, id, d.Base.Public) {
		c.Sink.Error(diag.Redefinition(d.Base.Name, d.Base.NameSpan))
	}
	rec := UserTypeRecord{
		Scope: tsc, FullName: c.Scopes.FullName(parent, d.Base.Name), MemberOf: map[string]types.Type{},
		Variants: map[string]int{}, Impls: implRecords(d.Base.Impls, tsc), IsUnion: true,
	}
	sharedNames := map[string]bool{}
	c.withTypeParams(d.Base.TypeParams, func() {
		for _, m := range d.Shared {
			rec.MemberOf[m.Name] = c.resolveTypeHint(m.Ty, tsc)
			sharedNames[m.Name] = true
		}
	})
	for i, v := range d.Variants {
		rec.Variants[v.Name] = i
		for _, f := range v.Fields {
			if sharedNames[f.Name] {
				c.Sink.Error(diag.SharedMember(f.Name, f.NameSpan))
				continue
			}
		}
	}
	c.UserTypes = append(c.UserTypes, rec)
	decl := ast.UserTypeDecl{Kind: ast.KindUnion, Union: d}
	if unsafeUnion {
		decl.Kind = ast.KindUnsafeUnion
	}
	c.UserTypes[len(c.UserTypes)-1].Decl = decl
	selfTy := c.selfTypeOf(id, c.UserTypes[len(c.UserTypes)-1].FullName, d.Base.TypeParams)
	c.withTypeParams(d.Base.TypeParams, func() {
		if unsafeUnion {
			c.declareUnsafeUnionCtor(d, parent, selfTy)
		} else {
			c.declareUnionVariantCtors(d, tsc, &c.UserTypes[len(c.UserTypes)-1], selfTy)
		}
		for i := range d.Base.Functions {
			c.declareFunction(&d.Base.Functions[i].Decl, d.Base.Functions[i].Body, tsc, true, &c.UserTypes[len(c.UserTypes)-1])
		}
	})
}

// declareUnionVariantCtors installs one constructor per tagged-union
// variant, declared into the union's own scope's value namespace under the
// variant's name (spec.md §4.4 point 3): shared members and the variant's
// own payload fields are both keyword params, and a purely-positional
// tuple-payload variant additionally takes its tuple elements positionally.
func (c *Checker) declareUnionVariantCtors(d *ast.UnionDecl, tsc scope.ScopeId, rec *UserTypeRecord, selfTy types.Type) {
	for _, v := range d.Variants {
		var params []ast.Param
		var paramTypes []types.Type
		for _, m := range d.Shared {
			params = append(params, ast.Param{Keyword: true, Pattern: &ast.IdentPattern{Name: m.Name}, Default: m.Default})
			paramTypes = append(paramTypes, rec.MemberOf[m.Name])
		}
		for ti, t := range v.TupleTypes {
			params = append(params, ast.Param{Pattern: &ast.IdentPattern{Name: "_" + strconv.Itoa(ti)}})
			paramTypes = append(paramTypes, c.resolveTypeHint(t, tsc))
		}
		for _, f := range v.Fields {
			params = append(params, ast.Param{Keyword: true, Pattern: &ast.IdentPattern{Name: f.Name}, Default: f.Default})
			paramTypes = append(paramTypes, c.resolveTypeHint(f.Ty, tsc))
		}
		fnDecl := &ast.FnDecl{Name: v.Name, NameSpan: v.NameSpan, Public: true, Params: params}
		id := scope.FunctionId(len(c.Functions) + 1)
		if !c.Scopes.DeclareFunction(tsc, v.Name, id, true) {
			c.Sink.Error(diag.Redefinition(v.Name, v.NameSpan))
		}
		c.Functions = append(c.Functions, FunctionRecord{
			Decl: fnDecl, Scope: tsc, ParamTypes: paramTypes, RetType: selfTy,
			FullName: c.Scopes.FullName(tsc, v.Name), IsCtor: true,
		})
		c.bodies = append(c.bodies, nil)
	}
}

// declareUnsafeUnionCtor installs the single constructor an `unsafe union`
// shares across all variants (spec.md §4.4 point 4): construction takes
// exactly one keyword argument naming the active variant, so the
// constructor itself carries no fixed parameter list. checkCtorArgs
// therefore infers its arguments with no expected type: neither the
// variant name, the payload type nor the argument count is checked.
func (c *Checker) declareUnsafeUnionCtor(d *ast.UnionDecl, parent scope.ScopeId, selfTy types.Type) {
	fnDecl := &ast.FnDecl{Name: d.Base.Name, NameSpan: d.Base.NameSpan, Public: d.Base.Public}
	id := scope.FunctionId(len(c.Functions) + 1)
	if !c.Scopes.DeclareFunction(parent, d.Base.Name, id, d.Base.Public) {
		c.Sink.Error(diag.Redefinition(d.Base.Name, d.Base.NameSpan))
	}
	c.Functions = append(c.Functions, FunctionRecord{
		Decl: fnDecl, Scope: parent, RetType: selfTy,
		FullName: c.Scopes.FullName(parent, d.Base.Name), IsCtor: true,
	})
	c.bodies = append(c.bodies, nil)
}

func (c *Checker) declareTrait(d *ast.TraitDecl, parent scope.ScopeId) {
	tsc := c.Scopes.New(parent, true, scope.KindTrait, 0, d.Name)
	id := scope.TraitId(len(c.Traits) + 1)
	if !c.Scopes.DeclareTrait(parent, d.Name, id, d.Public) {
		c.Sink.Error(diag.Redefinition(d.Name, d.NameSpan))
	}
	c.Traits = append(c.Traits, TraitRecord{Decl: d, Scope: tsc, FullName: c.Scopes.FullName(parent, d.Name)})
	c.withTypeParams(d.TypeParams, func() {
		for i := range d.Functions {
			// Trait method signatures carry no body (spec.md §4.4 "a trait
			// method without a default implementation"); a concrete impl's own
			// `impl { fn ... }` block supplies the body at the implementing
			// type, declared separately via declareStruct/declareUnion.
			c.declareFunction(&d.Functions[i], nil, tsc, true, nil)
		}
	})
}

func (c *Checker) declareFunction(d *ast.FnDecl, body []ast.Stmt, parent scope.ScopeId, isMethod bool, owner *UserTypeRecord) {
	fsc := c.Scopes.New(parent, true, scope.KindFunction, 0, d.Name)
	id := scope.FunctionId(len(c.Functions) + 1)
	if !c.Scopes.DeclareFunction(parent, d.Name, id, d.Public) {
		c.Sink.Error(diag.Redefinition(d.Name, d.NameSpan))
	}
	var thisTy types.Type
	if owner != nil {
		self := types.User{Name: owner.FullName}
		for i := range c.UserTypes {
			if &c.UserTypes[i] == owner {
				self.Id = uint32(i + 1)
			}
		}
		thisTy = self
	}
	paramTypes := make([]types.Type, len(d.Params))
	var ret types.Type = types.Prim(types.Void)
	c.withTypeParams(d.TypeParams, func() {
		for i, p := range d.Params {
			switch p.Ty.(type) {
			case *ast.ThisTypeHint:
				paramTypes[i] = thisTy
			case *ast.MutThisTypeHint:
				paramTypes[i] = types.MutPtr{Inner: thisTy}
			default:
				paramTypes[i] = c.resolveTypeHint(p.Ty, fsc)
			}
			if name := patternName(p.Pattern); name != "" {
				vid := scope.VariableId(len(c.Variables) + 1)
				c.Variables = append(c.Variables, VariableRecord{Name: name, Ty: paramTypes[i], Mutable: p.Mutable, Scope: fsc})
				c.Scopes.DeclareVariable(fsc, name, vid, false)
			}
		}
		if d.Ret != nil {
			ret = c.resolveTypeHint(d.Ret, fsc)
		}
	})
	c.Functions = append(c.Functions, FunctionRecord{
		Decl: d, Scope: fsc, ParamTypes: paramTypes, RetType: ret, IsMethod: isMethod,
		ThisType: thisTy, FullName: c.Scopes.FullName(parent, d.Name),
	})
	// c.bodies runs parallel to c.Functions, so checkFunctionBody finds the
	// body by the same index; body is nil for a trait method.
	c.bodies = append(c.bodies, body)
}

func (c *Checker) declareStatic(st *ast.StaticStmt, sc scope.ScopeId) {
	vid := scope.VariableId(len(c.Variables) + 1)
	ty := types.Type(types.Unknown{})
	if st.Ty != nil {
		ty = c.resolveTypeHint(st.Ty, sc)
	}
	c.Variables = append(c.Variables, VariableRecord{Name: st.Name, Ty: ty, Scope: sc})
	if !c.Scopes.DeclareVariable(sc, st.Name, vid, st.Public) {
		c.Sink.Error(diag.Redefinition(st.Name, st.Sp))
	}
}

func (c *Checker) declareExtension(st *ast.ExtensionStmt, parent scope.ScopeId) {
	esc := c.Scopes.New(parent, true, scope.KindExtension, 0, st.Name)
	var target types.Type
	c.withTypeParams(st.TypeParams, func() {
		target = c.resolveTypeHint(st.Target, esc)
		c.Extensions = append(c.Extensions, ExtensionRecord{Decl: st, Scope: esc, Target: target, Impls: implRecords(st.Impls, esc)})
		for i := range st.Functions {
			c.declareFunction(&st.Functions[i].Decl, st.Functions[i].Body, esc, true, nil)
			c.Functions[len(c.Functions)-1].ThisType = target
		}
	})
}

// implRecords wraps each declared `impl Trait<Args>` path with the scope
// it was declared in, so generics.go can later resolve+substitute its
// type arguments (spec.md §4.8).
func implRecords(paths []ast.TypePath, sc scope.ScopeId) []ImplRecord {
	out := make([]ImplRecord, len(paths))
	for i, p := range paths {
		out[i] = ImplRecord{Path: p, Scope: sc}
	}
	return out
}

func patternName(p ast.Pattern) string {
	if ip, ok := p.(*ast.IdentPattern); ok {
		return ip.Name
	}
	return ""
}
