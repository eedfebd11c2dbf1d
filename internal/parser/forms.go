package parser

import (
	"github.com/funvibe/lix/internal/ast"
	"github.com/funvibe/lix/internal/token"
)

// parseFnForm parses `fn (pat, ...) -> body ... end`. Each clause's body
// is a single expression (see the package doc comment); internal/compiler
// rewrites the parameter list into one packed-tuple pattern itself, so the
// parser only needs to hand over the clause's bare parameter list.
func (p *Parser) parseFnForm() ast.Node {
	meta := p.curMeta()
	p.nextToken() // consume 'fn'
	p.skipNewlines()
	var clauses []ast.Node
	for !p.curTokenIs(token.END) && !p.curTokenIs(token.EOF) {
		params := p.parseParenPatternList()
		clauseMeta := p.curMeta()
		p.expect(token.ARROW)
		body := p.parseExpression(LOWEST)
		clauses = append(clauses, ast.Call(ast.SymOf("->"), clauseMeta, ast.List([]ast.Node{ast.List(params), body})))
		p.skipNewlines()
	}
	p.expect(token.END)
	return ast.Call(ast.SymOf("fn"), meta, ast.List(clauses))
}

// parseParenPatternList parses a parenthesized, comma-separated pattern
// list (an fn clause's parameters); patterns are ordinary expressions —
// the compiler itself decides (via its binding-expression depth) whether
// a Var reference inside one binds a new name or matches an existing one.
func (p *Parser) parseParenPatternList() []ast.Node {
	p.expect(token.LPAREN)
	p.skipNewlines()
	var pats []ast.Node
	if p.curTokenIs(token.RPAREN) {
		p.nextToken()
		return pats
	}
	pats = append(pats, p.parseExpression(ASSIGN))
	p.skipNewlines()
	for p.curTokenIs(token.COMMA) {
		p.nextToken()
		p.skipNewlines()
		pats = append(pats, p.parseExpression(ASSIGN))
		p.skipNewlines()
	}
	p.expect(token.RPAREN)
	return pats
}

// parseQuoteForm parses `quote do ... end`.
func (p *Parser) parseQuoteForm() ast.Node {
	meta := p.curMeta()
	p.nextToken() // consume 'quote'
	p.expect(token.DO)
	body := p.parseBlockUntil(token.END)
	p.expect(token.END)
	return ast.Call(ast.SymOf("quote"), meta, ast.List([]ast.Node{buildDoBlockArgs(body)}))
}

// parseCaseForm parses `case expr do pattern -> body ... end`.
func (p *Parser) parseCaseForm() ast.Node {
	meta := p.curMeta()
	p.nextToken() // consume 'case'
	scrutinee := p.parseExpression(LOWEST)
	p.expect(token.DO)
	clauses := p.parseArrowClauses()
	p.expect(token.END)
	return ast.Call(ast.SymOf("case"), meta, ast.List([]ast.Node{scrutinee, buildDoBlockArgs(ast.List(clauses))}))
}

// parseCondForm parses `cond do expr -> body ... end`.
func (p *Parser) parseCondForm() ast.Node {
	meta := p.curMeta()
	p.nextToken() // consume 'cond'
	p.expect(token.DO)
	clauses := p.parseArrowClauses()
	p.expect(token.END)
	return ast.Call(ast.SymOf("cond"), meta, ast.List([]ast.Node{buildDoBlockArgs(ast.List(clauses))}))
}

// parseArrowClauses parses the `pattern -> body` clauses case/cond share,
// each clause body being a single expression.
func (p *Parser) parseArrowClauses() []ast.Node {
	p.skipNewlines()
	var clauses []ast.Node
	for !p.curTokenIs(token.END) && !p.curTokenIs(token.EOF) {
		clauseMeta := p.curMeta()
		pattern := p.parseExpression(LOWEST)
		p.expect(token.ARROW)
		body := p.parseExpression(LOWEST)
		clauses = append(clauses, ast.Call(ast.SymOf("->"), clauseMeta, ast.List([]ast.Node{ast.List([]ast.Node{pattern}), body})))
		p.skipNewlines()
	}
	return clauses
}

// parseDefmoduleForm parses `defmodule Name do ... end`.
func (p *Parser) parseDefmoduleForm() ast.Node {
	meta := p.curMeta()
	p.nextToken() // consume 'defmodule'
	if !p.curTokenIs(token.IDENT_UPPER) {
		p.errorf("expected a module name after 'defmodule'")
		return ast.SymOf("nil")
	}
	name := p.curToken.Lexeme
	p.nextToken()
	p.expect(token.DO)
	body := p.parseBlockUntil(token.END)
	p.expect(token.END)
	return ast.Call(ast.SymOf("defmodule"), meta, ast.List([]ast.Node{ast.SymOf(name), buildDoBlockArgs(body)}))
}

// parseDefForm parses both `def sig, do: expr` and `def sig do ... end`.
// sig is parsed through the ordinary identifier/call grammar, which
// already yields the `call(name, meta, args)` shape finalize_module and
// the compiler expect for a function signature.
func (p *Parser) parseDefForm() ast.Node {
	meta := p.curMeta()
	p.nextToken() // consume 'def'
	sig := p.parseExpression(CALL)

	var body ast.Node
	switch {
	case p.curTokenIs(token.COMMA):
		p.nextToken()
		p.expect(token.DO)
		p.expect(token.COLON)
		body = p.parseExpression(LOWEST)
	case p.curTokenIs(token.DO):
		p.nextToken()
		body = p.parseBlockUntil(token.END)
		p.expect(token.END)
	default:
		p.errorf("expected ',' or 'do' after def signature")
		body = ast.SymOf("nil")
	}
	return ast.Call(ast.SymOf("def"), meta, ast.List([]ast.Node{sig, buildDoBlockArgs(body)}))
}

// parseImportForm parses `import Mod[, Mod2, ...]` into
// `import(Mod, Mod2, ...)`, matching internal/macro's visitImport (a flat
// list of module-name symbols).
func (p *Parser) parseImportForm() ast.Node {
	meta := p.curMeta()
	p.nextToken() // consume 'import'
	mods := []ast.Node{p.expectModuleName()}
	for p.curTokenIs(token.COMMA) {
		p.nextToken()
		mods = append(mods, p.expectModuleName())
	}
	return ast.Call(ast.SymOf("import"), meta, ast.List(mods))
}

// parseAliasForm parses `alias Mod` and `alias Mod, as: Alias`, matching
// internal/macro's visitAlias (the optional `as:` is the last arg's
// keyword-list, a one-tuple `{:as, Alias}` list).
func (p *Parser) parseAliasForm() ast.Node {
	meta := p.curMeta()
	p.nextToken() // consume 'alias'
	modNode := p.expectModuleName()
	args := []ast.Node{modNode}
	if p.curTokenIs(token.COMMA) {
		p.nextToken()
		p.expect(token.AS)
		p.expect(token.COLON)
		aliasNode := p.expectModuleName()
		args = append(args, ast.List([]ast.Node{ast.Tuple([]ast.Node{ast.SymOf("as"), aliasNode})}))
	}
	return ast.Call(ast.SymOf("alias"), meta, ast.List(args))
}

func (p *Parser) expectModuleName() ast.Node {
	if !p.curTokenIs(token.IDENT_UPPER) {
		p.errorf("expected a module name, got %s (%q)", p.curToken.Type, p.curToken.Lexeme)
		return ast.SymOf("nil")
	}
	name := p.curToken.Lexeme
	p.nextToken()
	return ast.SymOf(name)
}
