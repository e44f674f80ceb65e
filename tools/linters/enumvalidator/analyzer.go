// Package enumvalidator reports string literals assigned to the intake enum
// types. Test files are skipped since they feed invalid values on purpose.
package enumvalidator

import (
	"go/ast"
	"go/token"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
)

var Analyzer = &analysis.Analyzer{
	Name: "enumvalidator",
	Doc:  "checks that enum fields only use defined constants, not string literals",
	Run:  run,
}

var enumTypes = map[string]bool{
	"FilterType":  true,
	"Operator":    true,
	"TicketField": true,
	"Priority":    true,
}

func run(pass *analysis.Pass) (interface{}, error) {
	for _, file := range pass.Files {
		if strings.HasSuffix(pass.Fset.Position(file.Pos()).Filename, "_test.go") {
			continue
		}

		ast.Inspect(file, func(n ast.Node) bool {
			switch node := n.(type) {
			case *ast.AssignStmt:
				checkAssign(pass, node)
			case *ast.KeyValueExpr:
				checkKeyValue(pass, node)
			}
			return true
		})
	}
	return nil, nil
}

func checkAssign(pass *analysis.Pass, assign *ast.AssignStmt) {
	for i, lhs := range assign.Lhs {
		if i >= len(assign.Rhs) {
			continue
		}
		sel, ok := lhs.(*ast.SelectorExpr)
		if !ok || !isEnum(pass.TypesInfo.TypeOf(sel)) {
			continue
		}
		if isStringLiteral(assign.Rhs[i]) {
			pass.Reportf(assign.Pos(),
				"enum field %s assigned string literal; use defined constant instead",
				sel.Sel.Name)
		}
	}
}

// checkKeyValue covers struct literals such as FilterRule{Operator: "equals"}.
func checkKeyValue(pass *analysis.Pass, kv *ast.KeyValueExpr) {
	key, ok := kv.Key.(*ast.Ident)
	if !ok || !isStringLiteral(kv.Value) {
		return
	}
	field, ok := pass.TypesInfo.Uses[key].(*types.Var)
	if !ok || !field.IsField() || !isEnum(field.Type()) {
		return
	}
	pass.Reportf(kv.Pos(),
		"enum field %s assigned string literal; use defined constant instead",
		key.Name)
}

func isEnum(t types.Type) bool {
	if named, ok := t.(*types.Named); ok {
		return enumTypes[named.Obj().Name()]
	}
	return false
}

func isStringLiteral(expr ast.Expr) bool {
	lit, ok := expr.(*ast.BasicLit)
	return ok && lit.Kind == token.STRING
}
