// Package style provides a lossless document model for CSS-like style sheets.
//
// A document is a tree of five node kinds. [*Root], [*Rule] and [*AtRule]
// are containers; [*Decl] and [*Comment] are leaves. Every node records the
// raw text around it (see [Raws]), so printing a tree that was parsed and
// not modified reproduces the input byte for byte.
//
// # Grammar
//
// Informal EBNF:
//
//	Root      → Node* EOF
//	Node      → Comment | AtRule | Rule | Decl
//	Comment   → '/*' <any> '*/'
//	AtRule    → '@' Name Prelude? (Block | ';' | <end of container>)
//	Rule      → Prelude Block
//	Decl      → Prop ':' Value (';' | <end of container>)
//	Block     → '{' Node* '}'
//	Prelude   → <balanced text, stops at '{', ';' or '}'>
//
// Strings and comments inside a prelude or value are skipped as a unit, and
// parentheses and brackets nest, so "url(a;b)" does not end a declaration.
//
// # Example
//
//	root, err := style.Parse(ctx, "a { color: red }",
//		style.WithSourceName("main.css"))
//	if err != nil {
//		return err
//	}
//
//	for n := range style.Walk(root) {
//		if d, ok := n.(*style.Decl); ok {
//			d.Value = strings.ToUpper(d.Value)
//		}
//	}
//
//	fmt.Println(root) // a { color: RED }
//
// # Errors
//
// Malformed input is reported as an [*Error] matching [ErrParse] with the
// source position of the offending construct.
package style
