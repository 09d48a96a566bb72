// Package vars resolves nested-scope variables in a [style] document.
//
// A declaration whose property is "$name" binds name to the declaration's
// value and is removed from the document. The binding is visible to the
// rest of the enclosing container and all of its descendants, and goes out
// of scope when the container ends. A nested declaration of the same name
// shadows the outer one until its own container ends. Declaring a name
// twice in one container replaces the first value.
//
// References come in two forms:
//
//   - "$(name)" in rule selectors, at-rule preludes and declaration
//     properties;
//   - "$name" in declaration values.
//
// Names consist of ASCII letters, digits, "_" and "-". Comments are never
// scanned.
//
// # Example
//
//	$gap: 4px;
//	.card {
//	  padding: $gap;
//	  $gap: 8px;
//	  .title-$(gap) { margin: $gap; }
//	}
//	.other { margin: $gap; }
//
// resolves to
//
//	.card {
//	  padding: 4px;
//	  .title-8px { margin: 8px; }
//	}
//	.other { margin: 4px; }
//
// # Undefined Variables
//
// The configured [Level] decides what happens when a reference names no
// visible variable: [LevelError] aborts with an [*UndefinedError],
// [LevelWarn] records a [Warning] and keeps the reference text, and
// [LevelSilent] keeps the reference text quietly.
package vars
