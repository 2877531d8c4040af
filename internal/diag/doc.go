// Package diag defines the editor-facing diagnostic model.
//
// # Data model
//
// Diagnostic mirrors the LSP Diagnostic structure and marshals directly to the
// wire form. It contains:
//
//   - Range – zero-based line/character positions (UTF-16 code units).
//   - Severity – LSP severity (Error, Warning, Information, Hint) in severity.go.
//   - Code – the textlint rule identifier.
//   - Source – always "textlint" for translated findings.
//   - Message – the finding text followed by the rule identifier.
//
// # Translation
//
// FromFinding turns one textlint.Message into a Diagnostic. It is a pure
// function: the returned range depends only on the message's position and
// text. The end of the range is a best-effort underline length derived from a
// quoted excerpt or an arrow marker in the message; it never influences fix
// application, which uses the finding's own fix range.
//
// A Diagnostic's Range and Code form its identity. The fix registry keys
// stored fixes by that identity, so a diagnostic echoed back by the editor in
// a code action request resolves to the fix it was published with.
package diag
