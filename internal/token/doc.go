// Package token defines lexical token kinds and trivia for the surface reader.
// Invariants:
//   - Token.Text is the exact source text of Token.Span.
//   - Lifetimes are a single token including the leading quote ('a, '_, 'static).
//   - `>` is always lexed alone so nested generic lists close without splitting.
package token
