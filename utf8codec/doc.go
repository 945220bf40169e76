// Package utf8codec implements asda's UTF-8 codec (spec §4.1): a
// bidirectional conversion between UTF-8 bytes and a sequence of
// Unicode scalar code points that rejects surrogates, overlongs, lone
// continuation bytes, truncated sequences, and invalid start bytes.
//
// This is hand-rolled rather than built on golang.org/x/text or the
// stdlib unicode/utf8 package on purpose: spec.md frames the codec as
// one of the hard parts the runtime itself is responsible for, not an
// external collaborator.
package utf8codec
