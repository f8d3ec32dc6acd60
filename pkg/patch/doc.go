// Package patch parses and applies structured patch scripts written in the
// "*** Begin Patch" format.
//
// A patch script describes file additions, deletions, renames, and
// context-anchored content edits as plain text. The package exposes the
// grammar parser, a staged fuzzy context locator, and appliers for the OS
// filesystem and for in-memory documents, which makes it straightforward to
// embed in editors and testing utilities. The engine is a pure function of
// (patch text, root): it carries no policy or cross-invocation state.
package patch
