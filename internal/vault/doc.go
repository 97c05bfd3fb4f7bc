// Package vault implements the document host the engine acts against: a
// resource resolver that turns mentionables into text, and the bounded set
// of content actions (write, insert, replace, read, list) directives are
// dispatched to. Everything is rooted at a single vault directory.
package vault
