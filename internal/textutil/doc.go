// Package textutil provides the text shaping applied to host content before
// it is sent to Koraki.
//
// Post and comment bodies arrive as HTML. StripTags reduces them to plain
// text (script and style bodies dropped, whitespace runs collapsed) and
// Excerpt cuts the result to a fixed number of characters. SanitizeField
// normalizes single-line form input such as credentials and the opt-in flag.
package textutil
