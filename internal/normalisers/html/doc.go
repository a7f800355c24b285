// Package html turns exported HTML lesson pages into plain text. Markup,
// scripts and styles are removed and block elements become line breaks, so
// course headers and lesson markers survive on their own lines.
package html
