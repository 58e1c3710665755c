// Package logtail reads the end of the todoboard log for the activity view.
//
// Read keeps only the last N lines in a ring buffer, so memory stays bounded
// however large the file grows. A missing file reads as empty. Parse decodes
// logfmt lines, the format the logging package writes, into an Entry; lines
// in any other format are kept verbatim as the message.
package logtail
