// Package voice enumerates the speech voices an engine offers and keeps
// the list the voice picker shows, including the selected entry.
package voice
