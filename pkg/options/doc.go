// Package options loads select-field option lists from a ports.OptionsProvider.
//
// A Cache answers cache-or-fetch requests keyed by field type and collapses
// concurrent requests for the same type into one provider call. A Board
// tracks the per-field display state ("loading", current list) of one editor;
// when several requests for the same field overlap, only the most recent one
// may update it.
//
// Fetch failures never block the caller: they are logged at Warn level and
// degrade to an empty list, which editors treat as "free text".
package options
