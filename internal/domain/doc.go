// Package domain models Polish district (powiat) statistics and the
// feature collection they are merged into.
//
// # Area Table
//
// The area table is tab-separated text, one district per line:
//
//	<name> \t <headquarters> \t <plates> \t <province> \t <area km²> \t <population> \t <density>
//
// e.g.
//
//	powiat Warszawski	Warszawa	WA	mazowieckie	1 234,50	50000	40,5
//
// Numbers use the Polish convention: comma as decimal separator and a space
// as thousands separator. Both are normalized before parsing ("1 234,50" →
// 1234.5). Only ASCII spaces are removed.
//
// Extra columns are ignored. Lines with fewer than seven columns and lines
// whose area is not a number are skipped. A bad population or density value
// aborts the load: those columns are expected to be clean once the area is.
//
// # Keys
//
// Both sides are matched on a lowercased, trimmed name. The table side is
// additionally prefixed with "powiat " unless the name already contains
// "powiat", so "Bolesławiecki" and "powiat bolesławiecki" share a key. The
// feature side ("nazwa" property) is not prefixed.
//
// # Rounding
//
// area_km2 and area_ha are rounded to two decimals, half to even on the
// exact binary value. area_ha is computed from the unrounded area, so
// "12,345" yields area_km2 = 12.35 and area_ha = 1234.5.
//
// # Document
//
// The feature collection is kept as ordered raw JSON. Only the properties of
// matched features are rebuilt; every other byte of the input survives a
// run apart from re-indentation.
package domain
