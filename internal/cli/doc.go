// Package cli implements the interactive mediakeeper console.
//
// The REPL (see Root) reads one command per line and dispatches to the
// catalog service. Read commands work for everyone; premium entries are
// listed but their URLs are withheld until a premium session logs in.
// Mutating commands require the admin role.
//
// Input helpers (GetSimpleText, GetPassword, GetMultiline) are exported
// and take explicit reader/writer arguments so tests can drive them
// without a terminal.
package cli
