// Package common contains shared constants and sentinel errors used across
// mediakeeper components.
package common

// Logical keys under which catalog collections are persisted. One
// StampedRecord per key per backend.
const (
	KeyVideos        = "videos"
	KeyDocuments     = "documents"
	KeyPatents       = "patents"
	KeyRecentUpdates = "recentUpdates"

	// KeyDeviceID holds the per-profile device identifier. Global,
	// not namespaced per collection.
	KeyDeviceID = "deviceId"
)

// CatalogKeys lists the keys holding user-managed collections, i.e. the
// keys the reconciliation poller tracks and the derived feed consumes.
var CatalogKeys = []string{KeyVideos, KeyDocuments, KeyPatents}

// LegacyKeyAliases maps historical key spellings to their canonical form.
// Older deployments wrote admin-prefixed keys for the same collections.
var LegacyKeyAliases = map[string]string{
	"adminVideos":    KeyVideos,
	"adminDocuments": KeyDocuments,
	"adminPatents":   KeyPatents,
}
