// Package device provides the per-profile device identity and the write
// timestamps the sync engine stamps records with.
package device

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/qubitlabs/mediakeeper/internal/common"
	"github.com/qubitlabs/mediakeeper/internal/logging"
	"github.com/qubitlabs/mediakeeper/internal/models"
	"github.com/qubitlabs/mediakeeper/internal/storage"
)

// Now returns the current time in epoch milliseconds.
func Now() int64 {
	return time.Now().UnixMilli()
}

// GetOrCreateID returns the device identifier persisted in the durable
// backend, generating and persisting a fresh one on first use. The
// identifier never changes once set.
//
// Persistence failures are logged and swallowed: an unsaved id still
// serves this process, it just will not survive a restart.
func GetOrCreateID(ctx context.Context, durable storage.Backend, log logging.Logger) string {
	if rec, err := durable.Read(ctx, common.KeyDeviceID); err == nil && rec != nil {
		var id string
		if err := json.Unmarshal(rec.Value, &id); err == nil && id != "" {
			return id
		}
		log.Warn(ctx, "stored device id unreadable, regenerating")
	} else if err != nil {
		log.Warn(ctx, "device id read failed, regenerating", "error", err)
	}

	id := NewID()

	value, _ := json.Marshal(id)
	rec := &models.StampedRecord{Value: value, Timestamp: Now(), Writer: id}
	if err := durable.Write(ctx, common.KeyDeviceID, rec); err != nil {
		log.Warn(ctx, "device id persist failed", "error", err)
	}
	return id
}

// NewID builds an identifier of the form "device_<epochMillis>_<suffix>".
// The millisecond prefix keeps ids roughly sortable by creation time; the
// random suffix makes collisions between profiles created in the same
// millisecond implausible.
func NewID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:7]
	return fmt.Sprintf("device_%d_%s", Now(), suffix)
}
