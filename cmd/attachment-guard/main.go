package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/suratflow/internal/logging"
	"github.com/Lllllllleong/suratflow/internal/services"
	cloudevents "github.com/cloudevents/sdk-go/v2"
)

var (
	guard   *services.AttachmentGuard
	once    sync.Once
	initErr error
)

func init() {
	logging.Init()

	functions.CloudEvent("GuardAttachment", guardAttachment)
}

// main is required by the Go Functions Framework.
func main() {}

// guardAttachment handles google.cloud.storage.object.v1.finalized events
// for the attachment bucket.
func guardAttachment(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		guard, initErr = services.NewAttachmentGuardFromEnv(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", logging.ErrKey, initErr, logging.PriorityCritical())
		return initErr
	}

	var gcsEvent services.GCSEvent
	if err := json.Unmarshal(e.Data(), &gcsEvent); err != nil {
		slog.Error("Failed to unmarshal event data", logging.ErrKey, err, "eventId", e.ID(), "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}
	return guard.Process(ctx, gcsEvent)
}
