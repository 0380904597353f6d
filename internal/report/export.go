package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fitgap-client/internal/analyses"
	"fitgap-client/internal/shared/storage/object"
	"fitgap-client/internal/shared/telemetry"
	"fitgap-client/internal/shared/util"
)

const contentType = "text/markdown; charset=utf-8"

// Exporter writes rendered sessions to an object store.
type Exporter struct {
	Store     object.Store
	Sanitizer *Sanitizer
	Now       func() time.Time
}

func NewExporter(store object.Store) *Exporter {
	return &Exporter{Store: store, Sanitizer: NewSanitizer(), Now: time.Now}
}

// Key is the storage key of an export: one namespace per user, one file per
// analysis and export time.
func (e *Exporter) Key(userID string, sess analyses.Session) (string, error) {
	name := fmt.Sprintf("analysis-%s-%s.md", sess.AnalysisID.String(), e.Now().UTC().Format("20060102T150405Z"))
	safe, err := util.SanitizeFileName(name)
	if err != nil {
		return "", fmt.Errorf("export key: %w", err)
	}
	return util.HashUserKey(userID) + "/" + safe, nil
}

// Export renders sess and stores it.
func (e *Exporter) Export(ctx context.Context, userID string, sess analyses.Session) (object.Object, error) {
	if sess.AnalysisID == "" {
		return object.Object{}, fmt.Errorf("export: analysis id is required")
	}
	key, err := e.Key(userID, sess)
	if err != nil {
		return object.Object{}, err
	}
	obj, err := e.Store.Put(ctx, key, contentType, strings.NewReader(e.Sanitizer.Markdown(sess)))
	if err != nil {
		telemetry.Error("report.export_failed", map[string]any{"analysis_id": sess.AnalysisID, "error": err})
		return object.Object{}, fmt.Errorf("export %s: %w", sess.AnalysisID, err)
	}
	telemetry.Info("report.exported", map[string]any{
		"analysis_id": sess.AnalysisID,
		"location":    obj.Location,
		"size":        obj.Size,
	})
	return obj, nil
}
