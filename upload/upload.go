// Package upload performs the single-object upload step of the deposit
// pipeline.
package upload

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/arkivo/depositor/common/logger"
	"github.com/arkivo/depositor/common/models"
	"github.com/arkivo/depositor/repoclient"
)

// Step uploads one object at a time. It reports plain success or failure
// and never panics past this boundary; skipping already-created records is
// the orchestrator's job, since uploading twice under the same identifier
// is rejected by the remote node.
type Step struct {
	client repoclient.Client
	log    *logger.Logger
}

// NewStep creates an upload step
func NewStep(client repoclient.Client, log *logger.Logger) *Step {
	return &Step{
		client: client,
		log:    log,
	}
}

// Upload creates the record's file on the remote repository under its
// identifier. Returns false on any failure.
func (s *Step) Upload(ctx context.Context, rec *models.InventoryRecord, desc *models.Descriptor, basePath string) bool {
	return s.fromFile(ctx, rec, desc, basePath, func(body io.Reader) (string, error) {
		return s.client.CreateObject(ctx, rec.PID, desc, body)
	})
}

// UploadVersion uploads the record's file under its new identifier,
// superseding oldPID in the node's version chain.
func (s *Step) UploadVersion(ctx context.Context, oldPID string, rec *models.InventoryRecord, desc *models.Descriptor, basePath string) bool {
	return s.fromFile(ctx, rec, desc, basePath, func(body io.Reader) (string, error) {
		return s.client.UpdateObject(ctx, oldPID, rec.PID, desc, body)
	})
}

// UploadBytes creates generated content under pid.
func (s *Step) UploadBytes(ctx context.Context, pid string, desc *models.Descriptor, content []byte) bool {
	return s.send(ctx, pid, int64(len(content)), func(body io.Reader) (string, error) {
		return s.client.CreateObject(ctx, pid, desc, body)
	}, bytes.NewReader(content))
}

// UploadVersionBytes uploads generated content under newPID, superseding
// oldPID.
func (s *Step) UploadVersionBytes(ctx context.Context, oldPID, newPID string, desc *models.Descriptor, content []byte) bool {
	return s.send(ctx, newPID, int64(len(content)), func(body io.Reader) (string, error) {
		return s.client.UpdateObject(ctx, oldPID, newPID, desc, body)
	}, bytes.NewReader(content))
}

func (s *Step) fromFile(ctx context.Context, rec *models.InventoryRecord, desc *models.Descriptor, basePath string, call func(io.Reader) (string, error)) bool {
	path := filepath.Join(basePath, rec.File)
	f, err := os.Open(path)
	if err != nil {
		s.log.Warn("upload open failed", "pid", rec.PID, "path", path, "error", err)
		return false
	}
	defer f.Close()

	return s.send(ctx, rec.PID, desc.Size, call, f)
}

func (s *Step) send(ctx context.Context, pid string, size int64, call func(io.Reader) (string, error), body io.Reader) bool {
	start := time.Now()

	confirmed, err := call(body)
	if err != nil {
		s.log.Warn("upload failed", "pid", pid, "kind", repoclient.KindOf(err), "error", err)
		return false
	}

	// Throughput is diagnostic only, never affects the result
	elapsed := time.Since(start).Seconds()
	if elapsed > 0 {
		s.log.Info("upload complete",
			"pid", confirmed,
			"bytes", size,
			"seconds", elapsed,
			"mb_per_sec", float64(size)/1024/1024/elapsed,
		)
	}
	return true
}
