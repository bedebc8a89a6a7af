// Package converter accepts document images, runs them through the
// digitizer and keeps a record of every request.
package converter

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/documentor-api/internal/domain"
	"github.com/documentor-api/internal/pkg/id"
	"github.com/gabriel-vasile/mimetype"
)

const (
	DefaultModel  = "default"
	maxModelChars = 64
)

type Input struct {
	UserID   string
	Filename string
	Model    string
	Data     []byte
}

type Result struct {
	HistoryID      string
	Filename       string
	ContentType    string
	Output         []byte
	Model          string
	ProcessingTime time.Duration
}

type Service interface {
	Convert(ctx context.Context, in Input) (*Result, error)
}

type objectStore interface {
	Upload(ctx context.Context, key string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

type historyRecorder interface {
	Record(ctx context.Context, level, actor string, details map[string]any)
	RecordHistory(ctx context.Context, h *domain.History) error
}

type recorder interface {
	Converted(outcome string)
}

// Digitizer turns an image into its digitized form.
type Digitizer interface {
	Digitize(ctx context.Context, image []byte, model string) ([]byte, error)
}

// EchoDigitizer returns the image unchanged.
type EchoDigitizer struct{}

func (EchoDigitizer) Digitize(_ context.Context, image []byte, _ string) ([]byte, error) {
	return image, nil
}

type service struct {
	store     objectStore
	activity  historyRecorder
	metrics   recorder
	digitizer Digitizer
	now       func() time.Time
}

type ServiceDeps struct {
	Store     objectStore
	Activity  historyRecorder
	Metrics   recorder
	Digitizer Digitizer
	Clock     func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		store:     deps.Store,
		activity:  deps.Activity,
		metrics:   deps.Metrics,
		digitizer: deps.Digitizer,
		now:       deps.Clock,
	}
	if s.digitizer == nil {
		s.digitizer = EchoDigitizer{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) Convert(ctx context.Context, in Input) (*Result, error) {
	started := s.now()
	res, err := s.convert(ctx, in, started)
	if err != nil {
		s.metrics.Converted(outcome(err))
		return nil, err
	}
	s.metrics.Converted("ok")
	return res, nil
}

func (s *service) convert(ctx context.Context, in Input, started time.Time) (*Result, error) {
	if len(in.Data) == 0 {
		return nil, fmt.Errorf("image is empty: %w", domain.ErrBadRequest)
	}
	mt := mimetype.Detect(in.Data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("file must be an image, got %s: %w", mt.String(), domain.ErrBadRequest)
	}
	model := strings.TrimSpace(in.Model)
	if model == "" {
		model = DefaultModel
	}
	if len(model) > maxModelChars {
		return nil, fmt.Errorf("model name too long: %w", domain.ErrBadRequest)
	}

	name := sanitizeFilename(in.Filename)
	if path.Ext(name) == "" {
		name += mt.Extension()
	}
	out, err := s.digitizer.Digitize(ctx, in.Data, model)
	if err != nil {
		return nil, fmt.Errorf("digitize: %w", err)
	}

	historyID := id.NewAt(started)
	prefix := fmt.Sprintf("conversions/%s/%s", in.UserID, historyID)
	inKey, outKey := prefix+"/input-"+name, prefix+"/output-"+name
	inURL, err := s.store.Upload(ctx, inKey, in.Data)
	if err != nil {
		return nil, err
	}
	outURL, err := s.store.Upload(ctx, outKey, out)
	if err != nil {
		s.cleanup(ctx, inKey)
		return nil, err
	}

	userID := in.UserID
	h := &domain.History{
		HistoryID:  historyID,
		ReqText:    fmt.Sprintf("model=%s file=%s", model, name),
		ReqFileURL: &inURL,
		ResText:    "digitized",
		ResFileURL: &outURL,
		ReqFrom:    domain.RequestFromUser,
		UserID:     &userID,
		Timestamp:  started.UTC(),
	}
	if err := s.activity.RecordHistory(ctx, h); err != nil {
		s.cleanup(ctx, inKey)
		s.cleanup(ctx, outKey)
		return nil, err
	}
	s.activity.Record(ctx, domain.LogInfo, in.UserID, map[string]any{
		"event":      "conversion",
		"history_id": historyID,
		"model":      model,
		"size":       len(in.Data),
	})

	return &Result{
		HistoryID:      historyID,
		Filename:       name,
		ContentType:    mt.String(),
		Output:         out,
		Model:          model,
		ProcessingTime: s.now().Sub(started),
	}, nil
}

func (s *service) cleanup(ctx context.Context, key string) {
	if err := s.store.Delete(context.WithoutCancel(ctx), key); err != nil {
		s.activity.Record(ctx, domain.LogWarning, "system", map[string]any{"event": "orphaned_object", "key": key})
	}
}

func outcome(err error) string {
	if errors.Is(err, domain.ErrBadRequest) {
		return "rejected"
	}
	return "failed"
}

// sanitizeFilename strips directory components and keeps only safe characters
// (alphanumeric, dot, dash, underscore) so the name is safe inside an S3 key.
func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	if result := b.String(); result != "" && result != "." && result != ".." {
		return result
	}
	return "image"
}
