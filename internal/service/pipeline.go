package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/labellens/backend/internal/models"
	"github.com/labellens/backend/internal/types"
)

// Failure kinds callers can test with errors.Is. An extraction failure
// means no analysis was produced; a persistence failure means the
// analysis succeeded but could not be saved.
var (
	ErrExtractionFailed  = errors.New("text extraction failed")
	ErrPersistenceFailed = errors.New("failed to persist scan session")
)

// defaultClassifyWorkers bounds concurrent per-ingredient classification.
const defaultClassifyWorkers = 4

// ScanPipeline orchestrates one label scan end to end: image upload,
// OCR, normalization, splitting, concurrent classification,
// personalization and scoring, with every status transition persisted
// through the scan history service.
//
// Sessions move pending -> processing -> completed | failed and never
// skip processing. There is no automatic retry; a fresh session is
// created per attempt.
type ScanPipeline struct {
	ocr        OCRProvider
	classifier *SafetyClassifier
	normalizer *TextNormalizer
	splitter   *IngredientSplitter
	profiles   *DietaryProfileService
	history    *ScanHistoryService
	images     *ImageService
	workers    int
}

// NewScanPipeline creates a new ScanPipeline instance. The image service
// may be nil, in which case source images are not retained.
func NewScanPipeline(
	ocr OCRProvider,
	classifier *SafetyClassifier,
	profiles *DietaryProfileService,
	history *ScanHistoryService,
	images *ImageService,
) *ScanPipeline {
	return &ScanPipeline{
		ocr:        ocr,
		classifier: classifier,
		normalizer: NewTextNormalizer(),
		splitter:   NewIngredientSplitter(),
		profiles:   profiles,
		history:    history,
		images:     images,
		workers:    defaultClassifyWorkers,
	}
}

// ProcessScan runs the full pipeline for one label image. The returned
// session is always persisted with its terminal status; a non-nil error
// accompanies only failed extraction or persistence, never an empty
// ingredient list.
func (p *ScanPipeline) ProcessScan(ctx context.Context, userID uuid.UUID, image []byte, mimeType string) (*models.ScanSession, error) {
	started := time.Now()

	session := &models.ScanSession{
		ID:          uuid.New(),
		UserID:      userID,
		Status:      models.ScanStatusPending,
		Ingredients: models.JSONBAnalyses{},
	}
	if err := p.history.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}

	if p.images != nil {
		imageURL, err := p.images.UploadLabelImage(ctx, session.ID, image, mimeType)
		if err != nil {
			// The source image is a convenience, not part of the analysis.
			log.Printf("[ScanPipeline] Failed to store label image for scan %s: %v", session.ID, err)
		} else {
			session.ImageURL = imageURL
		}
	}

	session.Status = models.ScanStatusProcessing
	if err := p.history.Upsert(ctx, session); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}

	ocrResult, err := p.ocr.ExtractText(ctx, image, mimeType)
	if err != nil {
		return p.fail(ctx, session, started, fmt.Errorf("%w: %v", ErrExtractionFailed, err))
	}
	if ocrResult.Text == "" {
		return p.fail(ctx, session, started, fmt.Errorf("%w: no text found in image", ErrExtractionFailed))
	}
	session.OCRText = ocrResult.Text
	session.OCRConfidence = ocrResult.Confidence

	candidates := p.splitter.Split(p.normalizer.Normalize(ocrResult.Text))

	result, err := p.analyze(ctx, userID, candidates)
	if err != nil {
		return p.fail(ctx, session, started, err)
	}

	session.Status = models.ScanStatusCompleted
	session.Ingredients = models.JSONBAnalyses(result.Ingredients)
	session.OverallScore = result.OverallScore
	session.SafeCount = result.SafeCount
	session.CautionCount = result.CautionCount
	session.AvoidCount = result.AvoidCount
	session.PersonalizedCount = result.PersonalizedCount
	session.ProcessingMS = time.Since(started).Milliseconds()
	embedding := GenerateEmbedding(ocrResult.Text)
	session.Embedding = &embedding

	if err := p.history.Upsert(ctx, session); err != nil {
		return session, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}

	log.Printf("[ScanPipeline] Scan %s completed: %d ingredients, score %d",
		session.ID, len(result.Ingredients), result.OverallScore)
	return session, nil
}

// AnalyzeIngredients classifies and personalizes an already-extracted
// candidate list without creating a scan session. Used for manual entry.
func (p *ScanPipeline) AnalyzeIngredients(ctx context.Context, userID uuid.UUID, candidates []string) (*types.AnalysisResult, error) {
	started := time.Now()

	cleaned := make([]string, 0, len(candidates))
	for _, c := range candidates {
		cleaned = append(cleaned, p.splitter.Split(p.normalizer.Normalize(c))...)
	}

	result, err := p.analyze(ctx, userID, cleaned)
	if err != nil {
		return nil, err
	}
	result.ProcessingMS = time.Since(started).Milliseconds()
	return result, nil
}

// analyze classifies candidates concurrently, then personalizes and
// scores them against a single restriction snapshot. A zero-candidate
// list is a valid outcome: empty result, score 100.
func (p *ScanPipeline) analyze(ctx context.Context, userID uuid.UUID, candidates []string) (*types.AnalysisResult, error) {
	// Snapshot restriction state once so preference edits mid-scan
	// cannot make ratings inconsistent within one result.
	engine, err := p.profiles.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	analyses, err := p.classifyAll(ctx, candidates)
	if err != nil {
		return nil, err
	}

	return NewPersonalizer(engine).ApplyAll(analyses), nil
}

// classifyAll dispatches classification across a bounded worker pool and
// recombines results in original position order.
func (p *ScanPipeline) classifyAll(ctx context.Context, candidates []string) ([]types.IngredientAnalysis, error) {
	analyses := make([]types.IngredientAnalysis, len(candidates))
	if len(candidates) == 0 {
		return analyses, nil
	}

	workers := p.workers
	if workers > len(candidates) {
		workers = len(candidates)
	}

	type job struct {
		index int
		name  string
	}
	jobs := make(chan job)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				analyses[j.index] = p.classifier.Classify(ctx, j.name, j.index+1)
			}
		}()
	}

	for i, name := range candidates {
		select {
		case jobs <- job{index: i, name: name}:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return analyses, nil
}

// fail records the terminal failed state with the error message and
// returns the original error.
func (p *ScanPipeline) fail(ctx context.Context, session *models.ScanSession, started time.Time, cause error) (*models.ScanSession, error) {
	session.Status = models.ScanStatusFailed
	session.ErrorMessage = cause.Error()
	session.ProcessingMS = time.Since(started).Milliseconds()

	if err := p.history.Upsert(ctx, session); err != nil {
		log.Printf("[ScanPipeline] Failed to persist failed scan %s: %v", session.ID, err)
	}
	return session, cause
}
