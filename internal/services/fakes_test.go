package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"rentproof_backend/internal/models"
	"rentproof_backend/internal/repositories"
	"rentproof_backend/internal/storage"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ownerID  = "11111111-1111-1111-1111-111111111111"
	renterID = "22222222-2222-2222-2222-222222222222"
	goodID   = "33333333-3333-3333-3333-333333333333"
	rentalID = "44444444-4444-4444-4444-444444444444"
	outsider = "55555555-5555-5555-5555-555555555555"
)

// ---------------- rentals ----------------

type fakeRentalRepo struct {
	mu      sync.Mutex
	rentals map[string]*models.Rental

	findErr  error
	stampErr error
	// beforeSetStatus runs inside SetStatus before the compare; it may mutate the
	// stored rental to simulate a concurrent writer.
	beforeSetStatus func(stored *models.Rental)
	setCalls        int
	stampCalls      int
}

func newFakeRentalRepo(rentals ...*models.Rental) *fakeRentalRepo {
	r := &fakeRentalRepo{rentals: make(map[string]*models.Rental)}
	for _, rental := range rentals {
		r.rentals[rental.ID] = rental
	}
	return r
}

func (r *fakeRentalRepo) Create(_ *gorm.DB, rental *models.Rental) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rental.ID == "" {
		rental.ID = uuid.NewString()
	}
	cp := *rental
	r.rentals[rental.ID] = &cp
	return nil
}

func (r *fakeRentalRepo) FindByID(_ *gorm.DB, id string) (*models.Rental, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	rental, ok := r.rentals[id]
	if !ok {
		return nil, repositories.ErrRentalNotFound
	}
	cp := *rental
	return &cp, nil
}

func (r *fakeRentalRepo) SetStatus(_ *gorm.DB, id string, next, expectedPrior models.RentalStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setCalls++
	rental, ok := r.rentals[id]
	if !ok {
		return repositories.ErrStatusConflict
	}
	if r.beforeSetStatus != nil {
		r.beforeSetStatus(rental)
	}
	if rental.Status != expectedPrior {
		return repositories.ErrStatusConflict
	}
	rental.Status = next
	rental.Version++
	return nil
}

func (r *fakeRentalRepo) StampCompletion(_ *gorm.DB, id string, phase models.Phase, at time.Time, partyID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stampCalls++
	if r.stampErr != nil {
		return false, r.stampErr
	}
	rental := r.rentals[id]
	switch phase {
	case models.PhaseStart:
		if rental.StartedAt != nil {
			return false, nil
		}
		rental.StartedAt, rental.StartedBy = &at, &partyID
	case models.PhaseReturn:
		if rental.EndedAt != nil {
			return false, nil
		}
		rental.EndedAt, rental.EndedBy = &at, &partyID
	}
	return true, nil
}

func (r *fakeRentalRepo) FindUnescalatedReturnStage(_ *gorm.DB, startedBefore time.Time, limit int) ([]models.Rental, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Rental
	for _, rental := range r.rentals {
		if rental.Status.Stage() == 1 && rental.EscalatedAt == nil &&
			rental.StartedAt != nil && rental.StartedAt.Before(startedBefore) && len(out) < limit {
			out = append(out, *rental)
		}
	}
	return out, nil
}

func (r *fakeRentalRepo) MarkEscalated(_ *gorm.DB, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rental, ok := r.rentals[id]; ok && rental.EscalatedAt == nil {
		rental.EscalatedAt = &at
	}
	return nil
}

func (r *fakeRentalRepo) get(id string) models.Rental {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.rentals[id]
}

func newRental(status models.RentalStatus) *models.Rental {
	return &models.Rental{
		BaseModel: models.BaseModel{ID: rentalID},
		GoodID:    goodID,
		OwnerID:   ownerID,
		RenterID:  renterID,
		Status:    status,
	}
}

// ---------------- evidence ----------------

type fakeEvidenceRepo struct {
	mu        sync.Mutex
	records   []models.EvidenceRecord
	appendErr error
	listErr   error
}

func (r *fakeEvidenceRepo) Append(_ *gorm.DB, record *models.EvidenceRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
	for _, rec := range r.records {
		if record.StoragePath != "" && rec.StoragePath == record.StoragePath {
			return repositories.ErrDuplicateEvidence
		}
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	r.records = append(r.records, *record)
	return nil
}

func (r *fakeEvidenceRepo) FindByStoragePath(_ *gorm.DB, storagePath string) (*models.EvidenceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.records {
		if r.records[i].StoragePath == storagePath {
			rec := r.records[i]
			return &rec, nil
		}
	}
	return nil, repositories.ErrEvidenceNotFound
}

func (r *fakeEvidenceRepo) ListEvidence(_ *gorm.DB, rentalID string, phase models.Phase, party models.Party) ([]models.EvidenceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []models.EvidenceRecord
	for _, rec := range r.records {
		if rec.RentalID == rentalID && rec.Phase == phase && rec.Party == party {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeEvidenceRepo) ListByRental(_ *gorm.DB, rentalID string) ([]models.EvidenceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.EvidenceRecord
	for _, rec := range r.records {
		if rec.RentalID == rentalID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// add stores n items of kind for a party.
func (r *fakeEvidenceRepo) add(phase models.Phase, party models.Party, kind models.EvidenceKind, n int) {
	for i := 0; i < n; i++ {
		_ = r.Append(nil, &models.EvidenceRecord{RentalID: rentalID, Phase: phase, Party: party, Kind: kind, Seq: i})
	}
}

// ---------------- reviews ----------------

type fakeReviewRepo struct {
	mu        sync.Mutex
	items     map[string]*models.ItemReview
	parties   map[string]*models.PartyReview
	insertErr error
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{
		items:   make(map[string]*models.ItemReview),
		parties: make(map[string]*models.PartyReview),
	}
}

func (r *fakeReviewRepo) InsertReview(_ *gorm.DB, record *models.ReviewRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	switch record.Kind {
	case models.ReviewKindItem:
		key := record.Item.RentalID + "|" + record.Item.ReviewerID
		if _, ok := r.items[key]; ok {
			return repositories.ErrDuplicateReview
		}
		r.items[key] = record.Item
	case models.ReviewKindParty:
		key := record.Party.RentalID + "|" + record.Party.ReviewerID + "|" + string(record.Party.Role)
		if _, ok := r.parties[key]; ok {
			return repositories.ErrDuplicateReview
		}
		r.parties[key] = record.Party
	default:
		return fmt.Errorf("unknown kind %q", record.Kind)
	}
	return nil
}

func (r *fakeReviewRepo) HasItemReview(_ *gorm.DB, rentalID, reviewerID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.items[rentalID+"|"+reviewerID]
	return ok, nil
}

func (r *fakeReviewRepo) HasPartyReview(_ *gorm.DB, rentalID, reviewerID string, role models.PartyRole) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.parties[rentalID+"|"+reviewerID+"|"+string(role)]
	return ok, nil
}

func (r *fakeReviewRepo) GoodTotals(_ *gorm.DB, goodID string) (*models.ReviewTotals, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	totals := &models.ReviewTotals{StarCounts: map[int]int64{}}
	var sum int
	for _, item := range r.items {
		if item.GoodID == goodID {
			totals.TotalReviews++
			totals.StarCounts[item.Rating]++
			sum += item.Rating
		}
	}
	if totals.TotalReviews > 0 {
		totals.AverageRating = float64(sum) / float64(totals.TotalReviews)
	}
	return totals, nil
}

func (r *fakeReviewRepo) PartyTotals(_ *gorm.DB, partyID string, role models.PartyRole) (*models.ReviewTotals, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	totals := &models.ReviewTotals{StarCounts: map[int]int64{}}
	for _, p := range r.parties {
		if p.RevieweeID == partyID && p.Role == role {
			totals.TotalReviews++
			totals.StarCounts[p.Rating]++
		}
	}
	return totals, nil
}

// ---------------- storage ----------------

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	saveErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (s *fakeStorage) Save(_ context.Context, path string, reader io.Reader, _ string) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[path]; ok {
		return storage.ErrObjectExists
	}
	s.objects[path] = data
	return nil
}

func (s *fakeStorage) Get(_ context.Context, path string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, path)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeStorage) Exists(_ context.Context, path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[path]
	return ok, nil
}

func (s *fakeStorage) GetURL(_ context.Context, path string) (string, error) {
	return "https://media.test/" + path, nil
}

func (s *fakeStorage) GetSignedURL(ctx context.Context, path string, _ time.Duration) (string, error) {
	return s.GetURL(ctx, path)
}

func (s *fakeStorage) GetSize(_ context.Context, path string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.objects[path])), nil
}

func (s *fakeStorage) has(path string) bool {
	ok, _ := s.Exists(context.Background(), path)
	return ok
}

// ---------------- notifier ----------------

type recordingNotifier struct {
	mu     sync.Mutex
	events []StatusEvent
}

func (n *recordingNotifier) PublishStatus(_ context.Context, event StatusEvent) {
	n.mu.Lock()
	n.events = append(n.events, event)
	n.mu.Unlock()
}

func (n *recordingNotifier) all() []StatusEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]StatusEvent(nil), n.events...)
}
