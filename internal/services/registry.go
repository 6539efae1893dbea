package services

import (
	"rentproof_backend/internal/pending"
	"rentproof_backend/internal/storage"
)

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	RentalService       RentalService
	RentalStatusService RentalStatusService
	EvidenceService     EvidenceService
	EvidenceEvaluator   EvidenceEvaluator
	ReviewService       ReviewService
	ReviewGate          ReviewGate

	// StatusWaiters держит long-poll запросы; janitor запускается в app.
	StatusWaiters *pending.Registry[StatusEvent]
	Storage       storage.Storage
}
