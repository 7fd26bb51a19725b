package buffer

import (
	"strings"
	"time"

	"github.com/fastygo/storefront/domain"
)

// OperationCreate is the only product write replayed from the buffer.
const OperationCreate = "create"

// ErrAlreadyPending reports a second submission of a product that is still
// waiting for Postgres.
var ErrAlreadyPending = domain.NewError(domain.ErrCodeConflict, "product is already waiting to be saved")

// Pending is a product write held back while Postgres is unreachable.
type Pending struct {
	Product   domain.Product `json:"product"`
	Operation string         `json:"operation"`
	Attempts  int            `json:"attempts"`
	QueuedAt  time.Time      `json:"queued_at"`
}

// Fingerprint identifies the submission rather than the id the catalog
// assigned to it: one admin posting the same product name twice yields the
// same fingerprint.
func (p Pending) Fingerprint() string {
	name := strings.ToLower(strings.Join(strings.Fields(p.Product.Name), " "))
	return p.Product.CreatedBy + "\x00" + name
}

func (p *Pending) normalize() {
	if p.Operation == "" {
		p.Operation = OperationCreate
	}
	if p.QueuedAt.IsZero() {
		p.QueuedAt = time.Now()
	}
}
