package usecase

import (
	"context"
	"time"

	"github.com/xavierca1/agency-leads/internal/entity"
)

const DefaultCRMTimeout = 5 * time.Second

// SyncResult is the outcome of one CRM push. Exactly one of RemoteID / Err is meaningful.
type SyncResult struct {
	RemoteID string
	Err      error
}

func (r SyncResult) OK() bool {
	return r.Err == nil
}

type CRMForwarder struct {
	Client  CRMClient
	Timeout time.Duration
}

func NewCRMForwarder(client CRMClient, timeout time.Duration) *CRMForwarder {
	if timeout <= 0 {
		timeout = DefaultCRMTimeout
	}
	return &CRMForwarder{Client: client, Timeout: timeout}
}

// Forward pushes the lead under a bounded timeout. It never panics on a nil client;
// an unconfigured CRM is reported as a failed push so the retry queue picks it up.
func (f *CRMForwarder) Forward(ctx context.Context, lead *entity.Lead) SyncResult {
	if f == nil || f.Client == nil {
		return SyncResult{Err: errCRMNotConfigured}
	}

	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()

	id, err := f.Client.CreateLead(ctx, lead)
	if err != nil {
		return SyncResult{Err: err}
	}
	if id == "" {
		return SyncResult{Err: errCRMEmptyID}
	}
	return SyncResult{RemoteID: id}
}
