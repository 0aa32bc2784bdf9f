// Package campaign composes a provider adapter, the job poller, and caption
// generation into one end-to-end campaign generation operation.
package campaign

import (
	"context"
	"fmt"

	"pawreel/internal/captions"
	"pawreel/internal/domain"
	"pawreel/internal/infra"
)

// Provider is the capability set a generation backend must offer. Adapters
// are stateless; every method is safe for concurrent use.
type Provider interface {
	Key() domain.ProviderKey
	Label() string
	Ready() error
	CreateJob(ctx context.Context, prompt string) (string, error)
	WaitForJob(ctx context.Context, jobID string) (*domain.Completion, error)
	GenerateCaptions(ctx context.Context, petName, petBio string) (*captions.Pack, error)
}

// Orchestrator routes generation requests to the registered providers.
// It holds no per-request state; concurrent campaigns are independent.
type Orchestrator struct {
	providers map[domain.ProviderKey]Provider
	logger    infra.Logger
}

// NewOrchestrator registers the given providers keyed by their provider key.
func NewOrchestrator(logger infra.Logger, providers ...Provider) *Orchestrator {
	registry := make(map[domain.ProviderKey]Provider, len(providers))
	for _, p := range providers {
		registry[p.Key()] = p
	}
	return &Orchestrator{providers: registry, logger: logger}
}

// Generate runs one campaign end to end: readiness check, prompt build, job
// creation, polling to terminal state, caption generation, normalization.
// A caption failure is logged and the result ships without a pack; every
// other failure aborts the operation with no partial result.
func (o *Orchestrator) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.CampaignResult, error) {
	provider, ok := o.providers[req.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedProvider, req.Provider)
	}
	if err := provider.Ready(); err != nil {
		return nil, err
	}

	prompt := domain.BuildPrompt(req.PetName, req.PetBio)

	jobID, err := provider.CreateJob(ctx, prompt)
	if err != nil {
		return nil, err
	}

	logger := o.logger.With().
		Str("provider", string(req.Provider)).
		Str("jobId", jobID).
		Logger()
	logger.Info().Msg("video job created")

	completion, err := provider.WaitForJob(ctx, jobID)
	if err != nil {
		logger.Error().Err(err).Msg("video job did not complete")
		return nil, err
	}
	logger.Info().Str("seconds", completion.Seconds).Msg("video job completed")

	result := &domain.CampaignResult{
		Provider:      req.Provider,
		ProviderLabel: provider.Label(),
		Status:        completion.Status,
		Message:       domain.VideoSuccessMessage,
		JobID:         completion.JobID,
		Model:         completion.Model,
		Prompt:        prompt,
		Seconds:       completion.Seconds,
		Size:          completion.Size,
		VideoURL:      completion.VideoPath,
	}

	// Captions must never hold a finished video hostage: any error here is
	// logged and the campaign ships without a pack.
	pack, err := provider.GenerateCaptions(ctx, req.PetName, req.PetBio)
	if err != nil {
		logger.Warn().Err(err).Msg("caption generation failed, continuing without captions")
		return result, nil
	}
	if pack != nil {
		result.Captions = pack.Captions
		result.Hashtags = pack.Hashtags
	}
	return result, nil
}

// SupportedProviders lists the registered provider keys in registry order.
func (o *Orchestrator) SupportedProviders() []domain.ProviderKey {
	var keys []domain.ProviderKey
	for _, key := range domain.ProviderKeys() {
		if _, ok := o.providers[key]; ok {
			keys = append(keys, key)
		}
	}
	return keys
}
