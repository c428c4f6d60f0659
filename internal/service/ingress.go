package service

import (
	"context"
	"fmt"

	"icrelay/internal/constants"
	apperrors "icrelay/internal/errors"
	"icrelay/internal/metrics"
	"icrelay/internal/models"

	"github.com/sirupsen/logrus"
)

// IngressRequest is the body accepted by the HTTP push endpoint.
// Command is accepted for compatibility and not interpreted.
type IngressRequest struct {
	Command   string
	Message   string
	ChannelID string
}

// IngressService delivers pushed messages to the routed destination
type IngressService struct {
	relayer  Relayer
	channels *ChannelManager
	author   models.Identity
	logger   *logrus.Logger
}

// NewIngressService creates the ingress service
func NewIngressService(relayer Relayer, channels *ChannelManager, authorName string, logger *logrus.Logger) *IngressService {
	if authorName == "" {
		authorName = constants.DefaultIngressAuthorName
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &IngressService{
		relayer:  relayer,
		channels: channels,
		author:   models.Identity{DisplayName: authorName},
		logger:   logger,
	}
}

// Send routes req.ChannelID and delivers the message text.
// A panic inside delivery is converted into an internal error.
func (s *IngressService) Send(ctx context.Context, req IngressRequest) (result models.RelayResult) {
	dest, route := s.channels.ResolveIngressRoute(req.ChannelID)

	defer func() {
		if rec := recover(); rec != nil {
			err := apperrors.NewInternalError("ingress delivery", fmt.Errorf("panic: %v", rec))
			LogWithContext(ctx, s.logger).WithError(err).Error("Recovered panic in ingress delivery")
			result = models.RelayResult{Outcome: models.OutcomeInternalError, Err: err}
		}
		metrics.IncrementCounter(metrics.IngressRequests, map[string]string{
			"route":   route,
			"outcome": string(result.Outcome),
		}, "Ingress requests by route and outcome")
	}()

	if route != req.ChannelID {
		LogWithContext(ctx, s.logger).WithFields(logrus.Fields{
			LogFieldRoute: req.ChannelID,
			"fallback":    route,
		}).Debug("Unknown ingress route, using default")
	}

	return s.relayer.Deliver(ctx, req.Message, s.author, dest)
}
