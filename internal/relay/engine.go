package relay

import (
	"context"
	"fmt"
	"strings"
	"time"

	"icrelay/internal/constants"
	apperrors "icrelay/internal/errors"
	"icrelay/internal/metrics"
	"icrelay/internal/models"
	"icrelay/internal/privacy"
	"icrelay/internal/tracing"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Transport is the chat surface the engine delivers through
type Transport interface {
	ResolveChannel(ctx context.Context, channelID string) (models.Channel, error)
	Send(ctx context.Context, channelID string, msg models.OutboundMessage) (string, error)
	Delete(ctx context.Context, channelID, messageID string) error
}

// ImageFetcher downloads the image attached to a relay request
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) (*models.Attachment, error)
}

// Engine runs one relay invocation end to end
type Engine struct {
	transport Transport
	fetcher   ImageFetcher
	cleaner   *Cleaner
	config    models.RelayConfig
	logger    *apperrors.Logger
}

// NewEngine creates a relay engine. A nil cleaner disables cleanup.
func NewEngine(config models.RelayConfig, transport Transport, fetcher ImageFetcher, cleaner *Cleaner, logger *logrus.Logger) *Engine {
	if config.AckMessage == "" {
		config.AckMessage = constants.DefaultAckMessage
	}
	if config.SendTimeoutSec <= 0 {
		config.SendTimeoutSec = constants.DefaultSendTimeoutSec
	}
	return &Engine{
		transport: transport,
		fetcher:   fetcher,
		cleaner:   cleaner,
		config:    config,
		logger:    apperrors.NewLogger(logger),
	}
}

// Relay validates, splits, fetches and delivers req to dest.
// With an Origin it also acknowledges and schedules cleanup of the invoking message.
func (e *Engine) Relay(ctx context.Context, req models.RelayRequest, dest models.Destination) models.RelayResult {
	ctx, span := tracing.StartSpan(ctx, "relay.Relay",
		attribute.String("relay.destination", dest.Name),
		attribute.Bool("relay.has_origin", req.Origin != nil),
	)
	defer span.End()
	start := time.Now()

	result := e.relay(ctx, &req, dest)
	e.finish(ctx, "relay", dest, result, time.Since(start))
	return result
}

// Deliver posts already-prepared text to dest and its mirror.
// No splitting, fetching, acknowledgement or cleanup.
func (e *Engine) Deliver(ctx context.Context, content string, author models.Identity, dest models.Destination) models.RelayResult {
	ctx, span := tracing.StartSpan(ctx, "relay.Deliver", attribute.String("relay.destination", dest.Name))
	defer span.End()
	start := time.Now()

	result := e.deliverText(ctx, content, author, dest)
	e.finish(ctx, "deliver", dest, result, time.Since(start))
	return result
}

func (e *Engine) deliverText(ctx context.Context, content string, author models.Identity, dest models.Destination) models.RelayResult {
	content = strings.TrimSpace(content)
	if content == "" {
		return failed(apperrors.NewEmptyInputError())
	}

	public, admin, err := e.resolve(ctx, dest)
	if err != nil {
		return failed(err)
	}
	return e.deliver(ctx, public, admin, content, author, nil)
}

func (e *Engine) relay(ctx context.Context, req *models.RelayRequest, dest models.Destination) models.RelayResult {
	// Validating
	if strings.TrimSpace(req.Text) == "" {
		return failed(apperrors.NewEmptyInputError())
	}

	// Resolving
	public, admin, err := e.resolve(ctx, dest)
	if err != nil {
		return failed(err)
	}

	// Splitting
	req.ImageURL, req.Content = Split(req.Text)

	// Fetching
	var attachment *models.Attachment
	if req.ImageURL != "" {
		attachment, err = e.fetcher.Fetch(ctx, req.ImageURL)
		if err != nil {
			if _, ok := apperrors.As(err); !ok {
				err = apperrors.NewImageFetchError(privacy.URLForLog(ctx, req.ImageURL), 0, err)
			}
			return failed(err)
		}
	}

	// Delivering
	result := e.deliver(ctx, public, admin, req.Content, req.Author, attachment)
	if !result.OK() || req.Origin == nil {
		return result
	}

	// Acknowledging
	ackID, err := e.send(ctx, req.Origin.ChannelID, models.OutboundMessage{Content: e.config.AckMessage})
	if err != nil {
		e.logger.LogWarn(err, "Failed to send acknowledgement", logrus.Fields{
			"channel_id": privacy.ChannelIDForLog(ctx, req.Origin.ChannelID),
		})
	}
	result.AckMessageID = ackID

	// Cleaning up
	if e.cleaner != nil {
		e.cleaner.Schedule(ctx, req.Origin.ChannelID, req.Origin.MessageID, ackID)
	}
	return result
}

// resolve looks up the public channel and, when configured, the admin mirror.
// An unresolvable mirror is dropped with a warning.
func (e *Engine) resolve(ctx context.Context, dest models.Destination) (public string, admin string, err error) {
	if _, err := e.transport.ResolveChannel(ctx, dest.ChannelID); err != nil {
		return "", "", apperrors.NewChannelNotFoundError(dest.ChannelID, err)
	}

	if !dest.HasMirror() {
		return dest.ChannelID, "", nil
	}
	if _, err := e.transport.ResolveChannel(ctx, dest.AdminChannelID); err != nil {
		e.logger.WithError(err).WithFields(logrus.Fields{
			"destination":      dest.Name,
			"admin_channel_id": privacy.ChannelIDForLog(ctx, dest.AdminChannelID),
		}).Warn("Admin channel not resolvable, mirror disabled")
		return dest.ChannelID, "", nil
	}
	return dest.ChannelID, dest.AdminChannelID, nil
}

// deliver sends the public message and then the admin copy.
// Only the public send decides the outcome.
func (e *Engine) deliver(ctx context.Context, publicID, adminID, content string, author models.Identity, attachment *models.Attachment) models.RelayResult {
	publicMsgID, err := e.send(ctx, publicID, models.OutboundMessage{Content: content, Attachment: attachment})
	if err != nil {
		return failed(apperrors.NewInternalError("public send", err).
			WithContext("channel_id", privacy.ChannelIDForLog(ctx, publicID)))
	}

	result := models.RelayResult{
		Outcome:         models.OutcomeDelivered,
		PublicMessageID: publicMsgID,
	}
	if adminID == "" {
		return result
	}

	adminContent := fmt.Sprintf(constants.DefaultAdminCopyFormat, author.DisplayName, content)
	adminMsgID, err := e.send(ctx, adminID, models.OutboundMessage{Content: adminContent, Attachment: attachment})
	if err != nil {
		mirrorErr := apperrors.NewAdminMirrorError(privacy.ChannelIDForLog(ctx, adminID), err)
		e.logger.LogError(mirrorErr, "Admin mirror send failed")
		tracing.AddSpanAttributes(ctx, attribute.Bool("relay.mirror_failed", true))
		metrics.IncrementCounter(metrics.AdminMirrorFailures, nil, "Failed admin mirror sends")
		result.MirrorErr = mirrorErr
		return result
	}
	result.AdminMessageID = adminMsgID
	return result
}

func (e *Engine) send(ctx context.Context, channelID string, msg models.OutboundMessage) (string, error) {
	sendCtx, cancel := context.WithTimeout(ctx, time.Duration(e.config.SendTimeoutSec)*time.Second)
	defer cancel()
	return e.transport.Send(sendCtx, channelID, msg)
}

func (e *Engine) finish(ctx context.Context, op string, dest models.Destination, result models.RelayResult, elapsed time.Duration) {
	labels := map[string]string{
		"op":          op,
		"destination": dest.Name,
		"outcome":     string(result.Outcome),
	}
	metrics.IncrementCounter(metrics.RelayInvocations, labels, "Relay invocations by outcome")
	metrics.RecordTimer(metrics.RelayDuration, elapsed, map[string]string{"op": op}, "Relay invocation duration")

	tracing.AddSpanAttributes(ctx, attribute.String("relay.outcome", string(result.Outcome)))
	fields := logrus.Fields{
		"op":          op,
		"destination": dest.Name,
		"outcome":     result.Outcome,
		"duration_ms": elapsed.Milliseconds(),
		"request_id":  tracing.GetRequestID(ctx),
	}
	if result.Err != nil {
		tracing.RecordError(ctx, result.Err)
		if result.Outcome == models.OutcomeInternalError {
			e.logger.LogError(result.Err, "Relay failed", fields)
		} else {
			e.logger.LogWarn(result.Err, "Relay rejected", fields)
		}
		return
	}
	tracing.SetSpanStatus(ctx, codes.Ok, "")
	e.logger.WithFields(fields).Info("Relay delivered")
}

func failed(err error) models.RelayResult {
	return models.RelayResult{
		Outcome: apperrors.OutcomeFor(err),
		Err:     err,
	}
}
