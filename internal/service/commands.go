package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"icrelay/internal/constants"
	"icrelay/internal/dice"
	apperrors "icrelay/internal/errors"
	"icrelay/internal/metrics"
	"icrelay/internal/models"
	"icrelay/internal/tracing"
	"icrelay/internal/validation"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// Relayer is the relay engine as seen by the command and ingress adapters
type Relayer interface {
	Relay(ctx context.Context, req models.RelayRequest, dest models.Destination) models.RelayResult
	Deliver(ctx context.Context, content string, author models.Identity, dest models.Destination) models.RelayResult
}

// ChatTransport posts replies and inspects channels
type ChatTransport interface {
	ResolveChannel(ctx context.Context, channelID string) (models.Channel, error)
	Send(ctx context.Context, channelID string, msg models.OutboundMessage) (string, error)
}

// PermissionChecker decides whether an identity may run commands
type PermissionChecker interface {
	Allowed(identity models.Identity) bool
}

// ThreadDestinationName labels ad hoc thread destinations in logs and metrics
const ThreadDestinationName = "thread"

type commandFunc func(ctx context.Context, msg models.InboundMessage, args string) string

// CommandRouter parses prefixed chat commands and dispatches them
type CommandRouter struct {
	prefix    string
	gate      PermissionChecker
	relayer   Relayer
	transport ChatTransport
	channels  *ChannelManager
	roller    *dice.Roller
	logger    *logrus.Logger
	commands  map[string]commandFunc
}

// NewCommandRouter wires the command table
func NewCommandRouter(prefix string, gate PermissionChecker, relayer Relayer, transport ChatTransport, channels *ChannelManager, roller *dice.Roller, logger *logrus.Logger) *CommandRouter {
	if prefix == "" {
		prefix = constants.DefaultCommandPrefix
	}
	if roller == nil {
		roller = dice.NewRoller()
	}
	if logger == nil {
		logger = logrus.New()
	}

	r := &CommandRouter{
		prefix:    prefix,
		gate:      gate,
		relayer:   relayer,
		transport: transport,
		channels:  channels,
		roller:    roller,
		logger:    logger,
	}

	publicRelay := r.relayTo(constants.DestinationPublic)
	supernaturalRelay := r.relayTo(constants.DestinationSupernatural)
	r.commands = map[string]commandFunc{
		"relay-public":       publicRelay,
		"ic-info":            publicRelay,
		"relay-supernatural": supernaturalRelay,
		"spn-info":           supernaturalRelay,
		"relay-to-thread":    r.relayToThread,
		"send_to_thread":     r.relayToThread,
		"roll":               r.roll,
		"dice":               r.roll,
		"info":               r.info,
		"info-dice":          r.infoDice,
	}
	return r
}

// HandleMessage runs one inbound chat message through the router.
// Non-commands, unknown commands and denied callers get no reply.
func (r *CommandRouter) HandleMessage(ctx context.Context, msg models.InboundMessage) {
	if msg.FromSelf {
		return
	}

	name, args, ok := r.parse(msg.Content)
	if !ok {
		return
	}
	handler, known := r.commands[name]
	if !known {
		r.logger.WithField(LogFieldCommand, name).Debug("Ignoring unknown command")
		return
	}

	labels := map[string]string{"command": name}
	if !r.gate.Allowed(msg.Author) {
		metrics.IncrementCounter(metrics.PermissionDenials, labels, "Commands rejected by the permission gate")
		r.logger.WithField(LogFieldCommand, name).Debug("Command denied by permission gate")
		return
	}
	metrics.IncrementCounter(metrics.CommandsReceived, labels, "Accepted chat commands")

	ctx = tracing.WithRequest(ctx)
	ctx, span := tracing.StartSpan(ctx, "command."+name, attribute.String("command.name", name))
	defer span.End()

	defer func() {
		if rec := recover(); rec != nil {
			err := apperrors.NewInternalError("command "+name, fmt.Errorf("panic: %v", rec))
			tracing.RecordError(ctx, err)
			LogWithContext(ctx, r.logger).WithError(err).Error("Recovered panic in command handler")
			r.reply(ctx, msg.ChannelID, apperrors.MsgCommandFailed)
		}
	}()

	LogCommand(ctx, r.logger, name, commandSource{
		channelID: msg.ChannelID,
		messageID: msg.ID,
		authorID:  msg.Author.ID,
	}, args)

	if response := handler(ctx, msg, args); response != "" {
		r.reply(ctx, msg.ChannelID, response)
	}
}

// parse splits "<prefix><name> <args>"; args keep their inner whitespace
func (r *CommandRouter) parse(content string) (name, args string, ok bool) {
	if !strings.HasPrefix(content, r.prefix) {
		return "", "", false
	}
	rest := content[len(r.prefix):]
	if rest == "" || unicode.IsSpace(rune(rest[0])) {
		return "", "", false
	}

	end := strings.IndexFunc(rest, unicode.IsSpace)
	if end < 0 {
		return rest, "", true
	}
	return rest[:end], strings.TrimSpace(rest[end:]), true
}

func (r *CommandRouter) relayTo(destName string) commandFunc {
	return func(ctx context.Context, msg models.InboundMessage, args string) string {
		dest, err := r.channels.GetDestination(destName)
		if err != nil {
			LogWithContext(ctx, r.logger).WithError(err).Error("Destination missing from configuration")
			return apperrors.MsgChannelNotFound
		}
		return r.runRelay(ctx, msg, args, dest)
	}
}

func (r *CommandRouter) relayToThread(ctx context.Context, msg models.InboundMessage, args string) string {
	threadID, text := splitFirst(args)
	if threadID == "" {
		return apperrors.MsgMissingArgument
	}
	if err := validation.ValidateSnowflake(threadID, "thread id"); err != nil {
		return apperrors.MsgBadArgument
	}

	ch, err := r.transport.ResolveChannel(ctx, threadID)
	if err != nil || !ch.Thread {
		return apperrors.MsgNotAThread
	}

	return r.runRelay(ctx, msg, text, models.Destination{Name: ThreadDestinationName, ChannelID: threadID})
}

func (r *CommandRouter) runRelay(ctx context.Context, msg models.InboundMessage, text string, dest models.Destination) string {
	result := r.relayer.Relay(ctx, models.RelayRequest{
		Text:   text,
		Author: msg.Author,
		Origin: msg.Origin(),
	}, dest)
	if result.OK() {
		return ""
	}
	return apperrors.GetUserMessage(result.Err)
}

func (r *CommandRouter) roll(ctx context.Context, msg models.InboundMessage, args string) string {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return apperrors.MsgMissingArgument
	}

	sides, err := strconv.Atoi(fields[0])
	if err != nil {
		return apperrors.MsgBadArgument
	}
	count := 1
	if len(fields) > 1 {
		if count, err = strconv.Atoi(fields[1]); err != nil {
			return apperrors.MsgBadArgument
		}
	}

	results, err := r.roller.Roll(sides, count)
	if err != nil {
		return apperrors.GetUserMessage(err)
	}
	return dice.Format(results)
}

func (r *CommandRouter) info(ctx context.Context, msg models.InboundMessage, args string) string {
	p := r.prefix
	return fmt.Sprintf("`Hello, %s!\n\n"+
		"With my help you can:\n"+
		"- Send anonymous messages to the events and supernatural events channels with %srelay-public and %srelay-supernatural (%sic-info and %sspn-info also work).\n"+
		" Add an image URL to the message to attach a picture. The link must point straight at the image (ending in .jpeg, .jpg, .png or .gif); Discord and imgur links do not work as image hosting.\n"+
		" Example: %srelay-public Wolves howl at the observatory. https://i.ibb.co/h2pWd66/image.png\n"+
		"- Send a message, optionally with an image URL, to a specific thread with %srelay-to-thread [thread ID] [message].`",
		msg.Author.DisplayName, p, p, p, p, p, p)
}

func (r *CommandRouter) infoDice(ctx context.Context, msg models.InboundMessage, args string) string {
	return fmt.Sprintf("`To roll dice, use %sroll [number of sides (%d-%d)] [number of dice (up to %d)].`",
		r.prefix, constants.MinDiceSides, constants.MaxDiceSides, constants.MaxDiceCount)
}

func (r *CommandRouter) reply(ctx context.Context, channelID, text string) {
	if _, err := r.transport.Send(ctx, channelID, models.OutboundMessage{Content: text}); err != nil {
		LogWithContext(ctx, r.logger).WithError(err).Warn("Failed to send command reply")
	}
}

// splitFirst returns the first whitespace-separated token and the trimmed remainder
func splitFirst(s string) (string, string) {
	s = strings.TrimSpace(s)
	end := strings.IndexFunc(s, unicode.IsSpace)
	if end < 0 {
		return s, ""
	}
	return s[:end], strings.TrimSpace(s[end:])
}
