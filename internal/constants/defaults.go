package constants

// Default relay configuration values
const (
	DefaultCommandPrefix   = "!"
	DefaultCleanupDelayMs  = 3000
	DefaultSendTimeoutSec  = 15
	DefaultAckMessage      = "Message sent."
	DefaultAdminCopyFormat = "%s sent: %s"
)

// Default destination names
const (
	DestinationPublic       = "public"
	DestinationSupernatural = "supernatural"
)

// Default media configuration values
const (
	BytesPerMegabyte         = 1024 * 1024
	DefaultMaxImageBytes     = 8 * BytesPerMegabyte
	DefaultFetchTimeoutSec   = 20
	DefaultImageFilename     = "image.png"
	MimeDetectionBufferSize  = 512
	MaxAttachmentFilenameLen = 100
)

// Default ingress configuration values
const (
	DefaultIngressChannel    = "ic-events"
	DefaultIngressAuthorName = "IC System"
	DefaultIngressBodyBytes  = 1 * BytesPerMegabyte
)

// Default timeout values
const (
	DefaultServerPort            = 8080
	DefaultGracefulShutdownSec   = 30
	DefaultServerReadTimeoutSec  = 15
	DefaultServerWriteTimeoutSec = 15
	DefaultServerIdleTimeoutSec  = 60
	DefaultCleanupDeleteTimeout  = 10
)

// Dice bounds
const (
	MinDiceSides = 1
	MaxDiceSides = 10
	MinDiceCount = 1
	MaxDiceCount = 20
)

// Privacy settings
const (
	DefaultIDMaskLength     = 4
	DefaultURLPreviewLength = 32
)
