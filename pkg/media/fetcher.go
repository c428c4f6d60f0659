package media

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"path"
	"strings"
	"syscall"
	"time"

	"icrelay/internal/constants"
	apperrors "icrelay/internal/errors"
	"icrelay/internal/metrics"
	"icrelay/internal/models"
	"icrelay/internal/privacy"
	"icrelay/internal/tracing"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// Fetcher downloads a relay image into memory.
// One GET per call, no retries; every failure is IMAGE_FETCH_FAILED.
type Fetcher struct {
	config     models.MediaConfig
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewFetcher creates a fetcher with a client bound to the configured timeout.
// Unless private hosts are allowed, the dialer refuses internal addresses
// after DNS resolution as well.
func NewFetcher(config models.MediaConfig, logger *logrus.Logger) *Fetcher {
	timeout := time.Duration(config.FetchTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = time.Duration(constants.DefaultFetchTimeoutSec) * time.Second
	}

	dialer := &net.Dialer{Timeout: timeout}
	if !config.AllowPrivateHosts {
		dialer.Control = refuseInternalAddress
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = dialer.DialContext

	return NewFetcherWithClient(config, &http.Client{Timeout: timeout, Transport: transport}, logger)
}

// NewFetcherWithClient creates a fetcher around an existing HTTP client
func NewFetcherWithClient(config models.MediaConfig, client *http.Client, logger *logrus.Logger) *Fetcher {
	if config.MaxImageBytes <= 0 {
		config.MaxImageBytes = constants.DefaultMaxImageBytes
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Fetcher{
		config:     config,
		httpClient: client,
		logger:     logger,
	}
}

// Fetch downloads rawURL and returns the whole body as an attachment
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*models.Attachment, error) {
	ctx, span := tracing.StartSpan(ctx, "media.Fetch", attribute.String("media.url", privacy.MaskURL(rawURL)))
	defer span.End()

	start := time.Now()
	att, err := f.fetch(ctx, rawURL)
	elapsed := time.Since(start)

	status := "success"
	if err != nil {
		status = "failure"
	}
	metrics.RecordTimer(metrics.ImageFetchDuration, elapsed, map[string]string{"status": status}, "Image fetch duration")

	fields := logrus.Fields{
		"url":         privacy.URLForLog(ctx, rawURL),
		"duration_ms": elapsed.Milliseconds(),
	}
	if err != nil {
		tracing.RecordError(ctx, err)
		f.logger.WithFields(fields).WithError(err).Warn("Image fetch failed")
		return nil, err
	}

	tracing.AddSpanAttributes(ctx, attribute.Int("media.size_bytes", att.Size()))
	fields["size_bytes"] = att.Size()
	fields["content_type"] = att.ContentType
	f.logger.WithFields(fields).Debug("Image fetched")
	return att, nil
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string) (*models.Attachment, error) {
	u, err := f.validateDownloadURL(rawURL)
	if err != nil {
		return nil, apperrors.NewImageFetchError(privacy.URLForLog(ctx, rawURL), 0, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, apperrors.NewImageFetchError(privacy.URLForLog(ctx, rawURL), 0, fmt.Errorf("failed to create request: %w", err))
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewImageFetchError(privacy.URLForLog(ctx, rawURL), 0, fmt.Errorf("failed to download image: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewImageFetchError(privacy.URLForLog(ctx, rawURL), resp.StatusCode,
			fmt.Errorf("download failed with status: %d", resp.StatusCode))
	}

	limit := f.config.MaxImageBytes
	if resp.ContentLength > limit {
		return nil, apperrors.NewImageFetchError(privacy.URLForLog(ctx, rawURL), resp.StatusCode,
			fmt.Errorf("image too large: %d > %d bytes", resp.ContentLength, limit))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, apperrors.NewImageFetchError(privacy.URLForLog(ctx, rawURL), resp.StatusCode, fmt.Errorf("failed to read image: %w", err))
	}
	if int64(len(data)) > limit {
		return nil, apperrors.NewImageFetchError(privacy.URLForLog(ctx, rawURL), resp.StatusCode,
			fmt.Errorf("image exceeds %d bytes", limit))
	}

	return &models.Attachment{
		Filename:    attachmentFilename(u),
		ContentType: contentType(resp.Header.Get("Content-Type"), u, data),
		Data:        data,
	}, nil
}

// attachmentFilename keeps the URL's base name when it is a usable image name
func attachmentFilename(u *url.URL) string {
	name := path.Base(u.Path)
	ext := strings.ToLower(path.Ext(name))
	if constants.GetImageMimeType(ext) == "" || len(name) > constants.MaxAttachmentFilenameLen {
		return constants.DefaultImageFilename
	}
	return name
}

func contentType(header string, u *url.URL, data []byte) string {
	if header != "" {
		if mediaType, _, err := mime.ParseMediaType(header); err == nil && strings.HasPrefix(mediaType, "image/") {
			return mediaType
		}
	}
	if byExt := constants.GetImageMimeType(strings.ToLower(path.Ext(u.Path))); byExt != "" {
		return byExt
	}
	sniff := data
	if len(sniff) > constants.MimeDetectionBufferSize {
		sniff = sniff[:constants.MimeDetectionBufferSize]
	}
	return http.DetectContentType(sniff)
}

// refuseInternalAddress runs after DNS resolution, right before connect
func refuseInternalAddress(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	if ip := net.ParseIP(host); ip != nil && isInternalIP(ip) {
		return fmt.Errorf("download host not allowed: %s", host)
	}
	return nil
}
