// Package attach converts user-supplied image files into the inline data-URL
// payload stored on a record.
package attach

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"

	"medrecords/internal/log"
)

var (
	ErrUnsupportedAttachment = errors.New("unsupported attachment type")
	ErrAttachmentRead        = errors.New("attachment read failure")
	ErrAttachmentTooLarge    = errors.New("attachment too large")
)

const chunkSize = 32 * 1024

// Encoder builds base64 data URLs from image bytes. MaxBytes of zero means no
// ceiling; inline payloads then grow linearly with the input, which is a known
// scalability limit of the storage format.
type Encoder struct {
	maxBytes int64
	logger   *log.Logger
}

func NewEncoder(maxBytes int64, logger *log.Logger) *Encoder {
	return &Encoder{
		maxBytes: maxBytes,
		logger:   logger.WithComponent(log.ComponentAttach),
	}
}

// Encode reads r to completion and returns a "data:<type>;base64," payload.
// The read is chunked and honors ctx, so a caller can abandon a slow encode;
// an abandoned encode returns ctx.Err() and no partial payload.
func (e *Encoder) Encode(ctx context.Context, r io.Reader, mediaType string) (string, error) {
	mt, err := normalizeMediaType(mediaType)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("data:")
	sb.WriteString(mt)
	sb.WriteString(";base64,")

	enc := base64.NewEncoder(base64.StdEncoding, &sb)
	buf := make([]byte, chunkSize)
	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		n, err := r.Read(buf)
		if n > 0 {
			total += int64(n)
			if e.maxBytes > 0 && total > e.maxBytes {
				return "", fmt.Errorf("%w: input exceeds %d bytes", ErrAttachmentTooLarge, e.maxBytes)
			}
			if _, werr := enc.Write(buf[:n]); werr != nil {
				return "", fmt.Errorf("encode payload: %w", werr)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrAttachmentRead, err)
		}
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("finish payload: %w", err)
	}

	e.logger.DebugContext(ctx, "Attachment encoded",
		log.FieldOperation, log.OpEncode,
		log.FieldMediaType, mt,
		log.FieldBytes, total)
	return sb.String(), nil
}

// Pending is an in-flight encode. The caller is notified through Done and
// reads the single result afterwards; cancelling the start context abandons
// the encode and discards the payload.
type Pending struct {
	done    chan struct{}
	payload string
	err     error
}

// Start launches an encode and returns its pending handle.
func (e *Encoder) Start(ctx context.Context, r io.Reader, mediaType string) *Pending {
	p := &Pending{done: make(chan struct{})}
	go func() {
		defer close(p.done)
		p.payload, p.err = e.Encode(ctx, r, mediaType)
	}()
	return p
}

// Done is closed once the encode finished, failed or was abandoned.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Result returns the payload or the typed failure. It blocks until done.
func (p *Pending) Result() (string, error) {
	<-p.done
	return p.payload, p.err
}

// Wait blocks for the result or for ctx, whichever comes first.
func (p *Pending) Wait(ctx context.Context) (string, error) {
	select {
	case <-p.done:
		return p.payload, p.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func normalizeMediaType(mediaType string) (string, error) {
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedAttachment, mediaType)
	}
	if !strings.HasPrefix(mt, "image/") {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedAttachment, mt)
	}
	return mt, nil
}
