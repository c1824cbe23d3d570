package generation

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/openai/openai-go"

	pferrors "github.com/otherjamesbrown/draftgen-cli/pkg/errors"
	"github.com/otherjamesbrown/draftgen-cli/pkg/logging"
)

// Transcribe converts spoken audio into a draft description via the
// service's transcription endpoint. Transient failures are retried under
// the same policy as generation, but there is no static fallback: nothing
// sensible can be synthesized from audio that was never heard. Audio
// content is never logged, only sizes and latency.
func (c *Client) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if len(audio) == 0 {
		return "", pferrors.New(pferrors.ErrInputRejected, "transcribe", "audio input is empty")
	}

	start := time.Now()
	var lastErr error
	for attempt := 0; attempt <= c.cfg.Retry.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.cfg.Retry.Backoff(attempt - 1)
			if !deadlineAllows(ctx, delay+c.cfg.AttemptTimeout) {
				break
			}
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", pferrors.Wrap(pferrors.ErrGenerationUnavailable, "transcribe", ctx.Err())
			}
		}

		text, err := c.transcribeAttempt(ctx, audio, filename)
		if err == nil {
			if text == "" {
				return "", pferrors.New(pferrors.ErrInputRejected, "transcribe", "audio contained no recognizable speech")
			}
			c.logger.Info("transcription completed",
				logging.F("attempts", attempt+1),
				logging.F("audio_bytes", len(audio)),
				logging.F("latency", time.Since(start)))
			return text, nil
		}
		lastErr = err
		c.logger.Warn("transcription attempt failed",
			logging.F("attempt", attempt+1),
			logging.F("transient", IsTransient(err)),
			logging.Err(err))
		if !IsTransient(err) {
			break
		}
	}

	c.logger.Error("transcription failed permanently",
		logging.F("latency", time.Since(start)),
		logging.Err(lastErr))
	return "", pferrors.Wrap(pferrors.ErrGenerationUnavailable, "transcribe", lastErr)
}

// transcribeAttempt performs a single bounded transcription call.
func (c *Client) transcribeAttempt(ctx context.Context, audio []byte, filename string) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.AttemptTimeout)
	defer cancel()

	resp, err := c.api.Audio.Transcriptions.New(attemptCtx, openai.AudioTranscriptionNewParams{
		File:  openai.File(bytes.NewReader(audio), filename, "application/octet-stream"),
		Model: openai.AudioModel(c.cfg.TranscriptionModel),
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text), nil
}
